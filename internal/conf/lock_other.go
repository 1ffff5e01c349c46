//go:build !linux

package conf

import "os"

// Advisory locking is only wired up on Linux, the one platform the
// registrar actually runs on. Elsewhere the open still surfaces
// missing-file errors so the flow behaves the same.
type fileLock struct {
	f *os.File
}

func acquireLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() {
	_ = l.f.Close()
}
