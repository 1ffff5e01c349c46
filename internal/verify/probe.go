// Package verify probes a freshly registered repository for
// reachability by downloading its database and counting the package
// entries inside. Probe failures are advisory; the caller reports them
// as warnings, never as fatal errors.
package verify

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/repoadd/repoadd/internal/models"
	"github.com/ulikunitz/xz"
)

// Magic bytes for database compression detection
var (
	// Zstandard (.db.tar.zst)
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

	// XZ (.db.tar.xz)
	xzMagic = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}

	// Gzip (.db.tar.gz)
	gzipMagic = []byte{0x1F, 0x8B}
)

// DefaultProbeTimeout bounds the database download.
const DefaultProbeTimeout = 30 * time.Second

// maxDBSize caps the download of the repository database.
const maxDBSize = 64 << 20

// Probe downloads and inspects repository databases.
type Probe struct {
	Client  *http.Client
	Timeout time.Duration
}

// Check fetches the repository database for the given architecture and
// returns the number of package entries it contains.
func (p *Probe) Check(ctx context.Context, desc models.RepositoryDescriptor, arch string) (int, error) {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s.db", strings.TrimRight(desc.ServerURL(arch), "/"), desc.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDBSize))
	if err != nil {
		return 0, err
	}
	return CountEntries(data)
}

// CountEntries decompresses a repository database blob and counts the
// package entries (one desc file per package) in the tar archive.
func CountEntries(data []byte) (int, error) {
	r, err := decompress(data)
	if err != nil {
		return 0, err
	}

	count := 0
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read database archive: %w", err)
		}
		if strings.HasSuffix(hdr.Name, "/desc") {
			count++
		}
	}
	return count, nil
}

// decompress picks the decompressor from the blob's magic bytes.
func decompress(data []byte) (io.Reader, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case bytes.HasPrefix(data, xzMagic):
		return xz.NewReader(bytes.NewReader(data))
	case bytes.HasPrefix(data, gzipMagic):
		return gzip.NewReader(bytes.NewReader(data))
	default:
		// Uncompressed tar databases exist too.
		return bytes.NewReader(data), nil
	}
}
