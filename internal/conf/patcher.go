package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/repoadd/repoadd/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultAnchor is the always-present section that new stanzas are
// inserted before, so the new repository takes priority over it.
const DefaultAnchor = "core"

// Patcher adds a repository stanza to a configuration file. The file is
// locked for the duration of the patch, backed up before any mutation,
// and rewritten through a temp file and atomic rename.
type Patcher struct {
	// Anchor is the section the new stanza is inserted before.
	// Defaults to DefaultAnchor when empty.
	Anchor string

	// Now is the clock used for backup timestamps; nil means time.Now.
	Now func() time.Time
}

// PatchResult reports what a patch run did.
type PatchResult struct {
	// Applied is false when the section already existed and the file
	// was left untouched.
	Applied bool

	// BackupPath is the timestamped copy written before the check.
	BackupPath string
}

// Apply inserts the stanza into the file at path. Running it again for
// the same section name is a no-op: at most one section with that name
// exists afterwards, and unrelated content is preserved byte-for-byte.
func (p *Patcher) Apply(path string, stanza Section) (PatchResult, error) {
	anchor := p.Anchor
	if anchor == "" {
		anchor = DefaultAnchor
	}

	lock, err := acquireLock(path)
	if err != nil {
		errType := models.ErrPatch
		if os.IsNotExist(err) {
			errType = models.ErrConfigNotFound
		}
		return PatchResult{}, &models.RegistrarError{
			Type: errType,
			Path: path,
			Err:  fmt.Errorf("failed to lock config file: %w", err),
		}
	}
	defer lock.release()

	f, err := Load(path)
	if err != nil {
		return PatchResult{}, err
	}
	original := f.Serialize()

	backupPath, err := p.writeBackup(path, original)
	if err != nil {
		return PatchResult{}, &models.RegistrarError{
			Type: models.ErrBackupFailed,
			Path: path,
			Err:  err,
		}
	}
	logrus.Debugf("Backup written: %s", backupPath)

	// Re-check under the lock; detection may have raced another run.
	if f.HasSection(stanza.Name) {
		logrus.Debugf("Section [%s] already present, skipping patch", stanza.Name)
		return PatchResult{Applied: false, BackupPath: backupPath}, nil
	}

	f.insert(stanza, anchor)

	if err := atomicWrite(path, f.Serialize()); err != nil {
		return PatchResult{}, &models.RegistrarError{
			Type: models.ErrPatch,
			Path: path,
			Err:  err,
		}
	}
	return PatchResult{Applied: true, BackupPath: backupPath}, nil
}

// insert places the stanza immediately before the anchor section when
// one exists, otherwise appends it at end of file.
func (f *File) insert(stanza Section, anchor string) {
	block := stanza
	// A blank line after the stanza keeps it visually separate from the
	// anchor section it lands in front of.
	block.Lines = append(append([]string{}, stanza.Lines...), "\n")

	for i, s := range f.Sections {
		if s.Name == anchor {
			f.Sections = append(f.Sections[:i], append([]Section{block}, f.Sections[i:]...)...)
			return
		}
	}

	// No anchor: append. Terminate the current last line first if the
	// file does not end with a newline.
	if n := len(f.Sections); n > 0 {
		last := &f.Sections[n-1]
		if m := len(last.Lines); m > 0 && !strings.HasSuffix(last.Lines[m-1], "\n") {
			last.Lines[m-1] += "\n"
		}
		last.Lines = append(last.Lines, "\n")
	}
	f.Sections = append(f.Sections, stanza)
}

// writeBackup copies the current content to a timestamped sibling file,
// preserving the original's permission bits.
func (p *Patcher) writeBackup(path string, content []byte) (string, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	backupPath := fmt.Sprintf("%s.bak.%d", path, now().Unix())
	if err := os.WriteFile(backupPath, content, mode); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return backupPath, nil
}

// atomicWrite replaces path's content via a temp file in the same
// directory and a rename, so a crash mid-write cannot corrupt the
// original.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
