// Package conf models the pacman configuration file as an ordered
// sequence of sections and implements idempotent, backup-first patching
// of repository stanzas.
package conf

import (
	"fmt"
	"os"
	"strings"

	"github.com/repoadd/repoadd/internal/models"
)

// Section is one named block of the configuration file. Lines holds the
// raw text verbatim, header line included, each line keeping its
// terminator, so that serializing untouched sections is byte-exact.
// The preamble before the first header is kept as a section with an
// empty name.
type Section struct {
	Name  string
	Lines []string
}

// File is a parsed configuration file.
type File struct {
	Path     string
	Sections []Section
}

// Load reads and parses the configuration file at path. A missing or
// unreadable file is reported as ConfigNotFound.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.RegistrarError{
			Type: models.ErrConfigNotFound,
			Path: path,
			Err:  err,
		}
	}
	return Parse(path, data), nil
}

// Parse splits raw file content into sections.
func Parse(path string, data []byte) *File {
	f := &File{Path: path}
	cur := Section{}
	for _, line := range splitLines(data) {
		if name, ok := sectionHeader(line); ok {
			if len(cur.Lines) > 0 {
				f.Sections = append(f.Sections, cur)
			}
			cur = Section{Name: name, Lines: []string{line}}
			continue
		}
		cur.Lines = append(cur.Lines, line)
	}
	if len(cur.Lines) > 0 {
		f.Sections = append(f.Sections, cur)
	}
	return f
}

// HasSection reports whether a section with exactly the given name
// exists. Matching is anchored and case-sensitive.
func (f *File) HasSection(name string) bool {
	for _, s := range f.Sections {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Serialize reassembles the file content. Sections that were not
// touched round-trip byte-for-byte.
func (f *File) Serialize() []byte {
	var b strings.Builder
	for _, s := range f.Sections {
		for _, line := range s.Lines {
			b.WriteString(line)
		}
	}
	return []byte(b.String())
}

// NewStanza builds a repository section for the descriptor with the
// given effective signature policy.
func NewStanza(desc models.RepositoryDescriptor, level models.SigLevel) Section {
	return Section{
		Name: desc.Name,
		Lines: []string{
			fmt.Sprintf("[%s]\n", desc.Name),
			fmt.Sprintf("SigLevel = %s\n", level),
			fmt.Sprintf("Server = %s\n", desc.URL),
		},
	}
}

// sectionHeader reports whether a raw line is a section header and, if
// so, returns the section name.
func sectionHeader(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if len(t) < 3 || t[0] != '[' || t[len(t)-1] != ']' {
		return "", false
	}
	name := t[1 : len(t)-1]
	if strings.ContainsAny(name, "[]#;") {
		return "", false
	}
	return name, true
}

// splitLines splits data into lines, each keeping its trailing newline.
// A final line without a terminator is kept as-is.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var lines []string
	start := 0
	for i, c := range data {
		if c == '\n' {
			lines = append(lines, string(data[start:i+1]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}
