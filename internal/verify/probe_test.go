package verify

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/repoadd/repoadd/internal/models"
	"github.com/ulikunitz/xz"
)

// buildDB synthesizes a repository database tar with one desc entry per
// package name.
func buildDB(t *testing.T, names ...string) []byte {
	t.Helper()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	for _, name := range names {
		dir := fmt.Sprintf("%s-1.0.0-1/", name)
		if err := tw.WriteHeader(&tar.Header{Name: dir, Mode: 0755, Typeflag: tar.TypeDir}); err != nil {
			t.Fatal(err)
		}
		desc := fmt.Sprintf("%%NAME%%\n%s\n\n%%VERSION%%\n1.0.0-1\n", name)
		if err := tw.WriteHeader(&tar.Header{Name: dir + "desc", Mode: 0644, Size: int64(len(desc))}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(desc)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return tarBuf.Bytes()
}

func compressZstd(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func compressXz(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := xw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCountEntriesZstd(t *testing.T) {
	db := compressZstd(t, buildDB(t, "alpha", "beta", "gamma"))
	n, err := CountEntries(db)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestCountEntriesXz(t *testing.T) {
	db := compressXz(t, buildDB(t, "alpha"))
	n, err := CountEntries(db)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestCountEntriesUncompressed(t *testing.T) {
	n, err := CountEntries(buildDB(t, "alpha", "beta"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestCountEntriesEmptyDB(t *testing.T) {
	n, err := CountEntries(compressZstd(t, buildDB(t)))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestProbeCheck(t *testing.T) {
	db := compressZstd(t, buildDB(t, "alpha", "beta"))
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Write(db)
	}))
	defer srv.Close()

	desc := models.RepositoryDescriptor{
		Name: "example_repo",
		URL:  srv.URL + "/$arch",
	}
	p := &Probe{}
	n, err := p.Check(context.Background(), desc, "x86_64")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if requested != "/x86_64/example_repo.db" {
		t.Errorf("requested %q", requested)
	}
}

func TestProbeCheckNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	desc := models.RepositoryDescriptor{Name: "example_repo", URL: srv.URL + "/$arch"}
	p := &Probe{}
	if _, err := p.Check(context.Background(), desc, "x86_64"); err == nil {
		t.Error("expected an error for a missing database")
	}
}
