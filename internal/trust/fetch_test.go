package trust

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("key material"))
	}))
	defer srv.Close()

	f := &HTTPFetcher{}
	data, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "key material" {
		t.Errorf("got %q", data)
	}
}

func TestHTTPFetcherNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := &HTTPFetcher{}
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for 404")
	}
}

func TestHTTPFetcherEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	f := &HTTPFetcher{}
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for an empty response")
	}
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := &HTTPFetcher{}
	if _, err := f.Fetch(context.Background(), url+"/key.gpg"); err == nil {
		t.Error("expected an error for an unreachable host")
	}
}
