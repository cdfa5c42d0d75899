package remote

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meltosvc/tvc/internal/bundle"
	"github.com/meltosvc/tvc/internal/objectenc"
)

func sampleBundle() *bundle.Bundle {
	return &bundle.Bundle{
		Objects: []bundle.ObjectEntry{{Hash: objectenc.ObjHash("abc0000000000000000000000000000000000000"), Compressed: []byte("x")}},
		Branches: []bundle.BranchEntry{
			{Name: "owner", Head: objectenc.NullCommitHash, Trace: objectenc.EmptyTreeHash},
		},
	}
}

func TestHTTPClientSend(t *testing.T) {
	var gotAuth, gotHeader string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotHeader = r.Header.Get("X-Meltos-Room")
		body, _ := io.ReadAll(r.Body)
		gotBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &HTTPClient{
		URL:        srv.URL,
		Auth:       "tok",
		Headers:    map[string]string{"X-Meltos-Room": "r1"},
		HTTPClient: srv.Client(),
	}
	b := sampleBundle()
	if err := c.Send(b); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization header = %q, want Bearer tok", gotAuth)
	}
	if gotHeader != "r1" {
		t.Fatalf("X-Meltos-Room header = %q, want r1", gotHeader)
	}
	wantEncoded, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(gotBody) != string(wantEncoded) {
		t.Fatalf("request body did not match encoded bundle")
	}
}

func TestHTTPClientReceiveRoundTrip(t *testing.T) {
	b := sampleBundle()
	encoded, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encoded)
	}))
	defer srv.Close()

	c := &HTTPClient{URL: srv.URL, HTTPClient: srv.Client()}
	got, err := c.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(got.Objects) != 1 || got.Objects[0].Hash != objectenc.ObjHash("abc0000000000000000000000000000000000000") {
		t.Fatalf("unexpected decoded bundle: %+v", got)
	}
}

func TestHTTPClientSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &HTTPClient{URL: srv.URL, HTTPClient: srv.Client()}
	if err := c.Send(sampleBundle()); err == nil {
		t.Fatalf("Send() error = nil, want error for 500 response")
	}
}
