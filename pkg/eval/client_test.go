package eval

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

var fakePNG = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func TestSubmitSuccess(t *testing.T) {
	var gotField string
	var gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotField = "file"
		gotFilename = header.Filename
		data, _ := io.ReadAll(file)
		if len(data) != len(fakePNG) {
			t.Errorf("upload size = %d, want %d", len(data), len(fakePNG))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"score":0.92,"label":"kolam"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Status() != StatusIdle {
		t.Errorf("initial status = %v, want idle", c.Status())
	}

	v, err := c.Submit(context.Background(), "canvas.png", fakePNG)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if gotField != "file" {
		t.Error("upload did not use the file form field")
	}
	if gotFilename != "canvas.png" {
		t.Errorf("filename = %q, want canvas.png", gotFilename)
	}
	if v == nil || len(v.Raw) == 0 {
		t.Fatal("missing verdict")
	}
	if c.Status() != StatusSuccess {
		t.Errorf("status = %v, want success", c.Status())
	}
	if c.LastError() != nil {
		t.Errorf("LastError = %v, want nil", c.LastError())
	}
}

func TestSubmitServerErrorSetsErrorStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := c.Submit(context.Background(), "canvas.png", fakePNG); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1 (no retry)", calls)
	}
	if c.Status() != StatusError {
		t.Errorf("status = %v, want error", c.Status())
	}
	if c.LastError() == nil {
		t.Error("LastError should be set after failure")
	}

	// The client must accept a fresh submission after a failure.
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv2.Close()
	c2, _ := NewClient(srv2.URL)
	c2.status = StatusError
	if _, err := c2.Submit(context.Background(), "canvas.png", fakePNG); err != nil {
		t.Errorf("resubmit after failure: %v", err)
	}
	if c2.Status() != StatusSuccess {
		t.Errorf("status after resubmit = %v, want success", c2.Status())
	}
}

func TestSubmitRejectsConcurrent(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := c.Submit(context.Background(), "a.png", fakePNG); err != nil {
			t.Errorf("first submit: %v", err)
		}
	}()

	// Wait for the first submission to reach the server.
	deadline := time.Now().Add(2 * time.Second)
	for c.Status() != StatusLoading {
		if time.Now().After(deadline) {
			t.Fatal("first submission never reached loading state")
		}
		time.Sleep(time.Millisecond)
	}

	_, err = c.Submit(context.Background(), "b.png", fakePNG)
	if !errors.Is(err, errors.ErrCodeBusy) {
		t.Errorf("concurrent submit error = %v, want %v", err, errors.ErrCodeBusy)
	}

	close(release)
	wg.Wait()
	if c.Status() != StatusSuccess {
		t.Errorf("final status = %v, want success", c.Status())
	}
}

func TestSubmitTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Submit(context.Background(), "canvas.png", fakePNG)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeTimeout)
	}
	if c.Status() != StatusError {
		t.Errorf("status = %v, want error", c.Status())
	}
}

func TestSubmitRejectsEmptyImage(t *testing.T) {
	c, err := NewClient("http://localhost:9")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Submit(context.Background(), "x.png", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
	// A validation failure never transitions out of idle.
	if c.Status() != StatusIdle {
		t.Errorf("status = %v, want idle", c.Status())
	}
}

func TestSubmitRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Submit(context.Background(), "canvas.png", fakePNG); err == nil {
		t.Error("expected error for non-JSON verdict")
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient("not a url"); err == nil {
		t.Error("expected error for malformed URL")
	}
}
