package storage

import (
	"context"
	"errors"
	"io"
	"testing"
)

type fakeWriter struct {
	paths []string
	mimes []string
	err   error
}

func (f *fakeWriter) Write(_ context.Context, path string, r io.Reader, mimeType string) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, path)
	f.mimes = append(f.mimes, mimeType)
	_, _ = io.Copy(io.Discard, r)
	return nil
}

func TestGCSBackend_Upload(t *testing.T) {
	writer := &fakeWriter{}
	b := NewGCSBackendWithWriter(writer, "story-assets")

	url, err := b.Upload(context.Background(), "stories/abc/panel_01.png", []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("アップロードに失敗しました: %v", err)
	}

	if url != "https://storage.googleapis.com/story-assets/stories/abc/panel_01.png" {
		t.Errorf("公開URLが不正です: %q", url)
	}
	if len(writer.paths) != 1 || writer.paths[0] != "gs://story-assets/stories/abc/panel_01.png" {
		t.Errorf("書き込みパスが不正です: %v", writer.paths)
	}
	if writer.mimes[0] != "image/png" {
		t.Errorf("MIMEタイプが不正です: %q", writer.mimes[0])
	}
}

func TestGCSBackend_WriteError(t *testing.T) {
	b := NewGCSBackendWithWriter(&fakeWriter{err: errors.New("permission denied")}, "story-assets")
	if _, err := b.Upload(context.Background(), "stories/abc/panel_01.png", []byte("png"), "image/png"); err == nil {
		t.Error("書き込みエラーが伝播していません")
	}
}
