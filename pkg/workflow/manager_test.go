package workflow

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/go-story-kit/pkg/generator"
)

type stubReader struct{}

func (stubReader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, io.EOF
}

func TestNew_MissingDependencies(t *testing.T) {
	base := ManagerArgs{
		Config:     NewConfig("test-key"),
		HTTPClient: httpkit.New(30 * time.Second),
		Reader:     stubReader{},
		Storage:    stubStorage{},
		Speech:     stubSpeech{},
	}

	cases := []struct {
		name   string
		mutate func(*ManagerArgs)
	}{
		{"HTTPClientなし", func(a *ManagerArgs) { a.HTTPClient = nil }},
		{"Readerなし", func(a *ManagerArgs) { a.Reader = nil }},
		{"Storageなし", func(a *ManagerArgs) { a.Storage = nil }},
		{"Speechなし", func(a *ManagerArgs) { a.Speech = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := base
			tc.mutate(&args)
			if _, err := New(context.Background(), args); err == nil {
				t.Error("必須依存の欠落がエラーになりませんでした")
			}
		})
	}
}

var _ generator.Storage = stubStorage{}
var _ generator.SpeechSynthesizer = stubSpeech{}
