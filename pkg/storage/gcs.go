// Package storage は、生成アセットの保存先バックエンドを提供します。
// Google Cloud Storage と MinIO の2実装があり、どちらも generator.Storage を
// 満たします。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// GCSBackend は Google Cloud Storage へアセットを保存するバックエンドです。
// アップロード後のURLは公開バケットを前提とした直リンクです。
type GCSBackend struct {
	writer remoteio.OutputWriter
	bucket string
}

// NewGCSBackend は既定の認証情報で GCS バックエンドを初期化します。
func NewGCSBackend(ctx context.Context, bucket string) (*GCSBackend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket は必須です")
	}

	factory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSクライアントの初期化に失敗しました: %w", err)
	}
	writer, err := factory.NewOutputWriter()
	if err != nil {
		return nil, fmt.Errorf("OutputWriter の生成に失敗しました: %w", err)
	}
	return &GCSBackend{writer: writer, bucket: bucket}, nil
}

// NewGCSBackendWithWriter はテスト用に任意の OutputWriter を注入します。
func NewGCSBackendWithWriter(writer remoteio.OutputWriter, bucket string) *GCSBackend {
	return &GCSBackend{writer: writer, bucket: bucket}
}

// Upload はオブジェクトを書き込み、公開URLを返します。
func (b *GCSBackend) Upload(ctx context.Context, objectPath string, data []byte, mimeType string) (string, error) {
	gsPath := fmt.Sprintf("gs://%s/%s", b.bucket, objectPath)
	if err := b.writer.Write(ctx, gsPath, bytes.NewReader(data), mimeType); err != nil {
		return "", fmt.Errorf("GCSへの書き込みに失敗しました (path: %s): %w", gsPath, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, objectPath)
	slog.Debug("アセットを保存しました", "path", gsPath, "bytes", len(data))
	return url, nil
}
