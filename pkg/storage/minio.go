package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig は MinIO バックエンドの接続設定です。
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// URLExpiry は署名付きURLの有効期間です。ゼロ値は72時間になります。
	URLExpiry time.Duration
}

// MinIOBackend は S3 互換オブジェクトストレージへアセットを保存するバックエンドです。
// セルフホスト環境向けの GCS 代替として使います。
type MinIOBackend struct {
	client *minio.Client
	cfg    MinIOConfig
}

// NewMinIOBackend は MinIO バックエンドを初期化し、バケットの存在を保証します。
func NewMinIOBackend(ctx context.Context, cfg MinIOConfig) (*MinIOBackend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket は必須です")
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 72 * time.Hour
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIOクライアントの初期化に失敗しました: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("バケットの確認に失敗しました: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("バケットの作成に失敗しました: %w", err)
		}
		slog.Info("バケットを作成しました", "bucket", cfg.Bucket)
	}

	return &MinIOBackend{client: client, cfg: cfg}, nil
}

// Upload はオブジェクトを書き込み、署名付きURLを返します。
func (b *MinIOBackend) Upload(ctx context.Context, objectPath string, data []byte, mimeType string) (string, error) {
	_, err := b.client.PutObject(ctx, b.cfg.Bucket, objectPath,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mimeType})
	if err != nil {
		return "", fmt.Errorf("MinIOへのアップロードに失敗しました (path: %s): %w", objectPath, err)
	}

	presigned, err := b.client.PresignedGetObject(ctx, b.cfg.Bucket, objectPath, b.cfg.URLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("署名付きURLの生成に失敗しました: %w", err)
	}

	slog.Debug("アセットを保存しました", "bucket", b.cfg.Bucket, "path", objectPath, "bytes", len(data))
	return presigned.String(), nil
}
