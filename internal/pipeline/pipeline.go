// Package pipeline は、CLIから物語生成を実行するための組み立てと実行を担うのだ。
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"

	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/generator"
	"github.com/shouni/go-story-kit/pkg/progress"
	"github.com/shouni/go-story-kit/pkg/speech"
	"github.com/shouni/go-story-kit/pkg/storage"
	"github.com/shouni/go-story-kit/pkg/workflow"
)

// Execute は、設定とユーザープロフィールから物語生成を最後まで実行するのだ。
func Execute(ctx context.Context, cfg *config.Config, in domain.StoryInputs) (*domain.GeneratedStory, error) {
	manager, err := setupManager(ctx, cfg)
	if err != nil {
		return nil, err
	}

	story, err := manager.GenerateStory(ctx, in)
	if err != nil {
		return story, fmt.Errorf("物語生成パイプラインの実行に失敗したのだ: %w", err)
	}

	slog.Info("物語生成が完了したのだ！", "story_id", story.StoryID, "panels", len(story.Panels))
	return story, nil
}

// LoadInputs は、JSONファイルまたは標準入力（'-'）からユーザープロフィールを読み込むのだ。
func LoadInputs(ctx context.Context, path string) (domain.StoryInputs, error) {
	var in domain.StoryInputs

	if path == "-" {
		if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
			return in, fmt.Errorf("標準入力のデコードに失敗しました: %w", err)
		}
		return in, nil
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return in, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return in, err
	}

	rc, err := reader.Open(ctx, path)
	if err != nil {
		return in, fmt.Errorf("入力ファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(&in); err != nil {
		return in, fmt.Errorf("入力ファイル '%s' のデコードに失敗しました: %w", path, err)
	}
	return in, nil
}

// setupManager は、提供された設定と共有コンポーネントを使用して、ワークフロー
// マネージャーを初期化して返すのだ。
func setupManager(ctx context.Context, cfg *config.Config) (*workflow.Manager, error) {
	httpClient := httpkit.New(cfg.Options.HTTPTimeout)

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}

	store, err := buildStorage(ctx, cfg, gcsFactory)
	if err != nil {
		return nil, err
	}

	synth, err := speech.NewPollySynthesizer(ctx, speech.Config{
		Region: cfg.PollyRegion,
		Engine: cfg.PollyEngine,
	})
	if err != nil {
		return nil, fmt.Errorf("TTSクライアントの初期化に失敗したのだ: %w", err)
	}

	wfCfg := workflow.NewConfig(cfg.GeminiAPIKey)
	wfCfg.GeminiModel = cfg.Options.AIModel
	wfCfg.ImageModel = cfg.Options.ImageModel
	wfCfg.Mode = workflow.Mode(cfg.Options.Mode)
	wfCfg.MusicBaseURL = cfg.MusicBaseURL
	wfCfg.Seed = cfg.Options.Seed

	return workflow.New(ctx, workflow.ManagerArgs{
		Config:     wfCfg,
		HTTPClient: httpClient,
		Reader:     reader,
		Storage:    store,
		Speech:     synth,
		Sink:       progress.LogSink{},
	})
}

// buildStorage は STORAGE_BACKEND の設定に応じた保存先を構築するのだ。
func buildStorage(ctx context.Context, cfg *config.Config, gcsFactory gcsfactory.Factory) (generator.Storage, error) {
	switch cfg.StorageBackend {
	case "minio":
		backend, err := storage.NewMinIOBackend(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("MinIOストレージの初期化に失敗したのだ: %w", err)
		}
		return backend, nil
	case "gcs", "":
		writer, err := gcsFactory.NewOutputWriter()
		if err != nil {
			return nil, err
		}
		return storage.NewGCSBackendWithWriter(writer, cfg.GCSBucket), nil
	default:
		return nil, fmt.Errorf("未知のストレージバックエンドなのだ: %q", cfg.StorageBackend)
	}
}
