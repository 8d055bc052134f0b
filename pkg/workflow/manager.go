package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	imagekit "github.com/shouni/gemini-image-kit/pkg/generator"
	geminiclient "github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/generator"
	"github.com/shouni/go-story-kit/pkg/gemini"
	"github.com/shouni/go-story-kit/pkg/progress"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
	defaultTTL             = 5 * time.Minute
)

// ManagerArgs は Manager の構築に必要な依存の集合です。
type ManagerArgs struct {
	Config     Config
	HTTPClient httpkit.ClientInterface
	Reader     remoteio.InputReader
	Storage    generator.Storage
	Speech     generator.SpeechSynthesizer
	Sink       progress.Sink

	// Streamer と Invoker は省略可能で、nil の場合は Config の認証情報から
	// 既定のGeminiクライアントを構築します。
	Streamer TokenStreamer
	Invoker  TextInvoker
}

// Manager は、物語生成ワークフローの各コンポーネントを構築・管理します。
type Manager struct {
	cfg          Config
	httpClient   httpkit.ClientInterface
	aiClient     geminiclient.GenerativeModel
	processor    *generator.PanelProcessor
	orchestrator *Orchestrator
}

// New は、設定と依存を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if args.HTTPClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	if args.Reader == nil {
		return nil, fmt.Errorf("InputReader は必須です")
	}
	if args.Storage == nil {
		return nil, fmt.Errorf("Storage は必須です")
	}
	if args.Speech == nil {
		return nil, fmt.Errorf("SpeechSynthesizer は必須です")
	}

	aiClient, err := initializeAIClient(ctx, args.Config)
	if err != nil {
		return nil, err
	}

	imageGen, err := buildImageGenerator(args.Config, args.HTTPClient, aiClient, args.Reader)
	if err != nil {
		return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
	}

	processor := generator.NewPanelProcessor(
		imageGen,
		args.Speech,
		args.Storage,
		generator.NewMusicLibrary(args.Config.MusicBaseURL),
		rate.NewLimiter(rate.Every(args.Config.RateInterval), 2),
		args.Sink,
	)

	streamer := args.Streamer
	if streamer == nil {
		streamer, err = gemini.NewStreamClient(ctx, args.Config.GeminiAPIKey, args.Config.GeminiModel)
		if err != nil {
			return nil, err
		}
	}
	invoker := args.Invoker
	if invoker == nil {
		invoker = gemini.WrapTextClient(aiClient, args.Config.GeminiModel)
	}

	return &Manager{
		cfg:          args.Config,
		httpClient:   args.HTTPClient,
		aiClient:     aiClient,
		processor:    processor,
		orchestrator: NewOrchestrator(args.Config, streamer, invoker, processor, args.Sink),
	}, nil
}

// GenerateStory は設定されたモードで物語を生成します。
func (m *Manager) GenerateStory(ctx context.Context, in domain.StoryInputs) (*domain.GeneratedStory, error) {
	return m.orchestrator.Generate(ctx, in)
}

// Orchestrator は内部のオーケストレーターを返します。
func (m *Manager) Orchestrator() *Orchestrator {
	return m.orchestrator
}

// initializeAIClient は gemini クライアントを初期化します。
func initializeAIClient(ctx context.Context, cfg Config) (geminiclient.GenerativeModel, error) {
	clientConfig := geminiclient.Config{
		APIKey:      cfg.GeminiAPIKey,
		Temperature: genai.Ptr(cfg.Temperature),
	}
	aiClient, err := geminiclient.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// buildImageGenerator は、画像キャッシュを含む ImageGenerator を初期化します。
func buildImageGenerator(
	cfg Config,
	httpClient httpkit.ClientInterface,
	aiClient geminiclient.GenerativeModel,
	reader remoteio.InputReader,
) (imagekit.ImageGenerator, error) {
	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)
	core, err := imagekit.NewGeminiImageCore(
		aiClient,
		reader,
		httpClient,
		imgCache,
		defaultTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗しました: %w", err)
	}

	return imagekit.NewGeminiGenerator(cfg.ImageModel, core)
}
