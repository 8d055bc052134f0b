package workflow

import (
	"time"

	"github.com/shouni/go-story-kit/pkg/retry"
)

// デフォルト値の定義なのだ
const (
	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultTemperature = float32(0.7)

	// DefaultRateInterval は画像生成リクエストの最小間隔なのだ。
	DefaultRateInterval = 2 * time.Second

	// DefaultPanelStagger は逐次モードでパネル処理の開始をずらす間隔なのだ。
	DefaultPanelStagger = 2 * time.Second
)

// Mode は物語生成の実行モードです。
type Mode string

const (
	// ModeStreaming はトークンストリームを逐次解析し、確定したパネルから
	// 順次アセットを生成します。
	ModeStreaming Mode = "streaming"
	// ModeSequential は構造を一括生成した後、パネルごとに本文を詳細化します。
	ModeSequential Mode = "sequential"
)

// Config は物語生成ワークフローを動作させるための基本設定なのだ。
type Config struct {
	// --- AI Model Settings ---
	GeminiAPIKey string
	GeminiModel  string
	ImageModel   string
	Temperature  float32

	// --- Generation Settings ---
	Mode         Mode
	RateInterval time.Duration
	PanelStagger time.Duration

	// パーサがグローバルセクションの到着を待つかどうか
	WaitForGlobals bool

	// Seed はキャラクターデザインの一貫性を保つための画像生成シードなのだ。
	// 0 の場合は物語ごとにランダムな値を採番するのだ。
	Seed int64

	// --- Asset Settings ---
	MusicBaseURL string

	// --- Timeout & Retries ---
	RequestTimeout time.Duration

	// Retry はテキスト生成呼び出しのリトライ設定なのだ。
	// ゼロ値のフィールドは retry.DefaultConfig の値で補われるのだ。
	Retry retry.Config
}

// NewConfig はデフォルト値で初期化された Config を作成し、必要最小限の値をセットして返すのだ。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数なのだ。
func DefaultConfig() Config {
	return Config{
		GeminiModel:    DefaultGeminiModel,
		ImageModel:     DefaultImageModel,
		Temperature:    DefaultTemperature,
		Mode:           ModeStreaming,
		RateInterval:   DefaultRateInterval,
		PanelStagger:   DefaultPanelStagger,
		RequestTimeout: 5 * time.Minute,
	}
}
