package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout = 30 * time.Second

	DefaultTemperature = float32(0.7)
	DefaultRateLimit   = 2 * time.Second // 画像生成リクエストの最小間隔
	DefaultMusicPath   = "/assets/audio"

	DefaultStorageBackend = "gcs"
)

// Config はアプリケーション全体の環境設定（APIキーやクラウド設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string

	// ストレージ設定。Backend は "gcs" または "minio" なのだ。
	StorageBackend string
	GCSBucket      string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// TTS設定
	PollyRegion string
	PollyEngine string

	MusicBaseURL string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),

		StorageBackend: envutil.GetEnv("STORAGE_BACKEND", DefaultStorageBackend),
		GCSBucket:      envutil.GetEnv("GCS_BUCKET", ""),

		MinIOEndpoint:  envutil.GetEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: envutil.GetEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: envutil.GetEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    envutil.GetEnv("MINIO_BUCKET", ""),
		MinIOUseSSL:    envutil.GetEnv("MINIO_USE_SSL", "") == "true",

		PollyRegion: envutil.GetEnv("POLLY_REGION", "us-east-1"),
		PollyEngine: envutil.GetEnv("POLLY_ENGINE", "neural"),

		MusicBaseURL: envutil.GetEnv("MUSIC_BASE_URL", DefaultMusicPath),
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ユーザープロフィール関連
	InputFile string // --input: StoryInputs を記述したJSONファイル

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル
	Mode       string // --mode: streaming または sequential

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
	Seed        int64         // --seed: 0 の場合はランダム
}
