package generator

import (
	"context"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
)

// PanelImageGenerator は、1パネル分の画像を生成するためのインターフェースを定義します。
type PanelImageGenerator interface {
	GenerateMangaPanel(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
}

// SpeechSynthesizer は、ナレーション本文をTTS音声データへ変換します。
// 年齢と性別は音声の選択に使われます。
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, age int, gender string) ([]byte, error)
}

// Storage は、生成されたアセットのアップロード先を抽象化します。
// 戻り値はフロントエンドから参照可能な公開URLです。
type Storage interface {
	Upload(ctx context.Context, objectPath string, data []byte, mimeType string) (string, error)
}
