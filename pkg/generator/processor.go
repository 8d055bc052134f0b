// Package generator は、確定したパネルに対する画像・TTS・音楽アセットの
// 生成と保存を担います。1パネルの処理は画像とTTSの2ブランチを並行実行し、
// 片方の失敗がもう片方の成果を無効にすることはありません。
package generator

import (
	"context"
	"log/slog"
	"time"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/go-story-kit/pkg/assetpath"
	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/progress"
	"github.com/shouni/go-story-kit/pkg/prompts"
	"github.com/shouni/go-story-kit/pkg/retry"
)

// PanelAspectRatio はパネル画像のアスペクト比です。正方形のパネルを前提とします。
const PanelAspectRatio = "1:1"

// PanelProcessor は1パネル分のアセット生成を統括します。
type PanelProcessor struct {
	Images  PanelImageGenerator
	Speech  SpeechSynthesizer
	Storage Storage
	Music   *MusicLibrary

	RateLimiter *rate.Limiter
	Sink        progress.Sink
	RetryConfig retry.Config
}

// NewPanelProcessor は PanelProcessor を初期化済みの状態で生成します。
func NewPanelProcessor(
	images PanelImageGenerator,
	speech SpeechSynthesizer,
	storage Storage,
	music *MusicLibrary,
	limiter *rate.Limiter,
	sink progress.Sink,
) *PanelProcessor {
	if sink == nil {
		sink = progress.LogSink{}
	}
	return &PanelProcessor{
		Images:      images,
		Speech:      speech,
		Storage:     storage,
		Music:       music,
		RateLimiter: limiter,
		Sink:        sink,
		RetryConfig: retry.DefaultConfig(),
	}
}

// ProcessPanel は1パネル分の全アセットを生成し、URLを埋めたコピーを返します。
// 画像とTTSは並行して生成され、各ブランチの失敗はそのブランチのURLを
// 空にするだけで処理全体を失敗させません。
func (p *PanelProcessor) ProcessPanel(ctx context.Context, storyID string, panel domain.PanelData, in domain.StoryInputs, seed *int64) domain.PanelData {
	logger := slog.With("story_id", storyID, "panel", panel.PanelNumber)
	logger.Info("パネル処理を開始します")

	p.Sink.Emit(ctx, progress.NewEvent(progress.EventPanelProcessingStart, storyID, panel.PanelNumber))

	processed := panel
	processed.MusicURL = p.Music.Publish(ctx, p.Storage, storyID, panel.PanelNumber, panel.EmotionalTone)

	var imageURL, ttsURL string
	var imageFallback bool

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		imageURL, imageFallback = p.generatePanelImage(egCtx, storyID, panel, seed)
		return nil
	})
	eg.Go(func() error {
		ttsURL = p.generatePanelTTS(egCtx, storyID, panel, in)
		return nil
	})
	// 各ブランチはエラーを自分で処理するため、ここでエラーは返りません。
	_ = eg.Wait()

	processed.ImageURL = imageURL
	processed.TTSURL = ttsURL
	if imageFallback {
		processed.Fallback = true
	}

	// 両ブランチとも成果がない場合はパネル単位の失敗として通知します。
	// パネル自体は空のURLのまま返し、物語全体は継続します。
	if imageURL == "" && ttsURL == "" {
		logger.Error("パネル処理が全ブランチで失敗しました")
		p.Sink.Emit(ctx, progress.NewEvent(progress.EventPanelProcessingError, storyID, panel.PanelNumber).
			WithData("music_url", processed.MusicURL))
		return processed
	}

	p.Sink.Emit(ctx, progress.NewEvent(progress.EventPanelProcessingComplete, storyID, panel.PanelNumber).
		WithData("image_url", imageURL).
		WithData("tts_url", ttsURL).
		WithData("music_url", processed.MusicURL))
	p.Sink.Emit(ctx, progress.NewEvent(progress.EventPanelUpdate, storyID, panel.PanelNumber))

	logger.Info("パネル処理が完了しました",
		"image", imageURL != "",
		"tts", ttsURL != "",
		"fallback", imageFallback)
	return processed
}

// generatePanelImage はパネル画像を生成してアップロードし、公開URLを返します。
// クォータ超過時は簡略プロンプトでの再試行、それも失敗すればローカル生成の
// プレースホルダー画像へ段階的に縮退します。戻り値の bool は縮退の有無です。
func (p *PanelProcessor) generatePanelImage(ctx context.Context, storyID string, panel domain.PanelData, seed *int64) (string, bool) {
	logger := slog.With("story_id", storyID, "panel", panel.PanelNumber)
	p.Sink.Emit(ctx, progress.NewEvent(progress.EventImageGenerationStart, storyID, panel.PanelNumber))

	data, mimeType, fallback, err := p.renderPanelImage(ctx, panel, seed, logger)
	if err != nil {
		logger.Error("画像生成に失敗しました", "error", err)
		p.Sink.Emit(ctx, progress.NewEvent(progress.EventImageGenerationError, storyID, panel.PanelNumber).
			WithData("error", err.Error()))
		return "", false
	}

	url, err := p.Storage.Upload(ctx, assetpath.PanelImage(storyID, panel.PanelNumber), data, mimeType)
	if err != nil {
		logger.Error("画像のアップロードに失敗しました", "error", err)
		p.Sink.Emit(ctx, progress.NewEvent(progress.EventImageGenerationError, storyID, panel.PanelNumber).
			WithData("error", err.Error()))
		return "", false
	}

	p.Sink.Emit(ctx, progress.NewEvent(progress.EventImageGenerationComplete, storyID, panel.PanelNumber).
		WithData("image_url", url).
		WithData("is_fallback", fallback))
	return url, fallback
}

// renderPanelImage は画像データ本体の生成を担い、段階的な縮退を実装します。
func (p *PanelProcessor) renderPanelImage(ctx context.Context, panel domain.PanelData, seed *int64, logger *slog.Logger) (data []byte, mimeType string, fallback bool, err error) {
	generate := func(prompt string) ([]byte, string, error) {
		resp, genErr := retry.Do(ctx, p.RetryConfig, "image-generation", func(ctx context.Context) (*imagedom.ImageResponse, error) {
			if p.RateLimiter != nil {
				if waitErr := p.RateLimiter.Wait(ctx); waitErr != nil {
					return nil, waitErr
				}
			}
			return p.Images.GenerateMangaPanel(ctx, imagedom.ImageGenerationRequest{
				Prompt:         prompt,
				NegativePrompt: prompts.ImageNegativePrompt,
				Seed:           seed,
				AspectRatio:    PanelAspectRatio,
			})
		})
		if genErr != nil {
			return nil, "", genErr
		}
		mt := resp.MimeType
		if mt == "" {
			mt = assetpath.MimePNG
		}
		return resp.Data, mt, nil
	}

	start := time.Now()
	data, mimeType, err = generate(prompts.BuildStructuredImagePrompt(panel))
	if err == nil {
		logger.Info("画像生成が完了しました", "duration", time.Since(start).Round(time.Millisecond))
		return data, mimeType, false, nil
	}
	if !retry.IsRateLimitError(err) {
		return nil, "", false, err
	}

	// レート制限系の失敗。軽いプロンプトなら通る場合があるため一段階縮退します。
	logger.Warn("レート制限のため簡略プロンプトで再試行します", "error", err)
	data, mimeType, err = generate(prompts.BuildSimplifiedImagePrompt(panel))
	if err == nil {
		return data, mimeType, true, nil
	}

	logger.Warn("簡略プロンプトも失敗したためプレースホルダー画像を生成します", "error", err)
	data, err = PlaceholderPNG(ctx, panel.PanelNumber, panel.EmotionalTone)
	if err != nil {
		return nil, "", false, err
	}
	return data, assetpath.MimePNG, true, nil
}

// generatePanelTTS はナレーション音声を合成してアップロードし、公開URLを返します。
func (p *PanelProcessor) generatePanelTTS(ctx context.Context, storyID string, panel domain.PanelData, in domain.StoryInputs) string {
	logger := slog.With("story_id", storyID, "panel", panel.PanelNumber)
	p.Sink.Emit(ctx, progress.NewEvent(progress.EventTTSGenerationStart, storyID, panel.PanelNumber))

	audio, err := retry.Do(ctx, p.RetryConfig, "tts-generation", func(ctx context.Context) ([]byte, error) {
		return p.Speech.Synthesize(ctx, panel.DialogueText, in.Age, in.Gender)
	})
	if err != nil {
		logger.Error("TTS合成に失敗しました", "error", err)
		p.Sink.Emit(ctx, progress.NewEvent(progress.EventTTSGenerationError, storyID, panel.PanelNumber).
			WithData("error", err.Error()))
		return ""
	}

	url, err := p.Storage.Upload(ctx, assetpath.PanelTTS(storyID, panel.PanelNumber), audio, assetpath.MimeMP3)
	if err != nil {
		logger.Error("TTS音声のアップロードに失敗しました", "error", err)
		p.Sink.Emit(ctx, progress.NewEvent(progress.EventTTSGenerationError, storyID, panel.PanelNumber).
			WithData("error", err.Error()))
		return ""
	}

	p.Sink.Emit(ctx, progress.NewEvent(progress.EventTTSGenerationComplete, storyID, panel.PanelNumber).
		WithData("tts_url", url))
	return url
}
