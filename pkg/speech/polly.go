// Package speech は、Amazon Polly によるナレーション音声の合成を提供します。
// 音声はユーザーの年齢と性別に応じて選択されます。
package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// synthClient は Polly SDK のうち合成に必要な操作だけを切り出したものです。
type synthClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Config は Polly 合成の設定です。
type Config struct {
	Region  string
	Engine  string
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Region) == "" {
		c.Region = "us-east-1"
	}
	if strings.TrimSpace(c.Engine) == "" {
		c.Engine = "neural"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// PollySynthesizer は Amazon Polly を使う SpeechSynthesizer 実装です。
type PollySynthesizer struct {
	client synthClient
	cfg    Config
}

// NewPollySynthesizer は既定の認証情報チェーンで Polly クライアントを初期化します。
func NewPollySynthesizer(ctx context.Context, cfg Config) (*PollySynthesizer, error) {
	cfg = cfg.withDefaults()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}
	return &PollySynthesizer{client: polly.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// NewPollySynthesizerWithClient はテスト用に任意のクライアントを注入します。
func NewPollySynthesizerWithClient(client synthClient, cfg Config) *PollySynthesizer {
	return &PollySynthesizer{client: client, cfg: cfg.withDefaults()}
}

// Synthesize は本文をMP3音声へ変換します。
func (s *PollySynthesizer) Synthesize(ctx context.Context, text string, age int, gender string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("合成するテキストが空です")
	}

	engine := pollytypes.EngineStandard
	if strings.EqualFold(s.cfg.Engine, "neural") {
		engine = pollytypes.EngineNeural
	}
	voice := VoiceForProfile(age, gender)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	output, err := s.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       engine,
		OutputFormat: pollytypes.OutputFormatMp3,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      voice,
	})
	if err != nil {
		return nil, fmt.Errorf("音声合成に失敗しました: %w", err)
	}
	if output == nil || output.AudioStream == nil {
		return nil, fmt.Errorf("音声合成の応答が空です")
	}
	defer output.AudioStream.Close()

	audio, err := io.ReadAll(output.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("音声ストリームの読み取りに失敗しました: %w", err)
	}

	slog.Debug("音声合成が完了しました", "voice", voice, "bytes", len(audio))
	return audio, nil
}

// VoiceForProfile は年齢と性別から音声を選択します。
// 年齢は young (12歳以下) / teen (13〜19歳) / adult (20歳以上) に区分します。
func VoiceForProfile(age int, gender string) pollytypes.VoiceId {
	category := "adult"
	switch {
	case age <= 12:
		category = "young"
	case age <= 19:
		category = "teen"
	}

	g := strings.ToLower(gender)
	if g != "male" && g != "female" {
		g = "neutral"
	}

	voices := map[string]map[string]pollytypes.VoiceId{
		"young": {
			"male":    pollytypes.VoiceIdJustin,
			"female":  pollytypes.VoiceIdIvy,
			"neutral": pollytypes.VoiceIdIvy,
		},
		"teen": {
			"male":    pollytypes.VoiceIdKevin,
			"female":  pollytypes.VoiceIdSalli,
			"neutral": pollytypes.VoiceIdSalli,
		},
		"adult": {
			"male":    pollytypes.VoiceIdMatthew,
			"female":  pollytypes.VoiceIdJoanna,
			"neutral": pollytypes.VoiceIdJoanna,
		},
	}
	return voices[category][g]
}
