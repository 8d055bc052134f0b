package gemini

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"
)

// StreamClient はトークン単位のストリーミング生成を行うクライアントです。
// インクリメンタルパーサへの入力として使われます。
type StreamClient struct {
	client *genai.Client
	model  string
}

// NewStreamClient は StreamClient を初期化します。
func NewStreamClient(ctx context.Context, apiKey, model string) (*StreamClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ストリーミングクライアントの初期化に失敗しました: %w", err)
	}
	return &StreamClient{client: client, model: model}, nil
}

// Stream はプロンプトを送信し、応答をテキストトークンの列として返します。
// チャンクの取得エラーはシーケンスの第2要素として呼び出し側へ渡します。
func (c *StreamClient) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		slog.Info("ストリーミング生成を開始します", "model", c.model)

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, genai.Text(prompt), nil) {
			if err != nil {
				yield("", fmt.Errorf("ストリームチャンクの取得に失敗しました: %w", err))
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}
