// Package gemini は、Gemini API への2種類のアクセス経路を提供します。
// 単発のテキスト生成 (Invoke) と、トークン単位のストリーミング生成 (Stream) です。
package gemini

import (
	"context"
	"fmt"

	geminiclient "github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// TextClient は単発のテキスト生成呼び出しを行うクライアントです。
// 逐次モードでのパネル詳細化に使われます。
type TextClient struct {
	aiClient geminiclient.GenerativeModel
	model    string
}

// NewTextClient は TextClient を初期化します。
func NewTextClient(ctx context.Context, apiKey, model string, temperature float32) (*TextClient, error) {
	clientConfig := geminiclient.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(temperature),
	}
	aiClient, err := geminiclient.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return &TextClient{aiClient: aiClient, model: model}, nil
}

// WrapTextClient は初期化済みのクライアントをそのまま利用する TextClient を返します。
// 画像生成コアとクライアントを共有する場合に使います。
func WrapTextClient(aiClient geminiclient.GenerativeModel, model string) *TextClient {
	return &TextClient{aiClient: aiClient, model: model}
}

// Invoke はプロンプトを送信し、応答テキスト全体を返します。
func (c *TextClient) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := c.aiClient.GenerateContent(ctx, prompt, c.model)
	if err != nil {
		return "", fmt.Errorf("テキスト生成に失敗しました: %w", err)
	}
	return resp.Text, nil
}
