package workflow

import (
	"context"
	"iter"
)

// TokenStreamer は、プロンプトに対する応答をトークン列として返す生成クライアントです。
// ストリーミングモードでインクリメンタルパーサへの入力となります。
type TokenStreamer interface {
	Stream(ctx context.Context, prompt string) iter.Seq2[string, error]
}

// TextInvoker は、プロンプトに対する応答を一括で返す生成クライアントです。
// 逐次モードでの構造生成とパネル詳細化に使われます。
type TextInvoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}
