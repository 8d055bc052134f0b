// Package retry は、外部APIの一時的な失敗に対する指数バックオフ付きの
// リトライ実行を提供します。クォータ超過の失敗は通常の失敗より長い待機を
// 要するため、遅延曲線を分けて扱います。
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

// Config はリトライの挙動を定義します。ゼロ値のフィールドは
// DefaultConfig の値で補われます。
type Config struct {
	// MaxRetries は初回実行を除いた再試行回数の上限です。
	MaxRetries int
	// InitialDelay は最初の再試行前の基準待機時間です。
	InitialDelay time.Duration
	// MaxDelay は1回の待機時間の上限です。
	MaxDelay time.Duration
	// Base は待機時間の指数増加の底です。
	Base float64
	// Jitter が真の場合、待機時間に [0.5, 1.0) の係数を掛けて分散させます。
	Jitter bool
	// Retryable は再試行すべきエラーかを判定します。nil の場合は
	// すべてのエラーを再試行します。偽を返したエラーは即座に伝播します。
	Retryable func(error) bool
}

// DefaultConfig は画像生成やTTSの呼び出しに適した既定値です。
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Base:         2.0,
		Jitter:       true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.Base == 0 {
		c.Base = d.Base
	}
	return c
}

// rateLimitMarkers はレート制限系の失敗を示すエラーメッセージの断片です。
var rateLimitMarkers = []string{
	"429",
	"quota",
	"rate limit",
	"rate_limit",
	"resource_exhausted",
	"resource exhausted",
	"too many requests",
}

// IsRateLimitError は err がレート制限系の失敗 (429・クォータ・スロットリング)
// に起因するかを判定します。各SDKのエラー型が統一されていないため、
// メッセージ文字列で分類します。
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsQuotaError は err がクォータの使い切りを明示しているかを判定します。
// 一時的なレート制限と違い回復に時間がかかるため、この場合のみ
// 待機曲線を引き上げます。
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "quota exceeded")
}

// delayFor は attempt 回目 (0始まり) の再試行前の待機時間を計算します。
// クォータ起因の失敗は基準も上限も2倍に引き上げます。
func delayFor(cfg Config, attempt int, quota bool) time.Duration {
	base := cfg.InitialDelay
	maxDelay := cfg.MaxDelay
	if quota {
		base *= 2
		maxDelay *= 2
	}

	delay := time.Duration(float64(base) * pow(cfg.Base, attempt))
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	if cfg.Jitter {
		delay = time.Duration(float64(delay) * (0.5 + rand.Float64()*0.5))
	}
	return delay
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// Do は op を成功するまで、または再試行上限に達するまで実行します。
// cfg.Retryable が偽を返すエラーは再試行せず即座に返します。
// コンテキストのキャンセルは待機中でも即座に反映されます。
func Do[T any](ctx context.Context, cfg Config, name string, op func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := delayFor(cfg, attempt-1, IsQuotaError(lastErr))
			slog.Warn("再試行まで待機します",
				"operation", name,
				"attempt", attempt,
				"delay", delay,
				"quota", IsQuotaError(lastErr))

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, fmt.Errorf("%s のリトライが中断されました: %w", name, ctx.Err())
			case <-timer.C:
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, fmt.Errorf("%s が中断されました: %w", name, ctx.Err())
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, fmt.Errorf("%s が回復不能なエラーで失敗しました: %w", name, err)
		}
	}

	return zero, fmt.Errorf("%s が %d 回の再試行後も失敗しました: %w", name, cfg.MaxRetries, lastErr)
}
