// Package progress は、物語生成パイプラインの進捗イベントを定義し、
// 配信先 (Sink) を抽象化します。イベントはフロントエンドへのSSE配信や
// 構造化ログへの記録に使われます。
package progress

import (
	"context"
	"log/slog"
	"time"
)

// EventType は進捗イベントの種別です。
type EventType string

const (
	EventStoryGenerationStart    EventType = "story_generation_start"
	EventStoryGenerationComplete EventType = "story_generation_complete"
	EventStoryGenerationError    EventType = "story_generation_error"

	EventPanelReady EventType = "panel_ready"

	EventPanelProcessingStart    EventType = "panel_processing_start"
	EventPanelProcessingComplete EventType = "panel_processing_complete"
	EventPanelProcessingError    EventType = "panel_processing_error"
	EventPanelUpdate             EventType = "panel_update"

	EventImageGenerationStart    EventType = "image_generation_start"
	EventImageGenerationComplete EventType = "image_generation_complete"
	EventImageGenerationError    EventType = "image_generation_error"

	EventTTSGenerationStart    EventType = "tts_generation_start"
	EventTTSGenerationComplete EventType = "tts_generation_complete"
	EventTTSGenerationError    EventType = "tts_generation_error"

	EventSlideshowStart EventType = "slideshow_start"
)

// Event は1件の進捗通知です。Data にはイベント種別ごとの付随情報が入ります。
type Event struct {
	Type      EventType      `json:"type"`
	StoryID   string         `json:"story_id"`
	Panel     int            `json:"panel_number,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink は進捗イベントの配信先です。Emit はブロックしてはならず、
// 配信失敗をパイプラインへ伝播させてはなりません。
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// NewEvent は現在時刻付きのイベントを生成します。
func NewEvent(t EventType, storyID string, panel int) Event {
	return Event{
		Type:      t,
		StoryID:   storyID,
		Panel:     panel,
		Timestamp: time.Now().UTC(),
	}
}

// WithData はイベントに付随情報を1件追加して返します。
func (ev Event) WithData(key string, value any) Event {
	if ev.Data == nil {
		ev.Data = make(map[string]any)
	}
	ev.Data[key] = value
	return ev
}

// LogSink は進捗イベントを slog に記録する Sink です。
// CLIでの実行など、配信相手がいない場合の既定の Sink として使います。
type LogSink struct{}

func (LogSink) Emit(_ context.Context, ev Event) {
	slog.Info("進捗イベント",
		"type", ev.Type,
		"story_id", ev.StoryID,
		"panel", ev.Panel)
}

// ChannelSink は進捗イベントをチャネルへ転送する Sink です。
// 受信側が追いつかない場合はイベントを破棄し、生成パイプラインを
// ブロックさせません。
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink は指定バッファ長のチャネルを持つ Sink を生成します。
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Events は受信用チャネルを返します。
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Close は配信終了をチャネルのクローズで通知します。
func (s *ChannelSink) Close() {
	close(s.ch)
}

func (s *ChannelSink) Emit(_ context.Context, ev Event) {
	select {
	case s.ch <- ev:
	default:
		slog.Warn("進捗イベントを破棄しました", "type", ev.Type, "panel", ev.Panel)
	}
}

// MultiSink は複数の Sink へ同一イベントを順に配信します。
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, ev Event) {
	for _, s := range m {
		s.Emit(ctx, ev)
	}
}
