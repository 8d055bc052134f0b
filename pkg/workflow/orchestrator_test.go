package workflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"golang.org/x/time/rate"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/generator"
	"github.com/shouni/go-story-kit/pkg/progress"
	"github.com/shouni/go-story-kit/pkg/retry"
)

func testInputs() domain.StoryInputs {
	return domain.StoryInputs{
		Mood:       domain.MoodStressed,
		Vibe:       domain.VibeAdventure,
		Archetype:  domain.ArchetypeHero,
		Dream:      "become a professional illustrator",
		MangaTitle: "Brush of Dawn",
		Nickname:   "Maya",
		Hobby:      "sketching",
		Age:        17,
		Gender:     "female",
	}
}

const testGlobalSections = `CHARACTER_SHEET: {"name": "Maya", "age": "17", "appearance": "short dark hair", "personality": "quietly determined", "goals": "become a professional illustrator", "fears": "never being good enough", "strengths": "persistence"}
PROP_SHEET: {"key_items": ["sketchbook"], "environment": "small city apartment", "lighting": "soft morning light", "mood_elements": ["scattered drawings"]}
STYLE_GUIDE: {"art_style": "soft watercolor manga", "color_palette": "muted blues", "panel_layout": "cinematic wide frames", "visual_elements": ["light rays"]}
`

func wellFormedStory() string {
	var sb strings.Builder
	sb.WriteString(testGlobalSections)
	for n := 1; n <= domain.MaxPanels; n++ {
		fmt.Fprintf(&sb, "PANEL_%d: dialogue_text: \"Panel %d shows Maya working toward her dream with quiet determination and hope.\"\n", n, n)
	}
	return sb.String()
}

// fakeStreamer は固定テキストを行単位のトークン列として返します。
type fakeStreamer struct {
	text string
	err  error
}

func (s *fakeStreamer) Stream(_ context.Context, _ string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, line := range strings.SplitAfter(s.text, "\n") {
			if line == "" {
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

// fakeInvoker は呼び出し順に応じた応答を返します。最初の呼び出しが
// 物語構造、以降がパネル詳細化に対応します。
type fakeInvoker struct {
	mu        sync.Mutex
	structure string
	narration string
	err       error
	calls     int
}

func (f *fakeInvoker) Invoke(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.calls == 1 {
		return f.structure, nil
	}
	return f.narration, nil
}

type stubImageGen struct{}

func (stubImageGen) GenerateMangaPanel(_ context.Context, _ imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
	return &imagedom.ImageResponse{Data: []byte("png-bytes"), MimeType: "image/png"}, nil
}

type stubSpeech struct{}

func (stubSpeech) Synthesize(_ context.Context, _ string, _ int, _ string) ([]byte, error) {
	return []byte("mp3-bytes"), nil
}

type stubStorage struct{}

func (stubStorage) Upload(_ context.Context, objectPath string, _ []byte, _ string) (string, error) {
	return "https://cdn.example.com/" + objectPath, nil
}

func fastRetry() retry.Config {
	return retry.Config{
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	}
}

func newTestProcessor(sink progress.Sink) *generator.PanelProcessor {
	p := generator.NewPanelProcessor(
		stubImageGen{},
		stubSpeech{},
		stubStorage{},
		generator.NewMusicLibrary("/assets/audio"),
		rate.NewLimiter(rate.Inf, 1),
		sink,
	)
	p.RetryConfig = fastRetry()
	return p
}

func newTestConfig(mode Mode) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	cfg.PanelStagger = time.Millisecond
	cfg.Retry = fastRetry()
	return cfg
}

func collectEvents(sink *progress.ChannelSink) []progress.Event {
	sink.Close()
	var events []progress.Event
	for ev := range sink.Events() {
		events = append(events, ev)
	}
	return events
}

func hasEvent(events []progress.Event, typ progress.EventType) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func assertCompleteStory(t *testing.T, story *domain.GeneratedStory) {
	t.Helper()
	if story.Status != domain.StoryStatusCompleted {
		t.Fatalf("ステータスが不正です: got %q", story.Status)
	}
	if len(story.Panels) != domain.MaxPanels {
		t.Fatalf("パネル数が一致しません: got %d, want %d", len(story.Panels), domain.MaxPanels)
	}
	for i, panel := range story.Panels {
		if panel.PanelNumber != i+1 {
			t.Errorf("パネル番号が昇順ではありません: index %d で %d", i, panel.PanelNumber)
		}
		if panel.ImageURL == "" {
			t.Errorf("画像URLが空です: panel %d", panel.PanelNumber)
		}
		if panel.TTSURL == "" {
			t.Errorf("TTS URLが空です: panel %d", panel.PanelNumber)
		}
		if panel.MusicURL == "" {
			t.Errorf("音楽URLが空です: panel %d", panel.PanelNumber)
		}
		if panel.DialogueText == "" {
			t.Errorf("本文が空です: panel %d", panel.PanelNumber)
		}
	}
}

func TestGenerateStreaming_EndToEnd(t *testing.T) {
	sink := progress.NewChannelSink(128)
	o := NewOrchestrator(
		newTestConfig(ModeStreaming),
		&fakeStreamer{text: wellFormedStory()},
		nil,
		newTestProcessor(sink),
		sink,
	)

	story, err := o.Generate(context.Background(), testInputs())
	if err != nil {
		t.Fatalf("生成に失敗しました: %v", err)
	}
	assertCompleteStory(t, story)

	for _, panel := range story.Panels {
		if panel.Fallback {
			t.Errorf("整形済み入力でフォールバックが発生しました: panel %d", panel.PanelNumber)
		}
	}
	if !domain.ValidateStoryConsistency(story.Panels) {
		t.Error("一貫性検証に失敗しました")
	}

	events := collectEvents(sink)
	for _, typ := range []progress.EventType{
		progress.EventStoryGenerationStart,
		progress.EventSlideshowStart,
		progress.EventPanelReady,
		progress.EventStoryGenerationComplete,
	} {
		if !hasEvent(events, typ) {
			t.Errorf("イベント %q が発火していません", typ)
		}
	}
}

func TestGenerateStreaming_TruncatedStreamStillCompletes(t *testing.T) {
	// パネル3以降が届く前にストリームがエラーで途切れるケース。
	// 回復パスが残りをテンプレートで補い、必ず6パネルで完了します。
	truncated := testGlobalSections +
		"PANEL_1: dialogue_text: \"Maya opens her sketchbook as the morning light fills her small apartment room.\"\n" +
		"PANEL_2: dialogue_text: \"The blank page stares back at her, and doubt starts creeping into her mind.\"\n"

	sink := progress.NewChannelSink(128)
	o := NewOrchestrator(
		newTestConfig(ModeStreaming),
		&fakeStreamer{text: truncated, err: errors.New("stream reset")},
		nil,
		newTestProcessor(sink),
		sink,
	)

	story, err := o.Generate(context.Background(), testInputs())
	if err != nil {
		t.Fatalf("生成に失敗しました: %v", err)
	}
	assertCompleteStory(t, story)

	for _, panel := range story.Panels {
		wantFallback := panel.PanelNumber >= 3
		if panel.Fallback != wantFallback {
			t.Errorf("フォールバック判定が不正です: panel %d got %v, want %v",
				panel.PanelNumber, panel.Fallback, wantFallback)
		}
	}
}

func TestGenerateStreaming_InvalidInput(t *testing.T) {
	o := NewOrchestrator(newTestConfig(ModeStreaming), &fakeStreamer{}, nil, newTestProcessor(nil), nil)

	in := testInputs()
	in.Mood = "ecstatic"
	if _, err := o.Generate(context.Background(), in); err == nil {
		t.Fatal("不正な入力がエラーになりませんでした")
	}
}

func TestGenerateSequential_EndToEnd(t *testing.T) {
	invoker := &fakeInvoker{
		structure: wellFormedStory(),
		narration: "Maya takes a deep breath and puts her pencil to the paper with renewed hope.",
	}
	sink := progress.NewChannelSink(128)
	o := NewOrchestrator(newTestConfig(ModeSequential), nil, invoker, newTestProcessor(sink), sink)

	story, err := o.Generate(context.Background(), testInputs())
	if err != nil {
		t.Fatalf("生成に失敗しました: %v", err)
	}
	assertCompleteStory(t, story)

	// 構造生成1回 + パネル詳細化6回
	if invoker.calls != 1+domain.MaxPanels {
		t.Errorf("呼び出し回数が不正です: got %d, want %d", invoker.calls, 1+domain.MaxPanels)
	}
	for _, panel := range story.Panels {
		if panel.DialogueText != invoker.narration {
			t.Errorf("詳細化された本文が反映されていません: panel %d got %q", panel.PanelNumber, panel.DialogueText)
		}
		if panel.Fallback {
			t.Errorf("正常応答でフォールバックが発生しました: panel %d", panel.PanelNumber)
		}
	}

	events := collectEvents(sink)
	if !hasEvent(events, progress.EventSlideshowStart) {
		t.Error("スライドショー開始イベントが発火していません")
	}
}

func TestGenerateSequential_InvokerFailureFallsBackToTemplates(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("backend unavailable")}
	o := NewOrchestrator(newTestConfig(ModeSequential), nil, invoker, newTestProcessor(nil), nil)

	in := testInputs()
	story, err := o.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("生成に失敗しました: %v", err)
	}
	assertCompleteStory(t, story)

	for _, panel := range story.Panels {
		if !strings.Contains(panel.DialogueText, in.Nickname) {
			t.Errorf("テンプレート本文にニックネームが含まれていません: panel %d got %q",
				panel.PanelNumber, panel.DialogueText)
		}
		if !panel.Fallback {
			t.Errorf("テンプレート本文のパネルが縮退扱いになっていません: panel %d", panel.PanelNumber)
		}
		if !panel.Sheets.Complete() {
			t.Errorf("プレースホルダーシートが設定されていません: panel %d", panel.PanelNumber)
		}
	}
}

func TestGenerateSequential_ShortNarrationFallsBack(t *testing.T) {
	invoker := &fakeInvoker{
		structure: wellFormedStory(),
		narration: "Too short.",
	}
	o := NewOrchestrator(newTestConfig(ModeSequential), nil, invoker, newTestProcessor(nil), nil)

	story, err := o.Generate(context.Background(), testInputs())
	if err != nil {
		t.Fatalf("生成に失敗しました: %v", err)
	}
	assertCompleteStory(t, story)

	for _, panel := range story.Panels {
		if !panel.Fallback {
			t.Errorf("短い詳細化応答がフォールバックになっていません: panel %d", panel.PanelNumber)
		}
	}
}

func TestGenerate_UnknownMode(t *testing.T) {
	cfg := newTestConfig("batch")
	o := NewOrchestrator(cfg, nil, nil, newTestProcessor(nil), nil)

	if _, err := o.Generate(context.Background(), testInputs()); err == nil {
		t.Fatal("未知のモードがエラーになりませんでした")
	}
}

func TestGenerateStreaming_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(
		newTestConfig(ModeStreaming),
		&fakeStreamer{text: wellFormedStory()},
		nil,
		newTestProcessor(nil),
		nil,
	)

	story, err := o.GenerateStreaming(ctx, testInputs())
	if err == nil {
		t.Fatal("キャンセル済みコンテキストがエラーになりませんでした")
	}
	if story != nil && story.Status != domain.StoryStatusError {
		t.Errorf("ステータスが不正です: got %q, want %q", story.Status, domain.StoryStatusError)
	}
}

func TestFinishStory_InconsistentSheetsAreUnified(t *testing.T) {
	in := testInputs()
	shared := domain.PlaceholderSheets(&in)
	stranger := in
	stranger.Nickname = "Luna"
	stray := domain.PlaceholderSheets(&stranger)

	panels := make(domain.Panels, 0, domain.MaxPanels)
	for n := 1; n <= domain.MaxPanels; n++ {
		sheets := shared
		if n >= 5 {
			sheets = stray
		}
		panels = append(panels, domain.PanelData{
			PanelNumber:   n,
			Sheets:        sheets,
			DialogueText:  fmt.Sprintf("Panel %d keeps the same heroine on the page.", n),
			EmotionalTone: domain.ToneForPanel(n),
		})
	}

	sink := progress.NewChannelSink(16)
	o := NewOrchestrator(newTestConfig(ModeStreaming), nil, nil, nil, sink)

	story, err := o.finishStory(context.Background(), "story-unify", panels, slog.Default())
	if err != nil {
		t.Fatalf("正規化可能な物語でエラーになりました: %v", err)
	}
	if story.Status != domain.StoryStatusCompleted {
		t.Fatalf("ステータスが不正です: got %q", story.Status)
	}
	if names := story.Panels.CharacterNames(); len(names) != 1 || names[0] != in.Nickname {
		t.Errorf("シートが正規化されていません: names=%v", names)
	}
	if !domain.ValidateStoryConsistency(story.Panels) {
		t.Error("正規化後も一貫性検証に失敗します")
	}
}

func TestFinishStory_WrongPanelCountIsRejected(t *testing.T) {
	in := testInputs()
	panels := domain.Panels{{
		PanelNumber:   1,
		Sheets:        domain.PlaceholderSheets(&in),
		DialogueText:  "Only one panel ever arrived in this story.",
		EmotionalTone: domain.ToneForPanel(1),
	}}

	sink := progress.NewChannelSink(16)
	o := NewOrchestrator(newTestConfig(ModeStreaming), nil, nil, nil, sink)

	story, err := o.finishStory(context.Background(), "story-short", panels, slog.Default())
	if err == nil {
		t.Fatal("不完全なマニフェストがエラーになりませんでした")
	}
	if story.Status != domain.StoryStatusError {
		t.Errorf("ステータスが不正です: got %q", story.Status)
	}
	if !hasEvent(collectEvents(sink), progress.EventStoryGenerationError) {
		t.Error("エラーイベントが発行されていません")
	}
}
