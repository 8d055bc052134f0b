// Package workflow は、物語生成パイプライン全体の組み立てと実行を担います。
// ストリーミングと逐次の2モードがあり、どちらも最終的に6パネルの
// 完成した物語を返します。
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-story-kit/pkg/domain"
	"github.com/shouni/go-story-kit/pkg/generator"
	"github.com/shouni/go-story-kit/pkg/parser"
	"github.com/shouni/go-story-kit/pkg/progress"
	"github.com/shouni/go-story-kit/pkg/prompts"
	"github.com/shouni/go-story-kit/pkg/retry"
)

// Orchestrator は1つの物語の生成を最初から最後まで統括します。
type Orchestrator struct {
	cfg       Config
	streamer  TokenStreamer
	invoker   TextInvoker
	processor *generator.PanelProcessor
	sink      progress.Sink
}

// NewOrchestrator は Orchestrator を初期化します。
func NewOrchestrator(cfg Config, streamer TokenStreamer, invoker TextInvoker, processor *generator.PanelProcessor, sink progress.Sink) *Orchestrator {
	if sink == nil {
		sink = progress.LogSink{}
	}
	return &Orchestrator{
		cfg:       cfg,
		streamer:  streamer,
		invoker:   invoker,
		processor: processor,
		sink:      sink,
	}
}

// Generate は設定されたモードで物語を生成します。
func (o *Orchestrator) Generate(ctx context.Context, in domain.StoryInputs) (*domain.GeneratedStory, error) {
	switch o.cfg.Mode {
	case ModeSequential:
		return o.GenerateSequential(ctx, in)
	case ModeStreaming, "":
		return o.GenerateStreaming(ctx, in)
	default:
		return nil, fmt.Errorf("未知の実行モードです: %q", o.cfg.Mode)
	}
}

// storySeed はキャラクターデザインの一貫性を保つための物語単位のシード値を返します。
// 設定で固定されていない場合は物語ごとにランダムな値を採番します。
func (o *Orchestrator) storySeed() int64 {
	if o.cfg.Seed != 0 {
		return o.cfg.Seed
	}
	return rand.Int64N(1000) + 1
}

// GenerateStreaming はトークンストリームを逐次解析し、パネルが確定するたびに
// アセット生成を開始します。回復パスにより必ず6パネルで完了します。
func (o *Orchestrator) GenerateStreaming(ctx context.Context, in domain.StoryInputs) (*domain.GeneratedStory, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("入力の検証に失敗しました: %w", err)
	}

	storyID := domain.NewStoryID()
	seed := o.storySeed()
	logger := slog.With("story_id", storyID, "mode", ModeStreaming)
	logger.Info("物語生成を開始します", "seed", seed, "title", in.MangaTitle)

	o.sink.Emit(ctx, progress.NewEvent(progress.EventStoryGenerationStart, storyID, 0).
		WithData("manga_title", in.MangaTitle))

	p := parser.New(in, parser.Options{WaitForGlobals: o.cfg.WaitForGlobals})
	stream := o.streamer.Stream(ctx, prompts.BuildStoryPrompt(in))

	panels := make(domain.Panels, 0, domain.MaxPanels)
	for panel := range p.ProcessStream(ctx, stream) {
		o.sink.Emit(ctx, progress.NewEvent(progress.EventPanelReady, storyID, panel.PanelNumber).
			WithData("fallback", panel.Fallback))

		processed := o.processor.ProcessPanel(ctx, storyID, panel, in, &seed)
		panels = append(panels, processed)

		if len(panels) == 1 {
			o.sink.Emit(ctx, progress.NewEvent(progress.EventSlideshowStart, storyID, 1))
		}
	}

	return o.finishStory(ctx, storyID, panels, logger)
}

// GenerateSequential は物語構造を一括生成した後、パネルごとに本文を詳細化して
// アセットを生成します。パネル1を最優先で完了させ、残りは一定間隔で
// 開始をずらした並行処理になります。
func (o *Orchestrator) GenerateSequential(ctx context.Context, in domain.StoryInputs) (*domain.GeneratedStory, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("入力の検証に失敗しました: %w", err)
	}

	storyID := domain.NewStoryID()
	seed := o.storySeed()
	logger := slog.With("story_id", storyID, "mode", ModeSequential)
	logger.Info("物語生成を開始します", "seed", seed, "title", in.MangaTitle)

	o.sink.Emit(ctx, progress.NewEvent(progress.EventStoryGenerationStart, storyID, 0).
		WithData("manga_title", in.MangaTitle))

	basics, err := o.buildStoryStructure(ctx, in)
	if err != nil {
		o.sink.Emit(ctx, progress.NewEvent(progress.EventStoryGenerationError, storyID, 0).
			WithData("error", err.Error()))
		return nil, err
	}

	// パネル1を先に完了させ、スライドショーを即座に開始できるようにします。
	first := o.elaboratePanel(ctx, basics[0], in)
	processedFirst := o.processor.ProcessPanel(ctx, storyID, first, in, &seed)
	o.sink.Emit(ctx, progress.NewEvent(progress.EventSlideshowStart, storyID, 1))

	results := make(domain.Panels, domain.MaxPanels)
	results[0] = processedFirst

	eg, egCtx := errgroup.WithContext(ctx)
	for idx := 1; idx < domain.MaxPanels; idx++ {
		idx := idx
		basic := basics[idx]
		delay := time.Duration(idx-1) * o.cfg.PanelStagger

		eg.Go(func() error {
			if delay > 0 {
				logger.Info("パネル処理の開始を待機します", "panel", basic.PanelNumber, "delay", delay)
				timer := time.NewTimer(delay)
				select {
				case <-egCtx.Done():
					timer.Stop()
					results[idx] = basic
					return nil
				case <-timer.C:
				}
			}

			detailed := o.elaboratePanel(egCtx, basic, in)
			results[idx] = o.processor.ProcessPanel(egCtx, storyID, detailed, in, &seed)

			o.sink.Emit(egCtx, progress.NewEvent(progress.EventPanelReady, storyID, basic.PanelNumber))
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].PanelNumber < results[j].PanelNumber
	})
	return o.finishStory(ctx, storyID, results, logger)
}

// buildStoryStructure は1回の生成呼び出しで物語全体の骨格を作ります。
// 応答の抽出に失敗したパネルはテンプレート本文で埋めるため、
// 常に6パネル分の骨格が返ります。
func (o *Orchestrator) buildStoryStructure(ctx context.Context, in domain.StoryInputs) (domain.Panels, error) {
	response, err := retry.Do(ctx, o.cfg.Retry, "story-structure", func(ctx context.Context) (string, error) {
		return o.invoker.Invoke(ctx, prompts.BuildStoryPrompt(in))
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("物語構造の生成が中断されました: %w", ctx.Err())
		}
		slog.Warn("物語構造の生成に失敗したためテンプレートで構成します", "error", err)
		response = ""
	}

	sheets := parser.ExtractSheets(response)
	if !sheets.Complete() {
		slog.Warn("グローバルセクションが不完全なためプレースホルダーで補います")
		sheets = domain.PlaceholderSheets(&in)
	}

	found := parser.ExtractAllPanels(response)
	dialogues := parser.EnhanceDialogues(found, in)

	panels := make(domain.Panels, 0, domain.MaxPanels)
	for n := 1; n <= domain.MaxPanels; n++ {
		panels = append(panels, domain.PanelData{
			PanelNumber:   n,
			Sheets:        sheets,
			DialogueText:  dialogues[n],
			EmotionalTone: domain.ToneForPanel(n),
			// 抽出できずテンプレートで埋めたパネルは縮退扱いにします。
			Fallback: dialogues[n] != found[n],
		})
	}
	return panels, nil
}

// elaboratePanel はパネルの本文をTTS向けのナレーションへ詳細化します。
// 詳細化に失敗した場合は骨格の本文、それも不十分ならテンプレート本文に
// 段階的に縮退します。
func (o *Orchestrator) elaboratePanel(ctx context.Context, basic domain.PanelData, in domain.StoryInputs) domain.PanelData {
	response, err := retry.Do(ctx, o.cfg.Retry, "panel-narration", func(ctx context.Context) (string, error) {
		return o.invoker.Invoke(ctx, prompts.BuildPanelNarrationPrompt(basic, in))
	})
	if err != nil {
		slog.Warn("パネル詳細化に失敗しました", "panel", basic.PanelNumber, "error", err)
		return basic
	}

	clean, ok := prompts.CleanNarration(response, basic.PanelNumber)
	if !ok {
		slog.Warn("詳細化の応答が短すぎるためテンプレート本文を使います", "panel", basic.PanelNumber)
		basic.DialogueText = parser.FallbackDialogue(basic.PanelNumber, in)
		basic.Fallback = true
		return basic
	}

	basic.DialogueText = clean
	return basic
}

// unifySheets は全パネルのシートを先頭の完全なシートへ揃えます。
// キャラクター名が揺れた物語をマニフェスト確定前に矯正するための最終手段です。
func unifySheets(panels domain.Panels) {
	var canonical domain.StorySheets
	for _, p := range panels {
		if p.Sheets.Complete() {
			canonical = p.Sheets
			break
		}
	}
	if canonical.Character == nil {
		return
	}
	for i := range panels {
		panels[i].Sheets = canonical
	}
}

// finishStory は完成したパネル群を検証し、最終的な物語として確定します。
// 一貫性検証に失敗したマニフェストは完了として返しません。
func (o *Orchestrator) finishStory(ctx context.Context, storyID string, panels domain.Panels, logger *slog.Logger) (*domain.GeneratedStory, error) {
	story := &domain.GeneratedStory{
		StoryID:   storyID,
		Panels:    panels,
		Status:    domain.StoryStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}

	if ctx.Err() != nil {
		story.Status = domain.StoryStatusError
		o.sink.Emit(context.WithoutCancel(ctx), progress.NewEvent(progress.EventStoryGenerationError, storyID, 0).
			WithData("error", ctx.Err().Error()))
		return story, fmt.Errorf("物語生成が中断されました: %w", ctx.Err())
	}

	if !domain.ValidateStoryConsistency(panels) {
		logger.Warn("パネル間の一貫性検証に失敗したためシートを正規化します",
			"names", panels.CharacterNames())
		unifySheets(panels)
		if !domain.ValidateStoryConsistency(panels) {
			story.Status = domain.StoryStatusError
			o.sink.Emit(ctx, progress.NewEvent(progress.EventStoryGenerationError, storyID, 0).
				WithData("error", "panel consistency validation failed"))
			return story, fmt.Errorf("パネル間の一貫性検証に失敗しました: panels=%d, names=%v",
				len(panels), panels.CharacterNames())
		}
	}

	o.sink.Emit(ctx, progress.NewEvent(progress.EventStoryGenerationComplete, storyID, 0).
		WithData("total_panels", len(panels)))
	logger.Info("物語生成が完了しました", "panels", len(panels))
	return story, nil
}
