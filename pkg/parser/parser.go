// Package parser は、ストーリー生成モデルのストリーミング応答を逐次解析し、
// パネル単位の構造化データへ変換するインクリメンタルパーサを提供します。
//
// パーサはトークンを内部バッファへ蓄積し、グローバルセクション
// (CHARACTER_SHEET / PROP_SHEET / STYLE_GUIDE) とパネル台詞を正規表現で
// 検出します。パネルは必ず 1 から 6 の昇順で確定し、順序が乱れることは
// ありません。ストリーム終端では全文に対する回復パスが走り、取りこぼした
// パネルをテンプレート本文で補完します。
package parser

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"github.com/shouni/go-story-kit/pkg/domain"
)

// Options はパーサの挙動を調整します。
type Options struct {
	// WaitForGlobals が真の場合、3つのグローバルセクションが揃うまで
	// パネルの確定を保留します。偽の場合はプレースホルダーシートで
	// 即座に確定します。
	WaitForGlobals bool
}

// Parser はトークン列からパネルを昇順に確定させる状態機械です。
// 並行アクセスには対応していません。1ストリームにつき1インスタンスを使います。
type Parser struct {
	inputs domain.StoryInputs
	opts   Options

	buf       strings.Builder
	full      strings.Builder
	sheets    domain.StorySheets
	nextPanel int
	completed domain.Panels
}

// New は指定された入力に対するパーサを生成します。
func New(inputs domain.StoryInputs, opts Options) *Parser {
	return &Parser{
		inputs:    inputs,
		opts:      opts,
		nextPanel: 1,
	}
}

// Reset はパーサを初期状態へ戻し、別のストリームで再利用できるようにします。
func (p *Parser) Reset() {
	p.buf.Reset()
	p.full.Reset()
	p.sheets = domain.StorySheets{}
	p.nextPanel = 1
	p.completed = nil
}

// CompletedPanels はこれまでに確定したパネルを確定順で返します。
func (p *Parser) CompletedPanels() domain.Panels {
	return p.completed
}

// Sheets は現時点で取得済みのグローバルセクションを返します。
func (p *Parser) Sheets() domain.StorySheets {
	return p.sheets
}

// ProcessToken はトークンを1つ取り込み、このトークンでパネルが確定した場合に
// そのパネルを返します。確定しなかった場合は nil を返します。
// 1トークンで複数パネルが確定しうる場合でも、返すのは最初の1枚だけであり、
// 残りは後続トークンまたは回復パスで確定します。
func (p *Parser) ProcessToken(token string) *domain.PanelData {
	if token == "" {
		return nil
	}
	p.buf.WriteString(token)
	p.full.WriteString(token)

	p.extractGlobalSections()

	if p.nextPanel > domain.MaxPanels {
		return nil
	}
	return p.tryCompletePanel()
}

// extractGlobalSections はバッファからグローバルセクションのJSONブロックを
// 検出してパースします。ストリーム途中の不完全なJSONは無視し、次のトークンで
// 再試行します。
func (p *Parser) extractGlobalSections() {
	if p.sheets.Complete() {
		return
	}
	text := p.buf.String()

	if p.sheets.Character == nil {
		if m := CharacterSheetRegex.FindStringSubmatch(text); m != nil {
			sheet, err := domain.ParseCharacterSheet([]byte(m[1]))
			if err == nil {
				p.sheets.Character = sheet
				slog.Debug("CHARACTER_SHEET を取得しました", "name", sheet.Name)
			}
		}
	}
	if p.sheets.Props == nil {
		if m := PropSheetRegex.FindStringSubmatch(text); m != nil {
			sheet, err := domain.ParsePropSheet([]byte(m[1]))
			if err == nil {
				p.sheets.Props = sheet
			}
		}
	}
	if p.sheets.Style == nil {
		if m := StyleGuideRegex.FindStringSubmatch(text); m != nil {
			guide, err := domain.ParseStyleGuide([]byte(m[1]))
			if err == nil {
				p.sheets.Style = guide
			}
		}
	}
}

// tryCompletePanel は次に確定すべきパネル番号の台詞抽出を試みます。
func (p *Parser) tryCompletePanel() *domain.PanelData {
	if p.opts.WaitForGlobals && !p.sheets.Complete() {
		return nil
	}

	text := p.buf.String()
	for _, re := range panelDialoguePatterns[p.nextPanel] {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		dialogue := strings.TrimSpace(text[loc[2]:loc[3]])
		if len(dialogue) <= minDialogueLen {
			continue
		}

		panel := p.completePanel(dialogue)

		// 確定済み範囲をバッファから落とし、同じマッチの再検出を防ぎます。
		remainder := text[loc[1]:]
		p.buf.Reset()
		p.buf.WriteString(remainder)
		return panel
	}
	return nil
}

// completePanel は確定した台詞からパネルを組み立て、内部状態を進めます。
func (p *Parser) completePanel(dialogue string) *domain.PanelData {
	if !p.sheets.Complete() {
		slog.Warn("グローバルセクション未取得のままパネルを確定します",
			"panel", p.nextPanel)
		// プレースホルダーを物語全体のシートとして固定します。以降の
		// パネルも同一インスタンスを共有し、途中でセクションが届いても
		// 差し替えません。
		p.sheets = domain.PlaceholderSheets(&p.inputs)
	}

	panel := domain.PanelData{
		PanelNumber:   p.nextPanel,
		Sheets:        p.sheets,
		DialogueText:  dialogue,
		EmotionalTone: domain.ToneForPanel(p.nextPanel),
	}
	p.completed = append(p.completed, panel)
	slog.Info("パネルを確定しました",
		"panel", panel.PanelNumber,
		"tone", panel.EmotionalTone,
		"dialogue_len", len(dialogue))

	p.nextPanel++
	return &panel
}

// RecoverRemaining はストリーム終端後に呼ばれ、未確定のパネルを全文再解析で
// 補完します。抽出に失敗したパネルはテンプレート本文となり Fallback が立ちます。
// 返り値は未確定だったパネルのみを昇順で含みます。
func (p *Parser) RecoverRemaining() domain.Panels {
	if p.nextPanel > domain.MaxPanels {
		return nil
	}

	fullText := p.full.String()
	found := ExtractAllPanels(fullText)
	enhanced := EnhanceDialogues(found, p.inputs)

	if !p.sheets.Complete() {
		p.sheets = domain.PlaceholderSheets(&p.inputs)
	}

	recovered := make(domain.Panels, 0, domain.MaxPanels-p.nextPanel+1)
	for n := p.nextPanel; n <= domain.MaxPanels; n++ {
		extracted, ok := found[n]
		fallback := !ok || len(extracted) <= enhanceMinLen

		panel := domain.PanelData{
			PanelNumber:   n,
			Sheets:        p.sheets,
			DialogueText:  enhanced[n],
			EmotionalTone: domain.ToneForPanel(n),
			Fallback:      fallback,
		}
		recovered = append(recovered, panel)
		p.completed = append(p.completed, panel)

		if fallback {
			slog.Warn("回復パスでテンプレート本文を使用します", "panel", n)
		} else {
			slog.Info("回復パスでパネルを復元しました", "panel", n)
		}
	}
	p.nextPanel = domain.MaxPanels + 1
	return recovered
}

// ProcessStream はトークンストリーム全体を消費し、確定したパネルを
// 昇順に1枚ずつ yield します。ストリームエラーや早期終了があっても、
// 回復パスによって必ず6枚の yield で完了します。
//
// コンテキストのキャンセルは途中打ち切りとして扱われ、その時点までの
// 蓄積テキストに対して回復パスが走ります。
func (p *Parser) ProcessStream(ctx context.Context, stream iter.Seq2[string, error]) iter.Seq[domain.PanelData] {
	return func(yield func(domain.PanelData) bool) {
		for token, err := range stream {
			if err != nil {
				slog.Error("ストリーム読み取りに失敗しました", "error", err)
				break
			}
			if ctx.Err() != nil {
				slog.Warn("ストリーム処理がキャンセルされました", "reason", ctx.Err())
				break
			}

			panel := p.ProcessToken(token)
			if panel == nil {
				continue
			}
			if !yield(*panel) {
				return
			}
			if p.nextPanel > domain.MaxPanels {
				break
			}
		}

		for _, panel := range p.RecoverRemaining() {
			if !yield(panel) {
				return
			}
		}
	}
}
