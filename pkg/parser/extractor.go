package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shouni/go-story-kit/pkg/domain"
)

// extractionStrategy は全文抽出パスの1戦略です。
// 順序付きリストとして早期終了付きで適用され、条件の緩さの勾配を明示します。
type extractionStrategy struct {
	name  string
	apply func(text string, panels map[int]string)
}

var (
	quotedLabelRegex   = regexp.MustCompile(`(?s)PANEL_(\d+):\s*dialogue_text:\s*"([^"]*)"`)
	unquotedLabelRegex = regexp.MustCompile(`PANEL_(\d+):\s*dialogue_text:\s*([^\n]+)`)
	flexibleLabelRegex = regexp.MustCompile(`(?is)PANEL[_\s]*(\d+)[:\s]*.*?dialogue[_\s]*text[:\s]*["']?([^"'\n]+)["']?`)
	numberedBlockRegex = regexp.MustCompile(`(\d+)[\.:\s]+([^0-9\n][^\n]{20,})`)
)

// extractionStrategies は厳格→寛容の順に試行される戦略の列です。
// 先に見つかったパネルを後の戦略が上書きすることはありません。
var extractionStrategies = []extractionStrategy{
	{name: "quoted-after-label", apply: applyLabeled(quotedLabelRegex, minDialogueLen)},
	{name: "unquoted-after-label", apply: applyLabeled(unquotedLabelRegex, minDialogueLen)},
	{name: "flexible-label-any-case", apply: applyLabeled(flexibleLabelRegex, minDialogueLen)},
	{name: "generic-numbered-block", apply: applyNumberedBlocks},
}

// applyLabeled はパネル番号ラベル付きパターンを map に反映する戦略を生成します。
func applyLabeled(re *regexp.Regexp, minLen int) func(string, map[int]string) {
	return func(text string, panels map[int]string) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			num, err := strconv.Atoi(m[1])
			if err != nil || num < 1 || num > domain.MaxPanels {
				continue
			}
			dialogue := strings.TrimSpace(m[2])
			if _, found := panels[num]; found {
				continue
			}
			if len(dialogue) > minLen {
				panels[num] = dialogue
			}
		}
	}
}

// applyNumberedBlocks はラベルを失った応答から番号付きブロックを順に拾う最終戦略です。
// 出現順にパネル番号を割り当てるため、既に確定した番号は飛ばします。
func applyNumberedBlocks(text string, panels map[int]string) {
	const minBlockLen = 15

	counter := 1
	for _, m := range numberedBlockRegex.FindAllStringSubmatch(text, -1) {
		if counter > domain.MaxPanels {
			break
		}
		if _, found := panels[counter]; found {
			continue
		}
		dialogue := strings.TrimRight(strings.TrimSpace(m[2]), ".")
		if len(dialogue) > minBlockLen {
			panels[counter] = dialogue
			counter++
		}
	}
}

// ExtractAllPanels は全文に対して複数の抽出戦略を順に適用し、
// パネル番号から台詞本文へのマップを返します。純粋関数であり状態を持ちません。
func ExtractAllPanels(text string) map[int]string {
	panels := make(map[int]string)

	for _, strategy := range extractionStrategies {
		if len(panels) >= domain.MaxPanels {
			break
		}
		strategy.apply(text, panels)
	}

	slog.Debug("Robust extraction finished", "panels_found", len(panels))
	return panels
}

// ExtractSheets は全文からグローバルセクションを抽出します。
// パースできなかったセクションは nil のまま残ります。
func ExtractSheets(text string) domain.StorySheets {
	var sheets domain.StorySheets

	if m := CharacterSheetRegex.FindStringSubmatch(text); m != nil {
		if sheet, err := domain.ParseCharacterSheet([]byte(m[1])); err == nil {
			sheets.Character = sheet
		}
	}
	if m := PropSheetRegex.FindStringSubmatch(text); m != nil {
		if sheet, err := domain.ParsePropSheet([]byte(m[1])); err == nil {
			sheets.Props = sheet
		}
	}
	if m := StyleGuideRegex.FindStringSubmatch(text); m != nil {
		if guide, err := domain.ParseStyleGuide([]byte(m[1])); err == nil {
			sheets.Style = guide
		}
	}
	return sheets
}

// enhanceMinLen はテンプレート代替を行うかどうかの閾値です。
const enhanceMinLen = 20

// FallbackDialogue はパネル番号ごとの固定アークテンプレートに
// ユーザーの名前・夢・気分を埋め込んだ代替本文を返します。
// 抽出にも詳細化にも失敗したパネルの最終的な本文として使われます。
func FallbackDialogue(panelNumber int, in domain.StoryInputs) string {
	name := in.Nickname
	if name == "" {
		name = "our hero"
	}
	dream := in.Dream
	if dream == "" {
		dream = "their goals"
	}
	mood := string(in.Mood)
	if mood == "" {
		mood = "uncertain"
	}

	switch panelNumber {
	case 1:
		return fmt.Sprintf("Meet %s. They're feeling %s today, but deep inside burns a desire to achieve %s. Every great journey begins with a single step forward.", name, mood, dream)
	case 2:
		return fmt.Sprintf("%s faces the challenge ahead. The path to %s isn't easy, but they've come too far to give up now. Sometimes the hardest battles are the ones we fight within ourselves.", name, dream)
	case 3:
		return fmt.Sprintf("Taking a moment to breathe, %s reflects on how far they've already come. Even when feeling %s, there's strength in acknowledging both struggles and progress.", name, mood)
	case 4:
		return fmt.Sprintf("In this moment of clarity, %s discovers something important. Their %s isn't just about the destination - it's about becoming the person they're meant to be along the way.", name, dream)
	case 5:
		return fmt.Sprintf("With newfound determination, %s takes action. They realize that being %s doesn't define them - it's just one part of their story, and they have the power to write the next chapter.", name, mood)
	case 6:
		return fmt.Sprintf("Looking back on the journey, %s sees how much they've grown. The road to %s continues, but now they know they have the strength to face whatever comes next. Hope lights the way forward.", name, dream)
	default:
		return fmt.Sprintf("%s continues their journey toward %s, growing stronger with each step.", name, dream)
	}
}

// EnhanceDialogues は抽出結果を検証し、不足または短すぎるパネルを
// テンプレート本文で補完して、必ず6パネル分の本文を返します。
func EnhanceDialogues(found map[int]string, in domain.StoryInputs) map[int]string {
	enhanced := make(map[int]string, domain.MaxPanels)

	for n := 1; n <= domain.MaxPanels; n++ {
		if dialogue, ok := found[n]; ok && len(dialogue) > enhanceMinLen {
			enhanced[n] = dialogue
			continue
		}
		enhanced[n] = FallbackDialogue(n, in)
		slog.Info("Using enhanced fallback dialogue", "panel", n)
	}

	return enhanced
}
