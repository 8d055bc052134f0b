package parser

import (
	"fmt"
	"regexp"

	"github.com/shouni/go-story-kit/pkg/domain"
)

var (
	// CharacterSheetRegex は "CHARACTER_SHEET: {...}" 形式のJSONブロックをキャプチャします。
	CharacterSheetRegex = regexp.MustCompile(`(?s)CHARACTER_SHEET:\s*(\{[^{}]*\})`)

	// PropSheetRegex は "PROP_SHEET: {...}" 形式のJSONブロックをキャプチャします。
	PropSheetRegex = regexp.MustCompile(`(?s)PROP_SHEET:\s*(\{[^{}]*\})`)

	// StyleGuideRegex は "STYLE_GUIDE: {...}" 形式のJSONブロックをキャプチャします。
	StyleGuideRegex = regexp.MustCompile(`(?s)STYLE_GUIDE:\s*(\{[^{}]*\})`)
)

// minDialogueLen は途中経過のマッチを誤って確定させないための最小本文長です。
const minDialogueLen = 10

// panelDialoguePatterns はパネル番号ごとの台詞抽出パターンを、
// 厳格なものから寛容なものへの順で保持します。
var panelDialoguePatterns [domain.MaxPanels + 1][]*regexp.Regexp

func init() {
	for n := 1; n <= domain.MaxPanels; n++ {
		panelDialoguePatterns[n] = []*regexp.Regexp{
			// 引用符付きの標準形式
			regexp.MustCompile(fmt.Sprintf(`(?s)PANEL_%d:\s*dialogue_text:\s*"([^"]*)"`, n)),
			// 引用符なし、行末まで
			regexp.MustCompile(fmt.Sprintf(`PANEL_%d:\s*dialogue_text:\s*([^\n]+)`, n)),
			// ラベル間に他フィールドを挟む柔軟形式（引用符付き）
			regexp.MustCompile(fmt.Sprintf(`(?is)PANEL_%d:[^:]*dialogue_text[:\s]*"([^"]*)"`, n)),
			// ラベル間に他フィールドを挟む柔軟形式（引用符なし）
			regexp.MustCompile(fmt.Sprintf(`(?i)PANEL_%d:[^:]*dialogue_text[:\s]*([^\n]+)`, n)),
		}
	}
}
