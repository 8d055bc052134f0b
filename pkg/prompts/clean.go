package prompts

import (
	"fmt"
	"strings"
	"unicode"
)

// minNarrationWords はTTS用ナレーションとして許容する最小語数です。
const minNarrationWords = 10

// CleanNarration はモデル応答からTTS向けの整ったナレーション本文を抽出します。
// 番号付けやフォーマット記号を除去し、文頭の大文字化と終端のピリオドを
// 保証します。整形後の本文が短すぎる場合は ok が偽になり、呼び出し側で
// 代替本文を使用します。
func CleanNarration(response string, panelNumber int) (text string, ok bool) {
	text = strings.TrimSpace(response)

	prefixes := []string{
		fmt.Sprintf("panel %d:", panelNumber),
		fmt.Sprintf("panel_%d:", panelNumber),
		"dialogue_text:",
		"narration:",
		"-",
		"*",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(text), prefix) {
			text = strings.TrimSpace(text[len(prefix):])
		}
	}

	text = strings.Trim(text, `"'`)

	// ステージ指示やマークダウンの残骸を落とします。
	replacer := strings.NewReplacer("*", "", "-", "", "[", "", "]", "")
	text = replacer.Replace(text)
	text = strings.TrimSpace(text)

	if text == "" {
		return "", false
	}

	runes := []rune(text)
	if unicode.IsLower(runes[0]) {
		runes[0] = unicode.ToUpper(runes[0])
		text = string(runes)
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}

	if len(strings.Fields(text)) < minNarrationWords {
		return text, false
	}
	return text, true
}
