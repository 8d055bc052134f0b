// Package prompts は、ストーリー生成・パネル詳細化・画像生成の
// 各プロンプトを組み立てます。モデル応答の後処理 (clean.go) もここに含まれます。
package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-story-kit/pkg/domain"
)

// BuildStoryPrompt は Story Architect のシステムプロンプトとユーザー入力を
// 結合した、ストリーミング生成用の完全なプロンプトを返します。
func BuildStoryPrompt(in domain.StoryInputs) string {
	var sb strings.Builder
	sb.WriteString(StoryArchitectPrompt)
	sb.WriteString("\n\nUser Inputs:\n")
	sb.WriteString(in.UserContext())
	sb.WriteString("\nPlease create a complete 6-panel manga story structure following the output format above.\n")
	return sb.String()
}

// BuildPanelNarrationPrompt は逐次モードで1パネル分のナレーションを
// 詳細化するためのプロンプトを構築します。TTSでの読み上げを前提とした
// 制約を含みます。
func BuildPanelNarrationPrompt(panel domain.PanelData, in domain.StoryInputs) string {
	characterName := in.Nickname
	if panel.Sheets.Character != nil && panel.Sheets.Character.Name != "" {
		characterName = panel.Sheets.Character.Name
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are creating narration content for Panel %d of a 6-panel manga story.\n\n", panel.PanelNumber)
	fmt.Fprintf(&sb, "CHARACTER: %s\n\n", characterName)
	sb.WriteString("USER CONTEXT:\n")
	sb.WriteString(in.UserContext())
	fmt.Fprintf(&sb, "\nPANEL EMOTIONAL TONE: %s\n\n", panel.EmotionalTone)
	fmt.Fprintf(&sb, "STORY ARC POSITION:\n%s\n\n", domain.ArcStageForPanel(panel.PanelNumber))
	fmt.Fprintf(&sb, "CURRENT PANEL FOCUS: %s\n\n", panel.DialogueText)
	sb.WriteString("Create natural, flowing narration for this panel that:\n")
	sb.WriteString("1. Sounds excellent when read by text-to-speech\n")
	sb.WriteString("2. Is 25-35 words long\n")
	fmt.Fprintf(&sb, "3. Captures the emotional tone: %s\n", panel.EmotionalTone)
	sb.WriteString("4. Continues the character's journey naturally\n")
	sb.WriteString("5. Uses conversational, natural language\n")
	fmt.Fprintf(&sb, "6. References the user's hobby (%s) and dream (%s) when appropriate\n\n", in.Hobby, in.Dream)
	fmt.Fprintf(&sb, "CRITICAL TTS REQUIREMENTS:\n")
	fmt.Fprintf(&sb, "- Do NOT start with \"Panel %d:\" or any numbering\n", panel.PanelNumber)
	sb.WriteString("- Do NOT use dashes (-), asterisks (*), or formatting symbols\n")
	sb.WriteString("- Do NOT include stage directions like [pause] or (sighs)\n")
	sb.WriteString("- Write as if speaking directly to the listener\n")
	sb.WriteString("- Use proper punctuation for natural speech flow\n\n")
	sb.WriteString("Return ONLY the clean narration text, nothing else:\n")
	return sb.String()
}

// BuildStructuredImagePrompt はグローバルセクションと台詞から、
// パネル画像生成用の構造化プロンプトを構築します。
func BuildStructuredImagePrompt(panel domain.PanelData) string {
	character := panel.Sheets.Character
	props := panel.Sheets.Props
	style := panel.Sheets.Style

	charName := "Character"
	charAppearance := "anime character with expressive eyes"
	charGoals := "hope"
	if character != nil {
		if character.Name != "" {
			charName = character.Name
		}
		if character.Appearance != "" {
			charAppearance = character.Appearance
		}
		if character.Goals != "" {
			charGoals = character.Goals
		}
	}

	mainItem := "symbolic item"
	if props != nil && len(props.Items) > 0 {
		mainItem = props.Items[0]
	}

	artStyle := "shonen manga style"
	if style != nil && style.ArtStyle != "" {
		artStyle = style.ArtStyle
	}

	var sb strings.Builder
	sb.WriteString("CHARACTER_SHEET(\n")
	fmt.Fprintf(&sb, "  character_name: %s,\n", charName)
	fmt.Fprintf(&sb, "  appearance: %s\n", charAppearance)
	sb.WriteString("),\n\n")
	sb.WriteString("PROP_SHEET(\n")
	fmt.Fprintf(&sb, "  item: %s,\n", mainItem)
	fmt.Fprintf(&sb, "  description: a %s that represents %s\n", mainItem, charGoals)
	sb.WriteString("),\n\n")
	sb.WriteString("STYLE_GUIDE(\n")
	fmt.Fprintf(&sb, "  art_style: masterpiece, %s,\n", artStyle)
	sb.WriteString("  details: strong dynamic ink lines, detailed cross-hatching for shadows, high-contrast lighting, expressive faces, shōnen manga aesthetic,\n")
	sb.WriteString("  framing: cinematic composition\n")
	sb.WriteString(")\n\n")
	fmt.Fprintf(&sb, "DIALOGUE: %q", panel.DialogueText)
	return sb.String()
}

// ImageNegativePrompt は全パネル共通の画像ネガティブプロンプトです。
const ImageNegativePrompt = "color, text, signature, watermark, blurry, bad anatomy, ugly, deformed"

// BuildSimplifiedImagePrompt はクォータ超過後の再試行に使う簡略版の
// 画像プロンプトを構築します。構造化ブロックを落とし本質だけを残します。
func BuildSimplifiedImagePrompt(panel domain.PanelData) string {
	charName := "a determined character"
	if panel.Sheets.Character != nil && panel.Sheets.Character.Name != "" {
		charName = panel.Sheets.Character.Name
	}
	return fmt.Sprintf("Manga panel %d: %s, %s mood, black and white shonen manga style, clean lineart",
		panel.PanelNumber, charName, panel.EmotionalTone)
}

