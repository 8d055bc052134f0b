package domain

import (
	"fmt"
	"strings"
)

// Mood はユーザーの現在の気分を表す列挙値です。
type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodStressed   Mood = "stressed"
	MoodNeutral    Mood = "neutral"
	MoodFrustrated Mood = "frustrated"
	MoodSad        Mood = "sad"
)

// Vibe は物語全体の雰囲気（ジャンル）を表す列挙値です。
type Vibe string

const (
	VibeCalm         Vibe = "calm"
	VibeAdventure    Vibe = "adventure"
	VibeMusical      Vibe = "musical"
	VibeMotivational Vibe = "motivational"
)

// Archetype は物語の主人公の類型を表す列挙値です。
type Archetype string

const (
	ArchetypeMentor    Archetype = "mentor"
	ArchetypeHero      Archetype = "hero"
	ArchetypeCompanion Archetype = "companion"
	ArchetypeComedian  Archetype = "comedian"
)

// StoryInputs は物語生成の入力となるユーザープロフィールです。
// 受付時に一度だけ検証し、以降は不変として扱います。
type StoryInputs struct {
	Mood       Mood      `json:"mood"`
	Vibe       Vibe      `json:"vibe"`
	Archetype  Archetype `json:"archetype"`
	Dream      string    `json:"dream"`
	MangaTitle string    `json:"mangaTitle"`
	Nickname   string    `json:"nickname"`
	Hobby      string    `json:"hobby"`
	Age        int       `json:"age"`
	Gender     string    `json:"gender"`

	// 任意の追加コンテキスト
	SupportSystem string `json:"supportSystem,omitempty"`
	CoreValue     string `json:"coreValue,omitempty"`
	InnerStruggle string `json:"innerStruggle,omitempty"`
}

const (
	minAge = 10
	maxAge = 35

	maxDreamLen    = 500
	maxTitleLen    = 100
	maxNicknameLen = 50
	maxHobbyLen    = 100
)

var validGenders = map[string]struct{}{
	"male":              {},
	"female":            {},
	"non-binary":        {},
	"prefer-not-to-say": {},
}

// Validate は入力値の妥当性を検証します。
func (in StoryInputs) Validate() error {
	switch in.Mood {
	case MoodHappy, MoodStressed, MoodNeutral, MoodFrustrated, MoodSad:
	default:
		return fmt.Errorf("未知の mood です: %q", in.Mood)
	}
	switch in.Vibe {
	case VibeCalm, VibeAdventure, VibeMusical, VibeMotivational:
	default:
		return fmt.Errorf("未知の vibe です: %q", in.Vibe)
	}
	switch in.Archetype {
	case ArchetypeMentor, ArchetypeHero, ArchetypeCompanion, ArchetypeComedian:
	default:
		return fmt.Errorf("未知の archetype です: %q", in.Archetype)
	}

	if err := requireLen("dream", in.Dream, maxDreamLen); err != nil {
		return err
	}
	if err := requireLen("mangaTitle", in.MangaTitle, maxTitleLen); err != nil {
		return err
	}
	if err := requireLen("nickname", in.Nickname, maxNicknameLen); err != nil {
		return err
	}
	if err := requireLen("hobby", in.Hobby, maxHobbyLen); err != nil {
		return err
	}

	if in.Age < minAge || in.Age > maxAge {
		return fmt.Errorf("age は %d〜%d の範囲で指定してください: %d", minAge, maxAge, in.Age)
	}
	if _, ok := validGenders[in.Gender]; !ok {
		return fmt.Errorf("未知の gender です: %q", in.Gender)
	}

	return nil
}

func requireLen(field, value string, maxLen int) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s は必須です", field)
	}
	if len(trimmed) > maxLen {
		return fmt.Errorf("%s が長すぎます (%d 文字以内)", field, maxLen)
	}
	return nil
}

// UserContext はプロンプトに埋め込むための整形済みコンテキスト文字列を返します。
func (in StoryInputs) UserContext() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Name: %s\n", in.Nickname)
	fmt.Fprintf(&sb, "- Mood: %s\n", in.Mood)
	fmt.Fprintf(&sb, "- Vibe: %s\n", in.Vibe)
	fmt.Fprintf(&sb, "- Archetype: %s\n", in.Archetype)
	fmt.Fprintf(&sb, "- Dream: %s\n", in.Dream)
	fmt.Fprintf(&sb, "- Hobby: %s\n", in.Hobby)
	fmt.Fprintf(&sb, "- Age: %d\n", in.Age)
	fmt.Fprintf(&sb, "- Gender: %s\n", in.Gender)
	if in.SupportSystem != "" {
		fmt.Fprintf(&sb, "- Support System: %s\n", in.SupportSystem)
	}
	if in.CoreValue != "" {
		fmt.Fprintf(&sb, "- Core Value: %s\n", in.CoreValue)
	}
	if in.InnerStruggle != "" {
		fmt.Fprintf(&sb, "- Inner Struggle: %s\n", in.InnerStruggle)
	}
	return sb.String()
}
