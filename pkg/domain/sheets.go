package domain

import (
	"encoding/json"
	"fmt"
)

// CharacterSheet は物語全体で共有される主人公の設定です。
type CharacterSheet struct {
	Name        string `json:"name"`
	Age         string `json:"age"`
	Appearance  string `json:"appearance"`
	Personality string `json:"personality"`
	Goals       string `json:"goals"`
	Fears       string `json:"fears"`
	Strengths   string `json:"strengths"`
}

// PropSheet は小道具と舞台環境の設定です。
type PropSheet struct {
	Items        []string `json:"items"`
	Environment  string   `json:"environment"`
	Lighting     string   `json:"lighting"`
	MoodElements []string `json:"mood_elements"`
}

// StyleGuide は作画スタイルの設定です。
type StyleGuide struct {
	ArtStyle       string   `json:"art_style"`
	ColorPalette   string   `json:"color_palette"`
	PanelLayout    string   `json:"panel_layout"`
	VisualElements []string `json:"visual_elements"`
}

// StorySheets は物語単位で一度だけ生成される3つのグローバルセクションを束ねます。
// 全パネルが同一インスタンスをポインタ共有することで、ビジュアルの一貫性を保証します。
type StorySheets struct {
	Character *CharacterSheet
	Props     *PropSheet
	Style     *StyleGuide
}

// Complete は3セクションすべてが揃っているかを返します。
func (s StorySheets) Complete() bool {
	return s.Character != nil && s.Props != nil && s.Style != nil
}

// ParseCharacterSheet はJSONバイト列から CharacterSheet をパースします。
func ParseCharacterSheet(data []byte) (*CharacterSheet, error) {
	var sheet CharacterSheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("CHARACTER_SHEET のJSONパースに失敗しました: %w", err)
	}
	return &sheet, nil
}

// ParsePropSheet はJSONバイト列から PropSheet をパースします。
func ParsePropSheet(data []byte) (*PropSheet, error) {
	var sheet PropSheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("PROP_SHEET のJSONパースに失敗しました: %w", err)
	}
	return &sheet, nil
}

// ParseStyleGuide はJSONバイト列から StyleGuide をパースします。
func ParseStyleGuide(data []byte) (*StyleGuide, error) {
	var guide StyleGuide
	if err := json.Unmarshal(data, &guide); err != nil {
		return nil, fmt.Errorf("STYLE_GUIDE のJSONパースに失敗しました: %w", err)
	}
	return &guide, nil
}

// PlaceholderSheets はグローバルセクションが未取得のままパネルが確定した場合に
// 代用する最小限のシート群を生成します。入力が与えられればそれを反映します。
func PlaceholderSheets(in *StoryInputs) StorySheets {
	name := "Hero"
	age := "young"
	goals := "overcome challenges"
	items := []string{"hope"}
	environment := "inspiring setting"
	artStyle := DefaultMangaStyle

	if in != nil {
		name = in.Nickname
		age = fmt.Sprintf("%d", in.Age)
		goals = in.Dream
		items = []string{in.Hobby}
		environment = fmt.Sprintf("%s setting", in.Vibe)
		artStyle = MangaStyleByMood(in.Mood, in.Vibe)
	}

	return StorySheets{
		Character: &CharacterSheet{
			Name:        name,
			Age:         age,
			Appearance:  "determined character with expressive eyes",
			Personality: "determined and hopeful",
			Goals:       goals,
			Strengths:   "inner resilience and creativity",
		},
		Props: &PropSheet{
			Items:        items,
			Environment:  environment,
			Lighting:     "dynamic lighting",
			MoodElements: []string{"hope", "determination"},
		},
		Style: &StyleGuide{
			ArtStyle:       artStyle,
			VisualElements: []string{"emotional expression", "dynamic composition"},
		},
	}
}
