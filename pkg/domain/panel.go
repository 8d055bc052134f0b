package domain

// MaxPanels は1つの物語を構成するパネルの固定数です。
const MaxPanels = 6

// EmotionalTone はパネルの感情トーンを表す列挙値です。
// パネル番号ごとに固定のマッピングを持ち、本文からは導出しません。
type EmotionalTone string

const (
	ToneNeutral       EmotionalTone = "neutral"
	ToneTense         EmotionalTone = "tense"
	ToneContemplative EmotionalTone = "contemplative"
	ToneHopeful       EmotionalTone = "hopeful"
	ToneDetermined    EmotionalTone = "determined"
	ToneUplifting     EmotionalTone = "uplifting"
)

var emotionalArc = map[int]EmotionalTone{
	1: ToneNeutral,       // Introduction
	2: ToneTense,         // Challenge
	3: ToneContemplative, // Reflection
	4: ToneHopeful,       // Discovery
	5: ToneDetermined,    // Transformation
	6: ToneUplifting,     // Resolution
}

// ToneForPanel はパネル番号に対応する感情トーンを返します。
// 範囲外の番号には neutral を返します。
func ToneForPanel(panelNumber int) EmotionalTone {
	if tone, ok := emotionalArc[panelNumber]; ok {
		return tone
	}
	return ToneNeutral
}

var arcStages = map[int]string{
	1: "Introduction - Establish the character and their current state",
	2: "Challenge - Present the obstacle or difficulty they face",
	3: "Reflection - Character processes their situation and feelings",
	4: "Discovery - Character finds inner strength or new perspective",
	5: "Transformation - Character takes positive action or grows",
	6: "Resolution - Character emerges stronger with hope for the future",
}

// ArcStageForPanel はパネル番号に対応する物語アークの説明を返します。
func ArcStageForPanel(panelNumber int) string {
	if stage, ok := arcStages[panelNumber]; ok {
		return stage
	}
	return "Story continues"
}

// PanelData は処理の中心単位となる1パネル分の構造化データです。
// DialogueText 確定後は、アセットURLの3スロット以外は不変として扱います。
type PanelData struct {
	PanelNumber   int           `json:"panel_number"`
	Sheets        StorySheets   `json:"-"`
	DialogueText  string        `json:"dialogue_text"`
	EmotionalTone EmotionalTone `json:"emotional_tone"`

	// アセットスロット。各スロットは Panel Asset Orchestrator によって
	// 1度だけ書き込まれ、回復不能な失敗時は空のまま残ります。
	ImageURL string `json:"image_url"`
	TTSURL   string `json:"tts_url"`
	MusicURL string `json:"music_url"`

	// Fallback は生成パイプラインが失敗しテンプレート本文のみで
	// 構成されたパネルであることを示します。
	Fallback bool `json:"fallback,omitempty"`
}

// Panels は PanelData のスライスに対するヘルパーを提供します。
type Panels []PanelData

// CharacterNames はパネル群から重複しないキャラクター名を抽出します。
func (ps Panels) CharacterNames() []string {
	set := make(map[string]struct{})
	names := make([]string, 0, 1)
	for _, p := range ps {
		if p.Sheets.Character == nil {
			continue
		}
		name := p.Sheets.Character.Name
		if _, ok := set[name]; !ok {
			set[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// ValidateStoryConsistency はパネル間の一貫性を検証します。
// パネルが6枚ちょうど存在し、全パネルのキャラクター名が単一であることが条件です。
func ValidateStoryConsistency(panels Panels) bool {
	if len(panels) != MaxPanels {
		return false
	}
	return len(panels.CharacterNames()) == 1
}
