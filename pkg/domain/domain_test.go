package domain

import (
	"strings"
	"testing"
)

func validInputs() StoryInputs {
	return StoryInputs{
		Mood:       MoodStressed,
		Vibe:       VibeAdventure,
		Archetype:  ArchetypeHero,
		Dream:      "overcome shyness",
		MangaTitle: "My Journey",
		Nickname:   "Maya",
		Hobby:      "drawing",
		Age:        16,
		Gender:     "female",
	}
}

func TestStoryInputs_Validate(t *testing.T) {
	t.Run("正常な入力が検証を通過すること", func(t *testing.T) {
		if err := validInputs().Validate(); err != nil {
			t.Fatalf("正常な入力でエラーが発生しました: %v", err)
		}
	})

	t.Run("未知のmoodが拒否されること", func(t *testing.T) {
		in := validInputs()
		in.Mood = "ecstatic"
		if err := in.Validate(); err == nil {
			t.Error("未知のmoodでエラーが発生しませんでした")
		}
	})

	t.Run("年齢の範囲外が拒否されること", func(t *testing.T) {
		in := validInputs()
		in.Age = 99
		if err := in.Validate(); err == nil {
			t.Error("範囲外の年齢でエラーが発生しませんでした")
		}
	})

	t.Run("空のnicknameが拒否されること", func(t *testing.T) {
		in := validInputs()
		in.Nickname = "  "
		if err := in.Validate(); err == nil {
			t.Error("空のnicknameでエラーが発生しませんでした")
		}
	})
}

func TestToneForPanel(t *testing.T) {
	expected := map[int]EmotionalTone{
		1: ToneNeutral,
		2: ToneTense,
		3: ToneContemplative,
		4: ToneHopeful,
		5: ToneDetermined,
		6: ToneUplifting,
	}
	for n, want := range expected {
		if got := ToneForPanel(n); got != want {
			t.Errorf("パネル %d: 期待値 %q, 実際の値 %q", n, want, got)
		}
	}

	// 範囲外は neutral に倒れること
	if got := ToneForPanel(7); got != ToneNeutral {
		t.Errorf("範囲外のパネル番号で neutral が返りませんでした: %q", got)
	}
}

func TestValidateStoryConsistency(t *testing.T) {
	sheets := PlaceholderSheets(nil)

	makePanels := func() Panels {
		panels := make(Panels, 0, MaxPanels)
		for i := 1; i <= MaxPanels; i++ {
			panels = append(panels, PanelData{
				PanelNumber:   i,
				Sheets:        sheets,
				DialogueText:  "The journey continues with determination and hope.",
				EmotionalTone: ToneForPanel(i),
			})
		}
		return panels
	}

	t.Run("同一シートを共有する6パネルが有効であること", func(t *testing.T) {
		if !ValidateStoryConsistency(makePanels()) {
			t.Error("一貫したパネル群が無効と判定されました")
		}
	})

	t.Run("キャラクター名が複数あると無効になること", func(t *testing.T) {
		panels := makePanels()
		other := PlaceholderSheets(nil)
		other.Character.Name = "Impostor"
		panels[3].Sheets = other
		if ValidateStoryConsistency(panels) {
			t.Error("キャラクター名が分裂したパネル群が有効と判定されました")
		}
	})

	t.Run("パネル数が6未満だと無効になること", func(t *testing.T) {
		panels := makePanels()[:4]
		if ValidateStoryConsistency(panels) {
			t.Error("4パネルで有効と判定されました")
		}
	})
}

func TestPlaceholderSheets(t *testing.T) {
	in := validInputs()
	sheets := PlaceholderSheets(&in)

	if !sheets.Complete() {
		t.Fatal("プレースホルダーシートが不完全です")
	}
	if sheets.Character.Name != "Maya" {
		t.Errorf("ニックネームが反映されていません: %q", sheets.Character.Name)
	}
	if sheets.Character.Goals != "overcome shyness" {
		t.Errorf("dreamが反映されていません: %q", sheets.Character.Goals)
	}

	// 入力なしでも最低限のシートが得られること
	anon := PlaceholderSheets(nil)
	if !anon.Complete() || anon.Character.Name == "" {
		t.Error("入力なしのプレースホルダーが不完全です")
	}
}

func TestMangaStyleByMood(t *testing.T) {
	t.Run("完全一致", func(t *testing.T) {
		style := MangaStyleByMood(MoodSad, VibeMotivational)
		if !strings.Contains(style, "Naruto") {
			t.Errorf("組み合わせ一致のスタイルが返りません: %q", style)
		}
	})
	t.Run("気分のみの代替", func(t *testing.T) {
		style := MangaStyleByMood(MoodSad, VibeMusical)
		if !strings.Contains(style, "Your Name") {
			t.Errorf("気分代替のスタイルが返りません: %q", style)
		}
	})
	t.Run("プレースホルダーへの反映", func(t *testing.T) {
		in := validInputs()
		sheets := PlaceholderSheets(&in)
		if sheets.Style.ArtStyle != MangaStyleByMood(in.Mood, in.Vibe) {
			t.Errorf("アートスタイルが反映されていません: %q", sheets.Style.ArtStyle)
		}
	})
}
