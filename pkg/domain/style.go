package domain

// moodVibeStyles は気分とジャンルの組み合わせから参照するアートスタイルの表です。
var moodVibeStyles = map[[2]string]string{
	{"frustrated", "adventure"}:    "Attack on Titan by Hajime Isayama - intense action scenes with dramatic perspectives",
	{"stressed", "motivational"}:   "Demon Slayer (Kimetsu no Yaiba) by Koyoharu Gotouge - dynamic sword action with determination",
	{"neutral", "adventure"}:       "My Hero Academia by Kohei Horikoshi - heroic poses with modern superhero aesthetic",
	{"sad", "calm"}:                "Your Name (Kimi no Na wa) by Makoto Shinkai - emotional, soft lighting with gentle expressions",
	{"happy", "calm"}:              "Studio Ghibli style by Hayao Miyazaki - warm, peaceful scenes with natural beauty",
	{"neutral", "calm"}:            "Violet Evergarden by Akiko Takase - elegant, detailed character art with soft atmosphere",
	{"frustrated", "motivational"}: "Jujutsu Kaisen by Gege Akutami - intense battle scenes with supernatural elements",
	{"stressed", "adventure"}:      "Tokyo Ghoul by Sui Ishida - dark, psychological thriller aesthetic with dramatic shadows",
	{"happy", "musical"}:           "Your Lie in April by Arakawa Naoshi - music-themed scenes with emotional performance moments",
	{"neutral", "musical"}:         "Beck: Mongolian Chop Squad by Harold Sakuishi - rock music aesthetic with urban settings",
	{"sad", "motivational"}:        "Naruto by Masashi Kishimoto - underdog determination with inspiring character growth",
	{"happy", "motivational"}:      "Haikyuu!! by Haruichi Furudate - sports motivation with dynamic team spirit",
}

var moodFallbackStyles = map[string]string{
	"happy":      "Studio Ghibli style - warm, joyful expressions with bright atmosphere",
	"stressed":   "Demon Slayer style - intense emotion with determination and resolve",
	"frustrated": "Jujutsu Kaisen style - powerful expressions with dynamic action lines",
	"sad":        "Your Name style - emotional depth with gentle, melancholic beauty",
	"neutral":    "My Hero Academia style - balanced, heroic character design",
}

// DefaultMangaStyle は気分でもジャンルでも決まらない場合の汎用スタイルです。
const DefaultMangaStyle = "classic shonen manga style with expressive characters"

// MangaStyleByMood は気分とジャンルから参照アートスタイルを選択します。
// 完全一致がなければ気分のみで代替し、それもなければ汎用スタイルを返します。
func MangaStyleByMood(mood Mood, vibe Vibe) string {
	if style, ok := moodVibeStyles[[2]string{string(mood), string(vibe)}]; ok {
		return style
	}
	if style, ok := moodFallbackStyles[string(mood)]; ok {
		return style
	}
	return DefaultMangaStyle
}
