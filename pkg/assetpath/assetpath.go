// Package assetpath は、物語アセットのストレージ上のオブジェクトパスを
// 一元的に定義します。パス形式はバックエンド (GCS / MinIO) に依存しません。
package assetpath

import "fmt"

// MIMEタイプはアップロード時のContent-Type指定に使います。
const (
	MimePNG = "image/png"
	MimeMP3 = "audio/mpeg"
)

// StoryPrefix は物語単位の全アセットが置かれるプレフィックスを返します。
func StoryPrefix(storyID string) string {
	return fmt.Sprintf("stories/%s/", storyID)
}

// PanelImage はパネル画像のオブジェクトパスを返します。
func PanelImage(storyID string, panelNumber int) string {
	return fmt.Sprintf("stories/%s/panel_%02d.png", storyID, panelNumber)
}

// PanelTTS はパネルのナレーション音声のオブジェクトパスを返します。
func PanelTTS(storyID string, panelNumber int) string {
	return fmt.Sprintf("stories/%s/tts_panel_%02d.mp3", storyID, panelNumber)
}

// PanelMusic はパネルの背景音楽のオブジェクトパスを返します。
func PanelMusic(storyID string, panelNumber int) string {
	return fmt.Sprintf("stories/%s/music_panel_%02d.mp3", storyID, panelNumber)
}
