package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-story-kit/pkg/assetpath"
	"github.com/shouni/go-story-kit/pkg/domain"
)

// DefaultMusicBaseURL は静的な背景音楽ライブラリの既定の配信パスです。
const DefaultMusicBaseURL = "/assets/audio"

// MusicLibrary は感情トーンから背景音楽トラックのURLを解決します。
// 音楽は物語ごとに生成せず、トーン別の固定トラックを参照します。
// トラックデータが同梱されている場合は物語ごとのパスへ公開します。
type MusicLibrary struct {
	baseURL string
	bundled map[domain.EmotionalTone][]byte
	tracks  *cache.Cache
}

// NewMusicLibrary は指定された配信パスを基点とするライブラリを生成します。
// baseURL が空の場合は DefaultMusicBaseURL を使います。
func NewMusicLibrary(baseURL string) *MusicLibrary {
	if baseURL == "" {
		baseURL = DefaultMusicBaseURL
	}
	return &MusicLibrary{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tracks:  cache.New(30*time.Minute, time.Hour),
	}
}

// WithBundledTracks はトーン別のトラックデータを設定したライブラリを返します。
// 設定されたトーンは Publish で物語ごとのパスへアップロードされます。
func (m *MusicLibrary) WithBundledTracks(tracks map[domain.EmotionalTone][]byte) *MusicLibrary {
	m.bundled = tracks
	return m
}

// Resolve は感情トーンに対応する静的トラックのURLを返します。
func (m *MusicLibrary) Resolve(tone domain.EmotionalTone) string {
	key := string(tone)
	if url, found := m.tracks.Get(key); found {
		return url.(string)
	}

	url := fmt.Sprintf("%s/%s.mp3", m.baseURL, tone)
	m.tracks.Set(key, url, cache.DefaultExpiration)
	return url
}

// Publish はトーンに対応する同梱トラックを物語ごとのパスへアップロードし、
// そのURLを返します。同梱トラックがない、またはアップロードに失敗した場合は
// 静的トラックのURLへ縮退します。
func (m *MusicLibrary) Publish(ctx context.Context, store Storage, storyID string, panelNumber int, tone domain.EmotionalTone) string {
	data, ok := m.bundled[tone]
	if !ok || store == nil {
		return m.Resolve(tone)
	}

	url, err := store.Upload(ctx, assetpath.PanelMusic(storyID, panelNumber), data, assetpath.MimeMP3)
	if err != nil {
		slog.Warn("背景音楽のアップロードに失敗したため静的トラックを使います",
			"story_id", storyID, "panel", panelNumber, "error", err)
		return m.Resolve(tone)
	}
	return url
}
