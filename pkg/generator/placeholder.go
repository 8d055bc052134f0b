package generator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/sync/semaphore"

	"github.com/shouni/go-story-kit/pkg/domain"
)

const (
	placeholderSize   = 1024
	placeholderBorder = 24
)

// toneColors は感情トーンごとのプレースホルダー背景色です。
// 同じトーンからは常に同じ画像が生成されます。
var toneColors = map[domain.EmotionalTone]color.RGBA{
	domain.ToneNeutral:       {R: 0x90, G: 0xA4, B: 0xAE, A: 0xFF},
	domain.ToneTense:         {R: 0xB7, G: 0x4C, B: 0x4C, A: 0xFF},
	domain.ToneContemplative: {R: 0x5C, G: 0x6B, B: 0xC0, A: 0xFF},
	domain.ToneHopeful:       {R: 0xFF, G: 0xB7, B: 0x4D, A: 0xFF},
	domain.ToneDetermined:    {R: 0xE6, G: 0x7E, B: 0x22, A: 0xFF},
	domain.ToneUplifting:     {R: 0xFF, G: 0xD5, B: 0x4F, A: 0xFF},
}

// encodeSem はPNGエンコードの同時実行数を抑えます。全パネルが同時に
// 縮退した場合でもメモリ使用量を一定に保つためです。
var encodeSem = semaphore.NewWeighted(2)

// PlaceholderPNG は感情トーンに応じた単色のプレースホルダー画像を生成します。
// 外部APIには一切依存せず、画像生成の最終縮退先として使われます。
func PlaceholderPNG(ctx context.Context, panelNumber int, tone domain.EmotionalTone) ([]byte, error) {
	if err := encodeSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("プレースホルダー生成の待機に失敗しました: %w", err)
	}
	defer encodeSem.Release(1)

	bg, ok := toneColors[tone]
	if !ok {
		bg = toneColors[domain.ToneNeutral]
	}
	border := color.RGBA{
		R: bg.R / 2,
		G: bg.G / 2,
		B: bg.B / 2,
		A: 0xFF,
	}

	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: border}, image.Point{}, draw.Src)

	inner := image.Rect(
		placeholderBorder, placeholderBorder,
		placeholderSize-placeholderBorder, placeholderSize-placeholderBorder,
	)
	draw.Draw(img, inner, &image.Uniform{C: bg}, image.Point{}, draw.Src)

	// パネル番号をコーナーのタブ模様として刻みます。
	for i := 0; i < panelNumber && i < domain.MaxPanels; i++ {
		tab := image.Rect(
			placeholderBorder*2+i*placeholderBorder*2, placeholderBorder*2,
			placeholderBorder*3+i*placeholderBorder*2, placeholderBorder*3,
		)
		draw.Draw(img, tab, &image.Uniform{C: border}, image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("プレースホルダー画像のエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
