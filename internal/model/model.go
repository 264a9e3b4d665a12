package model

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// DateRange は、ランダムな日付を選択する範囲（両端を含む）を表します。
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate は Start <= End であることを検証します。
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("日付範囲の開始日と終了日は必須です (start=%s, end=%s)", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("日付範囲の開始日が終了日より後になっています (start=%s, end=%s)", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	}
	return nil
}

// Days は、開始日から終了日までの日数を返します。
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// ArchivePage は、日付から導出されたアーカイブページを表します。
type ArchivePage struct {
	Date time.Time
	URL  string
}

// ImageAsset は、URLから取得したビットマップ画像です。
type ImageAsset struct {
	URL    string
	Image  image.Image
	Width  int
	Height int
}

// AsciiArtwork は、画像から生成されたグリフのグリッドです。
type AsciiArtwork struct {
	Rows         []string
	SourceWidth  int
	SourceHeight int
}

// Columns は、1行あたりの文字数を返します。
func (a AsciiArtwork) Columns() int {
	if len(a.Rows) == 0 {
		return 0
	}
	return len(a.Rows[0])
}

// Text は、各行の末尾に改行を付けて連結したテキストブロックを返します。
func (a AsciiArtwork) Text() string {
	var b strings.Builder
	b.Grow(len(a.Rows) * (a.Columns() + 1))
	for _, row := range a.Rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

// Artwork は、1回の生成リクエストの成果物です。
type Artwork struct {
	Label     string // verb_noun 形式
	SourceURL string
	PageURL   string
	Date      time.Time
	ASCII     AsciiArtwork
	Rendered  image.Image
}

// GalleryEntry は、保存済み作品のインデックス1行分です。
type GalleryEntry struct {
	Name      string    `json:"name"`
	File      string    `json:"file"`
	SourceURL string    `json:"source_url"`
	PageURL   string    `json:"page_url"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}
