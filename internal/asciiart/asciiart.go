// Package asciiart は、ビットマップ画像をASCIIアートに変換し、
// そのテキストを新しい画像として再描画する処理を提供します。
//
// 変換は次の順で行われます。
//  1. 輝度(グレースケール)への変換
//  2. ブロックサイズ単位での縮小 (floor(幅/ブロック) x floor(高さ/ブロック))
//  3. 各セルの輝度を10段階のグリフに対応付け (濃い '@' から 空白 まで)
//  4. 白いキャンバスに黒い固定幅フォントで左上から描画
//
// キャンバスの大きさは元画像の (幅 x WidthScale, 高さ x HeightScale) で、テキストブロックに
// 合わせた調整は行いません。大きな画像では文字がはみ出して切り取られ、小さな画像では
// 余白が大きく残ります。
package asciiart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // image.Decode で gif を扱うため
	_ "image/jpeg" // image.Decode で jpeg を扱うため
	_ "image/png"  // image.Decode で png を扱うため

	"GoAstroASCII/internal/model"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyphs は、濃い順に並べた10段階のグリフです。
var Glyphs = [10]byte{'@', '%', '#', '*', '+', '=', '-', ':', '.', ' '}

// ErrImageTooSmall は、画像がブロック1つ分より小さく、グリッドが空になることを示します。
var ErrImageTooSmall = errors.New("画像がブロックサイズより小さいため変換できません")

// BucketIndex は、輝度(0-255)に対応するグリフの番号を返します。
// floor(lum / 25.6) と同値で、輝度に対して単調非減少です。
func BucketIndex(lum uint8) int {
	return int(lum) * len(Glyphs) / 256
}

// GlyphFor は、輝度(0-255)に対応するグリフを返します。
func GlyphFor(lum uint8) byte {
	return Glyphs[BucketIndex(lum)]
}

// Rasterizer は、ASCIIアートへの変換と再描画を行います。
// 生成後は不変で、複数のgoroutineから同時に使用できます。
type Rasterizer struct {
	BlockSize   int
	WidthScale  float64
	HeightScale float64
	Face        font.Face
	Scaler      xdraw.Scaler
}

// Option は Rasterizer の設定を変更する関数です。
type Option func(*Rasterizer)

// WithBlockSize は、1文字に集約する正方形ブロックの辺の長さを指定します。
func WithBlockSize(size int) Option {
	return func(r *Rasterizer) {
		if size > 0 {
			r.BlockSize = size
		}
	}
}

// WithCanvasScale は、元画像の大きさに対する再描画キャンバスの倍率を指定します。
func WithCanvasScale(width, height float64) Option {
	return func(r *Rasterizer) {
		if width > 0 {
			r.WidthScale = width
		}
		if height > 0 {
			r.HeightScale = height
		}
	}
}

// WithScaler は、縮小に使用する補間方式を指定します。
func WithScaler(s xdraw.Scaler) Option {
	return func(r *Rasterizer) {
		r.Scaler = s
	}
}

// New は既定値 (ブロック10, キャンバス 0.6 x 1.4, Face7x13, CatmullRom) で初期化し、オプションを適用します。
func New(opts ...Option) *Rasterizer {
	r := &Rasterizer{
		BlockSize:   10,
		WidthScale:  0.6,
		HeightScale: 1.4,
		Face:        basicfont.Face7x13,
		Scaler:      xdraw.CatmullRom,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Grayscale は、画像を単一チャンネルの輝度画像に変換します。
func Grayscale(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), src, b.Min, xdraw.Src)
	return gray
}

// Convert は、画像をグリフのグリッドに変換します。
// 行数は floor(高さ/BlockSize)、各行の文字数は floor(幅/BlockSize) です。
func (r *Rasterizer) Convert(src image.Image) (model.AsciiArtwork, error) {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	cols, rows := width/r.BlockSize, height/r.BlockSize
	if cols == 0 || rows == 0 {
		return model.AsciiArtwork{}, fmt.Errorf("%w (size=%dx%d, block=%d)", ErrImageTooSmall, width, height, r.BlockSize)
	}

	gray := Grayscale(src)
	small := image.NewGray(image.Rect(0, 0, cols, rows))
	r.Scaler.Scale(small, small.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)

	art := model.AsciiArtwork{
		Rows:         make([]string, rows),
		SourceWidth:  width,
		SourceHeight: height,
	}
	line := make([]byte, cols)
	for y := 0; y < rows; y++ {
		offset := y * small.Stride
		for x := 0; x < cols; x++ {
			line[x] = GlyphFor(small.Pix[offset+x])
		}
		art.Rows[y] = string(line)
	}
	return art, nil
}

// CanvasSize は、作品の再描画に使用するキャンバスの大きさを返します。
func (r *Rasterizer) CanvasSize(art model.AsciiArtwork) (int, int) {
	w := int(float64(art.SourceWidth) * r.WidthScale)
	h := int(float64(art.SourceHeight) * r.HeightScale)
	return max(w, 1), max(h, 1)
}

// Render は、白いキャンバスの左上から黒い文字でテキストブロックを描画します。
// キャンバスに収まらない部分は切り取られます。
func (r *Rasterizer) Render(art model.AsciiArtwork) *image.RGBA {
	w, h := r.CanvasSize(art)
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	metrics := r.Face.Metrics()
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: r.Face,
	}
	for i, row := range art.Rows {
		baseline := metrics.Ascent + metrics.Height*fixed.Int26_6(i)
		if baseline.Ceil()-metrics.Ascent.Ceil() >= h {
			break
		}
		drawer.Dot = fixed.Point26_6{X: 0, Y: baseline}
		drawer.DrawString(row)
	}
	return canvas
}

// Rasterize は、Convert と Render をまとめて実行します。
func (r *Rasterizer) Rasterize(src image.Image) (model.AsciiArtwork, *image.RGBA, error) {
	art, err := r.Convert(src)
	if err != nil {
		return model.AsciiArtwork{}, nil, err
	}
	return art, r.Render(art), nil
}
