package asciiart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
)

func uniformImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestBucketIndex_Monotonic(t *testing.T) {
	prev := BucketIndex(0)
	if prev != 0 {
		t.Fatalf("輝度0のバケットが期待値と異なります。期待値: 0, 実際値: %d", prev)
	}
	for lum := 1; lum <= 255; lum++ {
		idx := BucketIndex(uint8(lum))
		if idx < prev {
			t.Fatalf("バケット番号が減少しました (lum=%d, prev=%d, idx=%d)", lum, prev, idx)
		}
		if idx < 0 || idx >= len(Glyphs) {
			t.Fatalf("バケット番号が範囲外です (lum=%d, idx=%d)", lum, idx)
		}
		// floor(lum / 25.6) と一致すること
		if want := int(float64(lum) / 25.6); idx != want {
			t.Fatalf("バケット番号が floor(lum/25.6) と一致しません (lum=%d, want=%d, got=%d)", lum, want, idx)
		}
		prev = idx
	}
	if GlyphFor(255) != ' ' {
		t.Errorf("輝度255のグリフは空白であるべきです: %q", GlyphFor(255))
	}
	if GlyphFor(0) != '@' {
		t.Errorf("輝度0のグリフは '@' であるべきです: %q", GlyphFor(0))
	}
}

func TestConvert_GridDimensions(t *testing.T) {
	r := New()
	sizes := []struct{ w, h int }{
		{100, 100}, {109, 57}, {10, 10}, {250, 31}, {33, 199},
	}
	for _, s := range sizes {
		art, err := r.Convert(uniformImage(s.w, s.h, color.Gray{Y: 128}))
		if err != nil {
			t.Fatalf("Convertが予期せぬエラーを返しました (size=%dx%d): %v", s.w, s.h, err)
		}
		if len(art.Rows) != s.h/10 {
			t.Errorf("行数が期待値と異なります (size=%dx%d)。期待値: %d, 実際値: %d", s.w, s.h, s.h/10, len(art.Rows))
		}
		for i, row := range art.Rows {
			if len(row) != s.w/10 {
				t.Fatalf("%d行目の文字数が期待値と異なります。期待値: %d, 実際値: %d", i, s.w/10, len(row))
			}
		}
		if art.SourceWidth != s.w || art.SourceHeight != s.h {
			t.Errorf("元画像の大きさが記録されていません: %dx%d", art.SourceWidth, art.SourceHeight)
		}
	}
}

func TestConvert_TooSmall(t *testing.T) {
	r := New()
	_, err := r.Convert(uniformImage(9, 100, color.White))
	if !errors.Is(err, ErrImageTooSmall) {
		t.Fatalf("ErrImageTooSmallが返されませんでした: %v", err)
	}
}

func TestRasterize_WhiteImageIsBlank(t *testing.T) {
	// Arrange
	r := New()
	src := uniformImage(100, 100, color.White)

	// Act
	art, canvas, err := r.Rasterize(src)

	// Assert
	if err != nil {
		t.Fatalf("Rasterizeが予期せぬエラーを返しました: %v", err)
	}
	for _, row := range art.Rows {
		if strings.Trim(row, " ") != "" {
			t.Fatalf("白い画像から空白以外のグリフが生成されました: %q", row)
		}
	}
	if b := canvas.Bounds(); b.Dx() != 60 || b.Dy() != 140 {
		t.Errorf("キャンバスの大きさが期待値と異なります。期待値: 60x140, 実際値: %dx%d", b.Dx(), b.Dy())
	}
	for i := 0; i < len(canvas.Pix); i++ {
		if canvas.Pix[i] != 0xff {
			t.Fatalf("空白のみの描画でキャンバスが白のままではありません (offset=%d, value=%d)", i, canvas.Pix[i])
		}
	}
}

func TestRasterize_BlackImageIsDense(t *testing.T) {
	r := New()
	art, canvas, err := r.Rasterize(uniformImage(100, 100, color.Black))
	if err != nil {
		t.Fatalf("Rasterizeが予期せぬエラーを返しました: %v", err)
	}
	for _, row := range art.Rows {
		if row != strings.Repeat("@", 10) {
			t.Fatalf("黒い画像から '@' 以外のグリフが生成されました: %q", row)
		}
	}

	// 文字が描画されていれば黒に近い画素が存在する
	dark := false
	for i := 0; i+3 < len(canvas.Pix); i += 4 {
		if canvas.Pix[i] < 0x80 {
			dark = true
			break
		}
	}
	if !dark {
		t.Error("'@' を描画したキャンバスに暗い画素がありません。")
	}
}

func TestConvert_Gradient(t *testing.T) {
	// 左から右へ明るくなる画像では、各行の左端は右端以上に濃い
	img := image.NewGray(image.Rect(0, 0, 256, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 256; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x)})
		}
	}
	art, err := New().Convert(img)
	if err != nil {
		t.Fatalf("Convertが予期せぬエラーを返しました: %v", err)
	}
	glyphIndex := func(b byte) int { return bytes.IndexByte(Glyphs[:], b) }
	for _, row := range art.Rows {
		if glyphIndex(row[0]) > glyphIndex(row[len(row)-1]) {
			t.Errorf("グラデーションの左端が右端より明るくなっています: %q", row)
		}
	}
}

func TestWithOptions(t *testing.T) {
	r := New(WithBlockSize(5), WithCanvasScale(1, 2), WithBlockSize(0))
	if r.BlockSize != 5 {
		t.Errorf("BlockSizeが期待値と異なります: %d", r.BlockSize)
	}
	art, err := r.Convert(uniformImage(50, 20, color.White))
	if err != nil {
		t.Fatal(err)
	}
	if len(art.Rows) != 4 || art.Columns() != 10 {
		t.Errorf("グリッドが期待値と異なります: %dx%d", art.Columns(), len(art.Rows))
	}
	if w, h := r.CanvasSize(art); w != 50 || h != 40 {
		t.Errorf("キャンバスの大きさが期待値と異なります: %dx%d", w, h)
	}
}

func TestEncodeBase64JPEG_RoundTrip(t *testing.T) {
	r := New()
	_, canvas, err := r.Rasterize(uniformImage(120, 80, color.Gray{Y: 90}))
	if err != nil {
		t.Fatal(err)
	}

	var direct bytes.Buffer
	if err := EncodeJPEG(&direct, canvas, 75); err != nil {
		t.Fatalf("EncodeJPEGが失敗しました: %v", err)
	}
	encoded, err := EncodeBase64JPEG(canvas, 75)
	if err != nil {
		t.Fatalf("EncodeBase64JPEGが失敗しました: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Base64のデコードに失敗しました: %v", err)
	}
	if !bytes.Equal(decoded, direct.Bytes()) {
		t.Error("Base64の往復でJPEGのバイト列が一致しません。")
	}

	img, format, err := Decode(decoded)
	if err != nil {
		t.Fatalf("Decodeが失敗しました: %v", err)
	}
	if format != "jpeg" || img.Bounds() != canvas.Bounds() {
		t.Errorf("デコード結果が期待値と異なります: format=%s, bounds=%v", format, img.Bounds())
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, _, err := Decode([]byte("not an image")); err == nil {
		t.Error("不正なデータでエラーが返されませんでした。")
	}
	// jpeg パッケージが登録されていること
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, uniformImage(10, 10, color.White), nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Decode(buf.Bytes()); err != nil {
		t.Errorf("jpeg のデコードに失敗しました: %v", err)
	}
}
