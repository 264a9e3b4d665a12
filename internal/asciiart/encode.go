package asciiart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// EncodeJPEG は、画像をJPEGとして書き込みます。
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("JPEGエンコードに失敗しました (quality=%d): %w", quality, err)
	}
	return nil
}

// EncodeBase64JPEG は、画像をJPEGにエンコードし、その標準Base64表現を返します。
// HTMLの data URI にそのまま埋め込めます。
func EncodeBase64JPEG(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, quality); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode は、バイト列から画像をデコードします。対応形式は jpeg, png, gif です。
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("画像のデコードに失敗しました (size=%d bytes): %w", len(data), err)
	}
	return img, format, nil
}
