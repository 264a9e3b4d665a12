// Package adapter は、日付アーカイブサイト固有の処理を抽象化するインターフェースと、
// その具体的な実装を提供します。
package adapter

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrNoImage は、アーカイブページに画像要素が存在しないことを示します。
// 動画のみの日など、リトライで回復する可能性があります。
var ErrNoImage = errors.New("ページに画像要素が見つかりません")

// ArchiveAdapter は、サイト固有の処理を抽象化するインターフェースです。
type ArchiveAdapter interface {
	// BuildPageURL は、ベースURLと日付からアーカイブページの完全なURLを構築します。
	BuildPageURL(baseURL string, date time.Time) (string, error)
	// ParsePageDate は、BuildPageURL が生成したURLから日付を復元します。
	ParsePageDate(pageURL string) (time.Time, error)
	// ExtractImageURL は、ページHTMLから最初の画像の絶対URLを抽出します。
	ExtractImageURL(htmlBody []byte, pageURL string) (string, error)
}

// NewDocumentFromBytes は、[]byteからgoquery.Documentを生成するヘルパー関数です。
// <meta> で宣言された文字コードからUTF-8への変換を行います。
func NewDocumentFromBytes(htmlBody []byte) (*goquery.Document, error) {
	decoded, err := decodeHTML(htmlBody)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(decoded))
}

var metaCharsetPattern = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?\s*([a-z0-9_\-:.]+)`)

// decodeHTML は、HTMLを宣言された文字コードからUTF-8に変換します。
// 宣言がなく、UTF-8としても不正な場合は Windows-1252 とみなします。
func decodeHTML(b []byte) ([]byte, error) {
	head := b
	if len(head) > 2048 {
		head = head[:2048]
	}

	var enc encoding.Encoding
	if m := metaCharsetPattern.FindSubmatch(head); len(m) > 1 {
		if e, err := htmlindex.Get(strings.ToLower(string(m[1]))); err == nil {
			enc = e
		}
	}
	if enc == nil {
		if utf8.Valid(b) {
			return b, nil
		}
		enc = charmap.Windows1252
	}

	reader := transform.NewReader(bytes.NewReader(b), enc.NewDecoder())
	return io.ReadAll(reader)
}
