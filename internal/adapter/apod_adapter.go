package adapter

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// apodDateLayout は、ページ名に埋め込まれる日付の書式です (例: ap231104.html)。
// 2桁の年は time.Parse の規則に従い、69-99 が 19xx、00-68 が 20xx になります。
const apodDateLayout = "060102"

var apodPagePattern = regexp.MustCompile(`^ap(\d{6})\.html$`)

// APODAdapter は、Astronomy Picture of the Day のアーカイブ解析ロジックを実装します。
type APODAdapter struct{}

// NewAPODAdapter は、APODAdapterの新しいインスタンスを返します。
func NewAPODAdapter() ArchiveAdapter {
	return &APODAdapter{}
}

// BuildPageURL は、apYYMMDD.html 形式のページURLを構築します。
func (a *APODAdapter) BuildPageURL(baseURL string, date time.Time) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("ベースURLの解析に失敗しました (url=%s): %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("ベースURLは絶対URLである必要があります (url=%s)", baseURL)
	}
	page := &url.URL{Path: "ap" + date.Format(apodDateLayout) + ".html"}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.ResolveReference(page).String(), nil
}

// ParsePageDate は、ページURLのファイル名部分から日付を復元します。
func (a *APODAdapter) ParsePageDate(pageURL string) (time.Time, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return time.Time{}, fmt.Errorf("ページURLの解析に失敗しました (url=%s): %w", pageURL, err)
	}
	m := apodPagePattern.FindStringSubmatch(path.Base(u.Path))
	if m == nil {
		return time.Time{}, fmt.Errorf("アーカイブページの形式ではありません (url=%s)", pageURL)
	}
	date, err := time.Parse(apodDateLayout, m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("ページ名の日付解析に失敗しました (url=%s): %w", pageURL, err)
	}
	return date, nil
}

// ExtractImageURL は、ページ内の最初の <img> 要素の src をページURLに対して解決します。
func (a *APODAdapter) ExtractImageURL(htmlBody []byte, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("ページURLの解析に失敗しました (url=%s): %w", pageURL, err)
	}

	doc, err := NewDocumentFromBytes(htmlBody)
	if err != nil {
		return "", fmt.Errorf("HTMLの解析に失敗しました (url=%s, size=%d bytes): %w", pageURL, len(htmlBody), err)
	}

	img := doc.Find("img").First()
	if img.Length() == 0 {
		return "", ErrNoImage
	}
	src, ok := img.Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return "", ErrNoImage
	}

	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("画像URLの解析に失敗しました (src=%s): %w", src, err)
	}
	return base.ResolveReference(ref).String(), nil
}
