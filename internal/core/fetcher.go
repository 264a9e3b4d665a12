// Package core は、アプリケーションの中核となるビジネスロジックを実装します。
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"path"
	"strings"
	"time"

	"GoAstroASCII/internal/adapter"
	"GoAstroASCII/internal/config"
	"GoAstroASCII/internal/model"
	"GoAstroASCII/internal/network"
)

// HTTPGetter は、ページと画像の取得に使用するHTTPクライアントです。
// *network.Client がこれを満たします。
type HTTPGetter interface {
	Get(ctx context.Context, url string) (string, error)
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Fetcher は、ランダムな日付のアーカイブページから画像URLを取得します。
type Fetcher struct {
	client      HTTPGetter
	adapter     adapter.ArchiveAdapter
	baseURL     string
	extensions  []string
	maxAttempts int
	logger      *log.Logger
	stats       *SessionStats

	// intN は [0, n) の一様乱数を返します。テストで差し替えられます。
	intN func(n int) int
}

// NewFetcher は、アーカイブ設定に基づいて Fetcher を初期化します。
func NewFetcher(client HTTPGetter, settings config.ArchiveSettings, logger *log.Logger) (*Fetcher, error) {
	siteAdapter, err := adapter.GetAdapter(settings.SiteAdapter)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	maxAttempts := settings.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Fetcher{
		client:      client,
		adapter:     siteAdapter,
		baseURL:     settings.BaseURL,
		extensions:  settings.AcceptedExtensions,
		maxAttempts: maxAttempts,
		logger:      logger,
		intN:        rand.Intn,
	}, nil
}

// RandomDate は、範囲内（両端を含む）から一様に日付を選びます。
func (f *Fetcher) RandomDate(r model.DateRange) time.Time {
	offset := f.intN(r.Days() + 1)
	return r.Start.AddDate(0, 0, offset)
}

// FetchImageURL は、範囲内のランダムな日付のページから、許可された拡張子の画像URLを取得します。
//
// 画像要素がない、ページが存在しない(4xx)、拡張子が許可されていない場合は別の日付で再試行し、
// maxAttempts 回で NoAssetFoundError を返します。通信エラーと5xxは RetrievalError として即座に返します。
func (f *Fetcher) FetchImageURL(ctx context.Context, r model.DateRange) (model.ArchivePage, string, error) {
	if err := r.Validate(); err != nil {
		return model.ArchivePage{}, "", err
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.ArchivePage{}, "", &RetrievalError{URL: f.baseURL, Err: err}
		}

		date := f.RandomDate(r)
		pageURL, err := f.adapter.BuildPageURL(f.baseURL, date)
		if err != nil {
			return model.ArchivePage{}, "", fmt.Errorf("ページURLの構築に失敗しました (date=%s): %w", date.Format(time.DateOnly), err)
		}
		f.stats.recordFetchAttempt()

		body, err := f.client.Get(ctx, pageURL)
		if err != nil {
			var httpErr *network.HTTPError
			if errors.As(err, &httpErr) && !httpErr.IsRetryable() {
				f.logger.Printf("WARNING: ページが取得できないため別の日付で再試行します (試行 %d/%d, url=%s, status=%d)", attempt, f.maxAttempts, pageURL, httpErr.StatusCode)
				lastErr = &RetrievalError{URL: pageURL, Err: err}
				continue
			}
			return model.ArchivePage{}, "", &RetrievalError{URL: pageURL, Err: err}
		}

		imageURL, err := f.adapter.ExtractImageURL([]byte(body), pageURL)
		if err != nil {
			f.logger.Printf("WARNING: 画像参照が見つからないため別の日付で再試行します (試行 %d/%d, url=%s): %v", attempt, f.maxAttempts, pageURL, err)
			lastErr = &ParseError{URL: pageURL, Err: err}
			continue
		}

		if !f.accepts(imageURL) {
			f.logger.Printf("INFO: 対象外の形式のため別の日付で再試行します (試行 %d/%d, url=%s)", attempt, f.maxAttempts, imageURL)
			lastErr = fmt.Errorf("%w (url=%s)", ErrUnsupportedFormat, imageURL)
			continue
		}

		return model.ArchivePage{Date: date, URL: pageURL}, imageURL, nil
	}

	return model.ArchivePage{}, "", &NoAssetFoundError{Attempts: f.maxAttempts, LastErr: lastErr}
}

// accepts は、URLのパスの拡張子が許可リストに含まれるかを大文字小文字を区別せずに判定します。
func (f *Fetcher) accepts(imageURL string) bool {
	u, err := url.Parse(imageURL)
	if err != nil {
		return false
	}
	ext := path.Ext(u.Path)
	for _, allowed := range f.extensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
