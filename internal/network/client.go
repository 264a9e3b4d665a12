// Package network は、アーカイブサイトへのHTTP通信に関する機能を提供します。
// ホストごとのレート制限とタイムアウトを備えた、より高レベルな
// HTTPクライアントを実装しています。
package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"GoAstroASCII/internal/config"

	"golang.org/x/time/rate"
)

// maxBodyBytes は、1レスポンスあたりに読み込む最大バイト数です。
const maxBodyBytes = 64 << 20

// HTTPError は、HTTPリクエストで発生したエラーとステータスコードを保持します。
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsRetryable は、このエラーがリトライ可能かどうかを判定します。
// 4xxエラー（クライアントエラー）はリトライ不可、5xxエラー（サーバーエラー）はリトライ可能とします。
func (e *HTTPError) IsRetryable() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return false
	}
	return true
}

// Client は、ホストごとのレートリミッターを内包するHTTPクライアントです。
// 複数のgoroutineから同時に使用できます。
type Client struct {
	httpClient         *http.Client
	userAgent          string
	defaultHeaders     map[string]string
	rateLimiters       map[string]*rate.Limiter // ホスト名ごとのレートリミッター
	rateLimitersMutex  sync.Mutex               // rateLimitersへのアクセスを保護するMutex
	perDomainIntervals map[string]int           // ドメインごとの設定間隔
}

// NewClient は NetworkSettings に基づいて HTTP クライアントを初期化し、
// ドメインごとのレートリミッターを設定します。
func NewClient(settings config.NetworkSettings) *Client {
	timeout := settings.RequestTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second // デフォルトタイムアウト
	}

	rateLimiters := make(map[string]*rate.Limiter)
	for domain, intervalMillis := range settings.PerDomainIntervalMillis {
		if intervalMillis <= 0 {
			continue
		}
		rateLimiters[domain] = rate.NewLimiter(rate.Every(time.Duration(intervalMillis)*time.Millisecond), 1)
	}

	return &Client{
		httpClient:         &http.Client{Timeout: timeout},
		userAgent:          settings.UserAgent,
		defaultHeaders:     settings.DefaultHeaders,
		rateLimiters:       rateLimiters,
		perDomainIntervals: settings.PerDomainIntervalMillis,
	}
}

// Get は、指定されたURLにGETリクエストを送信し、レスポンスボディを文字列として返します。
func (c *Client) Get(ctx context.Context, reqURL string) (string, error) {
	body, err := c.GetBytes(ctx, reqURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetBytes は、指定されたURLにGETリクエストを送信し、レスポンスボディをバイト列として返します。
// 画像などのバイナリの取得に使用します。
func (c *Client) GetBytes(ctx context.Context, reqURL string) ([]byte, error) {
	parsedURL, err := url.Parse(reqURL)
	if err != nil {
		return nil, fmt.Errorf("リクエストURLの解析に失敗しました (%s): %w", reqURL, err)
	}

	// ドメインごとのレートリミッターで待機（Limiter自体はgoroutine安全）
	limiter := c.getLimiterForHost(parsedURL.Hostname())
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("レートリミッター待機中にエラーが発生しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("GETリクエストの作成に失敗しました (%s): %w", reqURL, err)
	}

	for key, value := range c.defaultHeaders {
		req.Header.Set(key, value)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GETリクエストの送信に失敗しました (%s): %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました (%s): %w", reqURL, err)
	}
	return body, nil
}

// getLimiterForHost は、指定されたホスト名に対応するレートリミッターを返します。
// 存在しない場合は新しく生成します。
func (c *Client) getLimiterForHost(host string) *rate.Limiter {
	c.rateLimitersMutex.Lock()
	defer c.rateLimitersMutex.Unlock()

	if limiter, exists := c.rateLimiters[host]; exists {
		return limiter
	}

	// 設定された間隔、またはデフォルトの1000ms間隔で新しいリミッターを生成
	intervalMillis := 1000
	if val, ok := c.perDomainIntervals[host]; ok && val > 0 {
		intervalMillis = val
	}

	newLimiter := rate.NewLimiter(rate.Every(time.Duration(intervalMillis)*time.Millisecond), 1)
	c.rateLimiters[host] = newLimiter
	return newLimiter
}
