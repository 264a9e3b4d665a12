// Package config は、アプリケーションの設定ファイル(config.json)の構造定義と、
// その読み込み、既定値の補完、検証に関する機能を提供します。
package config

import (
	"fmt"
	"time"

	"GoAstroASCII/internal/model"
)

// Config は config.json ファイル全体を表すルート構造体です。
type Config struct {
	ConfigVersion string          `json:"config_version"`
	Network       NetworkSettings `json:"network"`
	Archive       ArchiveSettings `json:"archive"`
	Render        RenderSettings  `json:"render"`
	Storage       StorageSettings `json:"storage"`
	Server        ServerSettings  `json:"server"`
	EnableLogFile bool            `json:"enable_log_file"`
	LogFilePath   string          `json:"log_file_path,omitempty"`
}

// NetworkSettings は、HTTPリクエストに関するグローバルな設定を保持します。
type NetworkSettings struct {
	UserAgent               string            `json:"user_agent"`
	DefaultHeaders          map[string]string `json:"default_headers"`
	PerDomainIntervalMillis map[string]int    `json:"per_domain_interval_ms"`
	RequestTimeoutMillis    int               `json:"request_timeout_ms"`
}

// ArchiveSettings は、日付アーカイブからの画像取得に関する設定です。
type ArchiveSettings struct {
	SiteAdapter        string   `json:"site_adapter,omitempty"`
	BaseURL            string   `json:"base_url,omitempty"`
	StartDate          string   `json:"start_date,omitempty"` // 2006-01-02
	EndDate            string   `json:"end_date,omitempty"`
	MaxAttempts        int      `json:"max_attempts,omitempty"`
	AcceptedExtensions []string `json:"accepted_extensions,omitempty"`
	RetryCount         int      `json:"retry_count,omitempty"`
	RetryWaitMillis    int      `json:"retry_wait_ms,omitempty"`
}

// RenderSettings は、ASCIIアートの変換と再描画に関する設定です。
type RenderSettings struct {
	BlockSize   int     `json:"block_size,omitempty"`
	WidthScale  float64 `json:"width_scale,omitempty"`
	HeightScale float64 `json:"height_scale,omitempty"`
	JPEGQuality int     `json:"jpeg_quality,omitempty"`
}

// StorageSettings は、生成した画像の保存先に関する設定です。
type StorageSettings struct {
	SaveDirectory      string `json:"save_directory,omitempty"`
	VocabularyPath     string `json:"vocabulary_path,omitempty"`
	EnableGalleryIndex *bool  `json:"enable_gallery_index,omitempty"`
}

// ServerSettings は、Web UIサーバーの設定です。
type ServerSettings struct {
	ListenAddress        string `json:"listen_address,omitempty"`
	RequestTimeoutMillis int    `json:"request_timeout_ms,omitempty"`
}

// GalleryIndexEnabled は、ギャラリーインデックスへの追記が有効かどうかを返します。
// 未指定の場合は有効です。
func (s StorageSettings) GalleryIndexEnabled() bool {
	return s.EnableGalleryIndex == nil || *s.EnableGalleryIndex
}

// DateRange は、設定された開始日と終了日を model.DateRange に変換します。
func (a ArchiveSettings) DateRange() (model.DateRange, error) {
	start, err := time.Parse(time.DateOnly, a.StartDate)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("start_date の解析に失敗しました (value=%s): %w", a.StartDate, err)
	}
	end, err := time.Parse(time.DateOnly, a.EndDate)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("end_date の解析に失敗しました (value=%s): %w", a.EndDate, err)
	}
	r := model.DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return model.DateRange{}, err
	}
	return r, nil
}

// RequestTimeout は、ネットワークのタイムアウトを time.Duration で返します。
func (n NetworkSettings) RequestTimeout() time.Duration {
	return time.Duration(n.RequestTimeoutMillis) * time.Millisecond
}

// RetryWait は、画像ダウンロードのリトライ間隔を返します。
func (a ArchiveSettings) RetryWait() time.Duration {
	return time.Duration(a.RetryWaitMillis) * time.Millisecond
}
