package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const compatibleVersion = "1.0"

// DefaultConfigPath は、-config が指定されなかった場合に読み込むパスです。
const DefaultConfigPath = "config.json"

// DefaultConfig は、設定ファイルが存在しない場合に使用される既定の設定を返します。
func DefaultConfig() *Config {
	cfg := &Config{ConfigVersion: compatibleVersion}
	applyDefaults(cfg)
	return cfg
}

// LoadAndResolve は、指定されたパスから設定ファイルを読み込み、解析と解決を行います。
// 既定のパス(config.json)が存在しない場合に限り、既定の設定を返します。
func LoadAndResolve(path string) (*Config, error) {
	absPath, _ := filepath.Abs(path)
	cwd, _ := os.Getwd()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("設定ファイル '%s' の読み込みに失敗しました (Abs: '%s', Cwd: '%s'): %w", path, absPath, cwd, err)
	}
	return ParseAndResolve(data)
}

// ParseAndResolve は、設定データのバイトスライスを解析し、既定値を補完して検証済みの設定を返します。
// この関数はテストのために分離されています。
func ParseAndResolve(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError

		if errors.As(err, &syntaxErr) {
			line, col := computeLineAndColumn(data, syntaxErr.Offset)
			return nil, fmt.Errorf("設定ファイルのJSON構文エラー (行 %d, 列 %d): %w", line, col, err)
		}
		if errors.As(err, &typeErr) {
			line, col := computeLineAndColumn(data, typeErr.Offset)
			return nil, fmt.Errorf("設定ファイルの型エラー (行 %d, 列 %d, フィールド '%s'): 期待値 %v, 実際 %v - %w",
				line, col, typeErr.Field, typeErr.Type, typeErr.Value, err)
		}
		return nil, fmt.Errorf("設定ファイルの解析に失敗しました: %w", err)
	}

	if cfg.ConfigVersion != compatibleVersion {
		return nil, fmt.Errorf("サポートされていない設定バージョン '%s' です。'%s' が必要です。", cfg.ConfigVersion, compatibleVersion)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults は、未設定(ゼロ値)のフィールドに既定値を設定します。
func applyDefaults(cfg *Config) {
	if cfg.Network.UserAgent == "" {
		cfg.Network.UserAgent = "GoAstroASCII/1.0 (+https://apod.nasa.gov/apod/)"
	}
	if cfg.Network.RequestTimeoutMillis <= 0 {
		cfg.Network.RequestTimeoutMillis = 30000
	}

	a := &cfg.Archive
	if a.SiteAdapter == "" {
		a.SiteAdapter = "apod"
	}
	if a.BaseURL == "" {
		a.BaseURL = "https://apod.nasa.gov/apod/"
	}
	// 相対パスの解決のため、ベースURLは必ず '/' で終わらせる
	if !strings.HasSuffix(a.BaseURL, "/") {
		a.BaseURL += "/"
	}
	if a.StartDate == "" {
		a.StartDate = "1995-06-16"
	}
	if a.EndDate == "" {
		a.EndDate = "2023-11-04"
	}
	if a.MaxAttempts == 0 {
		a.MaxAttempts = 10
	}
	if len(a.AcceptedExtensions) == 0 {
		a.AcceptedExtensions = []string{".jpg"}
	}
	if a.RetryCount == 0 {
		a.RetryCount = 2
	}
	if a.RetryWaitMillis == 0 {
		a.RetryWaitMillis = 1000
	}

	r := &cfg.Render
	if r.BlockSize == 0 {
		r.BlockSize = 10
	}
	if r.WidthScale == 0 {
		r.WidthScale = 0.6
	}
	if r.HeightScale == 0 {
		r.HeightScale = 1.4
	}
	if r.JPEGQuality == 0 {
		r.JPEGQuality = 75
	}

	if cfg.Storage.SaveDirectory == "" {
		cfg.Storage.SaveDirectory = "img"
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "0.0.0.0:8000"
	}
	if cfg.Server.RequestTimeoutMillis <= 0 {
		cfg.Server.RequestTimeoutMillis = 120000
	}
}

// Validate は、解決済みの設定値の整合性を検証します。
func (c *Config) Validate() error {
	if _, err := c.Archive.DateRange(); err != nil {
		return fmt.Errorf("archive 設定が不正です: %w", err)
	}
	if c.Archive.MaxAttempts < 0 {
		return fmt.Errorf("archive.max_attempts は正の値である必要があります (value=%d)", c.Archive.MaxAttempts)
	}
	if c.Archive.RetryCount < 0 {
		return fmt.Errorf("archive.retry_count は0以上である必要があります (value=%d)", c.Archive.RetryCount)
	}
	for _, ext := range c.Archive.AcceptedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("archive.accepted_extensions の値は '.' で始まる必要があります (value=%s)", ext)
		}
	}
	if c.Render.BlockSize < 0 {
		return fmt.Errorf("render.block_size は正の値である必要があります (value=%d)", c.Render.BlockSize)
	}
	if c.Render.WidthScale < 0 || c.Render.HeightScale < 0 {
		return fmt.Errorf("render のスケールは正の値である必要があります (width_scale=%v, height_scale=%v)", c.Render.WidthScale, c.Render.HeightScale)
	}
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return fmt.Errorf("render.jpeg_quality は1から100の範囲である必要があります (value=%d)", c.Render.JPEGQuality)
	}
	return nil
}

// computeLineAndColumn は、バイトオフセットから行番号と列番号（1始まり）を計算します。
func computeLineAndColumn(data []byte, offset int64) (int, int) {
	if offset < 0 || int(offset) > len(data) {
		return 0, 0
	}
	line := 1
	lastLineStart := 0
	for i, b := range data {
		if int64(i) == offset {
			return line, i - lastLineStart + 1
		}
		if b == '\n' {
			line++
			lastLineStart = i + 1
		}
	}
	return line, int(offset) - lastLineStart + 1
}
