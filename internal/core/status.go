package core

import (
	"fmt"
	"sync"
	"time"
)

// SessionStats はセッション統計情報を管理します。
// 複数のgoroutineから同時に更新できます。nil レシーバでの記録は何もしません。
type SessionStats struct {
	mu sync.Mutex
	s  StatsSnapshot
}

// StatsSnapshot は、ある時点での SessionStats の値です。
type StatsSnapshot struct {
	StartTime         time.Time `json:"start_time"`          // 起動時刻
	FetchAttempts     int       `json:"fetch_attempts"`      // アーカイブページの取得試行回数
	ArtworksGenerated int       `json:"artworks_generated"`  // 生成した作品数
	ArtworksPersisted int       `json:"artworks_persisted"`  // 保存した作品数
	Failures          int       `json:"failures"`            // 失敗した生成リクエスト数
	TotalBytesWritten int64     `json:"total_bytes_written"` // 保存した合計サイズ（バイト）
	LastError         string    `json:"last_error,omitempty"`
}

// NewSessionStats は、現在時刻を起動時刻とする SessionStats を返します。
func NewSessionStats() *SessionStats {
	return &SessionStats{s: StatsSnapshot{StartTime: time.Now()}}
}

func (s *SessionStats) update(fn func(*StatsSnapshot)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.s)
}

func (s *SessionStats) recordFetchAttempt() {
	s.update(func(v *StatsSnapshot) { v.FetchAttempts++ })
}

func (s *SessionStats) recordGenerated() {
	s.update(func(v *StatsSnapshot) { v.ArtworksGenerated++ })
}

func (s *SessionStats) recordPersisted(bytes int64) {
	s.update(func(v *StatsSnapshot) {
		v.ArtworksPersisted++
		v.TotalBytesWritten += bytes
	})
}

func (s *SessionStats) recordFailure(err error) {
	s.update(func(v *StatsSnapshot) {
		v.Failures++
		v.LastError = err.Error()
	})
}

// Snapshot は現在の統計情報のコピーを返します。
func (s *SessionStats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s
}

// FormatSessionInfo はセッション統計情報を文字列にフォーマットします。
func (s *SessionStats) FormatSessionInfo() string {
	v := s.Snapshot()
	uptime := time.Since(v.StartTime)
	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60

	// サイズをKB単位に変換
	sizeKB := float64(v.TotalBytesWritten) / 1024

	return fmt.Sprintf("起動: %dh%dm | 試行: %d | 生成: %d | 保存: %d | 失敗: %d | %.1fKB",
		hours, minutes, v.FetchAttempts, v.ArtworksGenerated, v.ArtworksPersisted, v.Failures, sizeKB)
}
