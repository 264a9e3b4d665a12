package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"GoAstroASCII/internal/model"
)

// GalleryIndexFile は、保存ディレクトリ内のインデックスファイル名です。
const GalleryIndexFile = "gallery.jsonl"

// Gallery は、保存済み作品の JSON Lines 形式のインデックスを管理します。
type Gallery struct {
	path string
	mu   sync.Mutex
}

// NewGallery は、dir 内の gallery.jsonl を対象とする Gallery を返します。
func NewGallery(dir string) *Gallery {
	return &Gallery{path: filepath.Join(dir, GalleryIndexFile)}
}

// Path は、インデックスファイルのパスを返します。
func (g *Gallery) Path() string {
	return g.path
}

// Append は、インデックスの末尾に1件追記します。
func (g *Gallery) Append(entry model.GalleryEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("ギャラリーエントリのシリアライズに失敗しました (name=%s): %w", entry.Name, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(g.path), 0755); err != nil {
		return fmt.Errorf("ギャラリーディレクトリの作成に失敗しました (path=%s): %w", filepath.Dir(g.path), err)
	}
	f, err := os.OpenFile(g.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("ギャラリーインデックスを開けませんでした (path=%s): %w", g.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("ギャラリーインデックスへの書き込みに失敗しました (path=%s): %w", g.path, err)
	}
	return nil
}

// List は、インデックスの全エントリを新しい順に返します。
// インデックスが存在しない場合は空のスライスを返します。解析できない行は読み飛ばします。
func (g *Gallery) List() ([]model.GalleryEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, err := os.Open(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.GalleryEntry{}, nil
		}
		return nil, fmt.Errorf("ギャラリーインデックスを開けませんでした (path=%s): %w", g.path, err)
	}
	defer f.Close()

	entries := []model.GalleryEntry{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e model.GalleryEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Printf("WARNING: ギャラリーインデックスの行を読み飛ばします (path=%s, line=%d): %v", g.path, lineNo, err)
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ギャラリーインデックスの読み込みに失敗しました (path=%s): %w", g.path, err)
	}

	slices.Reverse(entries)
	return entries, nil
}

// Replace は、インデックスを entries（新しい順）で置き換えます。
// 一時ファイルに書き込んでから置き換えるため、途中で失敗しても元のインデックスは残ります。
func (g *Gallery) Replace(entries []model.GalleryEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(g.path), GalleryIndexFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました (dir=%s): %w", filepath.Dir(g.path), err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := len(entries) - 1; i >= 0; i-- {
		if err := enc.Encode(entries[i]); err != nil {
			tmp.Close()
			return fmt.Errorf("ギャラリーエントリのシリアライズに失敗しました (name=%s): %w", entries[i].Name, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("一時ファイルへの書き込みに失敗しました (path=%s): %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("一時ファイルのクローズに失敗しました (path=%s): %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return fmt.Errorf("ギャラリーインデックスの置き換えに失敗しました (path=%s): %w", g.path, err)
	}
	return nil
}
