package storage

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"GoAstroASCII/internal/model"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました (path=%s): %v", path, err)
	}
}

// --- Test for UniquePath ---

func TestUniquePath(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	base := filepath.Join(dir, "a.txt")

	// Act & Assert: 存在しなければそのまま
	got, err := UniquePath(base)
	if err != nil {
		t.Fatalf("UniquePathが予期せぬエラーを返しました: %v", err)
	}
	if got != base {
		t.Errorf("空いているパスがそのまま返されませんでした: %s", got)
	}

	// a.txt が存在 -> a_0.txt
	touch(t, base)
	got, _ = UniquePath(base)
	if want := filepath.Join(dir, "a_0.txt"); got != want {
		t.Errorf("期待値: %s, 実際値: %s", want, got)
	}

	// a_0.txt も存在 -> a_1.txt
	touch(t, filepath.Join(dir, "a_0.txt"))
	got, _ = UniquePath(base)
	if want := filepath.Join(dir, "a_1.txt"); got != want {
		t.Errorf("期待値: %s, 実際値: %s", want, got)
	}
	if _, err := os.Stat(got); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("返されたパスが既に存在しています: %s", got)
	}
}

func TestUniquePath_NoExtension(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "artwork")
	touch(t, base)

	got, err := UniquePath(base)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "artwork_0"); got != want {
		t.Errorf("期待値: %s, 実際値: %s", want, got)
	}
}

// --- Test for CreateUnique ---

func TestCreateUnique_Concurrent(t *testing.T) {
	// Arrange
	dir := filepath.Join(t.TempDir(), "nested")
	base := filepath.Join(dir, "glowing_comet.jpg")
	const workers = 8

	// Act: 同じ名前で同時に作成
	var wg sync.WaitGroup
	names := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := CreateUnique(base)
			if err != nil {
				t.Errorf("CreateUniqueが予期せぬエラーを返しました: %v", err)
				return
			}
			names <- f.Name()
			f.Close()
		}()
	}
	wg.Wait()
	close(names)

	// Assert: 全て異なるパスであること
	seen := make(map[string]bool)
	for n := range names {
		if seen[n] {
			t.Errorf("同じパスが2回作成されました: %s", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Errorf("作成されたファイル数が期待値と異なります。期待値: %d, 実際値: %d", workers, len(seen))
	}
	if !seen[base] || !seen[filepath.Join(dir, "glowing_comet_0.jpg")] {
		t.Errorf("連番の付け方が期待と異なります: %v", seen)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"glowing_comet":   "glowing_comet",
		"../etc/passwd":   "etc_passwd",
		"  space name  ":  "space_name",
		"":                "artwork",
		"日本語":             "artwork",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, 期待値: %q", in, got, want)
		}
	}
}

// --- Test for Vocabulary ---

func TestLoadVocabulary_Default(t *testing.T) {
	v, err := LoadVocabulary("")
	if err != nil {
		t.Fatalf("組み込みの単語リストの読み込みに失敗しました: %v", err)
	}

	label := v.Label()
	parts := strings.Split(label, "_")
	if len(parts) != 2 {
		t.Fatalf("名前が verb_noun 形式ではありません: %s", label)
	}
	if !slices.Contains(v.Verbs, parts[0]) || !slices.Contains(v.Nouns, parts[1]) {
		t.Errorf("名前が単語リストに含まれない単語を使っています: %s", label)
	}
}

func TestLoadVocabulary_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	if err := os.WriteFile(path, []byte(`{"present_tense_verbs": ["running"], "nouns": ["comet"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	v, err := LoadVocabulary(path)
	if err != nil {
		t.Fatalf("単語リストの読み込みに失敗しました: %v", err)
	}
	if got := v.Label(); got != "running_comet" {
		t.Errorf("名前が期待値と異なります: %s", got)
	}

	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("存在しないファイルでエラーが返されませんでした。")
	}
	if _, err := ParseVocabulary([]byte(`{"present_tense_verbs": [], "nouns": ["comet"]}`)); err == nil {
		t.Error("空の動詞リストでエラーが返されませんでした。")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("running_comet"); got != "Running Comet" {
		t.Errorf("表示名が期待値と異なります: %s", got)
	}
}

// --- Test for Gallery ---

func TestGallery_AppendAndList(t *testing.T) {
	// Arrange
	g := NewGallery(filepath.Join(t.TempDir(), "img"))

	empty, err := g.List()
	if err != nil {
		t.Fatalf("空のインデックスでエラーが返されました: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("空のインデックスからエントリが返されました: %v", empty)
	}

	// Act
	for _, name := range []string{"first", "second"} {
		err := g.Append(model.GalleryEntry{Name: name, File: name + ".jpg", CreatedAt: time.Now()})
		if err != nil {
			t.Fatalf("Appendが失敗しました: %v", err)
		}
	}
	// 壊れた行は読み飛ばされる
	f, err := os.OpenFile(g.Path(), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{broken\n")
	f.Close()

	entries, err := g.List()

	// Assert
	if err != nil {
		t.Fatalf("Listが失敗しました: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("エントリ数が期待値と異なります。期待値: 2, 実際値: %d", len(entries))
	}
	if entries[0].Name != "second" || entries[1].Name != "first" {
		t.Errorf("エントリが新しい順になっていません: %v", entries)
	}
}

func TestGallery_Replace(t *testing.T) {
	g := NewGallery(t.TempDir())
	for _, name := range []string{"a", "b", "c"} {
		if err := g.Append(model.GalleryEntry{Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := g.List() // c, b, a

	if err := g.Replace([]model.GalleryEntry{entries[0], entries[2]}); err != nil {
		t.Fatalf("Replaceが失敗しました: %v", err)
	}

	got, err := g.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "c" || got[1].Name != "a" {
		t.Errorf("置き換え後のエントリが期待と異なります: %+v", got)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(g.Path()), "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("一時ファイルが残っています: %v", matches)
	}
}
