// Package storage は、生成した作品のファイル保存、名前の生成、
// ギャラリーインデックスの管理に関する機能を提供します。
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// maxSuffixAttempts は、衝突回避のために試す連番の上限です。
const maxSuffixAttempts = 10000

// ErrNoFreeName は、連番の上限まで試しても空いているパスが見つからないことを示します。
var ErrNoFreeName = errors.New("空いているファイル名が見つかりません")

// suffixedPath は、拡張子の前に _n を付けたパスを返します (a.txt -> a_0.txt)。
func suffixedPath(path string, n int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + strconv.Itoa(n) + ext
}

// UniquePath は、現時点で存在しないパスを返します。
// path が空いていればそのまま、そうでなければ a_0.txt, a_1.txt ... の順に試します。
// 存在確認と作成の間に競合があり得るため、書き込みには CreateUnique を使用してください。
func UniquePath(path string) (string, error) {
	candidate := path
	for n := 0; n <= maxSuffixAttempts; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("ファイルの存在確認に失敗しました (path=%s): %w", candidate, err)
		}
		candidate = suffixedPath(path, n)
	}
	return "", fmt.Errorf("%w (path=%s, attempts=%d)", ErrNoFreeName, path, maxSuffixAttempts)
}

// CreateUnique は、UniquePath と同じ順序で名前を試し、O_EXCL で排他的に作成したファイルを返します。
// 同じ名前を同時に作成しようとした場合でも、一方は次の連番に進みます。
func CreateUnique(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("保存ディレクトリの作成に失敗しました (path=%s): %w", filepath.Dir(path), err)
	}

	candidate := path
	for n := 0; n <= maxSuffixAttempts; n++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("ファイルの作成に失敗しました (path=%s): %w", candidate, err)
		}
		candidate = suffixedPath(path, n)
	}
	return nil, fmt.Errorf("%w (path=%s, attempts=%d)", ErrNoFreeName, path, maxSuffixAttempts)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]+`)

// SanitizeFilename は、ファイル名として安全な文字だけを残します。
func SanitizeFilename(name string) string {
	name = unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "artwork"
	}
	return name
}
