package core

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat は、抽出した画像URLの拡張子が許可されていないことを示します。
var ErrUnsupportedFormat = errors.New("対応していない画像形式です")

// RetrievalError は、ページまたは画像の取得（ネットワーク）に失敗したことを表します。
type RetrievalError struct {
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("取得に失敗しました (url=%s): %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ParseError は、アーカイブページから画像参照を抽出できなかったことを表します。
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ページの解析に失敗しました (url=%s): %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoAssetFoundError は、試行回数の上限までに条件を満たす画像が見つからなかったことを表します。
// LastErr には最後の試行の失敗理由が入ります。
type NoAssetFoundError struct {
	Attempts int
	LastErr  error
}

func (e *NoAssetFoundError) Error() string {
	return fmt.Sprintf("%d回試行しましたが、対象の画像が見つかりませんでした: %v", e.Attempts, e.LastErr)
}

func (e *NoAssetFoundError) Unwrap() error { return e.LastErr }

// DecodeError は、取得したデータを画像としてデコードできなかったことを表します。
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("画像のデコードに失敗しました (url=%s): %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError は、作品の保存（ファイル書き込み）に失敗したことを表します。
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("保存に失敗しました (path=%s): %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
