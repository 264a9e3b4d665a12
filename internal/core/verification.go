package core

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"

	"GoAstroASCII/internal/model"
	"GoAstroASCII/internal/storage"
)

// VerificationResult は検証結果を表します。
type VerificationResult struct {
	TotalChecked   int
	TotalMissing   int // ファイルが存在しないエントリ数
	TotalCorrupt   int // サイズ0、またはJPEGとして読めないエントリ数
	TotalRepaired  int // 修復モードでインデックスから除いたエントリ数
	MissingDetails []string
}

// Healthy は、問題が見つからなかった場合に true を返します。
func (r VerificationResult) Healthy() bool {
	return r.TotalMissing == 0 && r.TotalCorrupt == 0
}

// VerifyGallery は、ギャラリーインデックスの各エントリについて保存済みファイルを検証します。
// repair が true の場合、壊れたファイルを削除し、問題のあるエントリをインデックスから除きます。
func VerifyGallery(ctx context.Context, gallery *storage.Gallery, saveDir string, repair bool, logger *log.Logger) (VerificationResult, error) {
	result := VerificationResult{}
	if logger == nil {
		logger = log.Default()
	}
	if gallery == nil {
		return result, errors.New("ギャラリーインデックスが無効になっています (storage.enable_gallery_index)")
	}

	if repair {
		logger.Println("INFO: 修復モード: 有効 (問題のあるエントリを削除します)")
	} else {
		logger.Println("INFO: 修復モード: 無効 (検証のみ行います)")
	}

	entries, err := gallery.List()
	if err != nil {
		return result, err
	}

	kept := make([]model.GalleryEntry, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.TotalChecked++

		path := filepath.Join(saveDir, filepath.Base(entry.File))
		problem, err := checkArtworkFile(path)
		switch {
		case err == nil:
			kept = append(kept, entry)
			continue
		case problem == problemMissing:
			result.TotalMissing++
		default:
			result.TotalCorrupt++
			if repair {
				if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
					logger.Printf("WARNING: 破損ファイルの削除に失敗しました (path=%s): %v", path, rmErr)
				}
			}
		}
		logger.Printf("WARNING: 作品 %s に問題があります (path=%s): %v", entry.Name, path, err)
		result.MissingDetails = append(result.MissingDetails, fmt.Sprintf("[%s] %v", entry.File, err))
	}

	if repair && !result.Healthy() {
		if err := gallery.Replace(kept); err != nil {
			return result, &StorageError{Path: gallery.Path(), Err: err}
		}
		result.TotalRepaired = len(entries) - len(kept)
	}

	logger.Printf("INFO: 検証完了: チェック %d 件, 欠損 %d 件, 破損 %d 件, 修復 %d 件",
		result.TotalChecked, result.TotalMissing, result.TotalCorrupt, result.TotalRepaired)
	return result, nil
}

type fileProblem int

const (
	problemNone fileProblem = iota
	problemMissing
	problemCorrupt
)

// checkArtworkFile は、保存済みの作品がJPEGとして読み込めるかを確認します。
func checkArtworkFile(path string) (fileProblem, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return problemMissing, errors.New("ファイルが見つかりません")
		}
		return problemCorrupt, fmt.Errorf("ファイルを開けません: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return problemCorrupt, fmt.Errorf("ファイル情報を取得できません: %w", err)
	}
	if info.Size() == 0 {
		return problemCorrupt, errors.New("サイズ0です")
	}
	if _, err := jpeg.DecodeConfig(f); err != nil {
		return problemCorrupt, fmt.Errorf("JPEGとして読み込めません: %w", err)
	}
	return problemNone, nil
}
