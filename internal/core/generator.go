package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"GoAstroASCII/internal/asciiart"
	"GoAstroASCII/internal/config"
	"GoAstroASCII/internal/model"
	"GoAstroASCII/internal/network"
	"GoAstroASCII/internal/storage"
)

// Generator は、画像の取得からアスキーアートの生成・保存までを担当します。
type Generator struct {
	fetcher    *Fetcher
	client     HTTPGetter
	rasterizer *asciiart.Rasterizer
	vocabulary *storage.Vocabulary
	gallery    *storage.Gallery // 無効な場合は nil
	stats      *SessionStats
	logger     *log.Logger

	dateRange   model.DateRange
	saveDir     string
	jpegQuality int
	retryCount  int
	retryWait   time.Duration
}

// NewGenerator は、設定に基づいて Generator と依存コンポーネントを初期化します。
// 単語リストはここで1回だけ読み込まれます。
func NewGenerator(cfg *config.Config, client HTTPGetter, logger *log.Logger) (*Generator, error) {
	if logger == nil {
		logger = log.Default()
	}

	dateRange, err := cfg.Archive.DateRange()
	if err != nil {
		return nil, err
	}
	fetcher, err := NewFetcher(client, cfg.Archive, logger)
	if err != nil {
		return nil, err
	}
	vocabulary, err := storage.LoadVocabulary(cfg.Storage.VocabularyPath)
	if err != nil {
		return nil, err
	}

	stats := NewSessionStats()
	fetcher.stats = stats

	g := &Generator{
		fetcher: fetcher,
		client:  client,
		rasterizer: asciiart.New(
			asciiart.WithBlockSize(cfg.Render.BlockSize),
			asciiart.WithCanvasScale(cfg.Render.WidthScale, cfg.Render.HeightScale),
		),
		vocabulary:  vocabulary,
		stats:       stats,
		logger:      logger,
		dateRange:   dateRange,
		saveDir:     cfg.Storage.SaveDirectory,
		jpegQuality: cfg.Render.JPEGQuality,
		retryCount:  cfg.Archive.RetryCount,
		retryWait:   cfg.Archive.RetryWait(),
	}
	if cfg.Storage.GalleryIndexEnabled() {
		g.gallery = storage.NewGallery(cfg.Storage.SaveDirectory)
	}
	return g, nil
}

// Stats は、このジェネレータのセッション統計情報を返します。
func (g *Generator) Stats() *SessionStats { return g.stats }

// Gallery は、ギャラリーインデックスを返します。無効な場合は nil です。
func (g *Generator) Gallery() *storage.Gallery { return g.gallery }

// SaveDirectory は、作品の保存先ディレクトリを返します。
func (g *Generator) SaveDirectory() string { return g.saveDir }

// Generate は、ランダムな日付の画像を取得してアスキーアート作品を生成します。
// 作品はディスクに保存されません。
func (g *Generator) Generate(ctx context.Context) (*model.Artwork, error) {
	art, err := g.generate(ctx)
	if err != nil {
		g.stats.recordFailure(err)
		return nil, err
	}
	g.stats.recordGenerated()
	return art, nil
}

func (g *Generator) generate(ctx context.Context) (*model.Artwork, error) {
	page, imageURL, err := g.fetcher.FetchImageURL(ctx, g.dateRange)
	if err != nil {
		return nil, err
	}

	data, err := g.downloadImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	img, format, err := asciiart.Decode(data)
	if err != nil {
		return nil, &DecodeError{URL: imageURL, Err: err}
	}

	ascii, rendered, err := g.rasterizer.Rasterize(img)
	if err != nil {
		return nil, &DecodeError{URL: imageURL, Err: err}
	}

	label := g.vocabulary.Label()
	g.logger.Printf("INFO: 作品を生成しました (name=%s, date=%s, format=%s, grid=%dx%d, url=%s)",
		label, page.Date.Format(time.DateOnly), format, ascii.Columns(), len(ascii.Rows), imageURL)

	return &model.Artwork{
		Label:     label,
		SourceURL: imageURL,
		PageURL:   page.URL,
		Date:      page.Date,
		ASCII:     ascii,
		Rendered:  rendered,
	}, nil
}

// downloadImage は、画像をダウンロードします。
// 404などの恒久的なエラーの場合はリトライせず即座に失敗します。
func (g *Generator) downloadImage(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= g.retryCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &RetrievalError{URL: url, Err: err}
		}

		data, err := g.client.GetBytes(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var httpErr *network.HTTPError
		if errors.As(err, &httpErr) {
			if !httpErr.IsRetryable() {
				g.logger.Printf("ERROR: 画像のダウンロードに失敗しました（リトライ不可、HTTP %d）: url=%s", httpErr.StatusCode, url)
				return nil, &RetrievalError{URL: url, Err: err}
			}
			g.logger.Printf("WARNING: 画像のダウンロードに失敗しました（リトライ可能、HTTP %d、試行 %d/%d）: url=%s", httpErr.StatusCode, i+1, g.retryCount+1, url)
		} else {
			g.logger.Printf("WARNING: 画像のダウンロードに失敗しました（ネットワークエラー、試行 %d/%d）: url=%s, error=%v", i+1, g.retryCount+1, url, err)
		}

		if i < g.retryCount {
			select {
			case <-ctx.Done():
				return nil, &RetrievalError{URL: url, Err: ctx.Err()}
			case <-time.After(g.retryWait):
			}
		}
	}
	return nil, &RetrievalError{URL: url, Err: fmt.Errorf("リトライ上限に達しました (retry_count=%d): %w", g.retryCount, lastErr)}
}

// Persist は、作品をJPEGとして保存ディレクトリに書き込み、保存先のパスを返します。
// 同名のファイルが存在する場合は連番を付けます。
func (g *Generator) Persist(art *model.Artwork) (string, error) {
	base := filepath.Join(g.saveDir, storage.SanitizeFilename(art.Label)+".jpg")
	f, err := storage.CreateUnique(base)
	if err != nil {
		g.stats.recordFailure(err)
		return "", &StorageError{Path: base, Err: err}
	}
	path := f.Name()

	counter := &countingWriter{w: f}
	if err := asciiart.EncodeJPEG(counter, art.Rendered, g.jpegQuality); err != nil {
		f.Close()
		os.Remove(path)
		g.stats.recordFailure(err)
		return "", &StorageError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		g.stats.recordFailure(err)
		return "", &StorageError{Path: path, Err: err}
	}
	g.stats.recordPersisted(counter.n)

	if g.gallery != nil {
		entry := model.GalleryEntry{
			Name:      art.Label,
			File:      filepath.Base(path),
			SourceURL: art.SourceURL,
			PageURL:   art.PageURL,
			Date:      art.Date.Format(time.DateOnly),
			CreatedAt: time.Now(),
		}
		if err := g.gallery.Append(entry); err != nil {
			g.logger.Printf("WARNING: ギャラリーインデックスへの追記に失敗しました (path=%s): %v", path, err)
		}
	}

	g.logger.Printf("INFO: 作品を保存しました (path=%s, size=%d bytes)", path, counter.n)
	return path, nil
}

// EncodeForTransport は、作品の画像をBase64エンコードしたJPEGとして返します。
func (g *Generator) EncodeForTransport(art *model.Artwork) (string, error) {
	encoded, err := asciiart.EncodeBase64JPEG(art.Rendered, g.jpegQuality)
	if err != nil {
		return "", fmt.Errorf("作品のエンコードに失敗しました (name=%s): %w", art.Label, err)
	}
	return encoded, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
