// Package webui は、アスキーアートの生成と閲覧のためのWebインターフェースを提供します。
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"GoAstroASCII/internal/config"
	"GoAstroASCII/internal/core"
	"GoAstroASCII/internal/model"
	"GoAstroASCII/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed embed
var embeddedAssets embed.FS

// ArtworkGenerator は、Webサーバーが使用する作品生成の操作です。
// *core.Generator がこれを満たします。
type ArtworkGenerator interface {
	Generate(ctx context.Context) (*model.Artwork, error)
	Persist(art *model.Artwork) (string, error)
	EncodeForTransport(art *model.Artwork) (string, error)
	Stats() *core.SessionStats
	Gallery() *storage.Gallery
	SaveDirectory() string
}

// Server は、ルーティングとテンプレートを保持するWebサーバーです。
type Server struct {
	gen            ArtworkGenerator
	logger         *log.Logger
	pages          map[string]*template.Template
	static         fs.FS
	requestTimeout time.Duration
}

var pageFiles = []string{"index.html", "about.html", "new_art.html", "gallery.html", "error.html"}

// NewServer は、埋め込みテンプレートを解析して Server を初期化します。
func NewServer(gen ArtworkGenerator, settings config.ServerSettings, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	funcs := template.FuncMap{"displayName": storage.DisplayName}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(embeddedAssets, "embed/layout.html", "embed/"+name)
		if err != nil {
			return nil, fmt.Errorf("テンプレート '%s' の解析に失敗しました: %w", name, err)
		}
		pages[name] = tmpl
	}

	staticFS, err := fs.Sub(embeddedAssets, "embed/static")
	if err != nil {
		return nil, fmt.Errorf("埋め込み静的ファイルの読み込みに失敗しました: %w", err)
	}

	timeout := time.Duration(settings.RequestTimeoutMillis) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Server{gen: gen, logger: logger, pages: pages, static: staticFS, requestTimeout: timeout}, nil
}

// Router は、全てのルートを登録した http.Handler を返します。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	for _, p := range []string{"/", "/index", "/My_Art"} {
		r.Get(p, s.page("index.html"))
	}
	r.Get("/about", s.page("about.html"))
	r.Get("/create_art", s.handleCreateArt)
	r.Get("/gallery", s.handleGallery)
	r.Get("/api/status", s.handleStatus)

	r.Handle("/art/*", http.StripPrefix("/art/", jpegOnly(http.FileServer(http.Dir(s.gen.SaveDirectory())))))

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))

	return r
}

// ListenAndServe は addr で待ち受け、ctx がキャンセルされると安全にシャットダウンします。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("INFO: Web UIサーバーを http://%s で起動します。", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("Web UIサーバーが異常終了しました (addr=%s): %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Println("INFO: Web UIサーバーのシャットダウンを開始します...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("Web UIサーバーのシャットダウンに失敗しました: %w", err)
	}
	s.logger.Println("INFO: Web UIサーバーがシャットダウンしました。")
	return nil
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Printf("INFO: %s %s -> %d (%v, req=%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

func (s *Server) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, name, nil)
	}
}

// newArtView は new_art.html に渡す値です。
type newArtView struct {
	FileName  string
	ImgData   template.URL
	ASCII     string
	SourceURL string
	PageURL   string
	Date      string
	SavedAs   string
}

func (s *Server) handleCreateArt(w http.ResponseWriter, r *http.Request) {
	art, err := s.gen.Generate(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	encoded, err := s.gen.EncodeForTransport(art)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	view := newArtView{
		FileName:  storage.DisplayName(art.Label),
		ImgData:   template.URL("data:image/jpeg;base64," + encoded),
		ASCII:     art.ASCII.Text(),
		SourceURL: art.SourceURL,
		PageURL:   art.PageURL,
		Date:      art.Date.Format(time.DateOnly),
	}

	if r.URL.Query().Get("save") == "1" {
		savedPath, err := s.gen.Persist(art)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		view.SavedAs = filepath.Base(savedPath)
	}

	s.render(w, http.StatusOK, "new_art.html", view)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	entries := []model.GalleryEntry{}
	if g := s.gen.Gallery(); g != nil {
		list, err := g.List()
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		entries = list
	}
	s.render(w, http.StatusOK, "gallery.html", struct {
		Enabled bool
		Entries []model.GalleryEntry
	}{s.gen.Gallery() != nil, entries})
}

// statusResponse は /api/status のレスポンスです。
type statusResponse struct {
	SessionInfo string             `json:"session_info"`
	Stats       core.StatsSnapshot `json:"stats"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.gen.Stats()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statusResponse{SessionInfo: stats.FormatSessionInfo(), Stats: stats.Snapshot()}); err != nil {
		s.logger.Printf("ERROR: ステータスJSONのエンコードに失敗しました: %v", err)
	}
}

// statusFor は、生成時のエラーをHTTPステータスに対応付けます。
// 上流（アーカイブサイト）側の失敗は 502、タイムアウトは 504、それ以外は 500 です。
func statusFor(err error) int {
	var retrievalErr *core.RetrievalError
	var noAssetErr *core.NoAssetFoundError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &retrievalErr), errors.As(err, &noAssetErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logger.Printf("ERROR: リクエストの処理に失敗しました (path=%s, status=%d, req=%s): %v", r.URL.Path, status, middleware.GetReqID(r.Context()), err)
	s.render(w, status, "error.html", struct {
		Status int
		Title  string
	}{status, http.StatusText(status)})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Printf("ERROR: テンプレート '%s' が見つかりません", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.logger.Printf("ERROR: テンプレート '%s' の描画に失敗しました: %v", name, err)
	}
}

// jpegOnly は、保存ディレクトリのうち .jpg ファイルだけを公開します。
func jpegOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) != ".jpg" {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
