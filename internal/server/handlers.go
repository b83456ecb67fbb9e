package server

import (
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kolamstudio/kolamstudio/internal/store"
	"github.com/kolamstudio/kolamstudio/pkg/cache"
	"github.com/kolamstudio/kolamstudio/pkg/errors"
	"github.com/kolamstudio/kolamstudio/pkg/kolam"
	"github.com/kolamstudio/kolamstudio/pkg/observability"
)

// maxUploadBytes bounds evaluate uploads (canvas exports are small PNGs).
const maxUploadBytes = 10 << 20

type generateRequest struct {
	Size   int     `json:"size"`
	Theme  string  `json:"theme"`
	Seed   *uint64 `json:"seed,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleGenerate renders a kolam PNG. Seeded requests are deterministic
// and served from the render cache when possible.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Theme == "" {
		req.Theme = s.cfg.Generator.Theme
	}
	if req.Width <= 0 {
		req.Width = s.cfg.Generator.ImageWidth
	}
	if req.Height <= 0 {
		req.Height = s.cfg.Generator.ImageHeight
	}

	theme, err := kolam.ThemeByName(req.Theme)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var key string
	if req.Seed != nil {
		key = s.keyer.RenderKey(cache.RenderKeyOpts{
			Size:   req.Size,
			Theme:  theme.Name,
			Seed:   *req.Seed,
			Width:  req.Width,
			Height: req.Height,
		})
		if data, ok, _ := s.cache.Get(r.Context(), key); ok {
			s.writePNG(w, data)
			return
		}
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	start := time.Now()
	observability.Studio().OnGenerateStart(r.Context(), req.Size, theme.Name)
	design, err := kolam.Generate(req.Size, kolam.NewRand(seed))
	if err != nil {
		observability.Studio().OnGenerateComplete(r.Context(), req.Size, theme.Name, 0, time.Since(start), err)
		s.writeError(w, err)
		return
	}

	data, err := kolam.RenderPNG(design,
		kolam.WithTheme(theme),
		kolam.WithDimensions(req.Width, req.Height),
	)
	observability.Studio().OnGenerateComplete(r.Context(), req.Size, theme.Name, len(design.Dots), time.Since(start), err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if key != "" {
		if err := s.cache.Set(r.Context(), key, data, cache.TTLRender); err != nil {
			s.log.Warn("cache render", "err", err)
		}
	}
	s.writePNG(w, data)
}

// handleEvaluate forwards an uploaded canvas export to the evaluator and
// relays the verdict.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if s.eval == nil {
		http.Error(w, "evaluator not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}

	verdict, err := s.eval.Submit(r.Context(), header.Filename, image)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(verdict.Raw)
}

type createPostRequest struct {
	Author   string `json:"author"`
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	post := store.NewPost(req.Author, req.Caption, req.ImageURL)
	if err := s.posts.Create(r.Context(), post); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context(), 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if posts == nil {
		posts = []store.Post{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// writeError maps structured error codes to HTTP statuses and emits the
// user-facing message as plain text.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSize, errors.ErrCodeInvalidTheme,
		errors.ErrCodeInvalidImage, errors.ErrCodeInvalidTool, errors.ErrCodeInvalidColor:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePostNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeBusy:
		status = http.StatusConflict
	case errors.ErrCodeNetwork:
		status = http.StatusBadGateway
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}
	if status >= 500 {
		s.log.Error("request error", "err", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}
