package webserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/infrastructure/http/middleware"
	"github.com/pastaboard/pastaboard/internal/ports/inbound"
	apperrors "github.com/pastaboard/pastaboard/pkg/errors"
)

// Photos up to this size are held in memory while parsing; larger parts
// spill to temporary files.
const multipartMemory = 8 << 20

const recipeNotFoundBody = "Recipe not found"

func (s *WebServer) handleGallery(w http.ResponseWriter, r *http.Request) {
	view, err := s.recipes.Gallery(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.renderTemplate(w, http.StatusOK, "gallery", map[string]interface{}{
		"Columns": view.Columns,
		"Total":   view.Total,
	})
}

func (s *WebServer) handleIngredientsPage(w http.ResponseWriter, r *http.Request) {
	specs := s.recipes.Ingredients()

	initial := make(map[string]int, len(specs))
	for _, spec := range specs {
		initial[spec.Key] = 0
	}
	initialJSON, err := json.Marshal(initial)
	if err != nil {
		s.renderError(w, r, apperrors.Wrap(err, "encode initial counts"))
		return
	}

	s.renderTemplate(w, http.StatusOK, "ingredients", map[string]interface{}{
		"Ingredients":   specs,
		"InitialCounts": string(initialJSON),
	})
}

func (s *WebServer) handleSaveIngredients(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, apperrors.NewBadRequestError("malformed form").WithCause(err))
		return
	}

	if err := s.drafts.SetCounts(r.Context(), SessionIDFromContext(r.Context()), r.PostForm.Get("counts")); err != nil {
		s.renderError(w, r, apperrors.Wrap(err, "save ingredient selection"))
		return
	}
	s.metrics.DraftSaved()

	http.Redirect(w, r, "/post", http.StatusSeeOther)
}

func (s *WebServer) handlePostPage(w http.ResponseWriter, r *http.Request) {
	counts, err := s.drafts.GetCounts(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		s.renderError(w, r, apperrors.Wrap(err, "load ingredient selection"))
		return
	}

	s.renderTemplate(w, http.StatusOK, "post", map[string]interface{}{
		"Counts": counts,
	})
}

func (s *WebServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if limit := s.config.Server.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.UploadOutcome("too_large")
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		s.renderError(w, r, apperrors.NewBadRequestError("malformed upload form").WithCause(err))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	cmd := inbound.UploadCommand{
		SessionID: SessionIDFromContext(r.Context()),
		Title:     formValue(r, "title"),
		Author:    formValue(r, "author"),
		Content:   formValue(r, "content"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		cmd.File = file
		cmd.Filename = header.Filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.renderError(w, r, apperrors.NewBadRequestError("unreadable file part").WithCause(err))
		return
	}

	result, err := s.recipes.Upload(r.Context(), cmd)
	if err != nil {
		s.metrics.UploadOutcome("failed")
		s.renderError(w, r, err)
		return
	}

	if result.Saved {
		s.metrics.UploadOutcome("saved")
	} else {
		s.metrics.UploadOutcome(string(result.Dropped))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *WebServer) handleRecipe(w http.ResponseWriter, r *http.Request) {
	// chi matches against RawPath when the request path carries escapes
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	view, err := s.recipes.Detail(r.Context(), name)
	switch {
	case err == nil:
		s.metrics.RecipeLookup("found")
	case apperrors.Is(err, apperrors.CodeRecipeNotFound):
		s.metrics.RecipeLookup("not_found")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, recipeNotFoundBody)
		return
	default:
		s.metrics.RecipeLookup("error")
		s.renderError(w, r, err)
		return
	}

	s.renderTemplate(w, http.StatusOK, "recipe", map[string]interface{}{
		"Recipe": view,
	})
}

// renderError logs err, counts it and renders the error page with the
// status mapped from its code
func (s *WebServer) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)
	code := apperrors.GetCode(err)

	fields := []zap.Field{
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.String("code", string(code)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", fields...)
	} else {
		s.logger.Warn("Request rejected", fields...)
	}
	s.metrics.RecordError(string(code))

	s.renderTemplate(w, status, "error", map[string]interface{}{
		"Status":  status,
		"Message": http.StatusText(status),
	})
}

// formValue returns the first value of a submitted field, or nil when the
// field was not sent at all
func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
