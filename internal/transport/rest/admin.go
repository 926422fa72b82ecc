package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/heartmarshall/recobot/internal/domain"
	"github.com/heartmarshall/recobot/internal/service/catalogue"
	"github.com/heartmarshall/recobot/internal/transport/middleware"
)

const maxBodyBytes = 64 << 10

type catalogueService interface {
	Register(ctx context.Context, input catalogue.RegisterInput) (catalogue.RegisterResult, error)
	IngestPost(ctx context.Context, messageID int64, raw, source string) (catalogue.IngestResult, error)
	Recommend(ctx context.Context, c domain.Category) (catalogue.Recommendation, error)
	Stats(ctx context.Context) (domain.CatalogueStats, error)
	Lookup(ctx context.Context, messageID int64) (*domain.Entry, error)
	IsRegistered(ctx context.Context, messageID int64) (bool, error)
}

// LinkFunc renders the public link of a channel post.
type LinkFunc func(messageID int64) string

// AdminHandler serves the catalogue admin REST endpoints.
type AdminHandler struct {
	catalogue catalogueService
	link      LinkFunc
	log       *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(catalogue catalogueService, link LinkFunc, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		catalogue: catalogue,
		link:      link,
		log:       logger.With("handler", "admin"),
	}
}

// EntryResponse is the JSON view of a catalogue entry.
type EntryResponse struct {
	ID        int64  `json:"id"`
	MessageID int64  `json:"message_id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Hashtags  string `json:"hashtags,omitempty"`
	Link      string `json:"link"`
}

// RegisterResponse is returned by the registration endpoints.
type RegisterResponse struct {
	Created bool           `json:"created"`
	Skipped bool           `json:"skipped,omitempty"`
	Entry   *EntryResponse `json:"entry,omitempty"`
}

// RecommendationResponse is returned by GET /admin/recommendation/{category}.
type RecommendationResponse struct {
	Category string         `json:"category"`
	Found    bool           `json:"found"`
	Entry    *EntryResponse `json:"entry,omitempty"`
}

// StatsResponse is returned by GET /admin/stats.
type StatsResponse struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
}

type registerRequest struct {
	// MessageID is kept raw so a malformed id reaches validation as bad_id.
	MessageID json.RawMessage `json:"message_id"`
	Tag       string      `json:"tag"`
	Title     string      `json:"title"`
}

type ingestRequest struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

// RegisterPost registers a post described by id, tag and title.
// POST /admin/posts {"message_id": 123, "tag": "#книги", "title": "..."}
func (h *AdminHandler) RegisterPost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.catalogue.Register(r.Context(), catalogue.RegisterInput{
		MessageID: rawText(req.MessageID),
		Tag:       req.Tag,
		Title:     req.Title,
		Source:    catalogue.SourceAdminAPI,
	})
	if err != nil {
		h.writeServiceError(w, r, "register post", err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, RegisterResponse{Created: res.Created, Entry: h.entry(res.Entry)})
}

// IngestPost auto-ingests raw post text under the given message id.
// POST /admin/posts/ingest {"message_id": 123, "text": "..."}
func (h *AdminHandler) IngestPost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req ingestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.catalogue.IngestPost(r.Context(), req.MessageID, req.Text, catalogue.SourceAdminAPI)
	if err != nil {
		h.writeServiceError(w, r, "ingest post", err)
		return
	}

	if res.Skipped {
		writeJSON(w, http.StatusOK, RegisterResponse{Skipped: true})
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, RegisterResponse{Created: res.Created, Entry: h.entry(res.Entry)})
}

// GetPost returns the entry registered for a message id.
// GET /admin/posts/{messageID}
func (h *AdminHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := messageIDParam(w, r)
	if !ok {
		return
	}

	e, err := h.catalogue.Lookup(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "lookup post", err)
		return
	}

	writeJSON(w, http.StatusOK, h.entry(*e))
}

// HeadPost reports with 200 or 404 whether a message id is registered.
// HEAD /admin/posts/{messageID}
func (h *AdminHandler) HeadPost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, ok := messageIDParam(w, r)
	if !ok {
		return
	}

	exists, err := h.catalogue.IsRegistered(r.Context(), id)
	if err != nil {
		h.log.ErrorContext(r.Context(), "check post", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Stats returns per-category counts.
// GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	stats, err := h.catalogue.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "stats", err)
		return
	}

	resp := StatsResponse{Total: stats.Total, ByCategory: make(map[string]int, len(domain.Categories))}
	for _, c := range domain.Categories {
		resp.ByCategory[c.String()] = 0
	}
	for c, n := range stats.ByCategory {
		resp.ByCategory[c.String()] = n
	}

	writeJSON(w, http.StatusOK, resp)
}

// Recommend picks a random entry of a category.
// GET /admin/recommendation/{category}
func (h *AdminHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	c, err := catalogue.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.writeServiceError(w, r, "recommend", err)
		return
	}

	rec, err := h.catalogue.Recommend(r.Context(), c)
	if err != nil {
		h.writeServiceError(w, r, "recommend", err)
		return
	}

	resp := RecommendationResponse{Category: c.String(), Found: rec.Found}
	if rec.Found {
		resp.Entry = h.entry(rec.Entry)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) entry(e domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:        e.ID,
		MessageID: e.MessageID,
		Category:  e.Category.String(),
		Title:     e.Title,
		Hashtags:  e.Hashtags,
		Link:      h.link(e.MessageID),
	}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

// validationResponse is the 400 body for domain.ValidationError.
type validationResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *AdminHandler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		fields := make(map[string]string, len(ve.Errors))
		for _, fe := range ve.Errors {
			fields[fe.Field] = fe.Message
		}
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "validation failed",
			Reason: string(ve.Reason),
			Fields: fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		h.log.ErrorContext(r.Context(), op, slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// rawText returns a JSON string's contents or any other JSON value's literal
// text. Absent and null values yield "".
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func messageIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "message id must be a positive number")
		return 0, false
	}
	return id, true
}
