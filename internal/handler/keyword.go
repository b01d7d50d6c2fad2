package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/keyword-service/internal/middleware"
	"github.com/andres10976/keyword-service/internal/model"
	"github.com/andres10976/keyword-service/internal/repository"
)

const (
	msgKeywordExists   = "Keyword with this ID already exists."
	msgKeywordNotFound = "Keyword not found."
	msgKeywordDeleted  = "Keyword deleted successfully."
)

type keywordStore interface {
	ListActive(ctx context.Context) ([]model.Keyword, error)
	Create(ctx context.Context, kw model.Keyword) (*model.Keyword, error)
	Update(ctx context.Context, id int, kw model.Keyword) (*model.Keyword, error)
	SoftDelete(ctx context.Context, id int) error
}

// keywordRequest is the request body for create and update. Pointers tell
// a missing field apart from a zero value.
type keywordRequest struct {
	ID      *int    `json:"id" validate:"required"`
	Keyword *string `json:"keyword" validate:"required"`
	Deleted *bool   `json:"deleted"`
}

// UnmarshalJSON coerces loosely typed input: "7" and 7.0 are id 7, "yes"
// and 1 are deleted=true. Present but null fields are rejected.
func (req *keywordRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		Keyword json.RawMessage `json:"keyword"`
		Deleted json.RawMessage `json:"deleted"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.ID != nil {
		id, err := coerceInt(raw.ID)
		if err != nil {
			return &fieldError{Field: "id", Message: "expected an integer"}
		}
		req.ID = &id
	}
	if raw.Keyword != nil {
		kw, err := coerceString(raw.Keyword)
		if err != nil {
			return &fieldError{Field: "keyword", Message: "expected a string"}
		}
		req.Keyword = &kw
	}
	if raw.Deleted != nil {
		deleted, err := coerceBool(raw.Deleted)
		if err != nil {
			return &fieldError{Field: "deleted", Message: "expected a boolean"}
		}
		req.Deleted = &deleted
	}
	return nil
}

func (req keywordRequest) toModel() model.Keyword {
	kw := model.Keyword{ID: *req.ID, Keyword: *req.Keyword}
	if req.Deleted != nil {
		kw.Deleted = *req.Deleted
	}
	return kw
}

type KeywordHandler struct {
	repo keywordStore
}

func NewKeywordHandler(repo keywordStore) *KeywordHandler {
	return &KeywordHandler{repo: repo}
}

func (h *KeywordHandler) RegisterRoutes(r chi.Router) {
	r.Get("/keyword_list", h.List)
	r.Post("/keyword", h.Create)
	r.Put("/keyword/{id}", h.Update)
	r.Delete("/keyword/{id}", h.Delete)
}

func (h *KeywordHandler) List(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.internalError(w, r, "list keywords", err)
		return
	}
	if keywords == nil {
		keywords = []model.Keyword{}
	}
	writeJSON(w, http.StatusOK, keywords)
}

func (h *KeywordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req keywordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	kw, err := h.repo.Create(r.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			writeError(w, http.StatusBadRequest, msgKeywordExists)
			return
		}
		h.internalError(w, r, "create keyword", err)
		return
	}

	writeJSON(w, http.StatusOK, kw)
}

func (h *KeywordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req keywordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	kw, err := h.repo.Update(r.Context(), id, req.toModel())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgKeywordNotFound)
			return
		}
		h.internalError(w, r, "update keyword", err)
		return
	}

	writeJSON(w, http.StatusOK, kw)
}

func (h *KeywordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgKeywordNotFound)
			return
		}
		h.internalError(w, r, "delete keyword", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": msgKeywordDeleted})
}

func (h *KeywordHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op+" failed", "error", err, "request_id", middleware.RequestIDFrom(r.Context()))
	writeError(w, http.StatusInternalServerError, "failed to "+op)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "id: must be an integer")
		return 0, false
	}
	return id, true
}
