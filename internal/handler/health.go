package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterHealth(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
