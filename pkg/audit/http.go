package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	repository *Repository
}

func NewHandler(repository *Repository) *Handler {
	return &Handler{repository: repository}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/patients/{uid}/access-log", h.handleListAccessLog).Methods(http.MethodGet)
}

func (h *Handler) handleListAccessLog(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(mux.Vars(r)["uid"])
	if err != nil {
		http.Error(w, "invalid patient uid", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	events, err := h.repository.ListByPatient(r.Context(), uid, limit)
	if err != nil {
		logger.Log.WithError(err).WithField("patient_uid", uid).Error("failed to list access log")
		http.Error(w, "failed to list access log", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"patient_uid": uid,
		"events":      events,
		"count":       len(events),
	})
}
