package records

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/server/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/patients/{uid}/record", h.handleGetRecord).Methods(http.MethodGet)
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(mux.Vars(r)["uid"])
	if err != nil {
		http.Error(w, "invalid patient uid", http.StatusBadRequest)
		return
	}

	record, err := h.service.AssembleRecord(r.Context(), uid, resolveActor(r))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).WithField("patient_uid", uid).Error("failed to assemble patient record")
		http.Error(w, "failed to assemble record", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"record": record})
}

func resolveActor(r *http.Request) string {
	if r == nil {
		return "system"
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.Actor()
	}
	return "system"
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
