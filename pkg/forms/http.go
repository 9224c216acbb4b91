package forms

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/common/models"
	"github.com/carelab-io/recordforms/pkg/schema"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
	enums   EnumSource
}

func NewHandler(service *Service, enums EnumSource) *Handler {
	return &Handler{service: service, enums: enums}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/tables/{table}/form", h.handleRenderForm).Methods(http.MethodPost)
	r.HandleFunc("/tables/{table}/columns", h.handleListColumns).Methods(http.MethodGet)
	r.HandleFunc("/enums/{type}", h.handleEnumOptions).Methods(http.MethodGet)
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func (h *Handler) handleRenderForm(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]
	if !identifierPattern.MatchString(table) {
		http.Error(w, "invalid table name", http.StatusBadRequest)
		return
	}

	var req models.RenderFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	resp, err := h.service.RenderTableForm(r.Context(), table, req)
	if err != nil {
		logger.Log.WithError(err).WithField("table", table).Error("failed to render form")
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListColumns(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]
	if !identifierPattern.MatchString(table) {
		http.Error(w, "invalid table name", http.StatusBadRequest)
		return
	}

	cols, err := h.service.TableColumns(r.Context(), table, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("table", table).Error("failed to read table columns")
		http.Error(w, "failed to read columns", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"table": table, "columns": cols})
}

func (h *Handler) handleEnumOptions(w http.ResponseWriter, r *http.Request) {
	typeName := mux.Vars(r)["type"]
	if !identifierPattern.MatchString(typeName) {
		http.Error(w, "invalid enum type name", http.StatusBadRequest)
		return
	}

	options, err := h.enums.EnumOptions(r.Context(), typeName)
	if err != nil {
		if errors.Is(err, schema.ErrEnumTypeNotFound) {
			http.Error(w, "enum type not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).WithField("enum_type", typeName).Error("failed to resolve enum type")
		http.Error(w, "failed to resolve enum type", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"type": typeName, "options": options})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
