package httpapi

import (
	"net/http"
	"strings"

	"homecare-data/internal/service"

	"go.uber.org/zap"
)

const foldersPath = "/api/v1/fascicoli"

// HealthFolderHandler health-record folder endpoints.
type HealthFolderHandler struct {
	svc    service.HealthFolderService
	logger *zap.Logger
}

func NewHealthFolderHandler(svc service.HealthFolderService, logger *zap.Logger) *HealthFolderHandler {
	return &HealthFolderHandler{svc: svc, logger: logger}
}

func (h *HealthFolderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, foldersPath), "/")
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	id, sub, ok := splitID(rest)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.Get(w, r, id)
	case sub == "" && (r.Method == http.MethodPatch || r.Method == http.MethodPut):
		h.Update(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.Delete(w, r, id)
	case sub == "archive" && r.Method == http.MethodPost:
		h.Archive(w, r, id)
	case sub == "documents" && r.Method == http.MethodPost:
		h.AttachDocument(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *HealthFolderHandler) List(w http.ResponseWriter, r *http.Request) {
	personID, err := queryInt64(r, "assistito_id")
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	folders, err := h.svc.List(r.Context(), personID)
	if err != nil {
		h.logger.Error("ListHealthFolders failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": folders,
		"total": len(folders),
	}))
}

func (h *HealthFolderHandler) Get(w http.ResponseWriter, r *http.Request, id int64) {
	f, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(f))
}

func (h *HealthFolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	f, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		h.logger.Warn("CreateHealthFolder failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(f))
}

func (h *HealthFolderHandler) Update(w http.ResponseWriter, r *http.Request, id int64) {
	patch, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	f, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(f))
}

func (h *HealthFolderHandler) Delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *HealthFolderHandler) Archive(w http.ResponseWriter, r *http.Request, id int64) {
	f, err := h.svc.Archive(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(f))
}

func (h *HealthFolderHandler) AttachDocument(w http.ResponseWriter, r *http.Request, id int64) {
	var up service.Upload
	if err := readBodyJSON(r, maxBodyBytes, &up); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	ref, err := h.svc.AttachDocument(r.Context(), id, up)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(ref))
}
