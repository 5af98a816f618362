package httpapi

import (
	"net/http"
	"strings"

	"homecare-data/internal/service"

	"go.uber.org/zap"
)

const diaryPath = "/api/v1/diario"

// DiaryHandler home-visit diary endpoints.
type DiaryHandler struct {
	svc    service.DiaryService
	logger *zap.Logger
}

func NewDiaryHandler(svc service.DiaryService, logger *zap.Logger) *DiaryHandler {
	return &DiaryHandler{svc: svc, logger: logger}
}

func (h *DiaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, diaryPath), "/")
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
	case sub == "allegati" && r.Method == http.MethodPost:
		h.AttachFile(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	req := service.ListDiaryRequest{Period: r.URL.Query().Get("period")}
	var err error
	if req.OperatorID, err = queryInt64(r, "operator_id"); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	if req.AssistedPersonID, err = queryInt64(r, "assistito_id"); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	logs, err := h.svc.List(r.Context(), req)
	if err != nil {
		h.logger.Error("ListDiary failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": logs,
		"total": len(logs),
	}))
}

func (h *DiaryHandler) Get(w http.ResponseWriter, r *http.Request, id int64) {
	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(l))
}

func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	l, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		h.logger.Warn("CreateDiaryEntry failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(l))
}

func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request, id int64) {
	patch, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	l, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(l))
}

func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *DiaryHandler) AttachFile(w http.ResponseWriter, r *http.Request, id int64) {
	var up service.Upload
	if err := readBodyJSON(r, maxBodyBytes, &up); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	ref, err := h.svc.AttachFile(r.Context(), id, up)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(ref))
}
