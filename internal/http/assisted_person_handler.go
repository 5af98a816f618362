package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"homecare-data/internal/service"

	"go.uber.org/zap"
)

const assistedPersonsPath = "/api/v1/assistiti"

// AssistedPersonHandler patient register endpoints.
type AssistedPersonHandler struct {
	svc    service.AssistedPersonService
	logger *zap.Logger
}

func NewAssistedPersonHandler(svc service.AssistedPersonService, logger *zap.Logger) *AssistedPersonHandler {
	return &AssistedPersonHandler{svc: svc, logger: logger}
}

func (h *AssistedPersonHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, assistedPersonsPath), "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.List(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.Create(w, r)
	case rest == "stats" && r.Method == http.MethodGet:
		h.Stats(w, r)
	case rest == "attivi" && r.Method == http.MethodGet:
		h.ListActive(w, r)
	case rest == "export.xlsx" && r.Method == http.MethodGet:
		h.Export(w, r)
	default:
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
		case sub == "timeline" && r.Method == http.MethodGet:
			h.Timeline(w, r, id)
		case sub == "close" && r.Method == http.MethodPost:
			h.Close(w, r, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func listRequestFromQuery(r *http.Request) service.ListAssistedPersonsRequest {
	q := r.URL.Query()
	return service.ListAssistedPersonsRequest{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Risk:   q.Get("risk"),
		Sort:   q.Get("sort"),
	}
}

func (h *AssistedPersonHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.List(r.Context(), listRequestFromQuery(r))
	if err != nil {
		h.logger.Error("ListAssistedPersons failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *AssistedPersonHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListActive(r.Context())
	if err != nil {
		h.logger.Error("ListActiveAssistedPersons failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}

func (h *AssistedPersonHandler) Get(w http.ResponseWriter, r *http.Request, id int64) {
	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

func (h *AssistedPersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	v, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		h.logger.Warn("CreateAssistedPerson failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

func (h *AssistedPersonHandler) Update(w http.ResponseWriter, r *http.Request, id int64) {
	patch, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	v, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

func (h *AssistedPersonHandler) Delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *AssistedPersonHandler) Close(w http.ResponseWriter, r *http.Request, id int64) {
	var req service.CloseCareRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	v, err := h.svc.Close(r.Context(), id, req)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

func (h *AssistedPersonHandler) Timeline(w http.ResponseWriter, r *http.Request, id int64) {
	events, err := h.svc.Timeline(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(events))
}

func (h *AssistedPersonHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.logger.Error("AssistedPersonStats failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// Export the list view as XLSX; accepts the same filters as List.
func (h *AssistedPersonHandler) Export(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.List(r.Context(), listRequestFromQuery(r))
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	data, err := GenerateAssistedPersonsExport(resp.Items)
	if err != nil {
		h.logger.Error("GenerateAssistedPersonsExport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}
	writeXLSX(w, "assistiti.xlsx", data)
}
