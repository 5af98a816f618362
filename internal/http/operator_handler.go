package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"homecare-data/internal/service"

	"go.uber.org/zap"
)

const operatorsPath = "/api/v1/operatori"

// OperatorHandler roster, compliance and expiry-alert endpoints.
type OperatorHandler struct {
	svc    service.OperatorService
	alerts service.AlertService
	logger *zap.Logger
}

func NewOperatorHandler(svc service.OperatorService, alerts service.AlertService, logger *zap.Logger) *OperatorHandler {
	return &OperatorHandler{svc: svc, alerts: alerts, logger: logger}
}

func (h *OperatorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, operatorsPath), "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.List(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.Create(w, r)
	case rest == "stats" && r.Method == http.MethodGet:
		h.Stats(w, r)
	case rest == "compliance" && r.Method == http.MethodGet:
		h.ComplianceReport(w, r)
	case rest == "expiring" && r.Method == http.MethodGet:
		h.Expiring(w, r)
	case rest == "expiring/notify" && r.Method == http.MethodPost:
		h.NotifyExpiring(w, r)
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
		case sub == "compliance" && r.Method == http.MethodGet:
			h.Compliance(w, r, id)
		case strings.HasPrefix(sub, "documents/") && strings.HasSuffix(sub, "/file") && r.Method == http.MethodPost:
			kind := strings.TrimSuffix(strings.TrimPrefix(sub, "documents/"), "/file")
			h.AttachDocumentFile(w, r, id, kind)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (h *OperatorHandler) List(w http.ResponseWriter, r *http.Request) {
	ops, err := h.svc.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		h.logger.Error("ListOperators failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": ops,
		"total": len(ops),
	}))
}

func (h *OperatorHandler) Get(w http.ResponseWriter, r *http.Request, id int64) {
	op, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(op))
}

func (h *OperatorHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	op, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		h.logger.Warn("CreateOperator failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(op))
}

func (h *OperatorHandler) Update(w http.ResponseWriter, r *http.Request, id int64) {
	patch, err := readBodyRow(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	op, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(op))
}

func (h *OperatorHandler) Delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *OperatorHandler) Compliance(w http.ResponseWriter, r *http.Request, id int64) {
	c, err := h.svc.Compliance(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(c))
}

func (h *OperatorHandler) ComplianceReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ComplianceReport(r.Context())
	if err != nil {
		h.logger.Error("ComplianceReport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(report))
}

func (h *OperatorHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Expiring(r.Context())
	if err != nil {
		h.logger.Error("ExpiringDocuments failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": docs,
		"total": len(docs),
	}))
}

func (h *OperatorHandler) NotifyExpiring(w http.ResponseWriter, r *http.Request) {
	res, err := h.alerts.NotifyExpiring(r.Context())
	if err != nil {
		h.logger.Error("NotifyExpiring failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

func (h *OperatorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.logger.Error("OperatorStats failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

func (h *OperatorHandler) AttachDocumentFile(w http.ResponseWriter, r *http.Request, id int64, kind string) {
	var up service.Upload
	if err := readBodyJSON(r, maxBodyBytes, &up); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	ref, err := h.svc.AttachDocumentFile(r.Context(), id, kind, up)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(ref))
}

// Export the compliance roster ("Report Compliance") as XLSX.
func (h *OperatorHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ComplianceReport(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	data, err := GenerateComplianceExport(report)
	if err != nil {
		h.logger.Error("GenerateComplianceExport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}
	writeXLSX(w, "compliance-"+string(report.GeneratedOn)+".xlsx", data)
}
