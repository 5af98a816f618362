package httpapi

import (
	"bytes"
	"net/http"
	"testing"

	"homecare-data/internal/derived"
	"homecare-data/internal/domain"
	"homecare-data/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedOperators(t *testing.T, api *testAPI) {
	t.Helper()
	api.mustOK(t, http.MethodPost, "/api/v1/operatori", map[string]any{
		"nome": "Anna", "cognome": "Verdi", "ruolo": "Infermiera",
		"fascicolo": map[string]any{
			"idoneita_psico_fisica": map[string]any{"data_scadenza": dayFromNow(-3)},
			"formazione_sicurezza":  map[string]any{"data_scadenza": dayFromNow(400)},
			"blsd":                  map[string]any{"stato": "Non richiesto"},
			"patente":               map[string]any{"data_scadenza": dayFromNow(10)},
		},
	}, nil)
	api.mustOK(t, http.MethodPost, "/api/v1/operatori", map[string]any{
		"nome": "Paolo", "cognome": "Neri", "ruolo": "Medico di base",
	}, nil)
}

func TestOperatorHandler_CRUD(t *testing.T) {
	api := setupTestAPI(t)
	seedOperators(t, api)

	var list struct {
		Items []domain.Operator `json:"items"`
		Total int               `json:"total"`
	}
	api.mustOK(t, http.MethodGet, "/api/v1/operatori?role=medico", nil, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Paolo", list.Items[0].Name)

	var op domain.Operator
	api.mustOK(t, http.MethodPatch, "/api/v1/operatori/2", map[string]any{"assistiti_in_carico": 12}, &op)
	assert.Equal(t, 12, op.AssignedCount)

	var stats service.OperatorStats
	api.mustOK(t, http.MethodGet, "/api/v1/operatori/stats", nil, &stats)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 12, stats.AssignedTotal)
	assert.Equal(t, 1, stats.Nurses)
	assert.Equal(t, 1, stats.ExpiredDocuments)
	assert.Equal(t, 1, stats.ExpiringDocuments)

	api.mustOK(t, http.MethodDelete, "/api/v1/operatori/2", nil, nil)
	res := api.call(t, http.MethodGet, "/api/v1/operatori/2", nil, nil)
	assert.Equal(t, ResultError, res.Code)
}

func TestOperatorHandler_Compliance(t *testing.T) {
	api := setupTestAPI(t)
	seedOperators(t, api)

	var c derived.OperatorCompliance
	api.mustOK(t, http.MethodGet, "/api/v1/operatori/1/compliance", nil, &c)
	assert.Equal(t, 1, c.ExpiredCount)
	assert.Equal(t, 1, c.ExpiringSoonCount)
	require.Len(t, c.Documents, 4)
	assert.Equal(t, "Scaduto", c.Documents[0].StatusLabel)

	var report service.ComplianceReport
	api.mustOK(t, http.MethodGet, "/api/v1/operatori/compliance", nil, &report)
	assert.Len(t, report.Operators, 2)
	assert.Equal(t, 30, report.WindowDays)

	var expiring struct {
		Items []derived.ExpiringDocument `json:"items"`
		Total int                        `json:"total"`
	}
	api.mustOK(t, http.MethodGet, "/api/v1/operatori/expiring", nil, &expiring)
	require.Equal(t, 2, expiring.Total)
	assert.Equal(t, domain.DocumentFitness, expiring.Items[0].Document)
	assert.Equal(t, domain.DocumentDrivingLicense, expiring.Items[1].Document)
}

func TestOperatorHandler_NotifyExpiring(t *testing.T) {
	api := setupTestAPI(t)
	seedOperators(t, api)

	var res service.NotifyResult
	api.mustOK(t, http.MethodPost, "/api/v1/operatori/expiring/notify", nil, &res)
	assert.True(t, res.Notified)
	assert.Equal(t, 2, res.Count)
	require.Len(t, api.notifier.sent, 1)
	assert.Equal(t, service.NotificationDocumentExpiry, api.notifier.sent[0].Kind)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/operatori/expiring/notify", nil).Code)
}

func TestOperatorHandler_AttachDocumentFile(t *testing.T) {
	api := setupTestAPI(t)
	seedOperators(t, api)

	var ref domain.FileRef
	api.mustOK(t, http.MethodPost, "/api/v1/operatori/1/documents/blsd/file", map[string]any{
		"nome": "blsd.pdf", "tipo": "application/pdf", "dimensione": 4096,
	}, &ref)
	assert.NotEmpty(t, ref.Key)
	assert.Equal(t, "blsd.pdf", ref.Name)

	var op domain.Operator
	api.mustOK(t, http.MethodGet, "/api/v1/operatori/1", nil, &op)
	require.NotNil(t, op.PersonnelFile.BLSD.File)
	assert.Equal(t, ref.Key, op.PersonnelFile.BLSD.File.Key)
	assert.True(t, op.PersonnelFile.BLSD.NotRequired())

	res := api.call(t, http.MethodPost, "/api/v1/operatori/1/documents/blsd/file", map[string]any{
		"nome": "blsd.docx", "tipo": "application/msword", "dimensione": 10,
	}, nil)
	assert.Equal(t, ResultError, res.Code)
	assert.Contains(t, res.Message, "only PDF")
}

func TestOperatorHandler_Export(t *testing.T) {
	api := setupTestAPI(t)
	seedOperators(t, api)

	w := api.do(t, http.MethodGet, "/api/v1/operatori/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "compliance-")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ComplianceExportHeader, rows[0])
	assert.Equal(t, "Anna Verdi", rows[1][0])
	assert.Equal(t, "Scaduto ("+dayFromNow(-3)+")", rows[1][2])
	assert.Equal(t, "Non richiesto", rows[1][4])
	assert.Equal(t, "In scadenza ("+dayFromNow(10)+")", rows[1][5])
	assert.Equal(t, "1", rows[1][6])
	assert.Equal(t, "Da verificare", rows[2][2])
}
