package httpapi

import (
	"net/http"
	"testing"

	"homecare-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visitLogList struct {
	Items []domain.VisitLog `json:"items"`
	Total int               `json:"total"`
}

func TestDiaryHandler(t *testing.T) {
	api := setupTestAPI(t)
	api.mustOK(t, http.MethodPost, "/api/v1/assistiti", map[string]any{"nome": "Maria", "cognome": "Bianchi"}, nil)
	api.mustOK(t, http.MethodPost, "/api/v1/operatori", map[string]any{"nome": "Anna", "cognome": "Verdi", "ruolo": "Infermiera"}, nil)

	var l domain.VisitLog
	api.mustOK(t, http.MethodPost, "/api/v1/diario", map[string]any{
		"assistito_id":     1,
		"operatore_id":     1,
		"tipo_prestazione": "Medicazione",
	}, &l)
	assert.Equal(t, int64(1), l.ID)
	assert.False(t, l.Date.IsZero())
	api.mustOK(t, http.MethodPost, "/api/v1/diario", map[string]any{
		"assistito_id": 1,
		"data":         dayFromNow(-60),
	}, nil)

	var list visitLogList
	api.mustOK(t, http.MethodGet, "/api/v1/diario", nil, &list)
	assert.Equal(t, 1, list.Total)
	api.mustOK(t, http.MethodGet, "/api/v1/diario?period=all&assistito_id=1", nil, &list)
	assert.Equal(t, 2, list.Total)
	api.mustOK(t, http.MethodGet, "/api/v1/diario?period=all&operator_id=1", nil, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Medicazione", list.Items[0].ServiceType)

	res := api.call(t, http.MethodGet, "/api/v1/diario?operator_id=uno", nil, nil)
	assert.Equal(t, ResultError, res.Code)
	assert.Contains(t, res.Message, "operator_id")
	res = api.call(t, http.MethodGet, "/api/v1/diario?period=anno", nil, nil)
	assert.Equal(t, ResultError, res.Code)

	api.mustOK(t, http.MethodPatch, "/api/v1/diario/1", map[string]any{"note": "Ferita pulita"}, &l)
	assert.Equal(t, "Ferita pulita", l.Notes)
	assert.Equal(t, "Medicazione", l.ServiceType)

	var ref domain.FileRef
	api.mustOK(t, http.MethodPost, "/api/v1/diario/1/allegati", map[string]any{
		"nome": "foto.pdf", "tipo": "application/pdf", "dimensione": 100,
	}, &ref)
	api.mustOK(t, http.MethodGet, "/api/v1/diario/1", nil, &l)
	require.Len(t, l.Attachments, 1)
	assert.Equal(t, ref.Key, l.Attachments[0].Key)

	res = api.call(t, http.MethodPost, "/api/v1/diario", map[string]any{"assistito_id": 9}, nil)
	assert.Equal(t, ResultError, res.Code)

	api.mustOK(t, http.MethodDelete, "/api/v1/diario/2", nil, nil)
	api.mustOK(t, http.MethodGet, "/api/v1/diario?period=all", nil, &list)
	assert.Equal(t, 1, list.Total)
}
