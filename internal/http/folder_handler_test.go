package httpapi

import (
	"net/http"
	"testing"

	"homecare-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthFolderHandler(t *testing.T) {
	api := setupTestAPI(t)
	api.mustOK(t, http.MethodPost, "/api/v1/assistiti", map[string]any{"nome": "Maria", "cognome": "Bianchi"}, nil)
	api.mustOK(t, http.MethodPost, "/api/v1/assistiti", map[string]any{"nome": "Luigi", "cognome": "Rossi"}, nil)

	var f domain.HealthFolder
	api.mustOK(t, http.MethodPost, "/api/v1/fascicoli", map[string]any{"assistito_id": 1, "titolo": "Cartella clinica"}, &f)
	assert.Equal(t, domain.FolderStatusOpen, f.Status)
	api.mustOK(t, http.MethodPost, "/api/v1/fascicoli", map[string]any{"assistito_id": 2, "titolo": "Esami"}, nil)

	var list struct {
		Items []domain.HealthFolder `json:"items"`
		Total int                   `json:"total"`
	}
	api.mustOK(t, http.MethodGet, "/api/v1/fascicoli?assistito_id=2", nil, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Esami", list.Items[0].Title)

	var ref domain.FileRef
	api.mustOK(t, http.MethodPost, "/api/v1/fascicoli/1/documents", map[string]any{
		"nome": "referto.pdf", "tipo": "application/pdf", "dimensione": 512,
	}, &ref)

	api.mustOK(t, http.MethodPost, "/api/v1/fascicoli/1/archive", nil, &f)
	assert.Equal(t, domain.FolderStatusArchived, f.Status)
	require.Len(t, f.Documents, 1)
	assert.Equal(t, ref.Key, f.Documents[0].Key)

	res := api.call(t, http.MethodPost, "/api/v1/fascicoli/1/documents", map[string]any{
		"nome": "altro.pdf", "tipo": "application/pdf", "dimensione": 512,
	}, nil)
	assert.Equal(t, ResultError, res.Code)
	assert.Contains(t, res.Message, "archived")

	api.mustOK(t, http.MethodPatch, "/api/v1/fascicoli/2", map[string]any{"note": "Da integrare"}, &f)
	assert.Equal(t, "Da integrare", f.Notes)

	api.mustOK(t, http.MethodDelete, "/api/v1/fascicoli/2", nil, nil)
	api.mustOK(t, http.MethodGet, "/api/v1/fascicoli", nil, &list)
	assert.Equal(t, 1, list.Total)

	assert.Equal(t, http.StatusMethodNotAllowed, api.do(t, http.MethodPut, "/api/v1/fascicoli", nil).Code)
}
