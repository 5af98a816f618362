package domain

// Health folder states.
const (
	FolderStatusOpen     = "aperto"
	FolderStatusArchived = "archiviato"
)

// HealthFolder clinical document folder of an assisted person (table
// fascicoli_sanitari).
type HealthFolder struct {
	ID               int64     `json:"id"`
	AssistedPersonID int64     `json:"assistito_id"`
	Title            string    `json:"titolo"`
	Status           string    `json:"stato"`
	OpenedOn         Date      `json:"data_apertura"`
	ClosedOn         *Date     `json:"data_chiusura"`
	Documents        []FileRef `json:"documenti"`
	Notes            string    `json:"note"`
	CreatedAt        Date      `json:"created_at"`
}
