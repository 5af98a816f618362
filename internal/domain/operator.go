package domain

import "strings"

// Role vocabulary; stored roles may be compound labels ("Medico di base",
// "Infermiere domiciliare") so matching is by substring.
const (
	RolePhysician       = "Medico"
	RoleNurse           = "Infermiere"
	RolePhysiotherapist = "Fisioterapista"
	RoleOSS             = "OSS"
	RoleDirector        = "Direttore"
)

// Roles selectable in the roster filter, in display order.
var Roles = []string{RolePhysician, RoleNurse, RolePhysiotherapist, RoleOSS, RoleDirector}

// OperatorStatusActive stored value of an active operator.
const OperatorStatusActive = "Attivo"

// DocumentStateNotRequired marks a compliance document that does not apply
// to the operator (only BLSD uses it).
const DocumentStateNotRequired = "Non richiesto"

// Operator staff member (table operatori).
type Operator struct {
	ID              int64    `json:"id"`
	Name            string   `json:"nome"`
	Surname         string   `json:"cognome"`
	Role            string   `json:"ruolo"`
	Level           *string  `json:"livello"`
	Status          string   `json:"stato"`
	Phone           string   `json:"telefono"`
	Email           string   `json:"email"`
	HireDate        Date     `json:"data_assunzione"`
	ServiceHours    string   `json:"ore_servizio"`
	AssignedCount   int      `json:"assistiti_in_carico"`
	Competencies    []string `json:"competenze"`
	Specializations []string `json:"specializzazioni"`

	PersonnelFile PersonnelFile `json:"fascicolo"`

	CreatedAt Date `json:"created_at"`
}

// IsActive reports Status == "Attivo".
func (o *Operator) IsActive() bool {
	return o.Status == OperatorStatusActive
}

// HasRole reports whether the role label contains role (case-insensitive).
func (o *Operator) HasRole(role string) bool {
	return strings.Contains(strings.ToLower(o.Role), strings.ToLower(role))
}

// FullName "Name Surname".
func (o *Operator) FullName() string {
	return strings.TrimSpace(o.Name + " " + o.Surname)
}

// PersonnelFile compliance bundle (fascicolo del personale).
type PersonnelFile struct {
	Fitness             ComplianceDocument `json:"idoneita_psico_fisica"`
	SafetyTraining      ComplianceDocument `json:"formazione_sicurezza"`
	BLSD                ComplianceDocument `json:"blsd"`
	DrivingLicense      ComplianceDocument `json:"patente"`
	Curriculum          Curriculum         `json:"curriculum_formativo"`
	ContinuingEducation []TrainingEntry    `json:"formazione_continua"`
	InternalProcedures  []TrainingEntry    `json:"procedure_interne"`
}

// ComplianceDocument dated certificate with an expiry.
type ComplianceDocument struct {
	ObtainedOn Date     `json:"data_conseguimento"`
	VisitOn    Date     `json:"data_visita"`
	ExpiresOn  Date     `json:"data_scadenza"`
	IssuedBy   string   `json:"ente"`
	Hours      float64  `json:"ore"`
	Number     string   `json:"numero"`
	State      string   `json:"stato"`
	File       *FileRef `json:"file"`
}

// NotRequired reports the explicit "Non richiesto" state.
func (d ComplianceDocument) NotRequired() bool {
	return strings.EqualFold(strings.TrimSpace(d.State), DocumentStateNotRequired)
}

// Curriculum training history; only an update date, no expiry.
type Curriculum struct {
	UpdatedOn Date     `json:"data_aggiornamento"`
	File      *FileRef `json:"file"`
}

// TrainingEntry continuing-education course or internal-procedure session.
type TrainingEntry struct {
	Title      string   `json:"titolo"`
	IssuedBy   string   `json:"ente"`
	Hours      float64  `json:"ore"`
	ObtainedOn Date     `json:"data_conseguimento"`
	TrainedOn  Date     `json:"data_formazione"`
	ExpiresOn  Date     `json:"data_scadenza"`
	File       *FileRef `json:"file"`
}

// DocumentKind identifies one of the four dated compliance documents.
type DocumentKind string

const (
	DocumentFitness        DocumentKind = "idoneita_psico_fisica"
	DocumentSafetyTraining DocumentKind = "formazione_sicurezza"
	DocumentBLSD           DocumentKind = "blsd"
	DocumentDrivingLicense DocumentKind = "patente"
)

// ComplianceDocuments the four documents evaluated for roster alerting, in
// display order.
var ComplianceDocuments = []DocumentKind{
	DocumentFitness,
	DocumentSafetyTraining,
	DocumentBLSD,
	DocumentDrivingLicense,
}

// Label human-readable document name.
func (k DocumentKind) Label() string {
	switch k {
	case DocumentFitness:
		return "Idoneità psico-fisica"
	case DocumentSafetyTraining:
		return "Formazione sicurezza"
	case DocumentBLSD:
		return "BLSD"
	case DocumentDrivingLicense:
		return "Patente"
	}
	return string(k)
}

// ParseDocumentKind accepts the snake_case key.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	for _, k := range ComplianceDocuments {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Document returns a pointer to the document of kind k, nil if unknown.
func (f *PersonnelFile) Document(k DocumentKind) *ComplianceDocument {
	switch k {
	case DocumentFitness:
		return &f.Fitness
	case DocumentSafetyTraining:
		return &f.SafetyTraining
	case DocumentBLSD:
		return &f.BLSD
	case DocumentDrivingLicense:
		return &f.DrivingLicense
	}
	return nil
}
