package domain

// Severity risk level as stored ("Alto", "Medio", "Basso").
type Severity string

const (
	SeverityHigh   Severity = "Alto"
	SeverityMedium Severity = "Medio"
	SeverityLow    Severity = "Basso"
)

// Rank orders severities High > Medium > Low; unknown values rank as Low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// AssistedPerson home-care patient (table assistiti).
type AssistedPerson struct {
	ID int64 `json:"id"`

	// demographics
	Name       string `json:"nome"`
	Surname    string `json:"cognome"`
	FiscalCode string `json:"codice_fiscale"`
	BirthDate  Date   `json:"data_nascita"`
	BirthPlace string `json:"luogo_nascita"`
	Address    string `json:"indirizzo"`
	Phone      string `json:"telefono"`

	Caregiver *Caregiver `json:"caregiver"`

	// care episode
	CareStartDate Date    `json:"data_inizio_cure"`
	CloseDate     *Date   `json:"data_chiusura"`
	ClosureReason *string `json:"motivazione_chiusura"`
	Active        bool    `json:"stato_attivo"`

	ReferenceOperators []OperatorRef `json:"operatori_riferimento"`

	Diagnosis   *Diagnosis   `json:"diagnosi"`
	Risks       []Risk       `json:"rischi"`
	Consent     *Consent     `json:"consenso_informato"`
	Assessments []Assessment `json:"valutazioni"`
	CarePlan    *CarePlan    `json:"piano_trattamento"`
	Visits      []Visit      `json:"prestazioni"`
	Aids        []Aid        `json:"ausili"`
	Reviews     []Review     `json:"verifiche"`
	Outcomes    []Outcome    `json:"risultati"`

	CreatedAt Date `json:"created_at"`
}

// Caregiver family member or carer of record.
type Caregiver struct {
	Name              string `json:"nome"`
	Relationship      string `json:"parentela"`
	Phone             string `json:"telefono"`
	Email             string `json:"email"`
	Available24h      bool   `json:"presente_24h"`
	AvailabilityHours string `json:"orari_disponibilita"`
}

// OperatorRef free-text reference to a clinician following the patient.
type OperatorRef struct {
	Name  string `json:"nome"`
	Role  string `json:"ruolo"`
	Phone string `json:"telefono"`
}

type Diagnosis struct {
	Primary   string   `json:"principale"`
	Secondary []string `json:"secondarie"`
	ICDCodes  []string `json:"codici_icd"`
}

type Risk struct {
	Type        string   `json:"tipo"`
	Description string   `json:"descrizione"`
	Severity    Severity `json:"livello"`
	DetectedOn  Date     `json:"data_rilevazione"`
}

// Consent informed consent.
type Consent struct {
	Signed     bool     `json:"firmato"`
	SignedOn   Date     `json:"data_firma"`
	Categories []string `json:"tipologie"`
}

// Assessment scored evaluation (Barthel, MMSE, ...).
type Assessment struct {
	Instrument string  `json:"strumento"`
	Score      float64 `json:"punteggio"`
	Date       Date    `json:"data"`
	Assessor   string  `json:"valutatore"`
}

type CarePlan struct {
	Objectives    []string         `json:"obiettivi"`
	Interventions []Intervention   `json:"interventi"`
	Updates       []CarePlanUpdate `json:"aggiornamenti"`
}

type Intervention struct {
	Description string `json:"descrizione"`
	Frequency   string `json:"frequenza"`
	Responsible string `json:"responsabile"`
}

type CarePlanUpdate struct {
	Date        Date   `json:"data"`
	Description string `json:"descrizione"`
	Responsible string `json:"responsabile"`
}

// Visit service delivered at home (prestazione).
type Visit struct {
	Date     Date   `json:"data"`
	Type     string `json:"tipo"`
	Operator string `json:"operatore"`
	Outcome  string `json:"esito"`
	Duration string `json:"durata"`
}

// Aid equipment delivered to the patient (ausilio).
type Aid struct {
	Type        string `json:"tipo"`
	Supplier    string `json:"fornitore"`
	DeliveredOn Date   `json:"data_consegna"`
	Condition   string `json:"stato_funzionamento"`
}

// Review periodic check (verifica).
type Review struct {
	Date       Date   `json:"data"`
	Type       string `json:"tipo"`
	Outcome    string `json:"esito"`
	NextReview Date   `json:"prossima"`
}

// Outcome care-plan objective result (risultato).
type Outcome struct {
	Objective  string `json:"obiettivo"`
	Achieved   bool   `json:"raggiunto"`
	Notes      string `json:"note"`
	AchievedOn Date   `json:"data_raggiungimento"`
}

// Field implements Fielder.
func (p *AssistedPerson) Field(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	switch name {
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "surname":
		return p.Surname, true
	case "fiscalCode":
		return p.FiscalCode, true
	case "birthDate":
		return p.BirthDate, true
	case "birthPlace":
		return p.BirthPlace, true
	case "address":
		return p.Address, true
	case "phone":
		return p.Phone, true
	case "caregiver":
		if p.Caregiver == nil {
			return nil, true
		}
		return p.Caregiver, true
	case "careStartDate":
		return p.CareStartDate, true
	case "closeDate":
		if p.CloseDate == nil {
			return nil, true
		}
		return *p.CloseDate, true
	case "active":
		return p.Active, true
	case "diagnosis":
		if p.Diagnosis == nil {
			return nil, true
		}
		return p.Diagnosis, true
	case "consent":
		if p.Consent == nil {
			return nil, true
		}
		return p.Consent, true
	case "carePlan":
		if p.CarePlan == nil {
			return nil, true
		}
		return p.CarePlan, true
	}
	return nil, false
}

// Field implements Fielder.
func (c *Caregiver) Field(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	switch name {
	case "name":
		return c.Name, true
	case "relationship":
		return c.Relationship, true
	case "phone":
		return c.Phone, true
	case "email":
		return c.Email, true
	case "available24h":
		return c.Available24h, true
	case "availabilityHours":
		return c.AvailabilityHours, true
	}
	return nil, false
}

// Field implements Fielder.
func (d *Diagnosis) Field(name string) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch name {
	case "primary":
		return d.Primary, true
	case "secondary":
		return d.Secondary, true
	case "icdCodes":
		return d.ICDCodes, true
	}
	return nil, false
}

// Field implements Fielder.
func (c *Consent) Field(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	switch name {
	case "signed":
		return c.Signed, true
	case "signedOn":
		return c.SignedOn, true
	case "categories":
		return c.Categories, true
	}
	return nil, false
}

// Field implements Fielder.
func (c *CarePlan) Field(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	switch name {
	case "objectives":
		return c.Objectives, true
	case "interventions":
		return c.Interventions, true
	case "updates":
		return c.Updates, true
	}
	return nil, false
}

// PrimaryDiagnosis is "" when no diagnosis is recorded.
func (p *AssistedPerson) PrimaryDiagnosis() string {
	if p.Diagnosis == nil {
		return ""
	}
	return p.Diagnosis.Primary
}
