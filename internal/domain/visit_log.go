package domain

// VisitLog home-visit diary entry (table diario_assistenziale).
type VisitLog struct {
	ID                 int64      `json:"id"`
	AssistedPersonID   int64      `json:"assistito_id"`
	OperatorID         int64      `json:"operatore_id"`
	Date               Date       `json:"data"`
	StartTime          string     `json:"ora_inizio"`
	EndTime            string     `json:"ora_fine"`
	ServiceType        string     `json:"tipo_prestazione"`
	Description        string     `json:"descrizione"`
	VitalSigns         VitalSigns `json:"parametri_vitali"`
	Drugs              []string   `json:"farmaci"`
	Notes              string     `json:"note"`
	Presence           Presence   `json:"presenza"`
	OperatorSignature  string     `json:"firma_operatore"`
	CaregiverSignature string     `json:"firma_caregiver"`
	Attachments        []FileRef  `json:"allegati"`
	CreatedAt          Date       `json:"created_at"`
}

// VitalSigns free-text readings as entered by the operator.
type VitalSigns struct {
	BloodPressure string `json:"pressione"`
	HeartRate     string `json:"battiti"`
	Temperature   string `json:"temperatura"`
	Saturation    string `json:"saturazione"`
	Glycemia      string `json:"glicemia"`
}

// Presence who attended the visit.
type Presence struct {
	Patient   bool   `json:"paziente"`
	Caregiver bool   `json:"caregiver"`
	Others    string `json:"altri_presenti"`
}

// ServiceTypes predefined diary service types.
var ServiceTypes = []string{
	"Controllo parametri vitali",
	"Somministrazione farmaci",
	"Medicazione",
	"Igiene personale",
	"Fisioterapia",
	"Prelievo ematico",
	"Controllo glicemia",
	"Valutazione generale",
	"Educazione sanitaria",
	"Supporto psicologico",
	"Altro",
}
