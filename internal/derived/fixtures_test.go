package derived

import "homecare-data/internal/domain"

func strPtr(s string) *string { return &s }

// mariaBianchi complete record modelled on the register's first patient.
func mariaBianchi() *domain.AssistedPerson {
	return &domain.AssistedPerson{
		ID:         1,
		Name:       "Maria",
		Surname:    "Bianchi",
		FiscalCode: "BNCMRA45A01H501K",
		BirthDate:  "1945-01-01",
		BirthPlace: "Roma",
		Address:    "Via Roma, 123 - Roma",
		Phone:      "06-12345678",
		Caregiver: &domain.Caregiver{
			Name:              "Giuseppe Bianchi",
			Relationship:      "Figlio",
			Phone:             "339-1234567",
			Email:             "giuseppe.bianchi@email.com",
			AvailabilityHours: "8:00-20:00",
		},
		CareStartDate: "2024-01-15",
		Active:        true,
		Diagnosis: &domain.Diagnosis{
			Primary:   "Diabete mellito tipo 2 scompensato",
			Secondary: []string{"Ipertensione arteriosa"},
			ICDCodes:  []string{"E11.9", "I10"},
		},
		Risks: []domain.Risk{
			{Type: "Allergia", Description: "Penicillina", Severity: domain.SeverityHigh, DetectedOn: "2024-01-15"},
			{Type: "Caduta", Description: "Instabilità motoria", Severity: domain.SeverityMedium, DetectedOn: "2024-02-01"},
		},
		Consent: &domain.Consent{Signed: true, SignedOn: "2024-01-15", Categories: []string{"Trattamento dati"}},
		Assessments: []domain.Assessment{
			{Instrument: "Scala di Barthel", Score: 65, Date: "2024-06-01", Assessor: "Dr. Mario Rossi"},
		},
		CarePlan: &domain.CarePlan{
			Objectives: []string{"Controllo glicemico"},
			Updates: []domain.CarePlanUpdate{
				{Date: "2024-03-01", Description: "Aggiustamento dosaggio insulina", Responsible: "Dr. Mario Rossi"},
			},
		},
		Visits: []domain.Visit{
			{Date: "2024-07-15", Type: "Controllo glicemia", Operator: "Infermiera Anna Verdi", Outcome: "nella norma", Duration: "30 min"},
		},
	}
}

func personWithRisks(id int64, severities ...domain.Severity) *domain.AssistedPerson {
	p := &domain.AssistedPerson{ID: id, Name: "P", Surname: "Test", Active: true}
	for _, s := range severities {
		p.Risks = append(p.Risks, domain.Risk{Type: "x", Severity: s})
	}
	return p
}
