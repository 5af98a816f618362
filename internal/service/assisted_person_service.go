package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homecare-data/internal/derived"
	"homecare-data/internal/domain"
	"homecare-data/internal/repository"

	"go.uber.org/zap"
)

// AssistedPersonService patient register: CRUD plus the derived views
// (risk, completeness, timeline, dashboard counters).
type AssistedPersonService interface {
	List(ctx context.Context, req ListAssistedPersonsRequest) (*ListAssistedPersonsResponse, error)
	ListActive(ctx context.Context) ([]AssistedPersonView, error)
	Get(ctx context.Context, id int64) (*AssistedPersonView, error)
	Create(ctx context.Context, payload repository.Row) (*AssistedPersonView, error)
	Update(ctx context.Context, id int64, patch repository.Row) (*AssistedPersonView, error)
	Close(ctx context.Context, id int64, req CloseCareRequest) (*AssistedPersonView, error)
	Delete(ctx context.Context, id int64) error
	Timeline(ctx context.Context, id int64) ([]derived.TimelineEvent, error)
	Stats(ctx context.Context) (*derived.PatientStats, error)
}

// ListAssistedPersonsRequest raw query values; empty means no filter.
type ListAssistedPersonsRequest struct {
	Search string
	Status string
	Risk   string
	Sort   string
}

type ListAssistedPersonsResponse struct {
	Items []AssistedPersonView `json:"items"`
	Total int                  `json:"total"`
}

// AssistedPersonView a record with its derived risk and completeness.
type AssistedPersonView struct {
	*domain.AssistedPerson
	Risk          derived.RiskClass `json:"risk"`
	Completeness  int               `json:"completeness"`
	MissingFields []string          `json:"missing_fields"`
}

func newAssistedPersonView(p *domain.AssistedPerson) AssistedPersonView {
	missing := derived.MissingFields(p)
	if missing == nil {
		missing = []string{}
	}
	return AssistedPersonView{
		AssistedPerson: p,
		Risk:           derived.ClassifyRisk(p),
		Completeness:   derived.ScoreCompleteness(p),
		MissingFields:  missing,
	}
}

// CloseCareRequest ends a care episode. An empty date means today.
type CloseCareRequest struct {
	Date   domain.Date `json:"data_chiusura"`
	Reason string      `json:"motivazione_chiusura"`
}

type assistedPersonService struct {
	persons *repository.AssistedPersonRepo
	folders *repository.HealthFolderRepo
	visits  *repository.VisitLogRepo
	cache   *ViewCache
	logger  *zap.Logger
	now     func() time.Time
}

func NewAssistedPersonService(rs repository.RecordStore, cache *ViewCache, logger *zap.Logger) AssistedPersonService {
	return &assistedPersonService{
		persons: repository.NewAssistedPersonRepo(rs),
		folders: repository.NewHealthFolderRepo(rs),
		visits:  repository.NewVisitLogRepo(rs),
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *assistedPersonService) List(ctx context.Context, req ListAssistedPersonsRequest) (*ListAssistedPersonsResponse, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}
	all, err := s.persons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assisted persons: %w", err)
	}
	matched, err := derived.Query(all, opts)
	if err != nil {
		return nil, err
	}
	items := make([]AssistedPersonView, 0, len(matched))
	for _, p := range matched {
		items = append(items, newAssistedPersonView(p))
	}
	return &ListAssistedPersonsResponse{Items: items, Total: len(items)}, nil
}

func parseQueryOptions(req ListAssistedPersonsRequest) (derived.QueryOptions, error) {
	opts := derived.QueryOptions{Search: req.Search}
	var ok bool
	if opts.Status, ok = derived.ParseStatusFilter(req.Status); !ok {
		return opts, invalidf("unknown status filter %q", req.Status)
	}
	if opts.Sort, ok = derived.ParseSortKey(req.Sort); !ok {
		return opts, invalidf("unknown sort key %q", req.Sort)
	}
	if strings.TrimSpace(req.Risk) != "" && !strings.EqualFold(strings.TrimSpace(req.Risk), "all") {
		if opts.Risk, ok = derived.ParseSeverity(req.Risk); !ok {
			return opts, invalidf("unknown risk level %q", req.Risk)
		}
	}
	return opts, nil
}

func (s *assistedPersonService) ListActive(ctx context.Context) ([]AssistedPersonView, error) {
	all, err := s.persons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assisted persons: %w", err)
	}
	active := derived.ActivePersons(all)
	items := make([]AssistedPersonView, 0, len(active))
	for _, p := range active {
		items = append(items, newAssistedPersonView(p))
	}
	return items, nil
}

func (s *assistedPersonService) Get(ctx context.Context, id int64) (*AssistedPersonView, error) {
	p, err := s.persons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := newAssistedPersonView(p)
	return &v, nil
}

func (s *assistedPersonService) Create(ctx context.Context, payload repository.Row) (*AssistedPersonView, error) {
	if payload == nil {
		payload = repository.Row{}
	}
	if _, ok := payload["stato_attivo"]; !ok {
		payload["stato_attivo"] = true
	}
	if v, ok := payload["data_inizio_cure"]; !ok || v == nil || v == "" {
		payload["data_inizio_cure"] = string(domain.DateOf(s.now()))
	}

	var p domain.AssistedPerson
	if err := decodePayload(repository.TableAssistedPersons, payload, &p); err != nil {
		return nil, err
	}
	if err := normalizePerson(&p); err != nil {
		return nil, err
	}
	if err := s.checkFiscalCode(ctx, 0, p.FiscalCode); err != nil {
		return nil, err
	}

	created, err := s.persons.Create(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to create assisted person: %w", err)
	}
	s.cache.invalidate(ctx, repository.TableAssistedPersons)
	s.logger.Info("assisted person created", zap.Int64("id", created.ID))

	v := newAssistedPersonView(created)
	return &v, nil
}

// normalizePerson requires a name and rewrites risk levels to their stored
// form ("high" -> "Alto").
func normalizePerson(p *domain.AssistedPerson) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	if p.Name == "" || p.Surname == "" {
		return invalidf("nome and cognome are required")
	}
	p.FiscalCode = strings.ToUpper(strings.TrimSpace(p.FiscalCode))
	for i, r := range p.Risks {
		if r.Severity == "" {
			continue
		}
		sev, ok := derived.ParseSeverity(string(r.Severity))
		if !ok {
			return invalidf("rischi[%d].livello: unknown severity %q", i, r.Severity)
		}
		p.Risks[i].Severity = sev
	}
	return nil
}

func (s *assistedPersonService) checkFiscalCode(ctx context.Context, selfID int64, code string) error {
	if code == "" {
		return nil
	}
	all, err := s.persons.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list assisted persons: %w", err)
	}
	for _, p := range all {
		if p.ID != selfID && strings.EqualFold(p.FiscalCode, code) {
			return conflictf("codice_fiscale %s already registered for id %d", code, p.ID)
		}
	}
	return nil
}

func (s *assistedPersonService) Update(ctx context.Context, id int64, patch repository.Row) (*AssistedPersonView, error) {
	current, err := s.persons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var candidate domain.AssistedPerson
	if err := mergePatch(repository.TableAssistedPersons, current, patch, &candidate); err != nil {
		return nil, err
	}
	if err := normalizePerson(&candidate); err != nil {
		return nil, err
	}
	if _, ok := patch["codice_fiscale"]; ok {
		if err := s.checkFiscalCode(ctx, id, candidate.FiscalCode); err != nil {
			return nil, err
		}
		patch["codice_fiscale"] = candidate.FiscalCode
	}
	if _, ok := patch["rischi"]; ok {
		risks, err := plainValue(candidate.Risks)
		if err != nil {
			return nil, err
		}
		patch["rischi"] = risks
	}
	if _, ok := patch["nome"]; ok {
		patch["nome"] = candidate.Name
	}
	if _, ok := patch["cognome"]; ok {
		patch["cognome"] = candidate.Surname
	}

	updated, err := s.persons.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableAssistedPersons)

	v := newAssistedPersonView(updated)
	return &v, nil
}

func (s *assistedPersonService) Close(ctx context.Context, id int64, req CloseCareRequest) (*AssistedPersonView, error) {
	p, err := s.persons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, conflictf("care episode of assisted person %d is already closed", id)
	}
	date := req.Date
	if date.IsZero() {
		date = domain.DateOf(s.now())
	} else if _, err := date.Time(); err != nil {
		return nil, invalidf("data_chiusura: %v", err)
	}

	updated, err := s.persons.Update(ctx, id, repository.Row{
		"stato_attivo":         false,
		"data_chiusura":        string(date),
		"motivazione_chiusura": strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableAssistedPersons)
	s.logger.Info("care episode closed", zap.Int64("id", id), zap.String("date", string(date)))

	v := newAssistedPersonView(updated)
	return &v, nil
}

// Delete removes the person together with their folders and diary entries.
func (s *assistedPersonService) Delete(ctx context.Context, id int64) error {
	if err := s.persons.Delete(ctx, id); err != nil {
		return err
	}

	folders, err := s.folders.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list health folders: %w", err)
	}
	for _, f := range folders {
		if f.AssistedPersonID == id {
			if err := s.folders.Delete(ctx, f.ID); err != nil {
				return fmt.Errorf("failed to delete health folder %d: %w", f.ID, err)
			}
		}
	}
	logs, err := s.visits.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list diary entries: %w", err)
	}
	for _, l := range logs {
		if l.AssistedPersonID == id {
			if err := s.visits.Delete(ctx, l.ID); err != nil {
				return fmt.Errorf("failed to delete diary entry %d: %w", l.ID, err)
			}
		}
	}

	s.cache.invalidate(ctx, repository.TableAssistedPersons, repository.TableHealthFolders, repository.TableVisitLogs)
	s.logger.Info("assisted person deleted", zap.Int64("id", id))
	return nil
}

func (s *assistedPersonService) Timeline(ctx context.Context, id int64) ([]derived.TimelineEvent, error) {
	p, err := s.persons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := derived.BuildTimeline(p)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []derived.TimelineEvent{}
	}
	return events, nil
}

func (s *assistedPersonService) Stats(ctx context.Context) (*derived.PatientStats, error) {
	stats, err := cachedView(ctx, s.cache, cacheKey(repository.TableAssistedPersons, "stats"), func() (derived.PatientStats, error) {
		all, err := s.persons.List(ctx)
		if err != nil {
			return derived.PatientStats{}, fmt.Errorf("failed to list assisted persons: %w", err)
		}
		return derived.ComputePatientStats(all), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
