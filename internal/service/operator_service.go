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

// OperatorService operator roster and personnel-file compliance.
type OperatorService interface {
	List(ctx context.Context, role string) ([]*domain.Operator, error)
	Get(ctx context.Context, id int64) (*domain.Operator, error)
	Create(ctx context.Context, payload repository.Row) (*domain.Operator, error)
	Update(ctx context.Context, id int64, patch repository.Row) (*domain.Operator, error)
	Delete(ctx context.Context, id int64) error

	Compliance(ctx context.Context, id int64) (*derived.OperatorCompliance, error)
	ComplianceReport(ctx context.Context) (*ComplianceReport, error)
	Expiring(ctx context.Context) ([]derived.ExpiringDocument, error)
	Stats(ctx context.Context) (*OperatorStats, error)

	AttachDocumentFile(ctx context.Context, id int64, kind string, up Upload) (*domain.FileRef, error)
}

// Upload metadata of an uploaded file; the bytes are kept elsewhere.
type Upload struct {
	Name        string `json:"nome"`
	ContentType string `json:"tipo"`
	Size        int64  `json:"dimensione"`
}

// ComplianceReport compliance of the whole roster at one reference date.
type ComplianceReport struct {
	Operators   []*derived.OperatorCompliance `json:"operators"`
	Totals      derived.ComplianceTotals      `json:"totals"`
	GeneratedOn domain.Date                   `json:"generated_on"`
	WindowDays  int                           `json:"window_days"`
}

// OperatorStats roster counters plus expiry counters.
type OperatorStats struct {
	derived.RosterStats
	ExpiredDocuments  int `json:"expired_documents"`
	ExpiringDocuments int `json:"expiring_documents"`
}

// OperatorServiceConfig tunables shared by the compliance views.
type OperatorServiceConfig struct {
	WindowDays         int
	MaxAttachmentBytes int64
}

type operatorService struct {
	operators *repository.OperatorRepo
	evaluator derived.ExpiryEvaluator
	maxBytes  int64
	cache     *ViewCache
	logger    *zap.Logger
	now       func() time.Time
}

func NewOperatorService(rs repository.RecordStore, cfg OperatorServiceConfig, cache *ViewCache, logger *zap.Logger) OperatorService {
	return &operatorService{
		operators: repository.NewOperatorRepo(rs),
		evaluator: derived.NewExpiryEvaluator(cfg.WindowDays),
		maxBytes:  cfg.MaxAttachmentBytes,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *operatorService) List(ctx context.Context, role string) ([]*domain.Operator, error) {
	all, err := s.operators.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	out := derived.FilterOperatorsByRole(all, strings.TrimSpace(role))
	if out == nil {
		out = []*domain.Operator{}
	}
	return out, nil
}

func (s *operatorService) Get(ctx context.Context, id int64) (*domain.Operator, error) {
	return s.operators.Get(ctx, id)
}

func (s *operatorService) Create(ctx context.Context, payload repository.Row) (*domain.Operator, error) {
	if payload == nil {
		payload = repository.Row{}
	}
	if v, ok := payload["stato"]; !ok || v == nil || v == "" {
		payload["stato"] = domain.OperatorStatusActive
	}

	var op domain.Operator
	if err := decodePayload(repository.TableOperators, payload, &op); err != nil {
		return nil, err
	}
	if err := validateOperator(&op); err != nil {
		return nil, err
	}

	created, err := s.operators.Create(ctx, &op)
	if err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}
	s.cache.invalidate(ctx, repository.TableOperators)
	s.logger.Info("operator created", zap.Int64("id", created.ID), zap.String("role", created.Role))
	return created, nil
}

func validateOperator(op *domain.Operator) error {
	op.Name = strings.TrimSpace(op.Name)
	op.Surname = strings.TrimSpace(op.Surname)
	op.Role = strings.TrimSpace(op.Role)
	switch {
	case op.Name == "" || op.Surname == "":
		return invalidf("nome and cognome are required")
	case op.Role == "":
		return invalidf("ruolo is required")
	case op.AssignedCount < 0:
		return invalidf("assistiti_in_carico must not be negative")
	}
	return nil
}

func (s *operatorService) Update(ctx context.Context, id int64, patch repository.Row) (*domain.Operator, error) {
	current, err := s.operators.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var candidate domain.Operator
	if err := mergePatch(repository.TableOperators, current, patch, &candidate); err != nil {
		return nil, err
	}
	if err := validateOperator(&candidate); err != nil {
		return nil, err
	}

	updated, err := s.operators.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableOperators)
	return updated, nil
}

func (s *operatorService) Delete(ctx context.Context, id int64) error {
	if err := s.operators.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx, repository.TableOperators)
	s.logger.Info("operator deleted", zap.Int64("id", id))
	return nil
}

func (s *operatorService) Compliance(ctx context.Context, id int64) (*derived.OperatorCompliance, error) {
	op, err := s.operators.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Compliance(op, s.now())
}

func (s *operatorService) ComplianceReport(ctx context.Context) (*ComplianceReport, error) {
	ops, err := s.operators.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	ref := s.now()
	report := &ComplianceReport{
		Operators:   make([]*derived.OperatorCompliance, 0, len(ops)),
		GeneratedOn: domain.DateOf(ref),
		WindowDays:  s.evaluator.Window(),
	}
	for _, op := range ops {
		c, err := s.evaluator.Compliance(op, ref)
		if err != nil {
			return nil, err
		}
		report.Operators = append(report.Operators, c)
	}
	report.Totals = derived.Totals(report.Operators)
	return report, nil
}

func (s *operatorService) Expiring(ctx context.Context) ([]derived.ExpiringDocument, error) {
	ops, err := s.operators.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	docs, err := s.evaluator.ExpiringDocuments(ops, s.now())
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []derived.ExpiringDocument{}
	}
	return docs, nil
}

// Stats is cached per day since the expiry counters move with the date.
func (s *operatorService) Stats(ctx context.Context) (*OperatorStats, error) {
	ref := s.now()
	key := cacheKey(repository.TableOperators, "stats:"+string(domain.DateOf(ref)))
	stats, err := cachedView(ctx, s.cache, key, func() (OperatorStats, error) {
		ops, err := s.operators.List(ctx)
		if err != nil {
			return OperatorStats{}, fmt.Errorf("failed to list operators: %w", err)
		}
		out := OperatorStats{RosterStats: derived.ComputeRosterStats(ops)}
		for _, op := range ops {
			c, err := s.evaluator.Compliance(op, ref)
			if err != nil {
				return OperatorStats{}, err
			}
			out.ExpiredDocuments += c.ExpiredCount
			out.ExpiringDocuments += c.ExpiringSoonCount
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *operatorService) AttachDocumentFile(ctx context.Context, id int64, kind string, up Upload) (*domain.FileRef, error) {
	k, ok := domain.ParseDocumentKind(kind)
	if !ok {
		return nil, invalidf("unknown document %q", kind)
	}
	op, err := s.operators.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := domain.NewFileRef(up.Name, up.ContentType, up.Size, s.maxBytes, s.now())
	if err != nil {
		return nil, err
	}

	op.PersonnelFile.Document(k).File = ref
	file, err := plainValue(op.PersonnelFile)
	if err != nil {
		return nil, err
	}
	if _, err := s.operators.Update(ctx, id, repository.Row{"fascicolo": file}); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableOperators)
	s.logger.Info("personnel document attached",
		zap.Int64("operator_id", id),
		zap.String("document", string(k)),
		zap.String("key", ref.Key),
	)
	return ref, nil
}
