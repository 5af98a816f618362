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

// DiaryService home-visit diary (diario assistenziale).
type DiaryService interface {
	List(ctx context.Context, req ListDiaryRequest) ([]*domain.VisitLog, error)
	Get(ctx context.Context, id int64) (*domain.VisitLog, error)
	Create(ctx context.Context, payload repository.Row) (*domain.VisitLog, error)
	Update(ctx context.Context, id int64, patch repository.Row) (*domain.VisitLog, error)
	Delete(ctx context.Context, id int64) error
	AttachFile(ctx context.Context, id int64, up Upload) (*domain.FileRef, error)
}

// ListDiaryRequest Period is today when empty; zero IDs do not filter.
type ListDiaryRequest struct {
	Period           string
	OperatorID       int64
	AssistedPersonID int64
}

type diaryService struct {
	visits    *repository.VisitLogRepo
	persons   *repository.AssistedPersonRepo
	operators *repository.OperatorRepo
	maxBytes  int64
	cache     *ViewCache
	logger    *zap.Logger
	now       func() time.Time
}

func NewDiaryService(rs repository.RecordStore, maxAttachmentBytes int64, cache *ViewCache, logger *zap.Logger) DiaryService {
	return &diaryService{
		visits:    repository.NewVisitLogRepo(rs),
		persons:   repository.NewAssistedPersonRepo(rs),
		operators: repository.NewOperatorRepo(rs),
		maxBytes:  maxAttachmentBytes,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *diaryService) List(ctx context.Context, req ListDiaryRequest) ([]*domain.VisitLog, error) {
	period, ok := derived.ParseDiaryPeriod(req.Period)
	if !ok {
		return nil, invalidf("unknown period %q", req.Period)
	}
	all, err := s.visits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	return derived.FilterVisitLogs(all, derived.DiaryFilter{
		Period:           period,
		OperatorID:       req.OperatorID,
		AssistedPersonID: req.AssistedPersonID,
	}, s.now())
}

func (s *diaryService) Get(ctx context.Context, id int64) (*domain.VisitLog, error) {
	return s.visits.Get(ctx, id)
}

func (s *diaryService) Create(ctx context.Context, payload repository.Row) (*domain.VisitLog, error) {
	if payload == nil {
		payload = repository.Row{}
	}
	var l domain.VisitLog
	if err := decodePayload(repository.TableVisitLogs, payload, &l); err != nil {
		return nil, err
	}
	if l.Date.IsZero() {
		l.Date = domain.DateOf(s.now())
	}
	if err := s.validate(ctx, &l); err != nil {
		return nil, err
	}

	created, err := s.visits.Create(ctx, &l)
	if err != nil {
		return nil, fmt.Errorf("failed to create diary entry: %w", err)
	}
	s.cache.invalidate(ctx, repository.TableVisitLogs)
	s.logger.Info("diary entry created",
		zap.Int64("id", created.ID),
		zap.Int64("assistito_id", created.AssistedPersonID),
		zap.Int64("operatore_id", created.OperatorID),
	)
	return created, nil
}

// validate an entry needs an existing assisted person; the operator is
// optional but must exist when given.
func (s *diaryService) validate(ctx context.Context, l *domain.VisitLog) error {
	if !l.Date.IsZero() {
		if _, err := l.Date.Time(); err != nil {
			return invalidf("data: %v", err)
		}
	}
	l.ServiceType = strings.TrimSpace(l.ServiceType)
	if l.AssistedPersonID <= 0 {
		return invalidf("assistito_id is required")
	}
	if _, err := s.persons.Get(ctx, l.AssistedPersonID); err != nil {
		return invalidf("assistito_id %d: %v", l.AssistedPersonID, err)
	}
	if l.OperatorID != 0 {
		if _, err := s.operators.Get(ctx, l.OperatorID); err != nil {
			return invalidf("operatore_id %d: %v", l.OperatorID, err)
		}
	}
	return nil
}

func (s *diaryService) Update(ctx context.Context, id int64, patch repository.Row) (*domain.VisitLog, error) {
	current, err := s.visits.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var candidate domain.VisitLog
	if err := mergePatch(repository.TableVisitLogs, current, patch, &candidate); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &candidate); err != nil {
		return nil, err
	}

	updated, err := s.visits.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableVisitLogs)
	return updated, nil
}

func (s *diaryService) Delete(ctx context.Context, id int64) error {
	if err := s.visits.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx, repository.TableVisitLogs)
	return nil
}

func (s *diaryService) AttachFile(ctx context.Context, id int64, up Upload) (*domain.FileRef, error) {
	l, err := s.visits.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := domain.NewFileRef(up.Name, up.ContentType, up.Size, s.maxBytes, s.now())
	if err != nil {
		return nil, err
	}
	files, err := plainValue(append(l.Attachments, *ref))
	if err != nil {
		return nil, err
	}
	if _, err := s.visits.Update(ctx, id, repository.Row{"allegati": files}); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableVisitLogs)
	s.logger.Info("diary attachment added", zap.Int64("entry_id", id), zap.String("key", ref.Key))
	return ref, nil
}
