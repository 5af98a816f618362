package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homecare-data/internal/domain"
	"homecare-data/internal/repository"

	"go.uber.org/zap"
)

// HealthFolderService clinical document folders of assisted persons.
type HealthFolderService interface {
	List(ctx context.Context, assistedPersonID int64) ([]*domain.HealthFolder, error)
	Get(ctx context.Context, id int64) (*domain.HealthFolder, error)
	Create(ctx context.Context, payload repository.Row) (*domain.HealthFolder, error)
	Update(ctx context.Context, id int64, patch repository.Row) (*domain.HealthFolder, error)
	Delete(ctx context.Context, id int64) error
	Archive(ctx context.Context, id int64) (*domain.HealthFolder, error)
	AttachDocument(ctx context.Context, id int64, up Upload) (*domain.FileRef, error)
}

type healthFolderService struct {
	folders  *repository.HealthFolderRepo
	persons  *repository.AssistedPersonRepo
	maxBytes int64
	cache    *ViewCache
	logger   *zap.Logger
	now      func() time.Time
}

func NewHealthFolderService(rs repository.RecordStore, maxAttachmentBytes int64, cache *ViewCache, logger *zap.Logger) HealthFolderService {
	return &healthFolderService{
		folders:  repository.NewHealthFolderRepo(rs),
		persons:  repository.NewAssistedPersonRepo(rs),
		maxBytes: maxAttachmentBytes,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// List zero assistedPersonID lists every folder.
func (s *healthFolderService) List(ctx context.Context, assistedPersonID int64) ([]*domain.HealthFolder, error) {
	all, err := s.folders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list health folders: %w", err)
	}
	if assistedPersonID == 0 {
		return all, nil
	}
	out := make([]*domain.HealthFolder, 0, len(all))
	for _, f := range all {
		if f.AssistedPersonID == assistedPersonID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *healthFolderService) Get(ctx context.Context, id int64) (*domain.HealthFolder, error) {
	return s.folders.Get(ctx, id)
}

func (s *healthFolderService) Create(ctx context.Context, payload repository.Row) (*domain.HealthFolder, error) {
	if payload == nil {
		payload = repository.Row{}
	}
	var f domain.HealthFolder
	if err := decodePayload(repository.TableHealthFolders, payload, &f); err != nil {
		return nil, err
	}
	if f.Status == "" {
		f.Status = domain.FolderStatusOpen
	}
	if f.OpenedOn.IsZero() {
		f.OpenedOn = domain.DateOf(s.now())
	}
	if err := s.validate(ctx, &f); err != nil {
		return nil, err
	}

	created, err := s.folders.Create(ctx, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to create health folder: %w", err)
	}
	s.cache.invalidate(ctx, repository.TableHealthFolders)
	s.logger.Info("health folder created", zap.Int64("id", created.ID), zap.Int64("assistito_id", created.AssistedPersonID))
	return created, nil
}

func (s *healthFolderService) validate(ctx context.Context, f *domain.HealthFolder) error {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return invalidf("titolo is required")
	}
	if f.Status != domain.FolderStatusOpen && f.Status != domain.FolderStatusArchived {
		return invalidf("unknown folder state %q", f.Status)
	}
	if _, err := f.OpenedOn.Time(); err != nil {
		return invalidf("data_apertura: %v", err)
	}
	if f.AssistedPersonID <= 0 {
		return invalidf("assistito_id is required")
	}
	if _, err := s.persons.Get(ctx, f.AssistedPersonID); err != nil {
		return invalidf("assistito_id %d: %v", f.AssistedPersonID, err)
	}
	return nil
}

func (s *healthFolderService) Update(ctx context.Context, id int64, patch repository.Row) (*domain.HealthFolder, error) {
	current, err := s.folders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var candidate domain.HealthFolder
	if err := mergePatch(repository.TableHealthFolders, current, patch, &candidate); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &candidate); err != nil {
		return nil, err
	}

	updated, err := s.folders.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableHealthFolders)
	return updated, nil
}

func (s *healthFolderService) Delete(ctx context.Context, id int64) error {
	if err := s.folders.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx, repository.TableHealthFolders)
	return nil
}

// Archive closes the folder; archived folders accept no new documents.
func (s *healthFolderService) Archive(ctx context.Context, id int64) (*domain.HealthFolder, error) {
	f, err := s.folders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == domain.FolderStatusArchived {
		return nil, conflictf("health folder %d is already archived", id)
	}
	updated, err := s.folders.Update(ctx, id, repository.Row{
		"stato":         domain.FolderStatusArchived,
		"data_chiusura": string(domain.DateOf(s.now())),
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableHealthFolders)
	s.logger.Info("health folder archived", zap.Int64("id", id))
	return updated, nil
}

func (s *healthFolderService) AttachDocument(ctx context.Context, id int64, up Upload) (*domain.FileRef, error) {
	f, err := s.folders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == domain.FolderStatusArchived {
		return nil, conflictf("health folder %d is archived", id)
	}
	ref, err := domain.NewFileRef(up.Name, up.ContentType, up.Size, s.maxBytes, s.now())
	if err != nil {
		return nil, err
	}

	docs, err := plainValue(append(f.Documents, *ref))
	if err != nil {
		return nil, err
	}
	if _, err := s.folders.Update(ctx, id, repository.Row{"documenti": docs}); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, repository.TableHealthFolders)
	s.logger.Info("health folder document attached", zap.Int64("folder_id", id), zap.String("key", ref.Key))
	return ref, nil
}
