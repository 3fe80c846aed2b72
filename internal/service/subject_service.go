package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tutorhub/tutorhub-api/internal/models"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
)

const subjectCatalogCacheKey = "subjects:catalog"

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Subject, error)
	ReplaceUserSubjects(ctx context.Context, userID string, subjectIDs []string) error
	ReplaceTeacherSubjects(ctx context.Context, teacherID string, subjectIDs []string) error
}

// SubjectService serves the catalog and the per-user subject associations.
type SubjectService struct {
	repo   subjectRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewSubjectService constructs SubjectService.
func NewSubjectService(repo subjectRepository, cache *CacheService, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, logger: logger}
}

// List returns the full catalog ordered by name. The catalog is immutable
// after seeding, so it is served from cache when available.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	var cached []models.Subject
	if hit, _ := s.cache.Get(ctx, subjectCatalogCacheKey, &cached); hit {
		return cached, nil
	}

	subjects, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	if err := s.cache.Set(ctx, subjectCatalogCacheKey, subjects, 0); err != nil {
		s.logger.Warn("subject catalog cache write failed", zap.Error(err))
	}
	return subjects, nil
}

// GetMySubjects returns the actor's selected subjects (interest set).
func (s *SubjectService) GetMySubjects(ctx context.Context, actor *models.JWTClaims) ([]models.Subject, error) {
	subjects, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selected subjects")
	}
	return subjects, nil
}

// SetMySubjects replaces the actor's interest set wholesale and returns the
// resulting set. Calling it twice with the same ids is idempotent.
func (s *SubjectService) SetMySubjects(ctx context.Context, actor *models.JWTClaims, subjectIDs []string) ([]models.Subject, error) {
	ids := dedupeIDs(subjectIDs)
	if err := s.ensureKnown(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceUserSubjects(ctx, actor.UserID, ids); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save selected subjects")
	}
	return s.GetMySubjects(ctx, actor)
}

// GetTeacherSubjects returns the actor's declared teaching subjects.
func (s *SubjectService) GetTeacherSubjects(ctx context.Context, actor *models.JWTClaims) ([]models.Subject, error) {
	if !actor.IsTeacherRole() && !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	subjects, err := s.repo.ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching subjects")
	}
	return subjects, nil
}

// SetTeacherSubjects replaces the actor's teaching set wholesale.
func (s *SubjectService) SetTeacherSubjects(ctx context.Context, actor *models.JWTClaims, subjectIDs []string) ([]models.Subject, error) {
	if !actor.IsTeacherRole() && !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ids := dedupeIDs(subjectIDs)
	if err := s.ensureKnown(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTeacherSubjects(ctx, actor.UserID, ids); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save teaching subjects")
	}
	subjects, err := s.repo.ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching subjects")
	}
	return subjects, nil
}

func (s *SubjectService) ensureKnown(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	known, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve subjects")
	}
	if len(known) != len(ids) {
		return appErrors.NewValidation(map[string]string{"subject_ids": "one or more subjects do not exist"})
	}
	return nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
