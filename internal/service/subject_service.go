package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
)

type subjectRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
	FindByID(ctx context.Context, userID, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, userID, id string) error
}

const defaultSubjectColor = "#3b82f6"

// CreateSubjectRequest captures fields for creating subjects. A blank
// code is auto-allocated.
type CreateSubjectRequest struct {
	Name     string  `json:"name" validate:"required"`
	Code     string  `json:"code"`
	Location *string `json:"location"`
	Color    string  `json:"color" validate:"omitempty,hexcolor"`
}

// SubjectService handles subject workflows and code allocation.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns all of a user's subjects.
func (s *SubjectService) List(ctx context.Context, userID string) ([]models.Subject, error) {
	subjects, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject by identifier.
func (s *SubjectService) Get(ctx context.Context, userID, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a new subject, allocating a code when none is supplied.
func (s *SubjectService) Create(ctx context.Context, userID string, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		existing, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
		}
		code = NextSubjectCode(existing)
	}

	color := req.Color
	if color == "" {
		color = defaultSubjectColor
	}

	subject := &models.Subject{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Code:     code,
		Location: req.Location,
		Color:    color,
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update applies a partial update to an existing subject.
func (s *SubjectService) Update(ctx context.Context, userID, id string, patch models.SubjectPatch) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
		}
		subject.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Code != nil && strings.TrimSpace(*patch.Code) != "" {
		subject.Code = strings.ToUpper(strings.TrimSpace(*patch.Code))
	}
	if patch.Location != nil {
		subject.Location = patch.Location
	}
	if patch.Color != nil {
		if err := s.validator.Var(*patch.Color, "hexcolor"); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "color must be a hex color")
		}
		subject.Color = *patch.Color
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject. Events referencing it are kept; their views
// degrade to a placeholder label.
func (s *SubjectService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

// NextCode suggests the code the next created subject would receive.
func (s *SubjectService) NextCode(ctx context.Context, userID string) (string, error) {
	subjects, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return NextSubjectCode(subjects), nil
}

// NextSubjectCode computes the auto-allocated code for a new subject:
// M followed by a zero-padded sequence number. The sequence is the larger
// of the collection size and the highest existing M-code suffix, plus
// one, so deleting and re-adding subjects cannot re-issue a live code.
func NextSubjectCode(existing []models.Subject) string {
	n := len(existing)
	for _, sub := range existing {
		if suffix, ok := parseGeneratedCode(sub.Code); ok && suffix > n {
			n = suffix
		}
	}
	return fmt.Sprintf("M%02d", n+1)
}

func parseGeneratedCode(code string) (int, bool) {
	if len(code) < 2 || code[0] != 'M' {
		return 0, false
	}
	n := 0
	for _, r := range code[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
