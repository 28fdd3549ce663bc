package patient

import (
	"context"
	"strings"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validGenders = map[string]bool{"": true, "male": true, "female": true, "other": true}

// Register creates a new patient record.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	if p.FirstName == "" || p.LastName == "" {
		return apperror.Validationf("first and last name are required")
	}
	if p.Phone == "" {
		return apperror.Validationf("phone is required")
	}
	if p.BirthDate.IsZero() {
		return apperror.Validationf("birth_date is required")
	}
	if p.BirthDate.After(time.Now()) {
		return apperror.Validationf("birth_date must be in the past")
	}
	if !validGenders[p.Gender] {
		return apperror.Validationf("invalid gender: %s", p.Gender)
	}

	return s.patients.Create(ctx, p)
}

// UpdateContact changes the fields reception may edit after registration.
// Identity fields stay fixed so appointment history keeps its meaning.
func (s *Service) UpdateContact(ctx context.Context, id int64, phone, address string) (*Patient, error) {
	if phone == "" {
		return nil, apperror.Validationf("phone is required")
	}
	if err := s.patients.UpdateContact(ctx, id, phone, address); err != nil {
		return nil, err
	}
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]Patient, int, error) {
	return s.patients.Search(ctx, strings.TrimSpace(query), limit, offset)
}
