package identity

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
)

type Service struct {
	persons PersonRepository
	doctors DoctorRepository
	tx      db.TxRunner
	issuer  *auth.TokenIssuer
}

func NewService(persons PersonRepository, doctors DoctorRepository, tx db.TxRunner, issuer *auth.TokenIssuer) *Service {
	return &Service{persons: persons, doctors: doctors, tx: tx, issuer: issuer}
}

// RegisterDoctorInput carries everything needed to onboard a doctor.
type RegisterDoctorInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	DepartmentID int64  `json:"department_id"`
	Cabinet      string `json:"cabinet"`
	BonusPercent int    `json:"bonus_percent"`
}

type RegisterReceptionInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func validateAccount(email, password, firstName, lastName string) error {
	if !strings.Contains(email, "@") {
		return apperror.Validationf("invalid email address")
	}
	if len(password) < 8 {
		return apperror.Validationf("password must be at least 8 characters")
	}
	if firstName == "" || lastName == "" {
		return apperror.Validationf("first and last name are required")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RegisterDoctor creates the staff account and the doctor profile atomically.
func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*Doctor, error) {
	if err := validateAccount(in.Email, in.Password, in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if in.DepartmentID <= 0 {
		return nil, apperror.Validationf("department_id is required")
	}
	if in.BonusPercent < 0 || in.BonusPercent > 100 {
		return nil, apperror.Validationf("bonus_percent must be between 0 and 100")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	person := &Person{
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         RoleDoctor,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.persons.Create(ctx, person); err != nil {
			return err
		}
		return s.doctors.CreateProfile(ctx, &DoctorProfile{
			PersonID:     person.ID,
			DepartmentID: in.DepartmentID,
			Cabinet:      in.Cabinet,
			BonusPercent: in.BonusPercent,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.doctors.GetDoctor(ctx, person.ID)
}

// RegisterReception creates a reception staff account.
func (s *Service) RegisterReception(ctx context.Context, in RegisterReceptionInput) (*Person, error) {
	if err := validateAccount(in.Email, in.Password, in.FirstName, in.LastName); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	person := &Person{
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         RoleReception,
	}
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// Authenticate checks credentials and returns a signed access token along with
// the authenticated person. Wrong email and wrong password are reported
// identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *Person, error) {
	person, err := s.persons.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", nil, apperror.Validationf("invalid credentials")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperror.Validationf("invalid credentials")
	}

	token, err := s.issuer.Issue(person.ID, person.Role)
	if err != nil {
		return "", nil, err
	}
	return token, person, nil
}

// GetDoctor returns the flat doctor read model.
func (s *Service) GetDoctor(ctx context.Context, personID int64) (*Doctor, error) {
	return s.doctors.GetDoctor(ctx, personID)
}

// ListDoctors returns a page of doctors with the total count.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, int, error) {
	return s.doctors.ListDoctors(ctx, limit, offset)
}

// UpdateDoctorProfile changes a doctor's department, cabinet or bonus rate.
func (s *Service) UpdateDoctorProfile(ctx context.Context, dp DoctorProfile) (*Doctor, error) {
	if dp.DepartmentID <= 0 {
		return nil, apperror.Validationf("department_id is required")
	}
	if dp.BonusPercent < 0 || dp.BonusPercent > 100 {
		return nil, apperror.Validationf("bonus_percent must be between 0 and 100")
	}
	if err := s.doctors.UpdateProfile(ctx, &dp); err != nil {
		return nil, err
	}
	return s.doctors.GetDoctor(ctx, dp.PersonID)
}
