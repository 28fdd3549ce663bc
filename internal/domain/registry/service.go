package registry

import (
	"context"
	"strings"

	"github.com/clinic/clinic/internal/platform/apperror"
)

type Service struct {
	departments DepartmentRepository
	services    ServiceRepository
}

func NewService(departments DepartmentRepository, services ServiceRepository) *Service {
	return &Service{departments: departments, services: services}
}

// -- Departments --

func (s *Service) CreateDepartment(ctx context.Context, name string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validationf("department name is required")
	}
	d := &Department{Name: name}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) RenameDepartment(ctx context.Context, id int64, name string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validationf("department name is required")
	}
	d := &Department{ID: id, Name: name}
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.departments.GetByID(ctx, id)
}

func (s *Service) DeleteDepartment(ctx context.Context, id int64) error {
	return s.departments.Delete(ctx, id)
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	return s.departments.GetByID(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.departments.List(ctx)
}

// -- Medical services --

func (s *Service) validateService(ctx context.Context, ms *MedicalService) error {
	ms.Name = strings.TrimSpace(ms.Name)
	if ms.Name == "" {
		return apperror.Validationf("service name is required")
	}
	if ms.Price < 0 {
		return apperror.Validationf("price must not be negative")
	}
	if _, err := s.departments.GetByID(ctx, ms.DepartmentID); err != nil {
		return err
	}
	return nil
}

func (s *Service) CreateService(ctx context.Context, ms *MedicalService) error {
	if err := s.validateService(ctx, ms); err != nil {
		return err
	}
	ms.Active = true
	return s.services.Create(ctx, ms)
}

func (s *Service) UpdateService(ctx context.Context, ms *MedicalService) error {
	if err := s.validateService(ctx, ms); err != nil {
		return err
	}
	return s.services.Update(ctx, ms)
}

func (s *Service) GetService(ctx context.Context, id int64) (*MedicalService, error) {
	return s.services.GetByID(ctx, id)
}

func (s *Service) ListServices(ctx context.Context, departmentID int64, limit, offset int) ([]MedicalService, int, error) {
	return s.services.List(ctx, departmentID, limit, offset)
}

// PriceList returns the active catalog grouped by department.
func (s *Service) PriceList(ctx context.Context) ([]PriceListEntry, error) {
	return s.services.PriceList(ctx)
}
