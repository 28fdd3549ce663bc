package registry

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Department, error)
	List(ctx context.Context) ([]Department, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, s *MedicalService) error
	Update(ctx context.Context, s *MedicalService) error
	GetByID(ctx context.Context, id int64) (*MedicalService, error)
	List(ctx context.Context, departmentID int64, limit, offset int) ([]MedicalService, int, error)
	PriceList(ctx context.Context) ([]PriceListEntry, error)
}
