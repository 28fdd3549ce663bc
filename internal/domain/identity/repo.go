package identity

import "context"

type PersonRepository interface {
	Create(ctx context.Context, p *Person) error
	GetByID(ctx context.Context, id int64) (*Person, error)
	GetByEmail(ctx context.Context, email string) (*Person, error)
}

type DoctorRepository interface {
	CreateProfile(ctx context.Context, dp *DoctorProfile) error
	UpdateProfile(ctx context.Context, dp *DoctorProfile) error
	GetDoctor(ctx context.Context, personID int64) (*Doctor, error)
	ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, int, error)
}
