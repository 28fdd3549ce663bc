package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	UpdateContact(ctx context.Context, id int64, phone, address string) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	// Search matches against name and phone. An empty query lists everyone.
	Search(ctx context.Context, query string, limit, offset int) ([]Patient, int, error)
}
