package registry

import "time"

// Department groups doctors and the services they perform.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MedicalService is a catalog entry with its list price. Appointments copy the
// price at booking time, so later catalog edits never rewrite history.
type MedicalService struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// PriceListEntry is the flat read model for the public price list.
type PriceListEntry struct {
	ServiceID      int64  `json:"service_id"`
	ServiceName    string `json:"service_name"`
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Price          int64  `json:"price"`
}
