package patient

import "time"

// Patient is a clinic visitor. Patients are never deleted; their appointment
// history backs the revenue reports.
type Patient struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender,omitempty"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName renders the patient's display name used in report rows.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
