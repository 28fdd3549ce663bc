package identity

import "time"

// Staff roles. Admins manage the clinic, doctors see patients, reception
// registers patients and books appointments.
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleReception = "reception"
)

// Person is a staff account. Every doctor and receptionist has one.
type Person struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// DoctorProfile extends a Person with clinic placement and the bonus rate used
// by revenue reports.
type DoctorProfile struct {
	PersonID     int64  `json:"person_id"`
	DepartmentID int64  `json:"department_id"`
	Cabinet      string `json:"cabinet"`
	BonusPercent int    `json:"bonus_percent"`
}

// Doctor is the flat read model joined across person, profile and department.
type Doctor struct {
	PersonID       int64  `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Cabinet        string `json:"cabinet"`
	BonusPercent   int    `json:"bonus_percent"`
}

// FullName renders the doctor's display name used in report rows.
func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
