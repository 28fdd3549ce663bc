package reporting

import "github.com/clinic/clinic/internal/domain/appointment"

// Line is one appointment enriched with the names reports print. Lines are
// produced by a single joined query so report builders never call back into
// other domains.
type Line struct {
	appointment.Record
	PatientName    string `json:"patient_name"`
	DoctorName     string `json:"doctor_name"`
	Cabinet        string `json:"cabinet"`
	BonusPercent   int    `json:"bonus_percent"`
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	ServiceName    string `json:"service_name"`
}

// Records extracts the bare appointment records from a set of lines.
func Records(lines []Line) []appointment.Record {
	records := make([]appointment.Record, len(lines))
	for i, l := range lines {
		records[i] = l.Record
	}
	return records
}
