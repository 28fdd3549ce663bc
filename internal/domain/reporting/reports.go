package reporting

import (
	"sort"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/pkg/money"
)

// Context carries the settings report builders need beyond the lines
// themselves.
type Context struct {
	Filter      Filter
	DoctorShare float64
	ClinicShare float64
}

// PatientHistoryReport lists a patient's appointments with status tallies.
// StatusCounts always carries every status, zero when absent.
type PatientHistoryReport struct {
	Lines             []Line                     `json:"lines"`
	TotalAppointments int                        `json:"total_appointments"`
	StatusCounts      map[appointment.Status]int `json:"status_counts"`
}

func BuildPatientHistoryReport(lines []Line) PatientHistoryReport {
	records := Records(lines)
	if lines == nil {
		lines = []Line{}
	}
	return PatientHistoryReport{
		Lines:             lines,
		TotalAppointments: len(lines),
		StatusCounts:      StatusCounts(records),
	}
}

// PatientPaymentReport lists a patient's paid appointments with how much was
// paid and through which methods. Unlike StatusCounts, PaymentMethodSums
// omits methods with no records.
type PatientPaymentReport struct {
	Lines             []Line           `json:"lines"`
	TotalPaid         int64            `json:"total_paid"`
	PaymentMethodSums map[string]int64 `json:"payment_method_sums"`
}

func BuildPatientPaymentReport(lines []Line) PatientPaymentReport {
	paid := []Line{}
	for _, l := range lines {
		if l.Status == appointment.StatusReserved {
			paid = append(paid, l)
		}
	}
	records := Records(paid)
	return PatientPaymentReport{
		Lines:             paid,
		TotalPaid:         TotalPrice(records),
		PaymentMethodSums: PaymentMethodBreakdown(records),
	}
}

// DoctorSummaryRow aggregates one doctor's appointments and bonus.
type DoctorSummaryRow struct {
	DoctorID             int64            `json:"doctor_id"`
	DoctorName           string           `json:"doctor_name"`
	Cabinet              string           `json:"cabinet"`
	BonusPercent         int              `json:"bonus_percent"`
	TotalAppointments    int              `json:"total_appointments"`
	TotalPrice           int64            `json:"total_price"`
	TotalDiscountedPrice float64          `json:"total_discounted_price"`
	TotalBonus           float64          `json:"total_bonus"`
	PaymentMethodSums    map[string]int64 `json:"payment_method_sums"`
	Lines                []Line           `json:"lines"`
}

// DoctorSummaryReport groups revenue and bonuses by doctor.
type DoctorSummaryReport struct {
	Rows       []DoctorSummaryRow `json:"rows"`
	TotalBonus float64            `json:"total_bonus"`
}

func BuildDoctorSummaryReport(lines []Line) DoctorSummaryReport {
	grouped := make(map[int64][]Line)
	for _, l := range lines {
		grouped[l.DoctorID] = append(grouped[l.DoctorID], l)
	}

	report := DoctorSummaryReport{Rows: []DoctorSummaryRow{}}
	var totalBonus float64
	for doctorID, group := range grouped {
		records := Records(group)
		row := DoctorSummaryRow{
			DoctorID:             doctorID,
			DoctorName:           group[0].DoctorName,
			Cabinet:              group[0].Cabinet,
			BonusPercent:         group[0].BonusPercent,
			TotalAppointments:    len(group),
			TotalPrice:           TotalPrice(records),
			TotalDiscountedPrice: TotalDiscountedPrice(records),
			TotalBonus:           TotalBonus(records, group[0].BonusPercent),
			PaymentMethodSums:    PaymentMethodBreakdown(records),
			Lines:                group,
		}
		totalBonus += row.TotalBonus
		report.Rows = append(report.Rows, row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].DoctorName < report.Rows[j].DoctorName
	})
	report.TotalBonus = money.Round2(totalBonus)
	return report
}

// ClinicSummaryReport is the owner's one-page view: gross revenue by method
// and the doctors' share of it.
type ClinicSummaryReport struct {
	TotalAppointments int     `json:"total_appointments"`
	TotalCash         int64   `json:"total_cash"`
	TotalCard         int64   `json:"total_card"`
	TotalPrice        int64   `json:"total_price"`
	TotalToDoctors    float64 `json:"total_to_doctors"`
	TotalToClinic     float64 `json:"total_to_clinic"`
}

func BuildClinicSummaryReport(lines []Line, rc Context) ClinicSummaryReport {
	records := Records(lines)
	breakdown := PaymentMethodBreakdown(records)
	toDoctors, toClinic := Split(records, rc.DoctorShare, rc.ClinicShare)
	return ClinicSummaryReport{
		TotalAppointments: len(lines),
		TotalCash:         breakdown[appointment.PaymentCash],
		TotalCard:         breakdown[appointment.PaymentCard],
		TotalPrice:        TotalPrice(records),
		TotalToDoctors:    toDoctors,
		TotalToClinic:     toClinic,
	}
}

// DoctorDailyBonusLine is one appointment's bonus contribution.
type DoctorDailyBonusLine struct {
	AppointmentID   int64   `json:"appointment_id"`
	DoctorID        int64   `json:"doctor_id"`
	DoctorName      string  `json:"doctor_name"`
	Cabinet         string  `json:"cabinet"`
	Date            string  `json:"date"`
	ServiceName     string  `json:"service_name"`
	DiscountedPrice float64 `json:"discounted_price"`
	Bonus           float64 `json:"bonus"`
}

// DoctorDailyBonusReport itemizes the bonus earned per appointment, one line
// each, with the running total.
type DoctorDailyBonusReport struct {
	Lines         []DoctorDailyBonusLine `json:"lines"`
	TotalBonusSum float64                `json:"total_bonus_sum"`
}

func BuildDoctorDailyBonusReport(lines []Line) DoctorDailyBonusReport {
	report := DoctorDailyBonusReport{Lines: []DoctorDailyBonusLine{}}
	var total float64
	for _, l := range lines {
		discounted := RecordDiscountedPrice(l.Record)
		bonus := money.Round2(money.Percent(discounted, l.BonusPercent))
		report.Lines = append(report.Lines, DoctorDailyBonusLine{
			AppointmentID:   l.ID,
			DoctorID:        l.DoctorID,
			DoctorName:      l.DoctorName,
			Cabinet:         l.Cabinet,
			Date:            l.Date.Format("2006-01-02"),
			ServiceName:     l.ServiceName,
			DiscountedPrice: discounted,
			Bonus:           bonus,
		})
		total += bonus
	}
	report.TotalBonusSum = money.Round2(total)
	return report
}
