package reporting

import (
	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/pkg/money"
)

// RecordDiscountedPrice returns one appointment's price after its discount,
// rounded for per-line display.
func RecordDiscountedPrice(r appointment.Record) float64 {
	return money.Round2(money.Discounted(r.Price, r.DiscountPercent()))
}

// TotalPrice sums undiscounted prices.
func TotalPrice(records []appointment.Record) int64 {
	var total int64
	for _, r := range records {
		total += r.Price
	}
	return total
}

// TotalDiscountedPrice sums discounted prices, rounded to two decimals once
// at the end so per-record rounding noise does not accumulate.
func TotalDiscountedPrice(records []appointment.Record) float64 {
	var total float64
	for _, r := range records {
		total += money.Discounted(r.Price, r.DiscountPercent())
	}
	return money.Round2(total)
}

// TotalBonus is the doctor's cut of discounted revenue. The rate applies
// after discounts, so a discounted visit earns a proportionally smaller
// bonus.
func TotalBonus(records []appointment.Record, bonusPercent int) float64 {
	return money.Round2(money.Percent(TotalDiscountedPrice(records), bonusPercent))
}

// PaymentMethodBreakdown groups undiscounted prices by payment method, so
// the buckets partition TotalPrice exactly. Methods with no records are
// absent from the result rather than zero.
func PaymentMethodBreakdown(records []appointment.Record) map[string]int64 {
	breakdown := make(map[string]int64)
	for _, r := range records {
		if r.PaymentMethod == "" {
			continue
		}
		breakdown[r.PaymentMethod] += r.Price
	}
	return breakdown
}

// StatusCounts tallies records by status with every status present, absent
// ones as zero.
func StatusCounts(records []appointment.Record) map[appointment.Status]int {
	counts := make(map[appointment.Status]int, len(appointment.Statuses))
	for _, st := range appointment.Statuses {
		counts[st] = 0
	}
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

// Split divides the undiscounted total between doctors and the clinic. The
// shares are independent ratios, so the parts need not sum to the total.
func Split(records []appointment.Record, doctorShare, clinicShare float64) (toDoctors, toClinic float64) {
	total := float64(TotalPrice(records))
	return money.Round2(total * doctorShare), money.Round2(total * clinicShare)
}
