package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Owujuah/apex-living/internal/models"
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidPeriodCount = errors.New("period count must be at least 1")
)

const dateLayout = "2006-01-02"

// BuildInstallmentPlan splits totalAmount into monthly installments starting
// one month after start. Each installment carries totalAmount/periods
// rounded down to two decimal places; the final installment absorbs the
// rounding remainder so the schedule always sums to totalAmount exactly.
// The first installment is immediately payable, the rest are upcoming.
func BuildInstallmentPlan(totalAmount decimal.Decimal, periods int, start time.Time) ([]models.Installment, error) {
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if periods < 1 {
		return nil, ErrInvalidPeriodCount
	}
	// Every installment must carry at least one cent; more periods than
	// cents would leave zero-amount installments in the schedule.
	if decimal.NewFromInt(int64(periods)).GreaterThan(totalAmount.Mul(decimal.NewFromInt(100))) {
		return nil, ErrInvalidPeriodCount
	}

	// Base is rounded down so the first n-1 installments never overshoot
	// the total; the guard above keeps it at one cent or more.
	base := totalAmount.Div(decimal.NewFromInt(int64(periods))).RoundDown(2)

	installments := make([]models.Installment, 0, periods)
	for i := 0; i < periods; i++ {
		amount := base
		if i == periods-1 {
			// remainder policy: last installment takes up the slack
			amount = totalAmount.Sub(base.Mul(decimal.NewFromInt(int64(periods - 1))))
		}

		status := models.InstallmentStatusUpcoming
		if i == 0 {
			status = models.InstallmentStatusPending
		}

		installments = append(installments, models.Installment{
			ID:      "inst-" + uuid.New().String(),
			Number:  i + 1,
			Amount:  amount,
			DueDate: start.AddDate(0, i+1, 0).Format(dateLayout),
			Status:  status,
		})
	}

	return installments, nil
}
