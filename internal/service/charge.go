package service

import (
	"github.com/shopspring/decimal"

	"github.com/bookvault/borrowing-service/internal/model"
)

// FineMultiplier scales the per-day fee for overdue returns.
const FineMultiplier = 2

// Charge computes what a closed borrowing owes. Returned on or before the
// expected date: PAYMENT over the planned borrowing window. Returned late:
// FINE over the overdue days. A zero-day window yields a zero amount.
func Charge(b model.Borrowing, dailyFee decimal.Decimal) (model.PaymentType, decimal.Decimal) {
	if b.ActualReturnDate != nil && b.ActualReturnDate.Days(b.ExpectedReturnDate) > 0 {
		daysOverdue := b.ActualReturnDate.Days(b.ExpectedReturnDate)
		return model.PaymentTypeFine,
			decimal.NewFromInt(int64(daysOverdue)).Mul(dailyFee).Mul(decimal.NewFromInt(FineMultiplier))
	}
	daysBorrowed := b.ExpectedReturnDate.Days(b.BorrowDate)
	return model.PaymentTypePayment, decimal.NewFromInt(int64(daysBorrowed)).Mul(dailyFee)
}
