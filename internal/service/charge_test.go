package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bookvault/borrowing-service/internal/model"
	"github.com/bookvault/borrowing-service/internal/service"
)

func day(n int) model.Date {
	return model.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n))
}

func datePtr(d model.Date) *model.Date {
	return &d
}

func TestCharge(t *testing.T) {
	t.Parallel()

	fee := decimal.RequireFromString("9.99")

	tests := []struct {
		name       string
		borrowing  model.Borrowing
		dailyFee   decimal.Decimal
		wantType   model.PaymentType
		wantAmount string
	}{
		{
			name: "returned on expected date",
			borrowing: model.Borrowing{
				BorrowDate:         day(0),
				ExpectedReturnDate: day(2),
				ActualReturnDate:   datePtr(day(2)),
			},
			dailyFee:   fee,
			wantType:   model.PaymentTypePayment,
			wantAmount: "19.98",
		},
		{
			name: "returned early still pays the planned window",
			borrowing: model.Borrowing{
				BorrowDate:         day(0),
				ExpectedReturnDate: day(2),
				ActualReturnDate:   datePtr(day(1)),
			},
			dailyFee:   fee,
			wantType:   model.PaymentTypePayment,
			wantAmount: "19.98",
		},
		{
			name: "returned late pays a doubled per-day fine",
			borrowing: model.Borrowing{
				BorrowDate:         day(0),
				ExpectedReturnDate: day(2),
				ActualReturnDate:   datePtr(day(5)),
			},
			dailyFee:   fee,
			wantType:   model.PaymentTypeFine,
			wantAmount: "59.94",
		},
		{
			name: "zero-day window owes nothing",
			borrowing: model.Borrowing{
				BorrowDate:         day(0),
				ExpectedReturnDate: day(0),
				ActualReturnDate:   datePtr(day(0)),
			},
			dailyFee:   fee,
			wantType:   model.PaymentTypePayment,
			wantAmount: "0",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			typ, amount := service.Charge(tt.borrowing, tt.dailyFee)
			require.Equal(t, tt.wantType, typ)
			require.True(t, amount.Equal(decimal.RequireFromString(tt.wantAmount)),
				"amount = %s, want %s", amount, tt.wantAmount)
		})
	}
}
