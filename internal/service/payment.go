package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bookvault/borrowing-service/internal/errs"
	"github.com/bookvault/borrowing-service/internal/model"
	"github.com/bookvault/borrowing-service/pkg/auth"
)

func (s *Service) ListPayments(ctx context.Context, user auth.User) ([]model.Payment, error) {
	return s.repo.ListPayments(ctx, user.Username, user.IsAdmin())
}

func (s *Service) GetPayment(ctx context.Context, user auth.User, paymentUid string) (model.Payment, error) {
	payment, owner, err := s.repo.GetPayment(ctx, paymentUid)
	if err != nil {
		return model.Payment{}, err
	}
	if !user.IsAdmin() && owner != user.Username {
		return model.Payment{}, errs.ErrPermissionDenied
	}
	return payment, nil
}

// CreatePayment creates a payment of an explicit type for a borrowing. The
// amount is recomputed from the borrowing dates, never taken from input.
func (s *Service) CreatePayment(ctx context.Context, user auth.User, req model.CreatePaymentRequest) (model.Payment, error) {
	borrowing, book, err := s.repo.GetBorrowing(ctx, req.BorrowingUid)
	if err != nil {
		return model.Payment{}, err
	}
	if !user.IsAdmin() && borrowing.Username != user.Username {
		return model.Payment{}, errs.ErrPermissionDenied
	}

	var amount decimal.Decimal
	switch req.Type {
	case model.PaymentTypePayment:
		amount = decimal.NewFromInt(int64(borrowing.ExpectedReturnDate.Days(borrowing.BorrowDate))).
			Mul(book.DailyFee)
	case model.PaymentTypeFine:
		// a fine only exists once the book is back
		if borrowing.ActualReturnDate == nil {
			return model.Payment{}, errs.ErrInvalidPaymentType
		}
		amount = decimal.NewFromInt(int64(borrowing.ActualReturnDate.Days(borrowing.ExpectedReturnDate))).
			Mul(book.DailyFee).
			Mul(decimal.NewFromInt(FineMultiplier))
	default:
		return model.Payment{}, errs.ErrInvalidPaymentType
	}

	payment, err := s.repo.CreatePayment(ctx, borrowing.ID, req.Type, amount)
	if err != nil {
		return model.Payment{}, err
	}
	payment.BorrowingUid = borrowing.BorrowingUid
	return payment, nil
}

// CreateSession (re)opens a checkout session for an existing payment.
func (s *Service) CreateSession(ctx context.Context, user auth.User, paymentUid string) (model.SessionResponse, error) {
	payment, owner, err := s.repo.GetPayment(ctx, paymentUid)
	if err != nil {
		return model.SessionResponse{}, err
	}
	if !user.IsAdmin() && owner != user.Username {
		return model.SessionResponse{}, errs.ErrPermissionDenied
	}

	_, book, err := s.repo.GetBorrowing(ctx, payment.BorrowingUid)
	if err != nil {
		return model.SessionResponse{}, err
	}

	session, err := s.createSession(ctx, payment, book.Title)
	if err != nil {
		return model.SessionResponse{}, err
	}
	return model.SessionResponse{
		SessionID:  session.ID,
		SessionURL: session.URL,
	}, nil
}

func (s *Service) PaymentSuccess(ctx context.Context, sessionID string) error {
	return s.repo.MarkPaymentPaid(ctx, sessionID)
}
