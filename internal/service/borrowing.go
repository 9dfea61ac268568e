package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookvault/borrowing-service/internal/errs"
	"github.com/bookvault/borrowing-service/internal/model"
	"github.com/bookvault/borrowing-service/pkg/auth"
)

func (s *Service) CreateBorrowing(ctx context.Context, req model.CreateBorrowingRequest) (model.Borrowing, error) {
	book, err := s.repo.GetBook(ctx, req.BookUid)
	if err != nil {
		return model.Borrowing{}, err
	}

	borrowing, err := s.repo.CreateBorrowing(ctx, req)
	if err != nil {
		return model.Borrowing{}, err
	}

	s.notify(eventBorrowingCreated,
		fmt.Sprintf("New borrowing created: %s by %s", book.Title, borrowing.Username))

	return borrowing, nil
}

func (s *Service) ListBorrowings(ctx context.Context, filter model.BorrowingsFilter) ([]model.Borrowing, error) {
	return s.repo.ListBorrowings(ctx, filter)
}

// GetBorrowing returns a single borrowing. Non-admins can only see their
// own; anything else reads as absent.
func (s *Service) GetBorrowing(ctx context.Context, user auth.User, borrowingUid string) (model.Borrowing, error) {
	borrowing, _, err := s.repo.GetBorrowing(ctx, borrowingUid)
	if err != nil {
		return model.Borrowing{}, err
	}
	if !user.IsAdmin() && borrowing.Username != user.Username {
		return model.Borrowing{}, errs.ErrNotFound
	}
	return borrowing, nil
}

func (s *Service) ReturnBorrowing(ctx context.Context, user auth.User, borrowingUid string) (model.ReturnBorrowingResponse, error) {
	borrowing, book, payment, err := s.repo.ReturnBorrowing(
		ctx, borrowingUid, user.Username, user.IsAdmin(), model.Today(), Charge)
	if err != nil {
		return model.ReturnBorrowingResponse{}, err
	}

	message := "Thank you for the timely return of the book"
	if payment.Type == model.PaymentTypeFine {
		message = "Your borrowing was overdue. You`ll have to pay fine."
	}

	link := ""
	if session, err := s.createSession(ctx, payment, book.Title); err != nil {
		// the payment stays pending without a link; the session endpoint can retry
		s.log.Error("createSession", zap.String("payment", payment.PaymentUid), zap.Error(err))
	} else {
		link = fmt.Sprintf("Pay here: %s", session.URL)
	}

	s.notify(eventBorrowingReturned,
		fmt.Sprintf("%s successful payment for %s", borrowing.Username, book.Title))

	return model.ReturnBorrowingResponse{
		Success:     "The book was successfully returned.",
		Message:     message,
		PaymentLink: link,
	}, nil
}
