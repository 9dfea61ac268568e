package handler

import (
	"context"

	"github.com/bookvault/borrowing-service/internal/model"
	"github.com/bookvault/borrowing-service/internal/service"
	"github.com/bookvault/borrowing-service/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BorrowingService interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	UpdateBook(ctx context.Context, bookUid string, req model.CreateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookUid string) error

	CreateBorrowing(ctx context.Context, req model.CreateBorrowingRequest) (model.Borrowing, error)
	ListBorrowings(ctx context.Context, filter model.BorrowingsFilter) ([]model.Borrowing, error)
	GetBorrowing(ctx context.Context, user auth.User, borrowingUid string) (model.Borrowing, error)
	ReturnBorrowing(ctx context.Context, user auth.User, borrowingUid string) (model.ReturnBorrowingResponse, error)

	ListPayments(ctx context.Context, user auth.User) ([]model.Payment, error)
	GetPayment(ctx context.Context, user auth.User, paymentUid string) (model.Payment, error)
	CreatePayment(ctx context.Context, user auth.User, req model.CreatePaymentRequest) (model.Payment, error)
	CreateSession(ctx context.Context, user auth.User, paymentUid string) (model.SessionResponse, error)
	PaymentSuccess(ctx context.Context, sessionID string) error
}

var _ BorrowingService = (*service.Service)(nil)
