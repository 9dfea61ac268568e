package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bookvault/borrowing-service/internal/model"
)

// ChargeFunc computes the payment type and amount for a closed borrowing.
// It is pure; the repository applies it inside the return transaction so the
// payment row commits together with the inventory mutation.
type ChargeFunc func(b model.Borrowing, dailyFee decimal.Decimal) (model.PaymentType, decimal.Decimal)

type Repository interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	UpdateBook(ctx context.Context, bookUid string, req model.CreateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookUid string) error

	CreateBorrowing(ctx context.Context, req model.CreateBorrowingRequest) (model.Borrowing, error)
	GetBorrowing(ctx context.Context, borrowingUid string) (model.Borrowing, model.Book, error)
	ListBorrowings(ctx context.Context, filter model.BorrowingsFilter) ([]model.Borrowing, error)
	ReturnBorrowing(ctx context.Context, borrowingUid, username string, isAdmin bool, returnDate model.Date, charge ChargeFunc) (model.Borrowing, model.Book, model.Payment, error)

	CreatePayment(ctx context.Context, borrowingID int, typ model.PaymentType, amount decimal.Decimal) (model.Payment, error)
	GetPayment(ctx context.Context, paymentUid string) (model.Payment, string, error)
	ListPayments(ctx context.Context, username string, isAdmin bool) ([]model.Payment, error)
	UpdatePaymentSession(ctx context.Context, paymentUid, sessionID, sessionURL string) error
	MarkPaymentPaid(ctx context.Context, sessionID string) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	bookTableName      = `book`
	borrowingTableName = `borrowing`
	paymentTableName   = `payment`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
