package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/bookvault/borrowing-service/internal/errs"
	"github.com/bookvault/borrowing-service/internal/model"
)

// the payment table carries unique (borrowing_id, type)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

type execGetter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func createPayment(ctx context.Context, db execGetter, borrowingID int, typ model.PaymentType, amount decimal.Decimal) (model.Payment, error) {
	q, args, err := qb.Insert(paymentTableName).
		Columns("payment_uid", "borrowing_id", "status", "type", "amount").
		Values(uuid.New(), borrowingID, model.PaymentStatusPending, typ, amount).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Payment{}, err
	}
	var p model.Payment
	if err := db.GetContext(ctx, &p, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Payment{}, errs.ErrDuplicatePayment
		}
		return model.Payment{}, err
	}
	return p, nil
}

func (r *repository) CreatePayment(ctx context.Context, borrowingID int, typ model.PaymentType, amount decimal.Decimal) (model.Payment, error) {
	return createPayment(ctx, r.db, borrowingID, typ, amount)
}

func (r *repository) GetPayment(ctx context.Context, paymentUid string) (model.Payment, string, error) {
	q := `
	select p.id, p.payment_uid, p.borrowing_id, b.borrowing_uid, p.status, p.type, p.amount, p.session_id, p.session_url,
	       b.username
	from payment p
	join borrowing b on b.id = p.borrowing_id
	where p.payment_uid = $1`

	var p model.Payment
	var owner string
	err := r.db.QueryRowxContext(ctx, q, paymentUid).Scan(
		&p.ID, &p.PaymentUid, &p.BorrowingID, &p.BorrowingUid, &p.Status, &p.Type, &p.Amount, &p.SessionID, &p.SessionURL,
		&owner,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Payment{}, "", errs.ErrNotFound
		}
		return model.Payment{}, "", err
	}
	return p, owner, nil
}

func (r *repository) ListPayments(ctx context.Context, username string, isAdmin bool) ([]model.Payment, error) {
	q := qb.Select("p.id", "p.payment_uid", "p.borrowing_id", "b.borrowing_uid",
		"p.status", "p.type", "p.amount", "p.session_id", "p.session_url").
		From(paymentTableName + " p").
		Join(borrowingTableName + " b on b.id = p.borrowing_id").
		OrderBy("p.id")

	if !isAdmin {
		q = q.Where(sq.Eq{"b.username": username})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Payment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdatePaymentSession(ctx context.Context, paymentUid, sessionID, sessionURL string) error {
	q := `update payment set session_id = $2, session_url = $3 where payment_uid = $1`
	res, err := r.db.ExecContext(ctx, q, paymentUid, sessionID, sessionURL)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) MarkPaymentPaid(ctx context.Context, sessionID string) error {
	q := `update payment set status = $2 where session_id = $1`
	res, err := r.db.ExecContext(ctx, q, sessionID, model.PaymentStatusPaid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
