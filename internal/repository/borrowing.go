package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookvault/borrowing-service/internal/errs"
	"github.com/bookvault/borrowing-service/internal/model"
)

func (r *repository) CreateBorrowing(ctx context.Context, req model.CreateBorrowingRequest) (model.Borrowing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Borrowing{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var book model.Book
	q := `select id, book_uid, inventory from book where book_uid = $1 for update`
	if err := tx.GetContext(ctx, &book, q, req.BookUid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.ErrNotFound
		}
		return model.Borrowing{}, err
	}
	if book.Inventory <= 0 {
		return model.Borrowing{}, errs.ErrBookUnavailable
	}

	if _, err := tx.ExecContext(ctx, `update book set inventory = inventory - 1 where id = $1`, book.ID); err != nil {
		return model.Borrowing{}, err
	}

	q, args, err := qb.Insert(borrowingTableName).
		Columns("borrowing_uid", "username", "book_id", "borrow_date", "expected_return_date").
		Values(uuid.New(), req.Username, book.ID, model.Today(), req.ExpectedReturnDate).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var b model.Borrowing
	if err := tx.GetContext(ctx, &b, q, args...); err != nil {
		r.log.Error("CreateBorrowing", zap.String("q", q), zap.Any("args", args))
		return model.Borrowing{}, err
	}
	b.BookUid = book.BookUid

	if err := tx.Commit(); err != nil {
		return model.Borrowing{}, err
	}
	return b, nil
}

func (r *repository) GetBorrowing(ctx context.Context, borrowingUid string) (model.Borrowing, model.Book, error) {
	q := `
	select b.id, b.borrowing_uid, b.username, b.book_id, b.borrow_date, b.expected_return_date, b.actual_return_date,
	       bk.id as book_id, bk.book_uid, bk.title, bk.author, bk.cover, bk.inventory, bk.daily_fee
	from borrowing b
	join book bk on bk.id = b.book_id
	where b.borrowing_uid = $1`

	// one row feeds two structs with overlapping columns; scan explicitly
	res := r.db.QueryRowxContext(ctx, q, borrowingUid)
	var b model.Borrowing
	var bk model.Book
	err := res.Scan(
		&b.ID, &b.BorrowingUid, &b.Username, &b.BookID, &b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate,
		&bk.ID, &bk.BookUid, &bk.Title, &bk.Author, &bk.Cover, &bk.Inventory, &bk.DailyFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, model.Book{}, errs.ErrNotFound
		}
		return model.Borrowing{}, model.Book{}, err
	}
	b.BookUid = bk.BookUid
	return b, bk, nil
}

func (r *repository) ListBorrowings(ctx context.Context, filter model.BorrowingsFilter) ([]model.Borrowing, error) {
	q := qb.Select("b.id", "b.borrowing_uid", "b.username", "b.book_id", "bk.book_uid",
		"b.borrow_date", "b.expected_return_date", "b.actual_return_date").
		From(borrowingTableName + " b").
		Join(bookTableName + " bk on bk.id = b.book_id").
		OrderBy("b.id")

	if !filter.IsAdmin {
		q = q.Where(sq.Eq{"b.username": filter.Username})
	} else if filter.FilterUser != "" {
		q = q.Where(sq.Eq{"b.username": filter.FilterUser})
	}
	if filter.IsActive != nil {
		if *filter.IsActive {
			q = q.Where("b.actual_return_date is null")
		} else {
			q = q.Where("b.actual_return_date is not null")
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBorrowings", zap.String("query", query), zap.Any("args", args))

	var items []model.Borrowing
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ReturnBorrowing(
	ctx context.Context,
	borrowingUid, username string,
	isAdmin bool,
	returnDate model.Date,
	charge ChargeFunc,
) (model.Borrowing, model.Book, model.Payment, error) {
	fail := func(err error) (model.Borrowing, model.Book, model.Payment, error) {
		return model.Borrowing{}, model.Book{}, model.Payment{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	q := `
	select b.id, b.borrowing_uid, b.username, b.book_id, b.borrow_date, b.expected_return_date, b.actual_return_date,
	       bk.book_uid, bk.title, bk.daily_fee
	from borrowing b
	join book bk on bk.id = b.book_id
	where b.borrowing_uid = $1
	for update of b, bk`

	var b model.Borrowing
	var bk model.Book
	err = tx.QueryRowxContext(ctx, q, borrowingUid).Scan(
		&b.ID, &b.BorrowingUid, &b.Username, &b.BookID, &b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate,
		&bk.BookUid, &bk.Title, &bk.DailyFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(errs.ErrNotFound)
		}
		return fail(err)
	}
	bk.ID = b.BookID
	b.BookUid = bk.BookUid

	if !isAdmin && b.Username != username {
		return fail(errs.ErrPermissionDenied)
	}
	if !b.Active() {
		return fail(errs.ErrAlreadyReturned)
	}

	if _, err := tx.ExecContext(ctx,
		`update borrowing set actual_return_date = $2 where id = $1`, b.ID, returnDate); err != nil {
		return fail(err)
	}
	b.ActualReturnDate = &returnDate

	if _, err := tx.ExecContext(ctx,
		`update book set inventory = inventory + 1 where id = $1`, b.BookID); err != nil {
		return fail(err)
	}

	typ, amount := charge(b, bk.DailyFee)
	payment, err := createPayment(ctx, tx, b.ID, typ, amount)
	if err != nil {
		return fail(err)
	}
	payment.BorrowingUid = b.BorrowingUid

	if err := tx.Commit(); err != nil {
		return fail(err)
	}
	return b, bk, payment, nil
}
