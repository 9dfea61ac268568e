package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type ListBorrowings struct {
	Paging `json:",inline"`
	Items  []Borrowing `json:"items"`
}

type Cover string

const (
	CoverHard Cover = "HARDCOVER"
	CoverSoft Cover = "SOFT"
)

type Book struct {
	ID        int             `json:"-" db:"id"`
	BookUid   string          `json:"bookUid" db:"book_uid"`
	Title     string          `json:"title" db:"title"`
	Author    string          `json:"author" db:"author"`
	Cover     Cover           `json:"cover" db:"cover"`
	Inventory int             `json:"inventory" db:"inventory"`
	DailyFee  decimal.Decimal `json:"dailyFee" db:"daily_fee"`
}

// Date is a calendar day, bound from and rendered as "2006-01-02".
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	return NewDate(time.Now().UTC())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Time.Format(time.DateOnly) + `"`), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	if d.Time.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Days returns the number of whole days from o to d.
func (d Date) Days(o Date) int {
	return int(d.Time.Sub(o.Time) / (24 * time.Hour))
}

type Borrowing struct {
	ID                 int    `json:"-" db:"id"`
	BorrowingUid       string `json:"borrowingUid" db:"borrowing_uid"`
	Username           string `json:"username" db:"username"`
	BookID             int    `json:"-" db:"book_id"`
	BookUid            string `json:"bookUid" db:"book_uid"`
	BorrowDate         Date   `json:"borrowDate" db:"borrow_date"`
	ExpectedReturnDate Date   `json:"expectedReturnDate" db:"expected_return_date"`
	ActualReturnDate   *Date  `json:"actualReturnDate" db:"actual_return_date"`
}

// Active reports whether the book has not been returned yet.
func (b Borrowing) Active() bool {
	return b.ActualReturnDate == nil
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeFine    PaymentType = "FINE"
)

type Payment struct {
	ID           int             `json:"-" db:"id"`
	PaymentUid   string          `json:"paymentUid" db:"payment_uid"`
	BorrowingID  int             `json:"-" db:"borrowing_id"`
	BorrowingUid string          `json:"borrowingUid" db:"borrowing_uid"`
	Status       PaymentStatus   `json:"status" db:"status"`
	Type         PaymentType     `json:"type" db:"type"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	SessionID    *string         `json:"sessionId" db:"session_id"`
	SessionURL   *string         `json:"sessionUrl" db:"session_url"`
}

type CreateBookRequest struct {
	Title     string          `json:"title" validate:"required"`
	Author    string          `json:"author" validate:"required"`
	Cover     Cover           `json:"cover" validate:"required,oneof=HARDCOVER SOFT"`
	Inventory int             `json:"inventory" validate:"gte=0"`
	DailyFee  decimal.Decimal `json:"dailyFee" validate:"required"`
}

type CreateBorrowingRequest struct {
	BookUid            string `json:"bookUid" validate:"required"`
	ExpectedReturnDate Date   `json:"expectedReturnDate" validate:"required"`
	Username           string `json:"-" validate:"required"`
}

type ReturnBorrowingResponse struct {
	Success     string `json:"success"`
	Message     string `json:"message"`
	PaymentLink string `json:"link"`
}

// BorrowingsFilter narrows the borrowing listing. Username is always set;
// FilterUser and IsActive are honored for admins only.
type BorrowingsFilter struct {
	Username   string
	IsAdmin    bool
	FilterUser string
	IsActive   *bool
}

type CreatePaymentRequest struct {
	BorrowingUid string      `json:"borrowingUid" validate:"required"`
	Type         PaymentType `json:"type" validate:"required"`
}

type SessionResponse struct {
	SessionID  string `json:"session_id"`
	SessionURL string `json:"session_url"`
}
