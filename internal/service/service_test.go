package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookvault/borrowing-service/internal/errs"
	"github.com/bookvault/borrowing-service/internal/model"
	"github.com/bookvault/borrowing-service/internal/service"
	service_mocks "github.com/bookvault/borrowing-service/internal/service/mocks"
	"github.com/bookvault/borrowing-service/internal/stripe"
	"github.com/bookvault/borrowing-service/pkg/auth"
	"github.com/bookvault/borrowing-service/pkg/kafka"
)

const domainURL = "http://localhost:8080"

func newService(t *testing.T) (*service.Service, *service_mocks.MockRepository, *service_mocks.MockEnqueuer, *service_mocks.MockSessionGateway) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	repo := service_mocks.NewMockRepository(c)
	queue := service_mocks.NewMockEnqueuer(c)
	gateway := service_mocks.NewMockSessionGateway(c)
	svc := service.NewService(repo, queue, gateway, service.Config{DomainURL: domainURL}, zap.NewExample().Named("test"))
	return svc, repo, queue, gateway
}

func TestService_CreateBorrowing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	req := model.CreateBorrowingRequest{
		BookUid:            "6f2e9a1c-0b67-4f5a-8a4e-64c0f4c38d5e",
		ExpectedReturnDate: day(2),
		Username:           "reader",
	}
	book := model.Book{ID: 1, BookUid: req.BookUid, Title: "The Go Programming Language", Inventory: 3}

	t.Run("ok", func(t *testing.T) {
		svc, repo, queue, _ := newService(t)
		repo.EXPECT().GetBook(ctx, req.BookUid).Return(book, nil)
		repo.EXPECT().CreateBorrowing(ctx, req).
			Return(model.Borrowing{ID: 7, BookUid: req.BookUid, Username: "reader"}, nil)
		queue.EXPECT().
			Enqueue(kafka.NotificationsTopic, kafka.Event{
				Event:   "borrowing.created",
				Message: "New borrowing created: The Go Programming Language by reader",
			}).Return(nil)

		b, err := svc.CreateBorrowing(ctx, req)
		require.NoError(t, err)
		require.Equal(t, "reader", b.Username)
	})

	t.Run("out of stock leaves no side effects", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetBook(ctx, req.BookUid).Return(book, nil)
		repo.EXPECT().CreateBorrowing(ctx, req).
			Return(model.Borrowing{}, errs.ErrBookUnavailable)

		_, err := svc.CreateBorrowing(ctx, req)
		require.ErrorIs(t, err, errs.ErrBookUnavailable)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetBook(ctx, req.BookUid).Return(model.Book{}, errs.ErrNotFound)

		_, err := svc.CreateBorrowing(ctx, req)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("notification failure does not fail the borrowing", func(t *testing.T) {
		svc, repo, queue, _ := newService(t)
		repo.EXPECT().GetBook(ctx, req.BookUid).Return(book, nil)
		repo.EXPECT().CreateBorrowing(ctx, req).
			Return(model.Borrowing{ID: 7, Username: "reader"}, nil)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		_, err := svc.CreateBorrowing(ctx, req)
		require.NoError(t, err)
	})
}

func TestService_ReturnBorrowing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	user := auth.User{Username: "reader", Role: auth.RoleUser}
	const borrowingUid = "0d8e7a62-14c1-4a6e-bd25-0c573e9f1f5a"

	borrowing := model.Borrowing{ID: 7, BorrowingUid: borrowingUid, Username: "reader"}
	book := model.Book{Title: "The Go Programming Language"}

	t.Run("on-time return yields payment link", func(t *testing.T) {
		svc, repo, queue, gateway := newService(t)
		payment := model.Payment{
			PaymentUid: "b9a2c3f4-5e6d-4a7b-8c9d-0e1f2a3b4c5d",
			Type:       model.PaymentTypePayment,
			Amount:     decimal.RequireFromString("19.98"),
		}
		repo.EXPECT().
			ReturnBorrowing(ctx, borrowingUid, user.Username, false, gomock.Any(), gomock.Any()).
			Return(borrowing, book, payment, nil)
		gateway.EXPECT().
			CreateSession(ctx, "PAYMENT for The Go Programming Language", payment.Amount,
				domainURL+"/api/v1/payments/success?session_id={CHECKOUT_SESSION_ID}",
				domainURL+"/api/v1/payments/cancel?session_id={CHECKOUT_SESSION_ID}").
			Return(stripe.Session{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil)
		repo.EXPECT().
			UpdatePaymentSession(ctx, payment.PaymentUid, "cs_test_1", "https://checkout.stripe.com/c/pay/cs_test_1").
			Return(nil)
		queue.EXPECT().
			Enqueue(kafka.NotificationsTopic, kafka.Event{
				Event:   "borrowing.returned",
				Message: "reader successful payment for The Go Programming Language",
			}).Return(nil)

		resp, err := svc.ReturnBorrowing(ctx, user, borrowingUid)
		require.NoError(t, err)
		require.Equal(t, "The book was successfully returned.", resp.Success)
		require.Equal(t, "Thank you for the timely return of the book", resp.Message)
		require.Equal(t, "Pay here: https://checkout.stripe.com/c/pay/cs_test_1", resp.PaymentLink)
	})

	t.Run("late return message", func(t *testing.T) {
		svc, repo, queue, gateway := newService(t)
		payment := model.Payment{
			PaymentUid: "b9a2c3f4-5e6d-4a7b-8c9d-0e1f2a3b4c5d",
			Type:       model.PaymentTypeFine,
			Amount:     decimal.RequireFromString("59.94"),
		}
		repo.EXPECT().
			ReturnBorrowing(ctx, borrowingUid, user.Username, false, gomock.Any(), gomock.Any()).
			Return(borrowing, book, payment, nil)
		gateway.EXPECT().
			CreateSession(ctx, "FINE for The Go Programming Language", payment.Amount, gomock.Any(), gomock.Any()).
			Return(stripe.Session{ID: "cs_test_2", URL: "https://checkout.stripe.com/c/pay/cs_test_2"}, nil)
		repo.EXPECT().
			UpdatePaymentSession(ctx, payment.PaymentUid, "cs_test_2", "https://checkout.stripe.com/c/pay/cs_test_2").
			Return(nil)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := svc.ReturnBorrowing(ctx, user, borrowingUid)
		require.NoError(t, err)
		require.Equal(t, "Your borrowing was overdue. You`ll have to pay fine.", resp.Message)
	})

	t.Run("gateway outage keeps the return", func(t *testing.T) {
		svc, repo, queue, gateway := newService(t)
		payment := model.Payment{PaymentUid: "b9a2c3f4-5e6d-4a7b-8c9d-0e1f2a3b4c5d", Type: model.PaymentTypePayment}
		repo.EXPECT().
			ReturnBorrowing(ctx, borrowingUid, user.Username, false, gomock.Any(), gomock.Any()).
			Return(borrowing, book, payment, nil)
		gateway.EXPECT().
			CreateSession(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(stripe.Session{}, errors.New("gateway down"))
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := svc.ReturnBorrowing(ctx, user, borrowingUid)
		require.NoError(t, err)
		require.Empty(t, resp.PaymentLink)
	})

	t.Run("already returned", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().
			ReturnBorrowing(ctx, borrowingUid, user.Username, false, gomock.Any(), gomock.Any()).
			Return(model.Borrowing{}, model.Book{}, model.Payment{}, errs.ErrAlreadyReturned)

		_, err := svc.ReturnBorrowing(ctx, user, borrowingUid)
		require.ErrorIs(t, err, errs.ErrAlreadyReturned)
	})

	t.Run("admin may return on behalf of the owner", func(t *testing.T) {
		svc, repo, queue, gateway := newService(t)
		admin := auth.User{Username: "librarian", Role: auth.RoleAdmin}
		payment := model.Payment{PaymentUid: "b9a2c3f4-5e6d-4a7b-8c9d-0e1f2a3b4c5d", Type: model.PaymentTypePayment}
		repo.EXPECT().
			ReturnBorrowing(ctx, borrowingUid, admin.Username, true, gomock.Any(), gomock.Any()).
			Return(borrowing, book, payment, nil)
		gateway.EXPECT().
			CreateSession(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(stripe.Session{ID: "cs_test_3", URL: "https://example.test"}, nil)
		repo.EXPECT().UpdatePaymentSession(ctx, payment.PaymentUid, "cs_test_3", "https://example.test").Return(nil)
		queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)

		_, err := svc.ReturnBorrowing(ctx, admin, borrowingUid)
		require.NoError(t, err)
	})
}

func TestService_CreatePayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	user := auth.User{Username: "reader", Role: auth.RoleUser}
	const borrowingUid = "0d8e7a62-14c1-4a6e-bd25-0c573e9f1f5a"

	fee := decimal.RequireFromString("9.99")
	borrowing := model.Borrowing{
		ID:                 7,
		BorrowingUid:       borrowingUid,
		Username:           "reader",
		BorrowDate:         day(0),
		ExpectedReturnDate: day(2),
	}
	book := model.Book{Title: "The Go Programming Language", DailyFee: fee}

	t.Run("payment amount recomputed from dates", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetBorrowing(ctx, borrowingUid).Return(borrowing, book, nil)
		repo.EXPECT().
			CreatePayment(ctx, borrowing.ID, model.PaymentTypePayment, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int, typ model.PaymentType, amount decimal.Decimal) (model.Payment, error) {
				require.True(t, amount.Equal(decimal.RequireFromString("19.98")), "amount = %s", amount)
				return model.Payment{Type: typ, Amount: amount}, nil
			})

		p, err := svc.CreatePayment(ctx, user, model.CreatePaymentRequest{
			BorrowingUid: borrowingUid,
			Type:         model.PaymentTypePayment,
		})
		require.NoError(t, err)
		require.Equal(t, model.PaymentTypePayment, p.Type)
	})

	t.Run("fine requires a closed borrowing", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetBorrowing(ctx, borrowingUid).Return(borrowing, book, nil)

		_, err := svc.CreatePayment(ctx, user, model.CreatePaymentRequest{
			BorrowingUid: borrowingUid,
			Type:         model.PaymentTypeFine,
		})
		require.ErrorIs(t, err, errs.ErrInvalidPaymentType)
	})

	t.Run("invalid type", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetBorrowing(ctx, borrowingUid).Return(borrowing, book, nil)

		_, err := svc.CreatePayment(ctx, user, model.CreatePaymentRequest{
			BorrowingUid: borrowingUid,
			Type:         "REFUND",
		})
		require.ErrorIs(t, err, errs.ErrInvalidPaymentType)
	})

	t.Run("duplicate payment", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetBorrowing(ctx, borrowingUid).Return(borrowing, book, nil)
		repo.EXPECT().
			CreatePayment(ctx, borrowing.ID, model.PaymentTypePayment, gomock.Any()).
			Return(model.Payment{}, errs.ErrDuplicatePayment)

		_, err := svc.CreatePayment(ctx, user, model.CreatePaymentRequest{
			BorrowingUid: borrowingUid,
			Type:         model.PaymentTypePayment,
		})
		require.ErrorIs(t, err, errs.ErrDuplicatePayment)
	})

	t.Run("not the owner", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		stranger := auth.User{Username: "stranger", Role: auth.RoleUser}
		repo.EXPECT().GetBorrowing(ctx, borrowingUid).Return(borrowing, book, nil)

		_, err := svc.CreatePayment(ctx, stranger, model.CreatePaymentRequest{
			BorrowingUid: borrowingUid,
			Type:         model.PaymentTypePayment,
		})
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
	})
}

func TestService_GetPayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const paymentUid = "b9a2c3f4-5e6d-4a7b-8c9d-0e1f2a3b4c5d"

	t.Run("owner sees own payment", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetPayment(ctx, paymentUid).
			Return(model.Payment{PaymentUid: paymentUid}, "reader", nil)

		_, err := svc.GetPayment(ctx, auth.User{Username: "reader", Role: auth.RoleUser}, paymentUid)
		require.NoError(t, err)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetPayment(ctx, paymentUid).
			Return(model.Payment{PaymentUid: paymentUid}, "reader", nil)

		_, err := svc.GetPayment(ctx, auth.User{Username: "stranger", Role: auth.RoleUser}, paymentUid)
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
	})

	t.Run("admin sees all", func(t *testing.T) {
		svc, repo, _, _ := newService(t)
		repo.EXPECT().GetPayment(ctx, paymentUid).
			Return(model.Payment{PaymentUid: paymentUid}, "reader", nil)

		_, err := svc.GetPayment(ctx, auth.User{Username: "librarian", Role: auth.RoleAdmin}, paymentUid)
		require.NoError(t, err)
	})
}
