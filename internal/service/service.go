package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bookvault/borrowing-service/internal/model"
	"github.com/bookvault/borrowing-service/internal/repository"
	"github.com/bookvault/borrowing-service/internal/stripe"
	"github.com/bookvault/borrowing-service/pkg/circuit_breaker"
	"github.com/bookvault/borrowing-service/pkg/kafka"
)

const (
	eventBorrowingCreated  = "borrowing.created"
	eventBorrowingReturned = "borrowing.returned"
)

// SessionGateway opens a payable checkout session for a computed amount.
type SessionGateway interface {
	CreateSession(ctx context.Context, name string, amount decimal.Decimal, successURL, cancelURL string) (stripe.Session, error)
}

// Config carries the settings the service needs injected, instead of
// reading them ambiently.
type Config struct {
	DomainURL string `envconfig:"DOMAIN_URL" default:"http://localhost:8080"`
}

type Service struct {
	log     *zap.Logger
	repo    repository.Repository
	queue   kafka.Enqueuer
	gateway SessionGateway
	cb      circuit_breaker.CircuitBreaker
	cfg     Config
}

func NewService(repo repository.Repository, queue kafka.Enqueuer, gateway SessionGateway, cfg Config, log *zap.Logger) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		queue:   queue,
		gateway: gateway,
		cb:      circuit_breaker.New(20, 30*time.Second, 0.5, 3),
		cfg:     cfg,
	}
}

func (s *Service) successURL() string {
	return s.cfg.DomainURL + "/api/v1/payments/success?session_id={CHECKOUT_SESSION_ID}"
}

func (s *Service) cancelURL() string {
	return s.cfg.DomainURL + "/api/v1/payments/cancel?session_id={CHECKOUT_SESSION_ID}"
}

// notify enqueues a fire-and-forget event. Failures are logged and never
// propagated to the caller.
func (s *Service) notify(event, message string) {
	if err := s.queue.Enqueue(kafka.NotificationsTopic, kafka.Event{Event: event, Message: message}); err != nil {
		s.log.Error("notify enqueue", zap.String("event", event), zap.Error(err))
	}
}

// createSession calls the payment gateway through the circuit breaker and
// stores the session on the payment.
func (s *Service) createSession(ctx context.Context, p model.Payment, bookTitle string) (stripe.Session, error) {
	name := fmt.Sprintf("%s for %s", p.Type, bookTitle)
	var session stripe.Session
	err := s.cb.Call(func() error {
		var err error
		session, err = s.gateway.CreateSession(ctx, name, p.Amount, s.successURL(), s.cancelURL())
		return err
	})
	if err != nil {
		return stripe.Session{}, err
	}
	if err := s.repo.UpdatePaymentSession(ctx, p.PaymentUid, session.ID, session.URL); err != nil {
		return stripe.Session{}, err
	}
	return session, nil
}

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, req)
}

func (s *Service) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, page, size)
}

func (s *Service) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	return s.repo.GetBook(ctx, bookUid)
}

func (s *Service) UpdateBook(ctx context.Context, bookUid string, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.UpdateBook(ctx, bookUid, req)
}

func (s *Service) DeleteBook(ctx context.Context, bookUid string) error {
	return s.repo.DeleteBook(ctx, bookUid)
}
