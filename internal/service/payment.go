package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/metrics"
	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/payment"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// PaymentService creates payment intents and records completed payments.
type PaymentService struct {
	payments  repository.PaymentStore
	gateway   payment.Gateway
	cache     ParcelCache
	publisher EventPublisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewPaymentService creates a new PaymentService. cache and publisher may be nil.
func NewPaymentService(payments repository.PaymentStore, gateway payment.Gateway, c ParcelCache, publisher EventPublisher, recorder metrics.Recorder, logger *slog.Logger) *PaymentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if gateway == nil {
		gateway = payment.UnconfiguredGateway{}
	}
	return &PaymentService{
		payments:  payments,
		gateway:   gateway,
		cache:     c,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger.With("component", "service.payment"),
	}
}

// CreateIntent asks the processor for a pending charge and returns its client secret.
// Processor errors are logged and reported as ErrProcessorFailure.
func (s *PaymentService) CreateIntent(ctx context.Context, amountInCents int64) (string, error) {
	if amountInCents <= 0 {
		return "", ErrInvalidAmount
	}

	intent, err := s.gateway.CreateIntent(ctx, amountInCents)
	if err != nil {
		s.metrics.IncIntentFailed()
		s.logger.Error("payment intent failed", "amount", amountInCents, "error", err)
		return "", ErrProcessorFailure
	}

	s.metrics.IncIntentCreated()
	return intent.ClientSecret, nil
}

// RecordPaymentInput defines input for recording a completed payment.
type RecordPaymentInput struct {
	ParcelID      string
	UserEmail     string
	Amount        float64
	TransactionID string
	PaymentMethod string
}

// RecordPaymentResult reports both halves of the payment write.
type RecordPaymentResult struct {
	ParcelUpdate repository.ParcelPaymentUpdate
	Payment      *model.Payment
}

// RecordPayment marks the parcel paid and stores the receipt atomically.
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*RecordPaymentResult, error) {
	if input.ParcelID == "" {
		return nil, ErrParcelIDRequired
	}
	if err := requireID(input.ParcelID); err != nil {
		return nil, err
	}

	p := &model.Payment{
		ID:            model.NewID(),
		ParcelID:      input.ParcelID,
		UserEmail:     input.UserEmail,
		Amount:        input.Amount,
		TransactionID: input.TransactionID,
		PaymentMethod: input.PaymentMethod,
	}
	p.StampPaidAt(time.Now())

	update, err := s.payments.RecordPayment(ctx, p)
	if err != nil {
		s.metrics.IncPaymentFailed()
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParcelNotFound
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteParcel(ctx, p.ParcelID); err != nil {
			s.logger.Warn("parcel cache invalidation failed", "parcel_id", p.ParcelID, "error", err)
		}
	}

	s.metrics.IncPaymentRecorded()
	s.publisher.PublishAsync(events.New(events.TypePaymentRecorded, p.ParcelID, map[string]any{
		"paymentId":     p.ID,
		"userEmail":     p.UserEmail,
		"amount":        p.Amount,
		"transactionId": p.TransactionID,
	}))

	return &RecordPaymentResult{ParcelUpdate: *update, Payment: p}, nil
}

// ListPaymentsForUser returns a user's payments newest first.
func (s *PaymentService) ListPaymentsForUser(ctx context.Context, email string) ([]*model.Payment, error) {
	return s.payments.ListPaymentsByEmail(ctx, email)
}
