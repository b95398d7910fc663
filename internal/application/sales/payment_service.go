package sales

import (
	"context"

	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records client payments
type PaymentService struct {
	paymentRepo sales.PaymentRepository
	clientRepo  partner.ClientRepository
	txScope     TransactionScope
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo sales.PaymentRepository,
	clientRepo partner.ClientRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// RecordPayment stores a payment. An invoice allocation also moves the invoice to
// PARTIALLY_PAID or PAID in the same transaction.
func (s *PaymentService) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*sales.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrClientID, cmd.ClientID.String(),
		telemetry.SpanAttrAmount, cmd.Amount.String(),
		"allocation_type", string(cmd.AllocationType),
	)

	payment, err := sales.NewPayment(cmd.ClientID, cmd.Date, cmd.CustomerReference, cmd.Amount, cmd.Method, cmd.AllocationType, cmd.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payment.Notes = cmd.Notes

	if _, err := s.clientRepo.FindByID(ctx, cmd.ClientID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if payment.InvoiceID != nil {
			invoice, err := repos.InvoiceRepo().FindByID(ctx, *payment.InvoiceID)
			if err != nil {
				return err
			}
			if invoice.ClientID != payment.ClientID {
				return shared.NewDomainError("INVALID_ALLOCATION", "Invoice belongs to a different client")
			}
			if err := invoice.ApplyPayment(payment.Amount); err != nil {
				return err
			}
			if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
				return err
			}
		}
		return repos.PaymentRepo().Create(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("client_id", payment.ClientID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("allocation_type", string(payment.AllocationType)),
	)
	return payment, nil
}

// GetPayment returns a payment by id
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*sales.Payment, error) {
	return s.paymentRepo.FindByID(ctx, id)
}
