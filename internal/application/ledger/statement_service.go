// Package ledger serves client statements.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/bizledger/backend/internal/domain/ledger"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientStatement is a statement together with the client it belongs to
type ClientStatement struct {
	Client    *partner.Client
	Statement ledger.Statement
}

// StatementService loads a client's history and derives the statement from it.
// Nothing it produces is stored.
type StatementService struct {
	clientRepo  partner.ClientRepository
	invoiceRepo sales.InvoiceRepository
	paymentRepo sales.PaymentRepository
	logger      *zap.Logger
}

// NewStatementService creates a new StatementService
func NewStatementService(
	clientRepo partner.ClientRepository,
	invoiceRepo sales.InvoiceRepository,
	paymentRepo sales.PaymentRepository,
	logger *zap.Logger,
) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// Generate builds the statement for a client as of cutoff. A zero cutoff means today.
// Every invoice on record takes part regardless of its status.
func (s *StatementService) Generate(ctx context.Context, clientID uuid.UUID, cutoff time.Time) (*ClientStatement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "generate")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, clientID.String())

	if cutoff.IsZero() {
		cutoff = time.Now().UTC()
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	invoices, err := s.invoiceRepo.FindByClient(ctx, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	payments, err := s.paymentRepo.FindByClient(ctx, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	statement := ledger.GenerateStatement(invoices, payments, cutoff)
	statement.ClientID = client.ID
	telemetry.SetAttributes(span,
		"entries_count", len(statement.Entries),
		"closing_balance", statement.ClosingBalance.String(),
	)
	s.logger.Debug("Statement generated",
		zap.String("client_id", client.ID.String()),
		zap.Time("cutoff", statement.Cutoff),
		zap.Int("entries", len(statement.Entries)),
	)
	return &ClientStatement{Client: client, Statement: statement}, nil
}
