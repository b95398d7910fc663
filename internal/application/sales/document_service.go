package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentService handles invoice and quote operations
type DocumentService struct {
	invoiceRepo sales.InvoiceRepository
	quoteRepo   sales.QuoteRepository
	clientRepo  partner.ClientRepository
	txScope     TransactionScope
	logger      *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	invoiceRepo sales.InvoiceRepository,
	quoteRepo sales.QuoteRepository,
	clientRepo partner.ClientRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		invoiceRepo: invoiceRepo,
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// CreateInvoice creates a draft invoice with its full line set
func (s *DocumentService) CreateInvoice(ctx context.Context, cmd CreateInvoiceCommand) (*sales.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrClientID, cmd.ClientID.String(),
		"invoice_number", cmd.InvoiceNumber,
		"lines_count", len(cmd.Lines),
	)

	lines, err := toLineItems(cmd.Lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	number := strings.TrimSpace(cmd.InvoiceNumber)
	invoice, err := sales.NewInvoice(cmd.ClientID, number, cmd.Date, cmd.IsVATInvoice, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := invoice.SetDueDate(cmd.DueDate); err != nil {
		return nil, err
	}
	invoice.Notes = cmd.Notes

	if _, err := s.clientRepo.FindByID(ctx, cmd.ClientID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	exists, err := s.invoiceRepo.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to check invoice number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Invoice number %s already exists", number))
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total_amount", invoice.TotalAmount.String()),
	)
	return invoice, nil
}

// GetInvoice returns an invoice with its lines
func (s *DocumentService) GetInvoice(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// ReplaceInvoiceLines discards the invoice lines and stores the new set with recomputed totals
func (s *DocumentService) ReplaceInvoiceLines(ctx context.Context, id uuid.UUID, inputs []LineInput) (*sales.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "replace_lines")
	defer span.End()

	lines, err := toLineItems(inputs)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.ReplaceLines(lines); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.ReplaceLines(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return invoice, nil
}

// ChangeInvoiceStatus applies a status action to an invoice
func (s *DocumentService) ChangeInvoiceStatus(ctx context.Context, id uuid.UUID, action InvoiceAction) (*sales.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch action {
	case InvoiceActionSend:
		err = invoice.Send()
	case InvoiceActionCancel:
		err = invoice.Cancel()
	default:
		err = shared.NewDomainError("INVALID_ACTION", fmt.Sprintf("Unknown invoice action: %s", action))
	}
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	s.logger.Info("Invoice status changed",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("status", string(invoice.Status)),
	)
	return invoice, nil
}

// SetInvoiceVATMode switches an invoice between VAT and non-VAT and stores the
// recomputed lines and totals
func (s *DocumentService) SetInvoiceVATMode(ctx context.Context, id uuid.UUID, isVATInvoice bool) (*sales.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "set_vat_mode")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, id.String())

	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if invoice.IsVATInvoice == isVATInvoice {
		return invoice, nil
	}
	if err := invoice.SetVATInvoice(isVATInvoice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.ReplaceLines(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Invoice VAT mode changed",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Bool("is_vat_invoice", invoice.IsVATInvoice),
		zap.String("total_amount", invoice.TotalAmount.String()),
	)
	return invoice, nil
}

// CreateQuote creates a draft quote with its full line set
func (s *DocumentService) CreateQuote(ctx context.Context, cmd CreateQuoteCommand) (*sales.Quote, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "create")
	defer span.End()

	lines, err := toLineItems(cmd.Lines)
	if err != nil {
		return nil, err
	}
	number := strings.TrimSpace(cmd.QuoteNumber)
	quote, err := sales.NewQuote(cmd.ClientID, number, cmd.Date, lines)
	if err != nil {
		return nil, err
	}
	if cmd.ValidUntil != nil && cmd.ValidUntil.Before(quote.Date) {
		return nil, shared.NewDomainError("INVALID_VALID_UNTIL", "Valid until cannot be before the quote date")
	}
	quote.ValidUntil = cmd.ValidUntil
	quote.Notes = cmd.Notes

	if _, err := s.clientRepo.FindByID(ctx, cmd.ClientID); err != nil {
		return nil, err
	}
	exists, err := s.quoteRepo.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to check quote number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Quote number %s already exists", number))
	}
	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return quote, nil
}

// GetQuote returns a quote with its lines
func (s *DocumentService) GetQuote(ctx context.Context, id uuid.UUID) (*sales.Quote, error) {
	return s.quoteRepo.FindByID(ctx, id)
}

// ReplaceQuoteLines discards the quote lines and stores the new set with recomputed totals
func (s *DocumentService) ReplaceQuoteLines(ctx context.Context, id uuid.UUID, inputs []LineInput) (*sales.Quote, error) {
	lines, err := toLineItems(inputs)
	if err != nil {
		return nil, err
	}
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quote.ReplaceLines(lines); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.ReplaceLines(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// ChangeQuoteStatus applies a status action to a quote
func (s *DocumentService) ChangeQuoteStatus(ctx context.Context, id uuid.UUID, action QuoteAction) (*sales.Quote, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch action {
	case QuoteActionSend:
		err = quote.Send()
	case QuoteActionAccept:
		err = quote.Accept()
	case QuoteActionDecline:
		err = quote.Decline()
	case QuoteActionExpire:
		err = quote.Expire()
	default:
		err = shared.NewDomainError("INVALID_ACTION", fmt.Sprintf("Unknown quote action: %s", action))
	}
	if err != nil {
		return nil, err
	}
	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// ConvertQuote creates a draft invoice from an accepted quote. The invoice and
// the quote's converted marker are stored in one transaction.
func (s *DocumentService) ConvertQuote(ctx context.Context, id uuid.UUID, cmd ConvertQuoteCommand) (*sales.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "convert")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrQuoteID, id.String())

	number := strings.TrimSpace(cmd.InvoiceNumber)
	var invoice *sales.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		quote, err := repos.QuoteRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		exists, err := repos.InvoiceRepo().ExistsByNumber(ctx, number)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Invoice number %s already exists", number))
		}
		invoice, err = quote.ConvertToInvoice(number, cmd.Date, cmd.IsVATInvoice)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Create(ctx, invoice); err != nil {
			return err
		}
		return repos.QuoteRepo().SaveWithLock(ctx, quote)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Quote converted to invoice",
		zap.String("quote_id", id.String()),
		zap.String("invoice_id", invoice.ID.String()),
	)
	return invoice, nil
}
