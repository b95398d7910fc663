package purchasing

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/purchasing"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntakePolicy decides what happens when a stock or supplier update fails
// after the GRV itself could be recorded.
type IntakePolicy string

const (
	// IntakePolicyBestEffort records the GRV and reports failed side effects in the result
	IntakePolicyBestEffort IntakePolicy = "best_effort"
	// IntakePolicyAtomic rolls back the whole intake on any failure
	IntakePolicyAtomic IntakePolicy = "atomic"
)

// ParseIntakePolicy converts a configured policy name
func ParseIntakePolicy(s string) (IntakePolicy, error) {
	switch p := IntakePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return IntakePolicyBestEffort, nil
	case IntakePolicyBestEffort, IntakePolicyAtomic:
		return p, nil
	default:
		return "", fmt.Errorf("unknown intake policy %q", s)
	}
}

// DocumentExtractor turns a scanned delivery note into a parsed payload
type DocumentExtractor interface {
	Extract(ctx context.Context, filename string, pdf []byte) (*ParsedGrvDocument, error)
}

// ErrDuplicateGrv is returned when the supplier reference was already received
var ErrDuplicateGrv = shared.NewDomainError("DUPLICATE_GRV", "A GRV with this supplier reference has already been received")

// SupplierUnresolvedError carries the candidates of a failed supplier match
type SupplierUnresolvedError struct {
	Name       string
	Outcome    partner.MatchOutcome
	Candidates []partner.Supplier
}

func (e *SupplierUnresolvedError) Error() string {
	if e.Outcome == partner.MatchOutcomeAmbiguous {
		names := make([]string, 0, len(e.Candidates))
		for _, c := range e.Candidates {
			names = append(names, c.Name)
		}
		return fmt.Sprintf("supplier %q matches %d suppliers: %s", e.Name, len(e.Candidates), strings.Join(names, ", "))
	}
	return fmt.Sprintf("supplier %q matches no known supplier", e.Name)
}

func intakeFailed(message string, err error) *shared.DomainError {
	return shared.WrapDomainError("GRV_INTAKE_FAILED", message, err)
}

// GrvIntakeService records goods received vouchers and applies them to stock and supplier balances
type GrvIntakeService struct {
	grvRepo        purchasing.GrvRepository
	stockRepo      inventory.StockItemRepository
	supplierRepo   partner.SupplierRepository
	txScope        TransactionScope
	resolver       *StockResolver
	logger         *zap.Logger
	policy         IntakePolicy
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        *telemetry.IntakeMetrics
	extractor      DocumentExtractor
	storage        shared.ObjectStorage
}

// NewGrvIntakeService creates a new GrvIntakeService using the best-effort policy
func NewGrvIntakeService(
	grvRepo purchasing.GrvRepository,
	stockRepo inventory.StockItemRepository,
	supplierRepo partner.SupplierRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *GrvIntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrvIntakeService{
		grvRepo:        grvRepo,
		stockRepo:      stockRepo,
		supplierRepo:   supplierRepo,
		txScope:        txScope,
		resolver:       NewStockResolver(logger),
		logger:         logger,
		policy:         IntakePolicyBestEffort,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
	}
}

// SetPolicy sets the failure policy
func (s *GrvIntakeService) SetPolicy(policy IntakePolicy) {
	s.policy = policy
}

// SetIdempotencyStore sets the store used to reject repeated submissions
func (s *GrvIntakeService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetIntakeMetrics sets the intake metrics recorder
func (s *GrvIntakeService) SetIntakeMetrics(m *telemetry.IntakeMetrics) {
	s.metrics = m
}

// SetExtractor sets the PDF extraction collaborator
func (s *GrvIntakeService) SetExtractor(extractor DocumentExtractor) {
	s.extractor = extractor
}

// SetObjectStorage sets where source documents are archived
func (s *GrvIntakeService) SetObjectStorage(storage shared.ObjectStorage) {
	s.storage = storage
}

// Policy returns the configured failure policy
func (s *GrvIntakeService) Policy() IntakePolicy {
	return s.policy
}

// Receive validates, records and applies a GRV.
// Validate -> InsertHeader -> InsertItems -> UpdateStockPerItem -> UpdateSupplierBalance.
func (s *GrvIntakeService) Receive(ctx context.Context, cmd ReceiveGrvCommand) (*IntakeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "grv_intake", "receive")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSupplierID, cmd.SupplierID.String(),
		telemetry.SpanAttrGrvReference, cmd.Reference,
		telemetry.SpanAttrItemsCount, len(cmd.Items),
		telemetry.SpanAttrIntakePolicy, string(s.policy),
	)

	if _, err := purchasing.NewGrv(cmd.header(), cmd.itemInputs()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := s.supplierRepo.FindByID(ctx, cmd.SupplierID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.ensureNotDuplicate(ctx, cmd.SupplierID, cmd.Reference); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := s.intake(ctx, intakeRequest{
		header: cmd.header(),
		prepare: func(ctx context.Context, stock inventory.StockItemRepository) ([]purchasing.ItemInput, []uuid.UUID, error) {
			items, err := linkByCode(ctx, stock, cmd.itemInputs())
			if err != nil {
				return nil, nil, err
			}
			items, err = keepSellingPrices(ctx, stock, items, cmd.Items)
			return items, nil, err
		},
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrGrvID, result.Grv.ID.String())
	return result, nil
}

// ImportDocument extracts a scanned delivery note and imports it
func (s *GrvIntakeService) ImportDocument(ctx context.Context, filename string, pdf []byte) (*IntakeResult, error) {
	if s.extractor == nil {
		return nil, shared.NewDomainError("EXTRACTION_UNAVAILABLE", "Document extraction is not configured")
	}
	doc, err := s.extractor.Extract(ctx, filename, pdf)
	if err != nil {
		return nil, shared.WrapDomainError("EXTRACTION_FAILED", "Failed to extract GRV from document", err)
	}
	return s.ImportParsed(ctx, doc, filename, pdf)
}

// ImportParsed validates an extracted payload, resolves its supplier and stock codes,
// provisions missing stock items and then runs the intake. Matched items keep
// their current selling price; provisioned items are priced at cost plus markup.
func (s *GrvIntakeService) ImportParsed(ctx context.Context, doc *ParsedGrvDocument, filename string, source []byte) (*IntakeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "grv_intake", "import_parsed")
	defer span.End()

	outcome := CheckParsedDocument(doc)
	if !outcome.OK() {
		err := shared.WrapDomainError("INVALID_PAYLOAD", "Parsed GRV payload is invalid", outcome.Err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	parsed := outcome.Document
	telemetry.SetAttributes(span,
		telemetry.SpanAttrGrvReference, parsed.Reference,
		telemetry.SpanAttrItemsCount, len(parsed.Items),
		telemetry.SpanAttrIntakePolicy, string(s.policy),
	)

	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	match := partner.MatchSupplier(parsed.SupplierName, suppliers)
	if match.Outcome != partner.MatchOutcomeMatched {
		err := shared.WrapDomainError("SUPPLIER_UNRESOLVED",
			fmt.Sprintf("Supplier %q could not be matched", parsed.SupplierName),
			&SupplierUnresolvedError{Name: parsed.SupplierName, Outcome: match.Outcome, Candidates: match.Candidates})
		telemetry.RecordError(span, err)
		return nil, err
	}
	supplier := match.Supplier
	telemetry.SetAttribute(span, telemetry.SpanAttrSupplierID, supplier.ID.String())

	if err := s.ensureNotDuplicate(ctx, supplier.ID, parsed.Reference); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sourceKey := s.archiveSource(ctx, supplier.ID, filename, source)
	result, err := s.intake(ctx, intakeRequest{
		header: purchasing.Header{
			Reference:  parsed.Reference,
			Date:       parsed.Date,
			SupplierID: supplier.ID,
			OrderNo:    parsed.OrderNo,
		},
		sourceKey: sourceKey,
		prepare: func(ctx context.Context, stock inventory.StockItemRepository) ([]purchasing.ItemInput, []uuid.UUID, error) {
			return s.resolveParsedLines(ctx, stock, parsed.Items, supplier.Name)
		},
	})
	if err != nil {
		// no GRV refers to the archived document
		s.discardSource(ctx, sourceKey)
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// GetGrv returns a recorded GRV with its items
func (s *GrvIntakeService) GetGrv(ctx context.Context, id uuid.UUID) (*purchasing.Grv, error) {
	return s.grvRepo.FindByID(ctx, id)
}

// SourceDocumentURL returns a temporary download link for the archived source document
func (s *GrvIntakeService) SourceDocumentURL(ctx context.Context, grv *purchasing.Grv) (string, time.Time, error) {
	if s.storage == nil || grv.SourceDocumentKey == "" {
		return "", time.Time{}, shared.ErrNotFound
	}
	return s.storage.PresignGet(ctx, grv.SourceDocumentKey)
}

type intakeRequest struct {
	header    purchasing.Header
	sourceKey string
	// prepare returns the item inputs and any provisioned stock item ids.
	// It may write through the given stock repository.
	prepare func(ctx context.Context, stock inventory.StockItemRepository) ([]purchasing.ItemInput, []uuid.UUID, error)
}

func (s *GrvIntakeService) intake(ctx context.Context, req intakeRequest) (*IntakeResult, error) {
	if s.policy == IntakePolicyAtomic {
		return s.intakeAtomic(ctx, req)
	}
	return s.intakeBestEffort(ctx, req)
}

func (s *GrvIntakeService) intakeAtomic(ctx context.Context, req intakeRequest) (*IntakeResult, error) {
	result := &IntakeResult{Policy: IntakePolicyAtomic}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		items, provisioned, err := req.prepare(ctx, repos.StockRepo())
		if err != nil {
			return intakeFailed("Failed to resolve GRV stock items", err)
		}
		grv, err := buildGrv(req, items)
		if err != nil {
			return err
		}
		if err := recordGrv(ctx, repos.GrvRepo(), grv); err != nil {
			return err
		}
		for _, item := range grv.Items {
			if item.StockItemID == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return intakeFailed("GRV intake cancelled", err)
			}
			if err := applyReceipt(ctx, repos.StockRepo(), item); err != nil {
				return intakeFailed(fmt.Sprintf("Stock update for line %d failed", item.LineNo), err)
			}
		}
		if err := repos.SupplierRepo().IncrementBalance(ctx, grv.SupplierID, grv.TotalValue()); err != nil {
			return intakeFailed("Supplier balance update failed", err)
		}
		result.Grv = grv
		result.Provisioned = provisioned
		result.Skipped = skippedItems(grv)
		return nil
	})
	if err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) {
			err = intakeFailed("GRV intake transaction failed", err)
		}
		s.logger.Warn("GRV intake rolled back",
			zap.String("grv_reference", req.header.Reference),
			zap.String("supplier_id", req.header.SupplierID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.markProcessed(ctx, result.Grv)
	s.recordIntakeMetrics(ctx, result)
	s.logReceived(result)
	return result, nil
}

func (s *GrvIntakeService) intakeBestEffort(ctx context.Context, req intakeRequest) (*IntakeResult, error) {
	items, provisioned, err := req.prepare(ctx, s.stockRepo)
	if err != nil {
		return nil, intakeFailed("Failed to resolve GRV stock items", err)
	}
	grv, err := buildGrv(req, items)
	if err != nil {
		return nil, err
	}

	// header and items are recorded together or not at all
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return recordGrv(ctx, repos.GrvRepo(), grv)
	})
	if err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) {
			err = intakeFailed("Failed to record GRV", err)
		}
		return nil, err
	}
	s.markProcessed(ctx, grv)

	result := &IntakeResult{
		Grv:         grv,
		Policy:      IntakePolicyBestEffort,
		Provisioned: provisioned,
		Skipped:     skippedItems(grv),
	}
	for _, item := range grv.Items {
		if item.StockItemID == nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = applyReceipt(ctx, s.stockRepo, item)
		}
		if err != nil {
			s.recordFailure(ctx, result, IntakeFailure{
				Stage:       StageStockUpdate,
				LineNo:      item.LineNo,
				StockItemID: item.StockItemID,
				Err:         err,
			})
		}
	}

	err = ctx.Err()
	if err == nil {
		err = s.supplierRepo.IncrementBalance(ctx, grv.SupplierID, grv.TotalValue())
	}
	if err != nil {
		s.recordFailure(ctx, result, IntakeFailure{Stage: StageSupplierBalance, Err: err})
	}

	s.recordIntakeMetrics(ctx, result)
	s.logReceived(result)
	return result, nil
}

func (s *GrvIntakeService) recordFailure(ctx context.Context, result *IntakeResult, failure IntakeFailure) {
	fields := []zap.Field{
		zap.String("stage", string(failure.Stage)),
		zap.String("grv_id", result.Grv.ID.String()),
		zap.String("grv_reference", result.Grv.Reference),
		zap.Error(failure.Err),
	}
	if failure.StockItemID != nil {
		fields = append(fields,
			zap.Int("line_no", failure.LineNo),
			zap.String("stock_item_id", failure.StockItemID.String()),
		)
	} else {
		fields = append(fields, zap.String("supplier_id", result.Grv.SupplierID.String()))
	}
	s.logger.Warn("GRV side effect not applied", fields...)
	s.metrics.RecordDegradedUpdate(ctx, string(failure.Stage))
	result.Failures = append(result.Failures, failure)
}

func (s *GrvIntakeService) recordIntakeMetrics(ctx context.Context, result *IntakeResult) {
	value, _ := result.Grv.TotalValue().Float64()
	s.metrics.RecordIntake(ctx, telemetry.IntakeSample{
		Policy:      string(result.Policy),
		Degraded:    result.Degraded(),
		Value:       value,
		Lines:       len(result.Grv.Items),
		Provisioned: len(result.Provisioned),
	})
}

func (s *GrvIntakeService) logReceived(result *IntakeResult) {
	s.logger.Info("GRV received",
		zap.String("grv_id", result.Grv.ID.String()),
		zap.String("grv_reference", result.Grv.Reference),
		zap.String("supplier_id", result.Grv.SupplierID.String()),
		zap.String("total_value", result.Grv.TotalValue().String()),
		zap.Int("items", len(result.Grv.Items)),
		zap.Int("provisioned", len(result.Provisioned)),
		zap.Int("failures", len(result.Failures)),
		zap.String("policy", string(result.Policy)),
	)
}

// ensureNotDuplicate rejects a supplier reference that was already received.
// The unique index on (supplier_id, reference) still guards concurrent submissions.
func (s *GrvIntakeService) ensureNotDuplicate(ctx context.Context, supplierID uuid.UUID, reference string) error {
	if s.idempotency != nil {
		processed, err := s.idempotency.IsProcessed(ctx, purchasing.IdempotencyKey(supplierID, reference))
		if err != nil {
			s.logger.Warn("Idempotency check failed, falling back to database",
				zap.String("supplier_id", supplierID.String()),
				zap.String("grv_reference", reference),
				zap.Error(err),
			)
		} else if processed {
			return ErrDuplicateGrv
		}
	}
	exists, err := s.grvRepo.ExistsByReference(ctx, supplierID, strings.TrimSpace(reference))
	if err != nil {
		return fmt.Errorf("failed to check GRV reference: %w", err)
	}
	if exists {
		return ErrDuplicateGrv
	}
	return nil
}

func (s *GrvIntakeService) markProcessed(ctx context.Context, grv *purchasing.Grv) {
	if s.idempotency == nil {
		return
	}
	marked, err := s.idempotency.MarkProcessed(ctx, grv.IdempotencyKey(), s.idempotencyTTL)
	if err != nil {
		s.logger.Warn("Failed to mark GRV as processed",
			zap.String("grv_id", grv.ID.String()),
			zap.Error(err),
		)
		return
	}
	if !marked {
		s.logger.Warn("GRV idempotency key was already marked",
			zap.String("grv_id", grv.ID.String()),
			zap.String("key", grv.IdempotencyKey()),
		)
	}
}

func (s *GrvIntakeService) archiveSource(ctx context.Context, supplierID uuid.UUID, filename string, source []byte) string {
	if s.storage == nil || len(source) == 0 {
		return ""
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	key := fmt.Sprintf("grvs/%s/%s%s", supplierID, uuid.NewString(), ext)
	if err := s.storage.Put(ctx, key, source, "application/pdf"); err != nil {
		s.logger.Warn("Failed to archive GRV source document",
			zap.String("key", key),
			zap.Error(err),
		)
		return ""
	}
	return key
}

func (s *GrvIntakeService) discardSource(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("Failed to remove orphaned GRV source document",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *GrvIntakeService) resolveParsedLines(ctx context.Context, stock inventory.StockItemRepository, lines []ParsedGrvLine, supplierName string) ([]purchasing.ItemInput, []uuid.UUID, error) {
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.StockCode)
	}
	existing, err := stock.FindByCodes(ctx, codes)
	if err != nil {
		return nil, nil, err
	}
	plan := s.resolver.Plan(lines, inventory.NewStockIndex(existing))
	created, err := s.resolver.Provision(ctx, stock, plan, supplierName)
	if err != nil {
		return nil, nil, err
	}

	provisioned := make([]uuid.UUID, 0, len(created))
	for _, item := range created {
		provisioned = append(provisioned, item.ID)
	}
	inputs := make([]purchasing.ItemInput, 0, len(lines))
	for _, line := range lines {
		input := purchasing.ItemInput{
			StockCode:   line.StockCode,
			Description: line.Description,
			Quantity:    line.Quantity,
			CostPrice:   line.CostPrice,
		}
		if item, ok := plan.Resolve(line.StockCode); ok {
			id := item.ID
			input.StockItemID = &id
			input.SellingPrice = item.SellingPrice
		}
		inputs = append(inputs, input)
	}
	return inputs, provisioned, nil
}

// linkByCode fills in stock item ids for lines that only carry a stock code
func linkByCode(ctx context.Context, stock inventory.StockItemRepository, inputs []purchasing.ItemInput) ([]purchasing.ItemInput, error) {
	var codes []string
	for _, in := range inputs {
		if in.StockItemID == nil && strings.TrimSpace(in.StockCode) != "" {
			codes = append(codes, strings.TrimSpace(in.StockCode))
		}
	}
	if len(codes) == 0 {
		return inputs, nil
	}
	found, err := stock.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	index := inventory.NewStockIndex(found)
	for i := range inputs {
		if inputs[i].StockItemID != nil {
			continue
		}
		if item, ok := index.Resolve(inputs[i].StockCode); ok {
			id := item.ID
			inputs[i].StockItemID = &id
		}
	}
	return inputs, nil
}

// keepSellingPrices copies the current selling price onto linked lines that did not carry one.
// A line whose item has disappeared is left alone; its stock update reports the miss.
func keepSellingPrices(ctx context.Context, stock inventory.StockItemRepository, inputs []purchasing.ItemInput, lines []ReceiveGrvItem) ([]purchasing.ItemInput, error) {
	for i := range inputs {
		if lines[i].SellingPrice != nil || inputs[i].StockItemID == nil {
			continue
		}
		item, err := stock.FindByID(ctx, *inputs[i].StockItemID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		inputs[i].SellingPrice = item.SellingPrice
	}
	return inputs, nil
}

func buildGrv(req intakeRequest, items []purchasing.ItemInput) (*purchasing.Grv, error) {
	grv, err := purchasing.NewGrv(req.header, items)
	if err != nil {
		return nil, err
	}
	grv.SourceDocumentKey = req.sourceKey
	return grv, nil
}

func recordGrv(ctx context.Context, repo purchasing.GrvRepository, grv *purchasing.Grv) error {
	if err := repo.CreateHeader(ctx, grv); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return ErrDuplicateGrv
		}
		return intakeFailed("Failed to record GRV header", err)
	}
	if err := repo.CreateItems(ctx, grv.Items); err != nil {
		return intakeFailed("Failed to record GRV items", err)
	}
	return nil
}

func applyReceipt(ctx context.Context, stock inventory.StockItemRepository, item purchasing.GrvItem) error {
	return stock.ApplyReceipt(ctx, *item.StockItemID, inventory.Receipt{
		Quantity:     item.Quantity,
		CostPrice:    item.CostPrice,
		SellingPrice: item.SellingPrice,
	})
}

func skippedItems(grv *purchasing.Grv) []SkippedItem {
	var skipped []SkippedItem
	for _, item := range grv.Items {
		if item.StockItemID == nil {
			skipped = append(skipped, SkippedItem{LineNo: item.LineNo, StockCode: item.StockCode})
		}
	}
	return skipped
}
