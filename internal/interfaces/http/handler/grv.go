package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	purchasingapp "github.com/bizledger/backend/internal/application/purchasing"
	"github.com/bizledger/backend/internal/domain/purchasing"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxDocumentSize bounds uploaded delivery notes
const maxDocumentSize = 20 << 20

// GrvHandler handles goods received voucher endpoints
type GrvHandler struct {
	BaseHandler
	intake *purchasingapp.GrvIntakeService
}

// NewGrvHandler creates a new GrvHandler
func NewGrvHandler(intake *purchasingapp.GrvIntakeService) *GrvHandler {
	return &GrvHandler{intake: intake}
}

// ReceiveGrvRequest is a manually captured GRV
type ReceiveGrvRequest struct {
	SupplierID uuid.UUID            `json:"supplier_id" binding:"required"`
	Reference  string               `json:"reference" binding:"required,max=100"`
	Date       string               `json:"date" binding:"required,datetime=2006-01-02"`
	OrderNo    *string              `json:"order_no" binding:"omitempty,max=100"`
	Note       string               `json:"note" binding:"max=2000"`
	Items      []ReceiveGrvItemLine `json:"items" binding:"required,min=1,dive"`
}

// ReceiveGrvItemLine is one line of a ReceiveGrvRequest.
// Omitting selling_price keeps the stock item's current selling price.
type ReceiveGrvItemLine struct {
	StockItemID  *uuid.UUID       `json:"stock_item_id"`
	StockCode    string           `json:"stock_code" binding:"max=50"`
	Description  string           `json:"description" binding:"max=500"`
	Quantity     int              `json:"quantity" binding:"gt=0"`
	CostPrice    *decimal.Decimal `json:"cost_price" binding:"required"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

// GrvItemResponse is one GRV line
type GrvItemResponse struct {
	LineNo       int             `json:"line_no"`
	StockItemID  *uuid.UUID      `json:"stock_item_id,omitempty"`
	StockCode    string          `json:"stock_code"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// GrvResponse is a recorded GRV
type GrvResponse struct {
	ID                uuid.UUID         `json:"id"`
	Reference         string            `json:"reference"`
	Date              string            `json:"date"`
	SupplierID        uuid.UUID         `json:"supplier_id"`
	OrderNo           *string           `json:"order_no,omitempty"`
	Note              string            `json:"note,omitempty"`
	HasSourceDocument bool              `json:"has_source_document"`
	SourceDocumentURL string            `json:"source_document_url,omitempty"`
	SourceURLExpires  *time.Time        `json:"source_document_url_expires_at,omitempty"`
	Items             []GrvItemResponse `json:"items"`
	CreatedAt         time.Time         `json:"created_at"`
}

// IntakeFailureResponse is a side effect that was not applied
type IntakeFailureResponse struct {
	Stage       string     `json:"stage"`
	LineNo      int        `json:"line_no,omitempty"`
	StockItemID *uuid.UUID `json:"stock_item_id,omitempty"`
	Message     string     `json:"message"`
}

// SkippedItemResponse is a line that did not touch stock
type SkippedItemResponse struct {
	LineNo    int    `json:"line_no"`
	StockCode string `json:"stock_code,omitempty"`
}

// IntakeResponse is the outcome of a GRV intake
type IntakeResponse struct {
	Grv         GrvResponse             `json:"grv"`
	Provisioned []uuid.UUID             `json:"provisioned_stock_item_ids"`
	Skipped     []SkippedItemResponse   `json:"skipped_items"`
	Failures    []IntakeFailureResponse `json:"failures"`
}

// SupplierCandidate is a supplier offered when a name could not be matched
type SupplierCandidate struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SupplierUnresolvedResponse lists the candidates of a failed supplier match
type SupplierUnresolvedResponse struct {
	SupplierName string              `json:"supplier_name"`
	Outcome      string              `json:"outcome"`
	Candidates   []SupplierCandidate `json:"candidates"`
}

// Receive handles POST /grvs
func (h *GrvHandler) Receive(c *gin.Context) {
	var req ReceiveGrvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date")
		return
	}

	items := make([]purchasingapp.ReceiveGrvItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, purchasingapp.ReceiveGrvItem{
			StockItemID:  item.StockItemID,
			StockCode:    item.StockCode,
			Description:  item.Description,
			Quantity:     item.Quantity,
			CostPrice:    *item.CostPrice,
			SellingPrice: item.SellingPrice,
		})
	}

	result, err := h.intake.Receive(c.Request.Context(), purchasingapp.ReceiveGrvCommand{
		SupplierID: req.SupplierID,
		Reference:  req.Reference,
		Date:       date,
		OrderNo:    req.OrderNo,
		Note:       req.Note,
		Items:      items,
	})
	if err != nil {
		h.handleIntakeError(c, err)
		return
	}
	h.intakeCreated(c, result)
}

// Import handles POST /grvs/import with a multipart "file" field holding the PDF
func (h *GrvHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	if header.Size > maxDocumentSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Document is too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable file upload")
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		h.BadRequest(c, "Unreadable file upload")
		return
	}

	result, err := h.intake.ImportDocument(c.Request.Context(), header.Filename, pdf)
	if err != nil {
		h.handleIntakeError(c, err)
		return
	}
	h.intakeCreated(c, result)
}

// ImportParsed handles POST /grvs/parsed with an already extracted payload
func (h *GrvHandler) ImportParsed(c *gin.Context) {
	var doc purchasingapp.ParsedGrvDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.intake.ImportParsed(c.Request.Context(), &doc, "", nil)
	if err != nil {
		h.handleIntakeError(c, err)
		return
	}
	h.intakeCreated(c, result)
}

// Get handles GET /grvs/:id. A presigned source document link is added when one was archived.
func (h *GrvHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	grv, err := h.intake.GetGrv(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toGrvResponse(grv)
	if grv.SourceDocumentKey != "" {
		url, expires, err := h.intake.SourceDocumentURL(ctx, grv)
		switch {
		case err == nil:
			resp.SourceDocumentURL = url
			resp.SourceURLExpires = &expires
		case !errors.Is(err, shared.ErrNotFound):
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, resp)
}

func (h *GrvHandler) intakeCreated(c *gin.Context, result *purchasingapp.IntakeResult) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponseWithMeta(toIntakeResponse(result), &dto.Meta{
		Degraded: result.Degraded(),
		Policy:   string(result.Policy),
	}))
}

// handleIntakeError adds payload violations and supplier candidates to the error envelope
func (h *GrvHandler) handleIntakeError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		h.HandleError(c, err)
		return
	}

	var payloadErr *purchasingapp.PayloadError
	if errors.As(err, &payloadErr) {
		details := make([]dto.ValidationDetail, 0, len(payloadErr.Violations))
		for _, v := range payloadErr.Violations {
			details = append(details, dto.ValidationDetail{Field: v.Field, Message: v.Message})
		}
		c.Set(middleware.ErrorCodeKey, domainErr.Code)
		resp := dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, middleware.GetRequestID(c))
		resp.Error.Details = details
		c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
		return
	}

	var unresolved *purchasingapp.SupplierUnresolvedError
	if errors.As(err, &unresolved) {
		candidates := make([]SupplierCandidate, 0, len(unresolved.Candidates))
		for _, s := range unresolved.Candidates {
			candidates = append(candidates, SupplierCandidate{ID: s.ID, Name: s.Name})
		}
		c.Set(middleware.ErrorCodeKey, domainErr.Code)
		resp := dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, middleware.GetRequestID(c))
		resp.Data = SupplierUnresolvedResponse{
			SupplierName: unresolved.Name,
			Outcome:      string(unresolved.Outcome),
			Candidates:   candidates,
		}
		c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
		return
	}

	h.HandleError(c, err)
}

func toGrvResponse(grv *purchasing.Grv) GrvResponse {
	items := make([]GrvItemResponse, 0, len(grv.Items))
	for _, item := range grv.Items {
		items = append(items, GrvItemResponse{
			LineNo:       item.LineNo,
			StockItemID:  item.StockItemID,
			StockCode:    item.StockCode,
			Description:  item.Description,
			Quantity:     item.Quantity,
			CostPrice:    item.CostPrice,
			SellingPrice: item.SellingPrice,
		})
	}
	return GrvResponse{
		ID:                grv.ID,
		Reference:         grv.Reference,
		Date:              formatDate(grv.Date),
		SupplierID:        grv.SupplierID,
		OrderNo:           grv.OrderNo,
		Note:              grv.Note,
		HasSourceDocument: grv.SourceDocumentKey != "",
		Items:             items,
		CreatedAt:         grv.CreatedAt,
	}
}

func toIntakeResponse(result *purchasingapp.IntakeResult) IntakeResponse {
	resp := IntakeResponse{
		Grv:         toGrvResponse(result.Grv),
		Provisioned: result.Provisioned,
		Skipped:     make([]SkippedItemResponse, 0, len(result.Skipped)),
		Failures:    make([]IntakeFailureResponse, 0, len(result.Failures)),
	}
	if resp.Provisioned == nil {
		resp.Provisioned = []uuid.UUID{}
	}
	for _, s := range result.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedItemResponse{LineNo: s.LineNo, StockCode: s.StockCode})
	}
	for _, f := range result.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		resp.Failures = append(resp.Failures, IntakeFailureResponse{
			Stage:       string(f.Stage),
			LineNo:      f.LineNo,
			StockItemID: f.StockItemID,
			Message:     msg,
		})
	}
	return resp
}
