package handler

import (
	"strings"

	catalogapp "github.com/bizledger/backend/internal/application/catalog"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogHandler serves stock item and supplier master data
type CatalogHandler struct {
	BaseHandler
	catalog *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// StockItemResponse is a stock item with its current quantity and prices
type StockItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	StockCode      string          `json:"stock_code"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	LastCost       decimal.Decimal `json:"last_cost"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	PriceA         decimal.Decimal `json:"price_a"`
	PriceB         decimal.Decimal `json:"price_b"`
	PriceC         decimal.Decimal `json:"price_c"`
	PriceD         decimal.Decimal `json:"price_d"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	VATRate        decimal.Decimal `json:"vat_rate"`
	SupplierName   string          `json:"supplier_name,omitempty"`
	Version        int             `json:"version"`
}

// SupplierResponse is a supplier with its balances
type SupplierResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	ContactPerson  string          `json:"contact_person,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	AgeingBalance  decimal.Decimal `json:"ageing_balance"`
	Version        int             `json:"version"`
}

// UpdateStockDetailsRequest edits the descriptive fields of a stock item.
// Version is the version the caller last read.
type UpdateStockDetailsRequest struct {
	Version      int    `json:"version" binding:"required,min=1"`
	Description  string `json:"description" binding:"max=500"`
	Category     string `json:"category" binding:"max=100"`
	SupplierName string `json:"supplier_name" binding:"max=200"`
}

// UpdateStockPricingRequest replaces every price of a stock item. Omitted
// price tiers are set to zero.
type UpdateStockPricingRequest struct {
	Version      int              `json:"version" binding:"required,min=1"`
	CostPrice    *decimal.Decimal `json:"cost_price" binding:"required"`
	SellingPrice *decimal.Decimal `json:"selling_price" binding:"required"`
	PriceA       decimal.Decimal  `json:"price_a"`
	PriceB       decimal.Decimal  `json:"price_b"`
	PriceC       decimal.Decimal  `json:"price_c"`
	PriceD       decimal.Decimal  `json:"price_d"`
}

// UpdateSupplierRequest replaces a supplier's name and contact fields
type UpdateSupplierRequest struct {
	Version       int    `json:"version" binding:"required,min=1"`
	Name          string `json:"name" binding:"required,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=200"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Phone         string `json:"phone" binding:"max=50"`
}

// GetStockItem handles GET /stock/:code
func (h *CatalogHandler) GetStockItem(c *gin.Context) {
	code, ok := h.stockCode(c)
	if !ok {
		return
	}
	item, err := h.catalog.GetStockItem(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockItemResponse(item))
}

// UpdateStockDetails handles PUT /stock/:code
func (h *CatalogHandler) UpdateStockDetails(c *gin.Context) {
	code, ok := h.stockCode(c)
	if !ok {
		return
	}
	var req UpdateStockDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.catalog.UpdateStockDetails(c.Request.Context(), code, catalogapp.UpdateStockDetailsCommand{
		Version:      req.Version,
		Description:  req.Description,
		Category:     req.Category,
		SupplierName: req.SupplierName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockItemResponse(item))
}

// UpdateStockPricing handles PUT /stock/:code/pricing
func (h *CatalogHandler) UpdateStockPricing(c *gin.Context) {
	code, ok := h.stockCode(c)
	if !ok {
		return
	}
	var req UpdateStockPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.catalog.UpdateStockPricing(c.Request.Context(), code, catalogapp.UpdateStockPricingCommand{
		Version: req.Version,
		Pricing: inventory.Pricing{
			CostPrice:    *req.CostPrice,
			SellingPrice: *req.SellingPrice,
			PriceA:       req.PriceA,
			PriceB:       req.PriceB,
			PriceC:       req.PriceC,
			PriceD:       req.PriceD,
		},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStockItemResponse(item))
}

// GetSupplier handles GET /suppliers/:id
func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.catalog.GetSupplier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierResponse(supplier))
}

// UpdateSupplier handles PUT /suppliers/:id
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	supplier, err := h.catalog.UpdateSupplier(c.Request.Context(), id, catalogapp.UpdateSupplierCommand{
		Version:       req.Version,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierResponse(supplier))
}

func (h *CatalogHandler) stockCode(c *gin.Context) (string, bool) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		h.BadRequest(c, "Stock code is required")
		return "", false
	}
	return code, true
}

func toStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:             item.ID,
		StockCode:      item.StockCode,
		Description:    item.Description,
		Category:       item.Category,
		CostPrice:      item.CostPrice,
		LastCost:       item.LastCost,
		SellingPrice:   item.SellingPrice,
		PriceA:         item.PriceA,
		PriceB:         item.PriceB,
		PriceC:         item.PriceC,
		PriceD:         item.PriceD,
		QuantityOnHand: item.QuantityOnHand,
		VATRate:        item.VATRate,
		SupplierName:   item.SupplierName,
		Version:        item.Version,
	}
}

func toSupplierResponse(supplier *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:             supplier.ID,
		Name:           supplier.Name,
		ContactPerson:  supplier.ContactPerson,
		Email:          supplier.Email,
		Phone:          supplier.Phone,
		CurrentBalance: supplier.CurrentBalance,
		AgeingBalance:  supplier.AgeingBalance,
		Version:        supplier.Version,
	}
}
