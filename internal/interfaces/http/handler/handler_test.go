package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/bizledger/backend/internal/application/catalog"
	ledgerapp "github.com/bizledger/backend/internal/application/ledger"
	purchasingapp "github.com/bizledger/backend/internal/application/purchasing"
	salesapp "github.com/bizledger/backend/internal/application/sales"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/purchasing"
	"github.com/bizledger/backend/internal/domain/sales"
	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testAPI is the full handler stack over an in-memory SQLite database
type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
	intake *purchasingapp.GrvIntakeService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&partner.Client{},
		&partner.Supplier{},
		&inventory.StockItem{},
		&purchasing.Grv{},
		&purchasing.GrvItem{},
		&sales.Invoice{},
		&sales.InvoiceLine{},
		&sales.Quote{},
		&sales.QuoteLine{},
		&sales.Payment{},
	))

	clients := persistence.NewGormClientRepository(db)
	suppliers := persistence.NewGormSupplierRepository(db)
	stock := persistence.NewGormStockItemRepository(db)
	invoices := persistence.NewGormInvoiceRepository(db)
	quotes := persistence.NewGormQuoteRepository(db)
	payments := persistence.NewGormPaymentRepository(db)
	salesScope := persistence.NewSalesTransactionScope(db)

	documents := salesapp.NewDocumentService(invoices, quotes, clients, salesScope, nil)
	paymentService := salesapp.NewPaymentService(payments, clients, salesScope, nil)
	statements := ledgerapp.NewStatementService(clients, invoices, payments, nil)
	intake := purchasingapp.NewGrvIntakeService(
		persistence.NewGormGrvRepository(db), stock, suppliers,
		persistence.NewPurchasingTransactionScope(db), nil,
	)

	engine := gin.New()
	api := engine.Group("/api/v1")
	inv := NewInvoiceHandler(documents)
	api.POST("/invoices", inv.Create)
	api.GET("/invoices/:id", inv.Get)
	api.PUT("/invoices/:id/lines", inv.ReplaceLines)
	api.POST("/invoices/:id/status", inv.ChangeStatus)
	api.PATCH("/invoices/:id/vat", inv.SetVATMode)
	q := NewQuoteHandler(documents)
	api.POST("/quotes", q.Create)
	api.GET("/quotes/:id", q.Get)
	api.PUT("/quotes/:id/lines", q.ReplaceLines)
	api.POST("/quotes/:id/status", q.ChangeStatus)
	api.POST("/quotes/:id/convert", q.Convert)
	pay := NewPaymentHandler(paymentService)
	api.POST("/payments", pay.Record)
	api.GET("/payments/:id", pay.Get)
	api.GET("/clients/:id/statement", NewStatementHandler(statements).Get)
	grv := NewGrvHandler(intake)
	api.POST("/grvs", grv.Receive)
	api.POST("/grvs/import", grv.Import)
	api.POST("/grvs/parsed", grv.ImportParsed)
	api.GET("/grvs/:id", grv.Get)
	catalog := NewCatalogHandler(catalogapp.NewCatalogService(stock, suppliers, nil))
	api.GET("/stock/:code", catalog.GetStockItem)
	api.PUT("/stock/:code", catalog.UpdateStockDetails)
	api.PUT("/stock/:code/pricing", catalog.UpdateStockPricing)
	api.GET("/suppliers/:id", catalog.GetSupplier)
	api.PUT("/suppliers/:id", catalog.UpdateSupplier)

	return &testAPI{engine: engine, db: db, intake: intake}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) upload(t *testing.T, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) seedClient(t *testing.T, name string) *partner.Client {
	t.Helper()
	client, err := partner.NewClient(name, "", "", "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormClientRepository(a.db).Create(context.Background(), client))
	return client
}

func (a *testAPI) seedSupplier(t *testing.T, name string) *partner.Supplier {
	t.Helper()
	supplier, err := partner.NewSupplier(name)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSupplierRepository(a.db).Create(context.Background(), supplier))
	return supplier
}

func (a *testAPI) seedStock(t *testing.T, code string, cost, selling string) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(code, code+" item", "Hardware", inventory.Pricing{
		CostPrice:    decimal.RequireFromString(cost),
		SellingPrice: decimal.RequireFromString(selling),
	}, decimal.NewFromInt(15), "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormStockItemRepository(a.db).Create(context.Background(), item))
	return item
}

// envelope decodes a response into the API envelope with a typed payload
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
