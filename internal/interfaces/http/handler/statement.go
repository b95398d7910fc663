package handler

import (
	"time"

	ledgerapp "github.com/bizledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementHandler serves client statements
type StatementHandler struct {
	BaseHandler
	statements *ledgerapp.StatementService
}

// NewStatementHandler creates a new StatementHandler
func NewStatementHandler(statements *ledgerapp.StatementService) *StatementHandler {
	return &StatementHandler{statements: statements}
}

// StatementEntryResponse is one statement line
type StatementEntryResponse struct {
	Date      string          `json:"date"`
	Reference string          `json:"reference"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	SourceID  uuid.UUID       `json:"source_id"`
}

// StatementResponse is a client statement as of a cutoff date
type StatementResponse struct {
	ClientID       uuid.UUID                `json:"client_id"`
	ClientName     string                   `json:"client_name"`
	Cutoff         string                   `json:"cutoff"`
	Entries        []StatementEntryResponse `json:"entries"`
	ClosingBalance decimal.Decimal          `json:"closing_balance"`
}

// Get handles GET /clients/:id/statement?cutoff=YYYY-MM-DD. Without cutoff the statement runs to today.
func (h *StatementHandler) Get(c *gin.Context) {
	clientID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var cutoff time.Time
	if raw := c.Query("cutoff"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			h.BadRequest(c, "Invalid cutoff, expected YYYY-MM-DD")
			return
		}
		cutoff = parsed
	}

	result, err := h.statements.Generate(c.Request.Context(), clientID, cutoff)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	st := result.Statement
	resp := StatementResponse{
		ClientID:       st.ClientID,
		Cutoff:         formatDate(st.Cutoff),
		Entries:        make([]StatementEntryResponse, 0, len(st.Entries)),
		ClosingBalance: st.ClosingBalance.Round(2),
	}
	if result.Client != nil {
		resp.ClientName = result.Client.Name
	}
	for _, e := range st.Entries {
		resp.Entries = append(resp.Entries, StatementEntryResponse{
			Date:      formatDate(e.Date),
			Reference: e.Reference,
			Type:      string(e.Type),
			Amount:    e.Amount.Round(2),
			Balance:   e.Balance.Round(2),
			SourceID:  e.SourceID,
		})
	}
	h.Success(c, resp)
}
