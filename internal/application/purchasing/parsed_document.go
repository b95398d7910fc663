package purchasing

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ParsedGrvDocument is the payload produced by the PDF extraction collaborator
type ParsedGrvDocument struct {
	SupplierName string          `json:"supplier_name" validate:"required,max=200"`
	Reference    string          `json:"reference" validate:"required,max=100"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	OrderNo      *string         `json:"order_no" validate:"omitempty,max=100"`
	Items        []ParsedGrvItem `json:"items" validate:"required,min=1,dive"`
}

// ParsedGrvItem is one extracted line
type ParsedGrvItem struct {
	StockCode   string           `json:"stock_code" validate:"required,max=50"`
	Description string           `json:"description" validate:"max=500"`
	Qty         int              `json:"qty" validate:"gt=0"`
	CostPrice   *decimal.Decimal `json:"cost_price" validate:"required"`
}

// ParsedGrv is a payload that passed validation, with typed fields
type ParsedGrv struct {
	SupplierName string
	Reference    string
	Date         time.Time
	OrderNo      *string
	Items        []ParsedGrvLine
}

// ParsedGrvLine is a validated extracted line
type ParsedGrvLine struct {
	StockCode   string
	Description string
	Quantity    int
	CostPrice   decimal.Decimal
}

// FieldViolation describes one rejected payload field
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// PayloadError lists every problem found in a parsed payload
type PayloadError struct {
	Violations []FieldViolation
}

func (e *PayloadError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid parsed GRV payload: " + strings.Join(parts, "; ")
}

// ParseOutcome is the tagged result of checking a parsed payload.
// Exactly one of Document and Err is set.
type ParseOutcome struct {
	Document *ParsedGrv
	Err      *PayloadError
}

// OK reports whether the payload was accepted
func (o ParseOutcome) OK() bool {
	return o.Err == nil
}

var payloadValidate = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CheckParsedDocument validates the shape of an extracted payload before it is
// allowed into the intake workflow.
func CheckParsedDocument(doc *ParsedGrvDocument) ParseOutcome {
	if doc == nil {
		return ParseOutcome{Err: &PayloadError{Violations: []FieldViolation{{
			Field: "document", Rule: "required", Message: "payload is empty",
		}}}}
	}

	var violations []FieldViolation
	if err := payloadValidate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ParseOutcome{Err: &PayloadError{Violations: []FieldViolation{{
				Field: "document", Rule: "invalid", Message: err.Error(),
			}}}}
		}
		for _, fe := range verrs {
			violations = append(violations, FieldViolation{
				Field:   fieldPath(fe.Namespace()),
				Rule:    fe.Tag(),
				Message: violationMessage(fe),
			})
		}
	}
	for i, item := range doc.Items {
		if item.CostPrice != nil && item.CostPrice.IsNegative() {
			violations = append(violations, FieldViolation{
				Field:   fmt.Sprintf("items[%d].cost_price", i),
				Rule:    "gte",
				Message: "must be zero or greater",
			})
		}
	}
	if len(violations) > 0 {
		return ParseOutcome{Err: &PayloadError{Violations: violations}}
	}

	// datetime has already been checked
	date, _ := time.Parse("2006-01-02", doc.Date)
	parsed := &ParsedGrv{
		SupplierName: strings.TrimSpace(doc.SupplierName),
		Reference:    strings.TrimSpace(doc.Reference),
		Date:         date,
		OrderNo:      doc.OrderNo,
		Items:        make([]ParsedGrvLine, 0, len(doc.Items)),
	}
	for _, item := range doc.Items {
		parsed.Items = append(parsed.Items, ParsedGrvLine{
			StockCode:   strings.TrimSpace(item.StockCode),
			Description: item.Description,
			Quantity:    item.Qty,
			CostPrice:   *item.CostPrice,
		})
	}
	return ParseOutcome{Document: parsed}
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in the format %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
