package dto

import "net/http"

// Transport level error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Malformed or invalid input -> 400
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	"INVALID_LINE_ITEM":      http.StatusBadRequest,
	"EMPTY_DOCUMENT":         http.StatusBadRequest,
	"EMPTY_GRV":              http.StatusBadRequest,
	"INVALID_PAYLOAD":        http.StatusBadRequest,
	"INVALID_ACTION":         http.StatusBadRequest,
	"INVALID_VALID_UNTIL":    http.StatusBadRequest,
	"INVALID_DUE_DATE":       http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_CLIENT":         http.StatusBadRequest,
	"INVALID_DATE":           http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"INVALID_ALLOCATION":     http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_NAME":           http.StatusBadRequest,
	"INVALID_STOCK_CODE":     http.StatusBadRequest,
	"INVALID_VAT_RATE":       http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER": http.StatusBadRequest,
	"INVALID_QUOTE_NUMBER":   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:        http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DUPLICATE_GRV":        http.StatusConflict,
	"ALREADY_CONVERTED":    http.StatusConflict,

	// Business rule errors -> 422
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"OVERPAYMENT":            http.StatusUnprocessableEntity,
	"SUPPLIER_UNRESOLVED":    http.StatusUnprocessableEntity,
	"EXTRACTION_FAILED":      http.StatusUnprocessableEntity,
	"EXTRACTION_UNAVAILABLE": http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Persistence failure during intake
	"GRV_INTAKE_FAILED": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
