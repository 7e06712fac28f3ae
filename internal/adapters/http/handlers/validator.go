// Package handlers holds the REST adapters: each handler binds a request,
// calls one use case, and renders the result (the Adapter layer in
// the clean-architecture sense — HTTP in, Command/Query DTOs out).
package handlers

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// SetupValidator registers PayFlow's domain-specific validation tags on
// gin's validator engine. Call once at startup.
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})

			_ = v.RegisterValidation("currency_code", validateCurrencyCode)
			_ = v.RegisterValidation("money_amount", validateMoneyAmount)
			_ = v.RegisterValidation("wallet_status", validateWalletStatus)
			_ = v.RegisterValidation("transaction_type", validateTransactionType)
			_ = v.RegisterValidation("environment", validateEnvironment)
			_ = v.RegisterValidation("permission", validatePermission)
			_ = v.RegisterValidation("idempotency_key", validateIdempotencyKey)
		}
	})
}

// validateCurrencyCode requires a 3-letter uppercase ISO 4217 code.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// validateMoneyAmount requires a non-negative decimal string with at most
// two fractional digits, matching the ledger's fixed-point precision.
func validateMoneyAmount(fl validator.FieldLevel) bool {
	return moneyPattern.MatchString(fl.Field().String())
}

func validateWalletStatus(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	validStatuses := map[string]bool{
		"active":    true,
		"suspended": true,
		"closed":    true,
	}
	return validStatuses[status]
}

func validateTransactionType(fl validator.FieldLevel) bool {
	txType := fl.Field().String()
	validTypes := map[string]bool{
		"credit":   true,
		"debit":    true,
		"transfer": true,
	}
	return validTypes[txType]
}

func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	return env == "sandbox" || env == "production"
}

// idempotencyKeyPattern restricts keys to alphanumerics, dash and underscore.
var idempotencyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

func validateIdempotencyKey(fl validator.FieldLevel) bool {
	return idempotencyKeyPattern.MatchString(fl.Field().String())
}

func validatePermission(fl validator.FieldLevel) bool {
	perm := fl.Field().String()
	validPerms := map[string]bool{
		"wallets:read":       true,
		"wallets:write":      true,
		"transactions:read":  true,
		"transactions:write": true,
		"payouts:write":      true,
	}
	return validPerms[perm]
}

// HandleValidationErrors converts a gin bind error into the standard field
// error response.
func HandleValidationErrors(c *gin.Context, err error) {
	var fieldErrors []common.FieldError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			fieldErrors = append(fieldErrors, common.FieldError{
				Field:   fieldErr.Field(),
				Message: validationMessage(fieldErr),
				Code:    fieldErr.Tag(),
			})
		}
	}

	if len(fieldErrors) == 0 {
		common.BadRequestResponse(c, "invalid request body: "+err.Error())
		return
	}

	common.ValidationErrorResponse(c, fieldErrors)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "uuid":
		return "invalid UUID format"
	case "min":
		return "value is too short (minimum: " + fe.Param() + ")"
	case "max":
		return "value is too long (maximum: " + fe.Param() + ")"
	case "len":
		return "value must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "value must be one of: " + fe.Param()
	case "currency_code":
		return "invalid currency code (must be 3 uppercase letters)"
	case "money_amount":
		return "invalid amount format (use a decimal string like \"100.50\")"
	case "wallet_status":
		return "invalid wallet status"
	case "transaction_type":
		return "invalid transaction type"
	case "environment":
		return "environment must be \"sandbox\" or \"production\""
	case "permission":
		return "unrecognized permission"
	case "idempotency_key":
		return "idempotency keys are 1-255 characters of alphanumerics, dash or underscore"
	default:
		return "invalid value"
	}
}

// BindJSON binds the JSON request body, writing the error response itself
// and returning false if binding failed.
func BindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// BindQuery binds query-string parameters.
func BindQuery[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// PaginationParams are the offset/limit query parameters shared by every
// list endpoint.
type PaginationParams struct {
	Offset int `form:"offset" binding:"min=0"`
	Limit  int `form:"limit" binding:"min=0,max=100"`
}

const defaultPageLimit = 20

// ParsePagination reads offset/limit from the query string, applying
// PayFlow's default page size when limit is unset.
func ParsePagination(c *gin.Context) PaginationParams {
	params := PaginationParams{Offset: 0, Limit: defaultPageLimit}

	if offset := c.Query("offset"); offset != "" {
		if o := parseNonNegativeInt(offset); o >= 0 {
			params.Offset = o
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l := parseNonNegativeInt(limit); l > 0 && l <= 100 {
			params.Limit = l
		}
	}

	return params
}

func parseNonNegativeInt(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// BuildMeta builds the pagination metadata for a list response.
func BuildMeta(params PaginationParams, total int) *common.APIMeta {
	return &common.APIMeta{Offset: params.Offset, Limit: params.Limit, Total: total}
}
