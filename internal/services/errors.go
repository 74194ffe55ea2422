package services

import "errors"

// Domain errors. Handlers map these to 4xx responses; anything else is an
// infrastructure failure and surfaces as a generic 5xx.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAddressNotFound    = errors.New("address not found")
	ErrEmptyItems         = errors.New("order needs at least one item")
	ErrQuantityInvalid    = errors.New("quantity must be > 0")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidProductType = errors.New("invalid product type")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLastAdmin          = errors.New("cannot demote the last remaining admin")
	ErrGatewayUnavailable = errors.New("payment gateway not configured")
	ErrBadSpreadsheet     = errors.New("unreadable or empty spreadsheet")
)
