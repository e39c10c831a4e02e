package catalog

import "errors"

// Storage errors. Implementations wrap these with the entity involved.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// ErrInvalidRequestStatus indicates a value outside the request states.
var ErrInvalidRequestStatus = errors.New("invalid request status")

// Cache keys for catalog-derived views. Writes that affect a view
// invalidate its key.
const (
	CacheProductsAll     = "products_all"
	CachePendingRequests = "pending_requests"
)
