package requests

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/janhq/library-api/internal/utils/platformerrors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is a resolved page request.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// GetPaginationFromQuery reads page and limit. Page clamps to at least 1 and
// limit to 1..100; non-numeric values are rejected.
func GetPaginationFromQuery(reqCtx *gin.Context) (Pagination, error) {
	ctx := reqCtx.Request.Context()
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if raw := strings.TrimSpace(reqCtx.Query("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Pagination{}, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid page number", err, "request-pagination-page-001")
		}
		p.Page = max(page, 1)
	}

	if raw := strings.TrimSpace(reqCtx.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Pagination{}, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid limit number", err, "request-pagination-limit-001")
		}
		p.Limit = min(max(limit, 1), MaxLimit)
	}

	return p, nil
}

// OptionalBool parses a boolean query parameter; absent means nil.
func OptionalBool(reqCtx *gin.Context, name string) (*bool, error) {
	raw, ok := reqCtx.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	val, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid boolean for "+name, err, "request-query-bool-001")
	}
	return &val, nil
}
