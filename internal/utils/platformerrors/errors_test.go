package platformerrors

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsErrorKeepsType(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	base := NewError(ctx, LayerRepository, ErrorTypeNotFound, "loan not found", nil, "loan-find-notfound-001")

	wrapped := AsError(ctx, LayerDomain, base, "return loan")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeNotFound, wrapped.Type)
	assert.Equal(t, "loan-find-notfound-001", wrapped.UUID)
	assert.Equal(t, "req-1", wrapped.RequestID)
	assert.True(t, IsErrorType(wrapped, ErrorTypeNotFound))
	assert.True(t, errors.Is(wrapped, base))
}

func TestAsErrorForeignBecomesInternal(t *testing.T) {
	wrapped := AsError(context.Background(), LayerDomain, errors.New("boom"), "list loans")

	assert.Equal(t, ErrorTypeInternal, wrapped.Type)
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("plain")))
	assert.Nil(t, AsError(context.Background(), LayerDomain, nil, "noop"))
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	cases := map[ErrorType]int{
		ErrorTypeNotFound:      http.StatusNotFound,
		ErrorTypeValidation:    http.StatusBadRequest,
		ErrorTypeConflict:      http.StatusConflict,
		ErrorTypeUnauthorized:  http.StatusUnauthorized,
		ErrorTypeForbidden:     http.StatusForbidden,
		ErrorTypeExternal:      http.StatusBadGateway,
		ErrorTypeDatabaseError: http.StatusInternalServerError,
		ErrorType("UNKNOWN"):   http.StatusInternalServerError,
	}
	for errorType, want := range cases {
		assert.Equal(t, want, ErrorTypeToHTTPStatus(errorType), string(errorType))
	}
}

func TestErrorString(t *testing.T) {
	err := NewError(context.Background(), LayerHandler, ErrorTypeValidation, "bad page", errors.New("strconv"), "req-page-001")
	assert.Equal(t, "[handler][VALIDATION][req-page-001] bad page: strconv", err.Error())
}
