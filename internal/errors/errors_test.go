package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidReference, http.StatusBadRequest},
		{CodeNoEffectiveChange, http.StatusBadRequest},
		{CodeStoreFailure, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("product %d not found", 7)

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestStoreFailure_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	err := StoreFailure(cause, "update product")

	assert.True(t, Is(err, ErrStoreFailure))
	assert.True(t, Is(err, cause))
	assert.Equal(t, "update product: disk I/O error", err.Error())
}

func TestInvalidReference_Details(t *testing.T) {
	err := InvalidReference("tagIds", []int64{9, 11})

	assert.True(t, Is(err, ErrInvalidReference))
	details, ok := err.Details.(ReferenceDetails)
	require.True(t, ok)
	assert.Equal(t, "tagIds", details.Field)
	assert.Equal(t, []int64{9, 11}, details.Missing)
}

func TestWithDetails_DoesNotMutateReceiver(t *testing.T) {
	base := Conflict("category has products")
	withDetails := base.WithDetails(map[string]int{"products": 3})

	assert.Nil(t, base.Details)
	assert.NotNil(t, withDetails.Details)
	assert.Equal(t, base.Code, withDetails.Code)
}
