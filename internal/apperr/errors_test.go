package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status())
	}
}

func TestWrappedSentinelStillMatches(t *testing.T) {
	cause := errors.New("signature is invalid")
	err := fmt.Errorf("resolve actor: %w", ErrTokenFailed.Wrap(cause))

	assert.ErrorIs(t, err, ErrTokenFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmailInUse)
	assert.Equal(t, "Not authorised - token failed", From(err).Message)
}

func TestFromClassifiesUnknownAsInternal(t *testing.T) {
	e := From(errors.New("mongo: connection reset"))

	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, CodeInternal, e.Code)
	assert.Equal(t, "Internal server error", e.Message)
	assert.Nil(t, From(nil))
}

func TestCopiesDoNotMutateSentinels(t *testing.T) {
	detailed := ErrEmptyOrder.WithDetails(map[string]any{"orderItems": "required"}).WithMessage("Nothing to order")

	assert.Nil(t, ErrEmptyOrder.Details)
	assert.Equal(t, "No order items", ErrEmptyOrder.Message)
	assert.Equal(t, "Nothing to order", detailed.Message)
	assert.ErrorIs(t, detailed, ErrEmptyOrder)
}
