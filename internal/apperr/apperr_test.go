package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "ignored"))
	})

	t.Run("DomainErrorPassesThrough", func(t *testing.T) {
		domain := New(NotFound, "order not found")

		wrapped := Wrap(domain, "outer message")
		assert.Same(t, domain, wrapped.(*Error))
	})

	t.Run("WrappedDomainErrorPassesThrough", func(t *testing.T) {
		domain := New(BadRequest, "product sold out")
		carried := fmt.Errorf("creating order: %w", domain)

		wrapped := Wrap(carried, "outer message")
		assert.Same(t, carried, wrapped)
		assert.Equal(t, BadRequest, KindOf(wrapped))
	})

	t.Run("UnknownBecomesInternal", func(t *testing.T) {
		cause := errors.New("connection refused")

		wrapped := Wrap(cause, "transaction failed")
		assert.Equal(t, Internal, KindOf(wrapped))
		assert.ErrorIs(t, wrapped, cause)
		assert.Equal(t, "transaction failed: connection refused", wrapped.Error())
	})
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown(New(Forbidden, "not yours")))
	assert.False(t, IsKnown(New(Internal, "boom")))
	assert.False(t, IsKnown(errors.New("plain")))
	assert.False(t, IsKnown(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "order not found", UserMessage(New(NotFound, "order not found")))
	assert.Equal(t, "internal server error", UserMessage(New(Internal, "pq: deadlock detected")))
	assert.Equal(t, "internal server error", UserMessage(errors.New("pq: deadlock detected")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		NotFound:    http.StatusNotFound,
		BadRequest:  http.StatusBadRequest,
		Forbidden:   http.StatusForbidden,
		Unavailable: http.StatusServiceUnavailable,
		Internal:    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus())
	}
}
