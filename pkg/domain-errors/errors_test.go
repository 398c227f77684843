package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodePreconditionFailed, "slot already occupied")
		assert.True(t, HasCode(err, CodePreconditionFailed))
		assert.False(t, HasCode(err, CodeStateConflict))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("register: %w", New(CodeUnauthorized, "bad signature"))
		assert.True(t, HasCode(err, CodeUnauthorized))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "commit failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "commit failed: connection reset", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeStateConflict:      http.StatusConflict,
		CodePreconditionFailed: http.StatusPreconditionFailed,
		CodePolicyViolation:    http.StatusUnprocessableEntity,
		CodeInvalidProof:       http.StatusUnprocessableEntity,
		CodeInvalidWitness:     http.StatusBadRequest,
		Code("unknown"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), string(code))
	}
}
