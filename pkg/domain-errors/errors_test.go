package domainerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesChainAndCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load role registry")

	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeUnauthorized))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to load role registry")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeCapExceeded, CodeOf(New(CodeCapExceeded, "over the cap")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")), "undecorated errors default to internal")
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:          http.StatusForbidden,
		CodeBlacklisted:           http.StatusForbidden,
		CodeInvalidAddress:        http.StatusBadRequest,
		CodeZeroAmount:            http.StatusBadRequest,
		CodeBadRequest:            http.StatusBadRequest,
		CodeCapExceeded:           http.StatusUnprocessableEntity,
		CodeInsufficientBalance:   http.StatusUnprocessableEntity,
		CodeInsufficientAllowance: http.StatusUnprocessableEntity,
		CodeNotFound:              http.StatusNotFound,
		CodeConflict:              http.StatusConflict,
		CodeInvalidState:          http.StatusConflict,
		CodeInternal:              http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
