package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := New("TEST", "something broke", http.StatusTeapot)
	require.Equal(t, "something broke", err.Error())

	withCause := err.WithInternal(errors.New("root cause"))
	require.Contains(t, withCause.Error(), "root cause")

	// The original is untouched.
	require.Nil(t, err.Internal)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, "wrapped")

	require.ErrorIs(t, err, cause)
	require.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrLinkInvalid)
	require.Equal(t, "LINK_INVALID", appErr.Code)
	require.Equal(t, http.StatusUnauthorized, appErr.StatusCode)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.Equal(t, http.StatusInternalServerError, generic.StatusCode)
}

func TestFromErrorUnwrapsNestedAppError(t *testing.T) {
	wrapped := ErrRateLimit.WithInternal(errors.New("counter says no"))
	appErr := FromError(wrapped)
	require.Equal(t, "RATE_LIMITED", appErr.Code)
	require.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
}

func TestSentinelStatusCodes(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, ErrUnauthorized.StatusCode)
	require.Equal(t, http.StatusBadRequest, ErrInvalidIdentifier.StatusCode)
	require.Equal(t, http.StatusBadGateway, ErrDeliveryFailed.StatusCode)
	require.Equal(t, http.StatusTooManyRequests, ErrRateLimit.StatusCode)
}
