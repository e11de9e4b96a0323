package locator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorKindString(t *testing.T) {
	require.Equal(t, "bad input", BadInput.String())
	require.Equal(t, "insufficient data", InsufficientData.String())
	require.Equal(t, "unknown error", ErrorKind(99).String())
}

func TestErrorWrapsCauseAndKind(t *testing.T) {
	cause := errors.New("boom")
	err := NewError("stepper.MakeStep", SingularMatrix, cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "stepper.MakeStep")
	require.Contains(t, err.Error(), "singular matrix")
	require.Contains(t, err.Error(), "boom")

	var target *Error
	require.True(t, errors.As(err, &target))
	require.Equal(t, SingularMatrix, target.Kind)
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewError("locloop.Locate", DidNotConverge, nil)
	require.Nil(t, errors.Unwrap(err))
	require.Equal(t, "locloop.Locate: did not converge", err.Error())
}
