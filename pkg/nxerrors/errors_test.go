package nxerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(KindMutation, errors.New("interface ether9 cannot be created"))
	assert.Equal(t, "mutation: interface ether9 cannot be created", err.Error())

	bare := New(KindDependency, nil)
	assert.Equal(t, "dependency", bare.Error())

	var nilErr *Error
	assert.Equal(t, "", nilErr.Error())
	assert.NoError(t, nilErr.Unwrap())
}

func TestKindOfAndIs(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("plan: %w", New(KindValueInvalid, cause))

	assert.Equal(t, KindValueInvalid, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindValueInvalid))
	assert.False(t, Is(wrapped, KindParse))
	require.ErrorIs(t, wrapped, cause)

	joined := errors.Join(Errorf(KindMutation, "a"), Errorf(KindMissingField, "b"))
	assert.True(t, Is(joined, KindMissingField))
	assert.True(t, Is(joined, KindMutation))
	assert.False(t, Is(joined, KindDependency))

	assert.Equal(t, Kind(""), KindOf(cause))
	assert.False(t, Is(nil, KindInternal))
}
