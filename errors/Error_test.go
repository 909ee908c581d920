package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")
	require.NotNil(t, err)
	require.Equal(t, ERR_NOT_FOUND, err.Code())
	require.Equal(t, "resource not found", err.Message())

	secondErr := New(ERR_INVALID_ARGUMENT, "[Validate][%s] bad limit", "_test_string_", err)
	thirdErr := New(ERR_STORAGE_UNAVAILABLE, "[Find][%s] store failed", "_test_string_", secondErr)
	anotherErr := New(ERR_STORAGE_UNAVAILABLE, "another storage error")

	require.Equal(t, "[Validate][_test_string_] bad limit", secondErr.Message())

	require.True(t, anotherErr.Is(thirdErr))
	require.True(t, thirdErr.Is(ErrStorageUnavailable))
	require.True(t, thirdErr.Is(ErrInvalidArgument))
	require.True(t, thirdErr.Is(err))

	require.False(t, anotherErr.Is(ErrInvalidArgument))
	require.False(t, secondErr.Is(ErrStorageUnavailable))
}

func Test_ErrorString(t *testing.T) {
	err := New(ERR_INVALID_DATE, "invalid startDate format")
	assert.Equal(t, "INVALID_DATE (3): invalid startDate format", err.Error())

	wrapped := New(ERR_STORAGE_UNAVAILABLE, "count failed", errors.New("connection refused"))
	assert.Equal(t, "STORAGE_UNAVAILABLE (60): count failed -> connection refused", wrapped.Error())

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Equal(t, ERR_UNKNOWN, nilErr.Code())
}

func Test_InvalidCode(t *testing.T) {
	err := New(ERR(999), "something")
	assert.Equal(t, "invalid error code", err.Message())
}

func Test_StdlibInterop(t *testing.T) {
	t.Run("errors.Is through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", NewStorageUnavailableError("store down"))
		assert.True(t, errors.Is(err, ErrStorageUnavailable))
		assert.True(t, Is(err, ErrStorageUnavailable))
		assert.False(t, Is(err, ErrInvalidDate))
	})

	t.Run("context errors survive wrapping", func(t *testing.T) {
		err := NewStorageUnavailableError("count timed out", context.DeadlineExceeded)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.True(t, Is(err, ErrStorageUnavailable))
	})

	t.Run("As finds the outer error", func(t *testing.T) {
		var target *Error

		err := fmt.Errorf("outer: %w", NewInvalidSortOrderError("bad sort"))
		require.True(t, As(err, &target))
		assert.Equal(t, ERR_INVALID_SORT_ORDER, target.Code())
	})

	t.Run("CodeOf", func(t *testing.T) {
		assert.Equal(t, ERR_UNAUTHORIZED, CodeOf(NewUnauthorizedError("no token")))
		assert.Equal(t, ERR_UNKNOWN, CodeOf(errors.New("plain")))
		assert.Equal(t, ERR_UNKNOWN, CodeOf(nil))
	})
}

func Test_Join(t *testing.T) {
	assert.Nil(t, Join(nil, nil))

	err := Join(errors.New("a"), nil, errors.New("b"))
	require.Error(t, err)
	assert.Equal(t, "a, b", err.Error())
}
