// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code inspection

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "scan_root_error",
			code:    errors.ErrScanRoot,
			message: "root is not readable",
			wantStr: "[SCAN_ROOT] root is not readable",
		},
		{
			name:    "invalid_input_error",
			code:    errors.ErrInvalidInput,
			message: "unknown kind",
			wantStr: "[INVALID_INPUT] unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps_and_unwraps", func(t *testing.T) {
		base := stderrors.New("permission denied")
		err := errors.Wrapf(base, errors.ErrDeleteFailed, "failed to delete %s", "/tmp/x/target")

		require.NotNil(t, err)
		assert.Equal(t, "[DELETE_FAILED] failed to delete /tmp/x/target: permission denied", err.Error())
		assert.True(t, stderrors.Is(err, base))
	})

	t.Run("nil_error_stays_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "nothing"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "nothing %d", 1))
	})
}

func TestCodeInspection(t *testing.T) {
	inner := errors.New(errors.ErrDirectoryRead, "cannot read").WithDetail("path", "/a")
	outer := fmt.Errorf("walking: %w", inner)

	assert.True(t, errors.IsErrorCode(outer, errors.ErrDirectoryRead))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrScanRoot))
	assert.Equal(t, errors.ErrDirectoryRead, errors.GetErrorCode(outer))
	assert.Equal(t, "/a", errors.GetErrorDetails(outer)["path"])

	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))

	// Is matches by code, not identity
	assert.True(t, stderrors.Is(outer, errors.New(errors.ErrDirectoryRead, "other message")))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, errors.IsFatal(errors.New(errors.ErrScanRoot, "gone")))
	assert.False(t, errors.IsFatal(errors.New(errors.ErrDeleteFailed, "busy")))
	assert.False(t, errors.IsFatal(errors.New(errors.ErrDirectoryRead, "denied")))
	assert.False(t, errors.IsFatal(nil))
}
