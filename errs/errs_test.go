package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		name string
		code Code
		want string
	}{
		{"success", CodeSuccess, "SUCCESS"},
		{"busy", CodeBusy, "EBUSY"},
		{"late write", CodeLateWrite, "ELATE_WRITE"},
		{"unknown", Code(999), "EUNKNOWN(999)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestStatusErrorIs(t *testing.T) {
	require := require.New(t)

	wrapped := New(CodeBadData, errors.New("bad tag"))
	require.True(errors.Is(wrapped, ErrBadData))
	require.False(errors.Is(wrapped, ErrBusy))
}

func TestCodeOf(t *testing.T) {
	require := require.New(t)

	require.Equal(CodeSuccess, CodeOf(nil))
	require.Equal(CodeOverflow, CodeOf(ErrOverflow))
	require.Equal(CodeBadData, CodeOf(New(CodeBadData, errors.New("x"))))
	require.Equal(CodeGeneral, CodeOf(errors.New("plain")))
}
