package camunda

import (
	"errors"
	"testing"

	apperrors "business-directory/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  apperrors.ErrorCode
		retryable bool
	}{
		{"unavailable", errors.New("rpc error: code = Unavailable desc = connection refused"), apperrors.ErrCodeExternalService, true},
		{"process missing", errors.New("rpc error: code = NotFound desc = no process found"), apperrors.ErrCodeExternalService, false},
		{"auth", errors.New("rpc error: code = Unauthenticated"), apperrors.ErrCodeAuthenticationFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdErr *apperrors.StandardError
			require.ErrorAs(t, mapZeebeError(tt.err, "create-instance:business-onboarding"), &stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			assert.Contains(t, stdErr.Details+stdErr.Message, "business-onboarding")
		})
	}
}
