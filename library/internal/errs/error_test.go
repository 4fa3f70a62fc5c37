package errs

import (
	"go/format"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrBookNotFound, ErrNotFound},
		{ErrIssueNotFound, ErrNotFound},
		{ErrUserNotFound, ErrNotFound},
		{ErrNoCopies, ErrConflict},
		{ErrAlreadyIssued, ErrConflict},
		{ErrAlreadyReturned, ErrConflict},
		{ErrNotReturned, ErrConflict},
		{ErrNothingOwed, ErrConflict},
		{ErrPenaltyPaid, ErrConflict},
		{ErrEmailTaken, ErrConflict},
		{ErrNotOwner, ErrForbidden},
		{ErrCopies, ErrValidation},
		{ErrInvalidCredentials, ErrUnauthorized},
		{ErrInactiveAccount, ErrUnauthorized},
		{NewUpstreamError(UpstreamAuth, 0, nil), ErrUpstream},
	}
	for _, test := range tests {
		assert.ErrorIs(t, errors.Wrap(test.err, "wrapped"), test.kind, test.err.Error())
	}
}

func TestUpstreamError(t *testing.T) {
	rl := NewUpstreamError(UpstreamRateLimited, time.Minute, errors.New("429"))
	assert.True(t, rl.Retryable)
	assert.Equal(t, "upstream rate_limited: 429", rl.Error())

	auth := NewUpstreamError(UpstreamAuth, 0, nil)
	assert.False(t, auth.Retryable)
	assert.Equal(t, "upstream auth", auth.Error())

	var target *UpstreamError
	require.True(t, errors.As(errors.Wrap(rl, "summary"), &target))
	assert.Equal(t, time.Minute, target.RetryAfter)
}

func TestSourcesAreFormatted(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	for _, name := range files {
		src, err := os.ReadFile(name)
		require.NoError(t, err)
		formatted, err := format.Source(src)
		require.NoError(t, err)
		assert.Equal(t, string(formatted), string(src), name)
	}
}
