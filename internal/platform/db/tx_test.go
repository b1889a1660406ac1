package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestRetryableMatchesConcurrencyFailures(t *testing.T) {
	require.True(t, retryable(&pgconn.PgError{Code: "40001"}))
	require.True(t, retryable(&pgconn.PgError{Code: "40P01"}))
	require.True(t, retryable(fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40001"})))
}

func TestRetryableIgnoresOtherErrors(t *testing.T) {
	require.False(t, retryable(nil))
	require.False(t, retryable(errors.New("boom")))
	// A unique violation is a real conflict, not a transient race; retrying
	// would just fail again and mask the mapped error.
	require.False(t, retryable(&pgconn.PgError{Code: "23505"}))
	require.False(t, retryable(&pgconn.PgError{Code: "23503"}))
}
