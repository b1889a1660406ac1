package docnum

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value int
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int) = r.value
	return nil
}

type fakeQuerier struct {
	lastQuery string
	lastArgs  []any
	row       fakeRow
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.lastQuery = sql
	q.lastArgs = args
	return q.row
}

func TestFormat(t *testing.T) {
	require.Equal(t, "SO-2025-000012", Format(PrefixSalesOrder, 2025, 12))
	require.Equal(t, "INV-2025-000001", Format(PrefixInvoice, 2025, 1))
}

func TestParseSequence(t *testing.T) {
	seq, err := ParseSequence("SO-2025-000042")
	require.NoError(t, err)
	require.Equal(t, 42, seq)

	_, err = ParseSequence("garbage")
	require.Error(t, err)

	_, err = ParseSequence("SO-2025-")
	require.Error(t, err)
}

func TestNextBumpsCounterInPlace(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{value: 12}}
	number, err := Next(context.Background(), q, PrefixSalesOrder, 2025)
	require.NoError(t, err)
	require.Equal(t, "SO-2025-000012", number)
	require.Equal(t, []any{PrefixSalesOrder, 2025}, q.lastArgs)
	// The bump and the read must be one statement; a separate select-then-
	// update would reopen the race between concurrent allocations.
	require.Contains(t, q.lastQuery, "ON CONFLICT (prefix, year) DO UPDATE")
	require.Contains(t, q.lastQuery, "RETURNING last")
}

func TestNextSeedsFirstOfYear(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{value: 1}}
	number, err := Next(context.Background(), q, PrefixInvoice, 2025)
	require.NoError(t, err)
	require.Equal(t, "INV-2025-000001", number)
	require.Contains(t, q.lastQuery, "VALUES ($1, $2, 1)")
}

func TestPeekDoesNotLock(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{value: 3}}
	number, err := Peek(context.Background(), q, PrefixInvoice, 2025)
	require.NoError(t, err)
	require.Equal(t, "INV-2025-000004", number)
	require.True(t, strings.HasPrefix(strings.TrimSpace(q.lastQuery), "SELECT"))
	require.False(t, strings.Contains(q.lastQuery, "FOR UPDATE"))
}

func TestPeekDefaultsToOne(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	number, err := Peek(context.Background(), q, PrefixInvoice, 2025)
	require.NoError(t, err)
	require.Equal(t, "INV-2025-000001", number)
}
