// Package docnum allocates year-scoped, human-readable document numbers such
// as SO-2025-000012.
package docnum

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Prefixes for generated document kinds. Purchase orders carry a
// client-supplied number and do not go through this generator.
const (
	PrefixSalesOrder = "SO"
	PrefixInvoice    = "INV"
)

const sequenceWidth = 6

// Querier is satisfied by pgx.Tx and *pgxpool.Pool.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Format renders a document number from its parts.
func Format(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, sequenceWidth, seq)
}

// ParseSequence extracts the trailing numeric suffix of a document number.
func ParseSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("docnum: malformed number %q", number)
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("docnum: malformed sequence in %q: %w", number, err)
	}
	return seq, nil
}

// Next allocates the next number for the given prefix and year. The caller
// must pass a transaction: the counter row is bumped in place, so the row
// lock taken by the upsert is what serialises concurrent allocations; two
// transactions can never read the same value. A waiter that loses the race
// under repeatable read gets a serialization failure, which the transaction
// runner retries.
func Next(ctx context.Context, q Querier, prefix string, year int) (string, error) {
	var last int
	err := q.QueryRow(ctx, `
		INSERT INTO document_sequences (prefix, year, last)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET last = document_sequences.last + 1
		RETURNING last`, prefix, year).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("docnum: bump %s sequence: %w", prefix, err)
	}
	return Format(prefix, year, last), nil
}

// Peek previews the number a subsequent allocation would produce. It takes no
// lock, so the preview is advisory only.
func Peek(ctx context.Context, q Querier, prefix string, year int) (string, error) {
	var last int
	err := q.QueryRow(ctx,
		"SELECT last FROM document_sequences WHERE prefix = $1 AND year = $2",
		prefix, year).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Format(prefix, year, 1), nil
		}
		return "", fmt.Errorf("docnum: read %s sequence: %w", prefix, err)
	}
	return Format(prefix, year, last+1), nil
}
