package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrLeagueMatchNotFound = errors.New("league match not found")
	ErrStandingNotFound    = errors.New("standing not found")

	// ErrDuplicateRow is returned when an insert hits a unique constraint,
	// typically a second generation racing the first one.
	ErrDuplicateRow     = errors.New("row already exists")
	ErrReferenceInvalid = errors.New("referenced row does not exist")
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func mapPQError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrDuplicateRow, pqErr.Constraint)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrReferenceInvalid, pqErr.Constraint)
		}
	}
	return err
}

// whereBuilder appends AND conditions with numbered placeholders.
type whereBuilder struct {
	sb   strings.Builder
	args []interface{}
}

func newWhereBuilder(base string, args ...interface{}) *whereBuilder {
	w := &whereBuilder{args: args}
	w.sb.WriteString(base)
	return w
}

func (w *whereBuilder) and(column string, value interface{}) {
	w.args = append(w.args, value)
	w.sb.WriteString(" AND ")
	w.sb.WriteString(column)
	w.sb.WriteString(" = $")
	w.sb.WriteString(strconv.Itoa(len(w.args)))
}

func (w *whereBuilder) raw(s string) {
	w.sb.WriteString(s)
}

func (w *whereBuilder) String() string {
	return w.sb.String()
}
