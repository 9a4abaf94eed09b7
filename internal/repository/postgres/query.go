package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
)

// conditions accumulates positional WHERE clauses for lib/pq
type conditions struct {
	clauses []string
	args    []interface{}
}

func newConditions() *conditions {
	return &conditions{}
}

// add appends a clause whose single placeholder is written as ?
func (c *conditions) add(clause string, arg interface{}) *conditions {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.Replace(clause, "?", fmt.Sprintf("$%d", len(c.args)), 1))
	return c
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// paginate appends LIMIT/OFFSET for limited filters
func (c *conditions) paginate(filter types.BaseFilter) string {
	if filter == nil || filter.IsUnlimited() {
		return ""
	}
	c.args = append(c.args, filter.GetLimit())
	limit := len(c.args)
	c.args = append(c.args, filter.GetOffset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", limit, len(c.args))
}

// translateError maps driver errors to the error taxonomy
func translateError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(map[string]any{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Failed to query %s", entity).
		Mark(ierr.ErrDatabase)
}

// requireAffected fails with not found when an update matched no row
func requireAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return translateError(sql.ErrNoRows, entity, id)
	}
	return nil
}
