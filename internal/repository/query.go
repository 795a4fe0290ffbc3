package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

const dateLayout = "2006-01-02"

// where accumulates AND-ed conditions written with '?' bindvars.
// Slice arguments are expanded by sqlx.In when the query is built.
type where struct {
	clauses []string
	args    []interface{}
}

func (w *where) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// dateRange adds an inclusive calendar-date range on col.
func (w *where) dateRange(col string, from, to *time.Time) {
	if from != nil {
		w.add(col+"::date >= ?::date", from.Format(dateLayout))
	}
	if to != nil {
		w.add(col+"::date <= ?::date", to.Format(dateLayout))
	}
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// orderClause renders ORDER BY for a page, accepting only allow-listed columns.
func orderClause(p model.Page, allowed map[string]string) (string, error) {
	col, ok := allowed[p.OrderBy]
	if !ok {
		return "", appErrors.Validation("order_by", fmt.Sprintf("Invalid order column: %s", p.OrderBy))
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir), nil
}

// build expands slice args and rebinds to the driver's placeholder style.
func build(db *sqlx.DB, query string, args []interface{}) (string, []interface{}, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return db.Rebind(q), a, nil
}
