package store

import (
	"fmt"
	"strings"

	"quillpress/internal/models"
)

// updateBuilder collects "col = $n" assignments for a partial UPDATE.
type updateBuilder struct {
	sets []string
	args []any
}

func (u *updateBuilder) add(col string, v any) {
	u.args = append(u.args, v)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", col, len(u.args)))
}

// setField adds col when f was present in the request. A null field writes
// SQL NULL.
func setField[T any](u *updateBuilder, col string, f models.Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		u.add(col, nil)
		return
	}
	u.add(col, f.Value)
}

// expr adds a raw assignment such as "published_at = COALESCE(published_at, NOW())".
func (u *updateBuilder) expr(assignment string) {
	u.sets = append(u.sets, assignment)
}

func (u *updateBuilder) empty() bool {
	return len(u.sets) == 0
}

// build returns the UPDATE statement for table keyed by id. updated_at is
// always refreshed, so the statement is valid even with no other column.
func (u *updateBuilder) build(table string, id any) (string, []any) {
	sets := append(append([]string(nil), u.sets...), "updated_at = NOW()")
	args := append(append([]any(nil), u.args...), id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	return q, args
}
