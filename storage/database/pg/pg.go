// Package pgdb holds the Postgres repositories. Each repository owns its
// table's SQL and maps between row structs (db tags) and the core models.
package pgdb

import (
	"fmt"
	"strings"

	"github.com/kudzaic/educ8/core"
)

// orderBy renders an ORDER BY clause from the requested ordering, keeping
// only allowed column names. Unknown fields fall back to the default clause.
func orderBy(ordering []core.DBOrdering, allowed map[string]bool, def string) string {
	var parts []string
	for _, ord := range ordering {
		if !allowed[ord.Field] {
			continue
		}
		parts = append(parts, ord.String())
	}
	if len(parts) == 0 {
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// where joins conditions with AND, or returns an empty string.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// joinSets joins SET clauses for an UPDATE.
func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

// arg appends a positional argument and returns its placeholder.
func arg(args *[]interface{}, v interface{}) string {
	*args = append(*args, v)
	return fmt.Sprintf("$%d", len(*args))
}

// inArgs renders a placeholder list for an IN clause.
func inArgs(args *[]interface{}, vals []string) string {
	ph := make([]string, 0, len(vals))
	for _, v := range vals {
		ph = append(ph, arg(args, v))
	}
	return strings.Join(ph, ",")
}
