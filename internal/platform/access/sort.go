package access

import (
	"fmt"
	"strings"
)

// SortField is one parsed _sort entry. A leading '-' in the query parameter
// means descending.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSort splits a comma-separated sort parameter into ordered fields.
// Empty entries are skipped.
func ParseSort(param string) []SortField {
	if param == "" {
		return nil
	}
	parts := strings.Split(param, ",")
	fields := make([]SortField, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f := SortField{Field: p}
		if strings.HasPrefix(p, "-") {
			f.Field = p[1:]
			f.Descending = true
		}
		if f.Field == "" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// BuildOrderClause renders an ORDER BY clause from parsed sort fields,
// keeping only fields present in the allowed column map. Unknown fields are
// ignored rather than rejected. Falls back to created_at DESC so result
// order is stable.
func BuildOrderClause(fields []SortField, allowed map[string]string) string {
	var clauses []string
	for _, f := range fields {
		col, ok := allowed[f.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", col, dir))
	}
	if len(clauses) == 0 {
		return "ORDER BY created_at DESC"
	}
	return "ORDER BY " + strings.Join(clauses, ", ")
}
