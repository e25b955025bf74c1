package validation

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Error carries one message per invalid request field. Handlers answer it with
// 400 Bad Request and the fields as details.
type Error struct {
	Fields map[string]string
}

// Error lists the fields in name order.
func (e *Error) Error() string {
	fields := lo.Keys(e.Fields)
	slices.Sort(fields)
	return strings.Join(lo.Map(fields, func(field string, _ int) string {
		return field + ": " + e.Fields[field]
	}), "; ")
}
