package query

import (
	"fmt"
	"strings"
)

// RangeQuery 范围查询
type RangeQuery struct {
	Field string `json:"field"`
	Gt    any    `json:"gt,omitempty"`
	Gte   any    `json:"gte,omitempty"`
	Lt    any    `json:"lt,omitempty"`
	Lte   any    `json:"lte,omitempty"`
}

func (q *RangeQuery) Type() QueryType {
	return QueryTypeRange
}

func (q *RangeQuery) ToSQL() (string, []any, error) {
	var conditions []string
	var args []any

	if q.Gt != nil {
		conditions = append(conditions, fmt.Sprintf("%s > ?", q.Field))
		args = append(args, q.Gt)
	}
	if q.Gte != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= ?", q.Field))
		args = append(args, q.Gte)
	}
	if q.Lt != nil {
		conditions = append(conditions, fmt.Sprintf("%s < ?", q.Field))
		args = append(args, q.Lt)
	}
	if q.Lte != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= ?", q.Field))
		args = append(args, q.Lte)
	}

	if len(conditions) == 0 {
		return "1=1", nil, nil
	}

	return strings.Join(conditions, " AND "), args, nil
}
