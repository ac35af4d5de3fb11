package query

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// InQuery 集合匹配查询
type InQuery struct {
	Field  string `json:"field"`
	Values []any  `json:"values"`
	Not    bool   `json:"not,omitempty"`
}

func (q *InQuery) Type() QueryType {
	return QueryTypeIn
}

func (q *InQuery) ToSQL() (string, []any, error) {
	if len(q.Values) == 0 {
		return "", nil, errors.Errorf("in query on field %s requires at least one value", q.Field)
	}

	placeholders := strings.Repeat("?, ", len(q.Values))
	placeholders = placeholders[:len(placeholders)-2]

	operator := "IN"
	if q.Not {
		operator = "NOT IN"
	}

	return fmt.Sprintf("%s %s (%s)", q.Field, operator, placeholders), q.Values, nil
}
