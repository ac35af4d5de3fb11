package query

import (
	"fmt"
	"strings"
)

// BoolQuery 布尔组合查询
type BoolQuery struct {
	Must           []Query `json:"must,omitempty"`
	Should         []Query `json:"should,omitempty"`
	MustNot        []Query `json:"must_not,omitempty"`
	MinShouldMatch *int    `json:"minimum_should_match,omitempty"`
}

func (q *BoolQuery) Type() QueryType {
	return QueryTypeBool
}

func (q *BoolQuery) ToSQL() (string, []any, error) {
	var conditions []string
	var args []any

	if len(q.Must) > 0 {
		mustConditions := make([]string, 0, len(q.Must))
		for _, query := range q.Must {
			sql, queryArgs, err := query.ToSQL()
			if err != nil {
				return "", nil, err
			}
			mustConditions = append(mustConditions, sql)
			args = append(args, queryArgs...)
		}
		conditions = append(conditions, "("+strings.Join(mustConditions, " AND ")+")")
	}

	if len(q.Should) > 0 {
		shouldConditions := make([]string, 0, len(q.Should))
		for _, query := range q.Should {
			sql, queryArgs, err := query.ToSQL()
			if err != nil {
				return "", nil, err
			}
			shouldConditions = append(shouldConditions, sql)
			args = append(args, queryArgs...)
		}

		// 设置了 MinShouldMatch 且不为 1 时，使用条件计数方案
		if q.MinShouldMatch != nil && *q.MinShouldMatch != 1 {
			caseConditions := make([]string, len(shouldConditions))
			for i, condition := range shouldConditions {
				caseConditions[i] = fmt.Sprintf("CASE WHEN (%s) THEN 1 ELSE 0 END", condition)
			}
			conditions = append(conditions, fmt.Sprintf("(%s) >= %d",
				strings.Join(caseConditions, " + "), *q.MinShouldMatch))
		} else {
			conditions = append(conditions, "("+strings.Join(shouldConditions, " OR ")+")")
		}
	}

	if len(q.MustNot) > 0 {
		mustNotConditions := make([]string, 0, len(q.MustNot))
		for _, query := range q.MustNot {
			sql, queryArgs, err := query.ToSQL()
			if err != nil {
				return "", nil, err
			}
			mustNotConditions = append(mustNotConditions, "NOT ("+sql+")")
			args = append(args, queryArgs...)
		}
		conditions = append(conditions, "("+strings.Join(mustNotConditions, " AND ")+")")
	}

	if len(conditions) == 0 {
		return "1=1", nil, nil
	}

	return strings.Join(conditions, " AND "), args, nil
}
