package query

import "fmt"

// LikeQuery 模糊匹配查询，Pattern 使用 SQL 的 % 和 _ 通配符
type LikeQuery struct {
	Field   string `json:"field"`
	Pattern string `json:"pattern"`
	Not     bool   `json:"not,omitempty"`
}

func (q *LikeQuery) Type() QueryType {
	return QueryTypeLike
}

func (q *LikeQuery) ToSQL() (string, []any, error) {
	if q.Not {
		return fmt.Sprintf("%s NOT LIKE ?", q.Field), []any{q.Pattern}, nil
	}
	return fmt.Sprintf("%s LIKE ?", q.Field), []any{q.Pattern}, nil
}
