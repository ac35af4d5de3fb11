package query

// RawQuery 原生 SQL 条件，SQL 中使用 ? 占位符
type RawQuery struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}

func (q *RawQuery) Type() QueryType {
	return QueryTypeRaw
}

func (q *RawQuery) ToSQL() (string, []any, error) {
	return q.SQL, q.Args, nil
}
