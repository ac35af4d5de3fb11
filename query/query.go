package query

// QueryType 查询类型
type QueryType string

const (
	QueryTypeBool  QueryType = "bool"
	QueryTypeTerm  QueryType = "term"
	QueryTypeRange QueryType = "range"
	QueryTypeIn    QueryType = "in"
	QueryTypeLike  QueryType = "like"
	QueryTypeNull  QueryType = "null"
	QueryTypeRaw   QueryType = "raw"
)

// Query 查询条件节点接口，ToSQL 生成 WHERE 子句片段和对应的参数
type Query interface {
	Type() QueryType
	ToSQL() (string, []any, error)
}
