package types

// AIPK 自增主键的约定字段名
const AIPK = "id"

// FieldType 字段类型
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeInt    FieldType = "int"
	FieldTypeBigInt FieldType = "bigint"
	FieldTypeFloat  FieldType = "float"
	FieldTypeBool   FieldType = "bool"
	FieldTypeDate   FieldType = "date"
	FieldTypeJSON   FieldType = "json"
)

// Field 字段定义，附加到 TableMeta 之后不再修改
type Field struct {
	Name          string
	Type          FieldType
	Size          int // 字段长度，如 VARCHAR(255)
	PrimaryKey    bool
	AutoIncrement bool // 仅对主键字段有效
	Required      bool
	Default       any
	DefaultFunc   func() any
	Comment       string
}

// DefaultValue 返回字段的默认值，DefaultFunc 优先于 Default，都未配置时返回 nil
func (f *Field) DefaultValue() any {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return f.Default
}

// Index 索引定义
type Index struct {
	Name   string
	Fields []string
	Unique bool
}
