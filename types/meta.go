package types

// TableMeta 表结构元信息，注册完成后不再修改
type TableMeta struct {
	Table      string
	Fields     []*Field // 按声明顺序排列，决定语句的默认列顺序
	PrimaryKey string
	Indexes    []Index
	Charset    string
	Comment    string
}

// Columns 按声明顺序返回所有字段名
func (m *TableMeta) Columns() []string {
	columns := make([]string, 0, len(m.Fields))
	for _, field := range m.Fields {
		columns = append(columns, field.Name)
	}
	return columns
}

// Field 按名称查找字段，未找到返回 nil
func (m *TableMeta) Field(name string) *Field {
	for _, field := range m.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// PrimaryKeyField 返回主键字段，未设置返回 nil
func (m *TableMeta) PrimaryKeyField() *Field {
	return m.Field(m.PrimaryKey)
}

// AlterAction 表结构变更类型
type AlterAction string

const (
	AlterActionAddColumn    AlterAction = "add_column"
	AlterActionDropColumn   AlterAction = "drop_column"
	AlterActionModifyColumn AlterAction = "modify_column"
)

// Alteration 一次表结构变更
type Alteration struct {
	Action AlterAction
	Field  *Field // add_column、modify_column 时的字段定义
	Column string // drop_column 时的字段名
}
