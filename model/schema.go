package model

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hatlonely/torm/driver"
	"github.com/hatlonely/torm/logger"
	"github.com/hatlonely/torm/types"
)

// 模型结构体可以实现的保留声明接口，在字段扫描之前被提取
type tableNamer interface{ TableName() string }
type tableIndexer interface{ Indexes() []types.Index }
type tableCharsetter interface{ Charset() string }
type tableCommenter interface{ Comment() string }

// RegisterOptions 注册选项，显式选项优先于模型结构体上的保留声明
type RegisterOptions struct {
	Table   string
	Charset string
	Comment string
	Indexes []types.Index
	Logger  logger.Logger
}

type RegisterOption func(*RegisterOptions)

func WithTable(name string) RegisterOption {
	return func(options *RegisterOptions) {
		options.Table = name
	}
}

func WithCharset(charset string) RegisterOption {
	return func(options *RegisterOptions) {
		options.Charset = charset
	}
}

func WithComment(comment string) RegisterOption {
	return func(options *RegisterOptions) {
		options.Comment = comment
	}
}

func WithIndexes(indexes ...types.Index) RegisterOption {
	return func(options *RegisterOptions) {
		options.Indexes = append(options.Indexes, indexes...)
	}
}

func WithLogger(logger logger.Logger) RegisterOption {
	return func(options *RegisterOptions) {
		options.Logger = logger
	}
}

// Register 从模型结构体构建不可变的表结构并注册
// 支持的 tag 格式：
//   - `torm:"column_name,primary,auto,required,size=255,type=string,default=0,comment=xxx,index,unique"`
//   - `torm:"-"` 忽略字段
//
// 同一个模型类型只能注册一次，重复注册返回 ErrSchemaFrozen
func Register(db driver.Driver, v any, opts ...RegisterOption) (*Table, error) {
	options := &RegisterOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = logger.Default()
	}

	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrInvalidFieldType, "expected struct, got %T", v)
	}

	// 提取保留声明：表名、索引、字符集、注释
	tableName := options.Table
	if tableName == "" {
		if namer, ok := v.(tableNamer); ok {
			tableName = namer.TableName()
		}
	}
	if tableName == "" {
		tableName = strings.ToLower(rt.Name())
		options.Logger.Warn("did not give the table name, use the model name",
			"model", rt.Name(), "table", tableName)
	}

	charset := options.Charset
	if charset == "" {
		if charsetter, ok := v.(tableCharsetter); ok {
			charset = charsetter.Charset()
		}
	}
	comment := options.Comment
	if comment == "" {
		if commenter, ok := v.(tableCommenter); ok {
			comment = commenter.Comment()
		}
	}

	indexes := make([]types.Index, 0)
	if indexer, ok := v.(tableIndexer); ok {
		indexes = append(indexes, indexer.Indexes()...)
	}
	indexes = append(indexes, options.Indexes...)

	// 按声明顺序扫描字段
	var fields []*types.Field
	var pk *types.Field
	seen := map[string]bool{}
	indexMap := map[string]int{}
	for i := range indexes {
		indexMap[indexes[i].Name] = i
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("torm")
		if tag == "-" {
			continue
		}

		field, fieldIndexes, err := parseFieldTag(sf, tag)
		if err != nil {
			return nil, err
		}

		if seen[field.Name] {
			return nil, errors.Wrapf(ErrDuplicateFieldName, "duplicate field name `%s`", field.Name)
		}
		seen[field.Name] = true

		if field.AutoIncrement && !field.PrimaryKey {
			return nil, errors.Wrapf(ErrInvalidFieldType,
				"auto increment on non-primary field `%s`", field.Name)
		}

		if field.PrimaryKey {
			if pk != nil {
				return nil, errors.Wrapf(ErrDuplicatePrimaryKey,
					"duplicate primary key found for field `%s`", field.Name)
			}
			pk = field
			if field.AutoIncrement && field.Name != types.AIPK {
				options.Logger.Warn("the field name of auto increment primary key is suggested to use `id`",
					"field", field.Name)
			}
		}

		fields = append(fields, field)

		// 合并 tag 里声明的索引，同名索引按声明顺序追加字段
		for _, idx := range fieldIndexes {
			if pos, ok := indexMap[idx.Name]; ok {
				indexes[pos].Fields = append(indexes[pos].Fields, idx.Fields...)
			} else {
				indexMap[idx.Name] = len(indexes)
				indexes = append(indexes, idx)
			}
		}
	}

	if pk == nil {
		return nil, errors.Wrapf(ErrNoPrimaryKey, "primary key not found for table `%s`", tableName)
	}

	// 索引只允许引用已声明的字段
	for _, idx := range indexes {
		for _, name := range idx.Fields {
			if !seen[name] {
				return nil, errors.Wrapf(ErrInvalidFieldType,
					"index `%s` references unknown field `%s`", idx.Name, name)
			}
		}
	}

	meta := &types.TableMeta{
		Table:      tableName,
		Fields:     fields,
		PrimaryKey: pk.Name,
		Indexes:    indexes,
		Charset:    charset,
		Comment:    comment,
	}

	table := &Table{
		db:     db,
		meta:   meta,
		fields: make(map[string]*types.Field, len(fields)),
		pk:     pk,
	}
	for _, field := range fields {
		table.fields[field.Name] = field
	}

	registry.Lock()
	defer registry.Unlock()
	if _, ok := registry.tables[rt]; ok {
		return nil, errors.Wrapf(ErrSchemaFrozen, "model `%s` is already registered", rt.Name())
	}
	registry.tables[rt] = table

	return table, nil
}

// MustRegister 注册失败时 panic，用于定义期注册
func MustRegister(db driver.Driver, v any, opts ...RegisterOption) *Table {
	table, err := Register(db, v, opts...)
	if err != nil {
		panic(err)
	}
	return table
}

// parseFieldTag 解析字段的 torm tag
func parseFieldTag(sf reflect.StructField, tag string) (*types.Field, []types.Index, error) {
	field := &types.Field{
		Name: strings.ToLower(sf.Name),
	}

	fieldType, ok := inferFieldType(sf.Type)
	field.Type = fieldType

	var indexes []types.Index
	parts := strings.Split(tag, ",")

	// 第一部分是字段名（如果指定）
	if tag != "" && parts[0] != "" && !strings.Contains(parts[0], "=") {
		field.Name = parts[0]
		parts = parts[1:]
	}

	explicitType := false
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "=") {
			kv := strings.SplitN(part, "=", 2)
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])

			switch key {
			case "type":
				field.Type = types.FieldType(value)
				explicitType = true
			case "size":
				if size, err := strconv.Atoi(value); err == nil {
					field.Size = size
				}
			case "default":
				field.Default = parseDefaultValue(value, field.Type)
			case "comment":
				field.Comment = value
			case "index":
				indexes = append(indexes, types.Index{
					Name:   value,
					Fields: []string{field.Name},
				})
			case "unique":
				indexes = append(indexes, types.Index{
					Name:   value,
					Fields: []string{field.Name},
					Unique: true,
				})
			default:
				return nil, nil, errors.Wrapf(ErrInvalidFieldType,
					"unknown tag key `%s` on field `%s`", key, sf.Name)
			}
		} else {
			switch part {
			case "primary", "pk":
				field.PrimaryKey = true
			case "auto", "auto_increment":
				field.AutoIncrement = true
			case "required", "not_null":
				field.Required = true
			case "index":
				indexes = append(indexes, types.Index{
					Name:   fmt.Sprintf("idx_%s", field.Name),
					Fields: []string{field.Name},
				})
			case "unique":
				indexes = append(indexes, types.Index{
					Name:   fmt.Sprintf("uk_%s", field.Name),
					Fields: []string{field.Name},
					Unique: true,
				})
			default:
				return nil, nil, errors.Wrapf(ErrInvalidFieldType,
					"unknown tag option `%s` on field `%s`", part, sf.Name)
			}
		}
	}

	if !ok && !explicitType {
		return nil, nil, errors.Wrapf(ErrInvalidFieldType,
			"cannot map type %s of field `%s`", sf.Type, sf.Name)
	}

	return field, indexes, nil
}

// inferFieldType 从 Go 类型推断字段类型
func inferFieldType(t reflect.Type) (types.FieldType, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return types.FieldTypeString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return types.FieldTypeInt, true
	case reflect.Int64, reflect.Uint64:
		return types.FieldTypeBigInt, true
	case reflect.Float32, reflect.Float64:
		return types.FieldTypeFloat, true
	case reflect.Bool:
		return types.FieldTypeBool, true
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return "", false
	default:
		if t.String() == "time.Time" {
			return types.FieldTypeDate, true
		}
		// 其他复合类型默认为 JSON
		return types.FieldTypeJSON, true
	}
}

// parseDefaultValue 按字段类型解析默认值
func parseDefaultValue(value string, fieldType types.FieldType) any {
	switch fieldType {
	case types.FieldTypeString:
		if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
			return value[1 : len(value)-1]
		}
		return value
	case types.FieldTypeInt, types.FieldTypeBigInt:
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		return 0
	case types.FieldTypeFloat:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return 0.0
	case types.FieldTypeBool:
		return value == "true" || value == "1"
	default:
		return value
	}
}
