package model

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/hatlonely/torm/driver"
)

// Record 绑定到一张表的一行数据，已声明但未赋值的字段读取为 nil
type Record struct {
	table  *Table
	values map[string]any
}

func (r *Record) Table() *Table {
	return r.table
}

func (r *Record) String() string {
	return fmt.Sprintf("<Record table '%s': %v>", r.table.Name(), r.values)
}

// Get 读取字段值，字段未声明时返回 ErrUnknownField
func (r *Record) Get(name string) (any, error) {
	if _, ok := r.table.fields[name]; !ok {
		return nil, errors.Wrapf(ErrUnknownField, "table `%s` has no field `%s`", r.table.Name(), name)
	}
	return r.values[name], nil
}

// Set 写入字段值
// 字段未声明时返回 ErrUnknownField；自增主键不允许通过公开路径写入
func (r *Record) Set(name string, value any) error {
	if r.table.AutoIncrement() && name == r.table.pk.Name {
		return errors.Wrapf(ErrImmutablePrimaryKey,
			"not allowed to modify primary key `%s` of auto increment table", name)
	}
	if _, ok := r.table.fields[name]; !ok {
		return errors.Wrapf(ErrUnknownField, "table `%s` has no field `%s`", r.table.Name(), name)
	}
	r.values[name] = value
	return nil
}

// load 加载器的可信写入路径，跳过字段与主键检查
func (r *Record) load(name string, value any) {
	r.values[name] = value
}

// Values 按声明顺序生成完整的取值快照
// 未赋值的字段取配置的默认值，最终仍为 nil 的字段不出现在快照里
func (r *Record) Values() map[string]any {
	values := map[string]any{}
	for _, field := range r.table.meta.Fields {
		v, ok := r.values[field.Name]
		if !ok || v == nil {
			v = field.DefaultValue()
		}
		if v != nil {
			values[field.Name] = v
		}
	}
	return values
}

// PrimaryKeyValue 返回当前主键值，未赋值时为 nil
func (r *Record) PrimaryKeyValue() any {
	return r.values[r.table.pk.Name]
}

// Save 以覆盖写入的方式保存整行快照，并回写生成的自增主键
func (r *Record) Save(ctx context.Context) (*driver.ExecResult, error) {
	result, err := r.table.Replace(r.Values()).Do(ctx)
	if err != nil {
		return nil, err
	}
	if r.table.AutoIncrement() && result.LastID > 0 {
		r.load(r.table.pk.Name, result.LastID)
	}
	return result, nil
}

// Remove 按当前主键值删除本行，主键未赋值时返回 ErrRemoveWithoutKey
func (r *Record) Remove(ctx context.Context) (*driver.ExecResult, error) {
	pk := r.PrimaryKeyValue()
	if pk == nil {
		return nil, errors.Wrapf(ErrRemoveWithoutKey,
			"primary key `%s` is not set", r.table.pk.Name)
	}
	return r.table.Delete().WherePrimaryKey(pk).Do(ctx)
}

// Scan 将记录扫描到带 torm tag 的结构体
func (r *Record) Scan(dest any) error {
	return mapToStruct(r.values, dest)
}

// RecordOf 从带 torm tag 的结构体构建记录
// 零值字段视为未赋值被跳过；非零的自增主键通过可信路径写入
func (t *Table) RecordOf(v any) (*Record, error) {
	data, err := structToMap(v)
	if err != nil {
		return nil, err
	}

	record := t.NewRecord()
	for _, field := range t.meta.Fields {
		value, ok := data[field.Name]
		if !ok {
			continue
		}
		if t.AutoIncrement() && field.Name == t.pk.Name {
			record.load(field.Name, value)
			continue
		}
		if err := record.Set(field.Name, value); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// structToMap 将带 torm tag 的结构体转换为 map，零值字段被跳过
func structToMap(v any) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errors.Errorf("expected struct, got nil")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Errorf("expected struct, got %T", v)
	}

	result := map[string]any{}
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("torm")
		if tag == "-" {
			continue
		}

		fieldName := columnName(sf, tag)
		if rv.Field(i).IsZero() {
			continue
		}
		result[fieldName] = rv.Field(i).Interface()
	}

	return result, nil
}

// mapToStruct 将 map 扫描到带 torm tag 的结构体
func mapToStruct(data map[string]any, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("dest must be a pointer to struct")
	}

	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("torm")
		if tag == "-" {
			continue
		}

		fieldName := columnName(sf, tag)
		value, exists := data[fieldName]
		if !exists || value == nil {
			continue
		}

		fieldValue := rv.Field(i)
		if !fieldValue.CanSet() {
			continue
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return errors.WithMessagef(err, "failed to set field %s", fieldName)
		}
	}

	return nil
}

// columnName 从 tag 或字段名解析列名
func columnName(sf reflect.StructField, tag string) string {
	if tag != "" {
		name := tag
		if idx := strings.Index(tag, ","); idx != -1 {
			name = tag[:idx]
		}
		if name != "" && !strings.Contains(name, "=") {
			return name
		}
	}
	return strings.ToLower(sf.Name)
}

// setFieldValue 设置结构体字段值，处理数据库返回类型和 Go 类型之间的常见转换
func setFieldValue(fieldValue reflect.Value, value any) error {
	valueType := reflect.TypeOf(value)
	fieldType := fieldValue.Type()

	// 数据库的 BOOLEAN 字段可能返回 int64
	if fieldType.Kind() == reflect.Bool {
		switch v := value.(type) {
		case int64:
			fieldValue.SetBool(v != 0)
			return nil
		case int:
			fieldValue.SetBool(v != 0)
			return nil
		case bool:
			fieldValue.SetBool(v)
			return nil
		}
	}

	// 文本列可能以 []byte 返回
	if fieldType.Kind() == reflect.String {
		if b, ok := value.([]byte); ok {
			fieldValue.SetString(string(b))
			return nil
		}
	}

	if valueType.AssignableTo(fieldType) {
		fieldValue.Set(reflect.ValueOf(value))
		return nil
	}

	if valueType.ConvertibleTo(fieldType) {
		fieldValue.Set(reflect.ValueOf(value).Convert(fieldType))
		return nil
	}

	return errors.Errorf("cannot convert %v to %v", valueType, fieldType)
}
