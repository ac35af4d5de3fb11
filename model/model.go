package model

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrDuplicatePrimaryKey = errors.New("duplicate primary key")
	ErrNoPrimaryKey        = errors.New("no primary key")
	ErrInvalidFieldType    = errors.New("invalid field type")
	ErrDuplicateFieldName  = errors.New("duplicate field name")
	ErrSchemaFrozen        = errors.New("schema is frozen")
	ErrUnknownField        = errors.New("unknown field")
	ErrImmutablePrimaryKey = errors.New("auto increment primary key is immutable")
	ErrDecode              = errors.New("cannot decode result")
	ErrRemoveWithoutKey    = errors.New("remove record without primary key")
	ErrRowsMismatch        = errors.New("rows and columns mismatch")
)

// registry 按模型类型记录已注册的表，注册之后表结构即冻结
var registry = struct {
	sync.RWMutex
	tables map[reflect.Type]*Table
}{tables: map[reflect.Type]*Table{}}

// Lookup 查找模型类型对应的已注册表
func Lookup(v any) (*Table, bool) {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	registry.RLock()
	defer registry.RUnlock()
	table, ok := registry.tables[rt]
	return table, ok
}
