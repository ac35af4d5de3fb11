package model

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hatlonely/torm/driver"
	"github.com/hatlonely/torm/query"
	"github.com/hatlonely/torm/types"
)

// Table 不可变的表结构元信息，注册完成后只读，可被任意多个语句并发使用
type Table struct {
	db     driver.Driver
	meta   *types.TableMeta
	fields map[string]*types.Field
	pk     *types.Field
}

func (t *Table) Name() string {
	return t.meta.Table
}

func (t *Table) Charset() string {
	return t.meta.Charset
}

func (t *Table) Comment() string {
	return t.meta.Comment
}

func (t *Table) Meta() *types.TableMeta {
	return t.meta
}

// Fields 按声明顺序返回所有字段
func (t *Table) Fields() []*types.Field {
	fields := make([]*types.Field, len(t.meta.Fields))
	copy(fields, t.meta.Fields)
	return fields
}

// Columns 按声明顺序返回所有字段名
func (t *Table) Columns() []string {
	return t.meta.Columns()
}

// PrimaryKey 返回主键字段
func (t *Table) PrimaryKey() *types.Field {
	return t.pk
}

// AutoIncrement 主键是否自增
func (t *Table) AutoIncrement() bool {
	return t.pk.AutoIncrement
}

// Field 按名称查找字段
func (t *Table) Field(name string) (*types.Field, error) {
	field, ok := t.fields[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownField, "table `%s` has no field `%s`", t.meta.Table, name)
	}
	return field, nil
}

// Create 建表
func (t *Table) Create(ctx context.Context, opts ...driver.CreateOption) (*driver.ExecResult, error) {
	return t.db.CreateTable(ctx, t.meta, opts...)
}

// Drop 删表
func (t *Table) Drop(ctx context.Context) (*driver.ExecResult, error) {
	return t.db.DropTable(ctx, t.meta)
}

// Alter 应用一次表结构变更
func (t *Table) Alter(ctx context.Context, alteration types.Alteration) (*driver.ExecResult, error) {
	return t.db.AlterTable(ctx, t.meta, alteration)
}

// Show 返回当前表结构的 DDL 描述
func (t *Table) Show(ctx context.Context) (string, error) {
	return t.db.ShowTable(ctx, t.meta)
}

// NewRecord 创建绑定到本表的空记录
func (t *Table) NewRecord() *Record {
	return &Record{table: t, values: map[string]any{}}
}

// Select 构建查询语句，columns 为空时查询全部字段
func (t *Table) Select(columns ...string) *SelectStmt {
	return newSelect(t, columns)
}

// Get 按主键查询单条记录，无匹配时返回未填充的空记录
func (t *Table) Get(ctx context.Context, id any) (*Record, error) {
	return t.Select().Where(&query.TermQuery{Field: t.pk.Name, Value: id}).First(ctx)
}

// GetMany 按主键集合查询多条记录
func (t *Table) GetMany(ctx context.Context, ids []any, columns ...string) (FetchResult, error) {
	return t.Select(columns...).Where(&query.InQuery{Field: t.pk.Name, Values: ids}).All(ctx)
}

// Add 构建插入一条记录的语句
func (t *Table) Add(record *Record) *InsertStmt {
	rows, err := NewRows(t, record.Values())
	return newInsert(t, rows, err)
}

// AddMany 构建插入多条记录的语句
func (t *Table) AddMany(records ...*Record) *InsertStmt {
	maps := make([]map[string]any, 0, len(records))
	for _, record := range records {
		maps = append(maps, record.Values())
	}
	rows, err := NewRowsFromMaps(t, maps)
	return newInsert(t, rows, err)
}

// Insert 构建插入单条数据的语句
func (t *Table) Insert(data map[string]any) *InsertStmt {
	rows, err := NewRows(t, data)
	return newInsert(t, rows, err)
}

// InsertMany 构建插入多条数据的语句，列由第一行的键决定
func (t *Table) InsertMany(data []map[string]any) *InsertStmt {
	rows, err := NewRowsFromMaps(t, data)
	return newInsert(t, rows, err)
}

// InsertTuples 构建按位置元组插入的语句，columns 与元组按位置对齐
func (t *Table) InsertTuples(columns []string, tuples [][]any) *InsertStmt {
	rows, err := NewRowsFromTuples(columns, tuples)
	if err == nil {
		err = t.checkColumns(columns)
	}
	return newInsert(t, rows, err)
}

// Update 构建更新语句
func (t *Table) Update(values map[string]any) *UpdateStmt {
	return newUpdate(t, values)
}

// Delete 构建删除语句
func (t *Table) Delete() *DeleteStmt {
	return newDelete(t)
}

// Replace 构建按主键覆盖写入的语句
func (t *Table) Replace(values map[string]any) *ReplaceStmt {
	rows, err := NewRows(t, values)
	return newReplace(t, rows, err)
}

func (t *Table) checkColumns(columns []string) error {
	for _, column := range columns {
		if _, err := t.Field(column); err != nil {
			return err
		}
	}
	return nil
}
