package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hatlonely/torm/driver"
	"github.com/hatlonely/torm/query"
)

// SelectStmt 查询语句构建器，链式方法返回新的构建器状态，First/All 才触发 IO
type SelectStmt struct {
	table     *Table
	columns   []string
	distinct  bool
	where     query.Query
	orderBy   string
	orderDesc bool
	limit     int
	offset    int
	err       error
}

func newSelect(t *Table, columns []string) *SelectStmt {
	s := &SelectStmt{table: t, columns: columns, limit: -1, offset: -1}
	if len(columns) == 0 {
		s.columns = t.Columns()
	} else {
		s.err = t.checkColumns(columns)
	}
	return s
}

func (s *SelectStmt) Distinct() *SelectStmt {
	ns := *s
	ns.distinct = true
	return &ns
}

func (s *SelectStmt) Where(q query.Query) *SelectStmt {
	ns := *s
	ns.where = q
	return &ns
}

func (s *SelectStmt) OrderBy(column string, desc bool) *SelectStmt {
	ns := *s
	ns.orderBy = column
	ns.orderDesc = desc
	if _, err := s.table.Field(column); err != nil && ns.err == nil {
		ns.err = err
	}
	return &ns
}

func (s *SelectStmt) Limit(limit int) *SelectStmt {
	ns := *s
	ns.limit = limit
	return &ns
}

func (s *SelectStmt) Offset(offset int) *SelectStmt {
	ns := *s
	ns.offset = offset
	return &ns
}

// Build 渲染查询语句
func (s *SelectStmt) Build() (*driver.Statement, error) {
	if s.err != nil {
		return nil, s.err
	}

	var builder strings.Builder
	builder.WriteString("SELECT ")
	if s.distinct {
		builder.WriteString("DISTINCT ")
	}
	builder.WriteString(strings.Join(s.columns, ", "))
	builder.WriteString(" FROM ")
	builder.WriteString(s.table.Name())

	var args []any
	if s.where != nil {
		condition, whereArgs, err := s.where.ToSQL()
		if err != nil {
			return nil, err
		}
		builder.WriteString(" WHERE ")
		builder.WriteString(condition)
		args = append(args, whereArgs...)
	}

	if s.orderBy != "" {
		direction := "ASC"
		if s.orderDesc {
			direction = "DESC"
		}
		builder.WriteString(fmt.Sprintf(" ORDER BY %s %s", s.orderBy, direction))
	}
	if s.limit >= 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", s.limit))
	}
	if s.offset >= 0 {
		builder.WriteString(fmt.Sprintf(" OFFSET %d", s.offset))
	}

	return &driver.Statement{SQL: builder.String(), Args: args}, nil
}

// First 查询单条记录，无匹配时返回未填充的空记录而不是错误
func (s *SelectStmt) First(ctx context.Context) (*Record, error) {
	stmt, err := s.Limit(1).Build()
	if err != nil {
		return nil, err
	}

	row, err := s.table.db.FetchOne(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return loadRecord(s.table, row), nil
}

// FirstMap 查询单条记录并以 map 返回，无匹配时返回空 map
func (s *SelectStmt) FirstMap(ctx context.Context) (map[string]any, error) {
	stmt, err := s.Limit(1).Build()
	if err != nil {
		return nil, err
	}

	row, err := s.table.db.FetchOne(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return map[string]any{}, nil
	}

	return row, nil
}

// All 查询多条记录，无匹配时返回空的 FetchResult 而不是 nil
func (s *SelectStmt) All(ctx context.Context) (FetchResult, error) {
	stmt, err := s.Build()
	if err != nil {
		return nil, err
	}

	rows, err := s.table.db.FetchAll(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return loadRecords(s.table, rows), nil
}

// AllMaps 查询多条记录并以 map 切片返回，无匹配时返回空切片
func (s *SelectStmt) AllMaps(ctx context.Context) ([]map[string]any, error) {
	stmt, err := s.Build()
	if err != nil {
		return nil, err
	}

	rows, err := s.table.db.FetchAll(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}

	return rows, nil
}

// InsertStmt 插入语句构建器
type InsertStmt struct {
	table *Table
	rows  *Rows
	err   error
}

func newInsert(t *Table, rows *Rows, err error) *InsertStmt {
	return &InsertStmt{table: t, rows: rows, err: err}
}

func (s *InsertStmt) Build() (*driver.Statement, error) {
	if s.err != nil {
		return nil, s.err
	}
	return renderInsert("INSERT", s.table, s.rows)
}

// Do 执行插入，自增主键表返回生成的主键
func (s *InsertStmt) Do(ctx context.Context) (*driver.ExecResult, error) {
	stmt, err := s.Build()
	if err != nil {
		return nil, err
	}
	return executeWrite(ctx, s.table, stmt)
}

// ReplaceStmt 覆盖写入语句构建器，按主键冲突覆盖
type ReplaceStmt struct {
	table *Table
	rows  *Rows
	err   error
}

func newReplace(t *Table, rows *Rows, err error) *ReplaceStmt {
	return &ReplaceStmt{table: t, rows: rows, err: err}
}

func (s *ReplaceStmt) Build() (*driver.Statement, error) {
	if s.err != nil {
		return nil, s.err
	}
	return renderInsert("REPLACE", s.table, s.rows)
}

func (s *ReplaceStmt) Do(ctx context.Context) (*driver.ExecResult, error) {
	stmt, err := s.Build()
	if err != nil {
		return nil, err
	}
	return executeWrite(ctx, s.table, stmt)
}

// UpdateStmt 更新语句构建器
type UpdateStmt struct {
	table  *Table
	values map[string]any
	where  query.Query
	err    error
}

func newUpdate(t *Table, values map[string]any) *UpdateStmt {
	s := &UpdateStmt{table: t, values: values}
	if len(values) == 0 {
		s.err = errors.Wrap(ErrRowsMismatch, "no values to update")
		return s
	}
	for key := range values {
		if t.AutoIncrement() && key == t.pk.Name {
			s.err = errors.Wrapf(ErrImmutablePrimaryKey,
				"not allowed to update primary key `%s` of auto increment table", key)
			return s
		}
		if _, err := t.Field(key); err != nil {
			s.err = err
			return s
		}
	}
	return s
}

func (s *UpdateStmt) Where(q query.Query) *UpdateStmt {
	ns := *s
	ns.where = q
	return &ns
}

func (s *UpdateStmt) Build() (*driver.Statement, error) {
	if s.err != nil {
		return nil, s.err
	}

	// SET 子句按表声明顺序渲染
	var setParts []string
	var args []any
	for _, field := range s.table.meta.Fields {
		value, ok := s.values[field.Name]
		if !ok {
			continue
		}
		setParts = append(setParts, fmt.Sprintf("%s = ?", field.Name))
		args = append(args, value)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", s.table.Name(), strings.Join(setParts, ", "))
	if s.where != nil {
		condition, whereArgs, err := s.where.ToSQL()
		if err != nil {
			return nil, err
		}
		sql += " WHERE " + condition
		args = append(args, whereArgs...)
	}

	return &driver.Statement{SQL: sql, Args: args}, nil
}

func (s *UpdateStmt) Do(ctx context.Context) (*driver.ExecResult, error) {
	stmt, err := s.Build()
	if err != nil {
		return nil, err
	}
	result, err := s.table.db.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	result.LastID = 0
	return result, nil
}

// DeleteStmt 删除语句构建器
type DeleteStmt struct {
	table *Table
	where query.Query
}

func newDelete(t *Table) *DeleteStmt {
	return &DeleteStmt{table: t}
}

func (s *DeleteStmt) Where(q query.Query) *DeleteStmt {
	ns := *s
	ns.where = q
	return &ns
}

// WherePrimaryKey 按主键值过滤
func (s *DeleteStmt) WherePrimaryKey(value any) *DeleteStmt {
	return s.Where(&query.TermQuery{Field: s.table.pk.Name, Value: value})
}

func (s *DeleteStmt) Build() (*driver.Statement, error) {
	sql := fmt.Sprintf("DELETE FROM %s", s.table.Name())

	var args []any
	if s.where != nil {
		condition, whereArgs, err := s.where.ToSQL()
		if err != nil {
			return nil, err
		}
		sql += " WHERE " + condition
		args = whereArgs
	}

	return &driver.Statement{SQL: sql, Args: args}, nil
}

func (s *DeleteStmt) Do(ctx context.Context) (*driver.ExecResult, error) {
	stmt, err := s.Build()
	if err != nil {
		return nil, err
	}
	result, err := s.table.db.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	result.LastID = 0
	return result, nil
}

// renderInsert 渲染插入类语句，INSERT 和 REPLACE 共用
func renderInsert(verb string, t *Table, rows *Rows) (*driver.Statement, error) {
	if rows == nil || len(rows.Columns()) == 0 {
		return nil, errors.Wrap(ErrRowsMismatch, "no columns to insert")
	}
	if len(rows.Values()) == 0 {
		return nil, errors.Wrap(ErrRowsMismatch, "no rows to insert")
	}

	columns := rows.Columns()
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	placeholders := make([]string, 0, len(rows.Values()))
	var args []any
	for _, row := range rows.Values() {
		placeholders = append(placeholders, placeholder)
		args = append(args, row...)
	}

	sql := fmt.Sprintf("%s INTO %s (%s) VALUES %s",
		verb, t.Name(), strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	return &driver.Statement{SQL: sql, Args: args}, nil
}

// executeWrite 执行写语句，非自增主键表清零 LastID
func executeWrite(ctx context.Context, t *Table, stmt *driver.Statement) (*driver.ExecResult, error) {
	result, err := t.db.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if !t.AutoIncrement() {
		result.LastID = 0
	}
	return result, nil
}
