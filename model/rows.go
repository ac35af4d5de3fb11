package model

import (
	"github.com/pkg/errors"
)

// Rows 插入类语句的规范化载荷：一份列清单加一个行值矩阵
// 值的顺序始终与列的顺序对齐
type Rows struct {
	columns []string
	values  [][]any
}

func (r *Rows) Columns() []string {
	return r.columns
}

func (r *Rows) Values() [][]any {
	return r.values
}

// NewRows 从单个 map 构建一行数据，列按表声明顺序排列
func NewRows(t *Table, row map[string]any) (*Rows, error) {
	columns, err := orderColumns(t, row)
	if err != nil {
		return nil, err
	}

	values := make([]any, 0, len(columns))
	for _, column := range columns {
		values = append(values, row[column])
	}

	return &Rows{columns: columns, values: [][]any{values}}, nil
}

// NewRowsFromMaps 从多个 map 构建多行数据
// 列清单由第一行的键决定，按表声明顺序排列；
// 后续行缺少的键取 nil，出现清单之外的键返回 ErrRowsMismatch
func NewRowsFromMaps(t *Table, rows []map[string]any) (*Rows, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrRowsMismatch, "no rows given")
	}

	columns, err := orderColumns(t, rows[0])
	if err != nil {
		return nil, err
	}
	columnSet := map[string]bool{}
	for _, column := range columns {
		columnSet[column] = true
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		for key := range row {
			if !columnSet[key] {
				return nil, errors.Wrapf(ErrRowsMismatch,
					"key `%s` is not in the column list decided by the first row", key)
			}
		}
		rowValues := make([]any, 0, len(columns))
		for _, column := range columns {
			rowValues = append(rowValues, row[column])
		}
		values = append(values, rowValues)
	}

	return &Rows{columns: columns, values: values}, nil
}

// NewRowsFromTuples 从位置元组构建多行数据，元组与显式列清单按位置对齐
func NewRowsFromTuples(columns []string, tuples [][]any) (*Rows, error) {
	if len(columns) == 0 {
		return nil, errors.Wrap(ErrRowsMismatch, "no columns given")
	}

	values := make([][]any, 0, len(tuples))
	for i, tuple := range tuples {
		if len(tuple) != len(columns) {
			return nil, errors.Wrapf(ErrRowsMismatch,
				"tuple %d has %d values, expect %d", i, len(tuple), len(columns))
		}
		values = append(values, tuple)
	}

	return &Rows{columns: columns, values: values}, nil
}

// orderColumns 将 map 的键按表声明顺序排列，未声明的键返回 ErrUnknownField
func orderColumns(t *Table, row map[string]any) ([]string, error) {
	for key := range row {
		if _, err := t.Field(key); err != nil {
			return nil, err
		}
	}

	columns := make([]string, 0, len(row))
	for _, field := range t.meta.Fields {
		if _, ok := row[field.Name]; ok {
			columns = append(columns, field.Name)
		}
	}

	return columns, nil
}
