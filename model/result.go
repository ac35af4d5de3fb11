package model

import (
	"github.com/pkg/errors"
)

// FetchResult 多行查询解码出来的记录集合
type FetchResult []*Record

// Contains 按主键值判断记录是否在结果集内
func (r FetchResult) Contains(pk any) bool {
	for _, record := range r {
		if record.PrimaryKeyValue() == pk {
			return true
		}
	}
	return false
}

// Load 将驱动返回的原始结果解码为记录或 map
// 支持单行 map、多行 map 切片和 nil，其他形状返回 ErrDecode
//
// 空结果策略：
//   - 单行为空：useMap 时返回空 map，否则返回未填充的空记录
//   - 多行为空：useMap 时返回空切片，否则返回空的 FetchResult
func Load(t *Table, result any, useMap bool) (any, error) {
	switch res := result.(type) {
	case nil:
		if useMap {
			return map[string]any{}, nil
		}
		return t.NewRecord(), nil
	case map[string]any:
		if useMap {
			if len(res) == 0 {
				return map[string]any{}, nil
			}
			return res, nil
		}
		return loadRecord(t, res), nil
	case []map[string]any:
		if useMap {
			if len(res) == 0 {
				return []map[string]any{}, nil
			}
			return res, nil
		}
		return loadRecords(t, res), nil
	default:
		return nil, errors.Wrapf(ErrDecode, "unexpected result shape %T", result)
	}
}

// loadRecord 通过可信路径将单行解码为记录，行为空时返回未填充的空记录
func loadRecord(t *Table, row map[string]any) *Record {
	record := t.NewRecord()
	for key, value := range row {
		record.load(key, value)
	}
	return record
}

// loadRecords 将多行解码为 FetchResult，永远返回非 nil 的结果集
func loadRecords(t *Table, rows []map[string]any) FetchResult {
	result := make(FetchResult, 0, len(rows))
	for _, row := range rows {
		result = append(result, loadRecord(t, row))
	}
	return result
}
