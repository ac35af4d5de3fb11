package driver

import (
	"context"

	"github.com/hatlonely/torm/types"
)

// Statement 已渲染的 SQL 语句和对应参数
type Statement struct {
	SQL  string
	Args []any
}

// ExecResult 写语句的执行结果
type ExecResult struct {
	Affected int64
	LastID   int64 // 仅自增主键插入时有意义，其余场景为 0
}

// CreateOptions 建表选项
type CreateOptions struct {
	IfNotExists bool
}

type CreateOption func(*CreateOptions)

func WithIfNotExists() CreateOption {
	return func(options *CreateOptions) {
		options.IfNotExists = true
	}
}

// Driver 数据库驱动接口，所有方法都会阻塞等待 IO，通过 context 控制取消和超时
type Driver interface {
	// Execute 执行写语句
	Execute(ctx context.Context, stmt *Statement) (*ExecResult, error)

	// FetchOne 查询单行，无结果时返回 nil
	FetchOne(ctx context.Context, stmt *Statement) (map[string]any, error)

	// FetchAll 查询多行，无结果时返回空切片
	FetchAll(ctx context.Context, stmt *Statement) ([]map[string]any, error)

	// CreateTable 按表结构元信息建表并创建索引
	CreateTable(ctx context.Context, meta *types.TableMeta, opts ...CreateOption) (*ExecResult, error)

	// DropTable 删表
	DropTable(ctx context.Context, meta *types.TableMeta) (*ExecResult, error)

	// AlterTable 应用一次表结构变更
	AlterTable(ctx context.Context, meta *types.TableMeta, alteration types.Alteration) (*ExecResult, error)

	// ShowTable 返回当前表结构的 DDL 描述
	ShowTable(ctx context.Context, meta *types.TableMeta) (string, error)

	Close() error
}
