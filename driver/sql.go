package driver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/hatlonely/torm/types"
	"github.com/hatlonely/torm/validator"
)

type SQLOptions struct {
	Driver   string `cfg:"driver" def:"mysql" validate:"omitempty,oneof=mysql sqlite3"`
	DSN      string `cfg:"dsn"`
	Host     string `cfg:"host" def:"localhost"`
	Port     string `cfg:"port" def:"3306"`
	Database string `cfg:"database"`
	Username string `cfg:"username"`
	Password string `cfg:"password"`
	Charset  string `cfg:"charset" def:"utf8mb4"`
	MaxConns int    `cfg:"maxConns" def:"10" validate:"min=0"`
	MaxIdle  int    `cfg:"maxIdle" def:"5" validate:"min=0"`
}

type SQL struct {
	db     *sql.DB
	driver string
}

func NewSQLWithOptions(options *SQLOptions) (*SQL, error) {
	if options == nil {
		return nil, errors.New("options cannot be nil")
	}
	if err := validator.ValidateStruct(options); err != nil {
		return nil, errors.Wrap(err, "invalid sql options")
	}

	// 设置默认值
	if options.Driver == "" {
		options.Driver = "mysql"
	}
	if options.Host == "" {
		options.Host = "localhost"
	}
	if options.Port == "" {
		options.Port = "3306"
	}
	if options.Charset == "" {
		options.Charset = "utf8mb4"
	}
	if options.MaxConns == 0 {
		options.MaxConns = 10
	}
	if options.MaxIdle == 0 {
		options.MaxIdle = 5
	}

	dsn := options.DSN
	if dsn == "" {
		switch options.Driver {
		case "mysql":
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
				options.Username, options.Password, options.Host, options.Port, options.Database, options.Charset)
		case "sqlite3":
			dsn = options.Database
		default:
			return nil, errors.Errorf("unsupported driver: %s", options.Driver)
		}
	}

	db, err := sql.Open(options.Driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database failed")
	}

	db.SetMaxOpenConns(options.MaxConns)
	db.SetMaxIdleConns(options.MaxIdle)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping database failed")
	}

	return &SQL{db: db, driver: options.Driver}, nil
}

func (s *SQL) Execute(ctx context.Context, stmt *Statement) (*ExecResult, error) {
	result, err := s.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "execute failed: %s", stmt.SQL)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		affected = 0
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		lastID = 0
	}

	return &ExecResult{Affected: affected, LastID: lastID}, nil
}

func (s *SQL) FetchOne(ctx context.Context, stmt *Statement) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch failed: %s", stmt.SQL)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	return scanRow(rows)
}

func (s *SQL) FetchAll(ctx context.Context, stmt *Statement) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch failed: %s", stmt.SQL)
	}
	defer rows.Close()

	results := make([]map[string]any, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

func (s *SQL) CreateTable(ctx context.Context, meta *types.TableMeta, opts ...CreateOption) (*ExecResult, error) {
	options := &CreateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	createTableSQL := s.buildCreateTableSQL(meta, options)
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, errors.Wrapf(err, "create table %s failed", meta.Table)
	}

	for _, index := range meta.Indexes {
		indexSQL := s.buildCreateIndexSQL(meta.Table, index)
		if _, err := s.db.ExecContext(ctx, indexSQL); err != nil {
			// 索引已存在时忽略
			if !strings.Contains(err.Error(), "already exists") &&
				!strings.Contains(err.Error(), "already exist") &&
				!strings.Contains(err.Error(), "Duplicate key name") {
				return nil, errors.Wrapf(err, "create index %s failed", index.Name)
			}
		}
	}

	return &ExecResult{}, nil
}

func (s *SQL) DropTable(ctx context.Context, meta *types.TableMeta) (*ExecResult, error) {
	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", meta.Table)
	if _, err := s.db.ExecContext(ctx, dropSQL); err != nil {
		return nil, errors.Wrapf(err, "drop table %s failed", meta.Table)
	}
	return &ExecResult{}, nil
}

func (s *SQL) AlterTable(ctx context.Context, meta *types.TableMeta, alteration types.Alteration) (*ExecResult, error) {
	var alterSQL string
	switch alteration.Action {
	case types.AlterActionAddColumn:
		if alteration.Field == nil {
			return nil, errors.New("add column requires a field definition")
		}
		alterSQL = fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s",
			meta.Table, s.buildColumnDefinition(alteration.Field))
	case types.AlterActionDropColumn:
		if alteration.Column == "" {
			return nil, errors.New("drop column requires a column name")
		}
		alterSQL = fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", meta.Table, alteration.Column)
	case types.AlterActionModifyColumn:
		if alteration.Field == nil {
			return nil, errors.New("modify column requires a field definition")
		}
		if s.driver == "sqlite3" {
			return nil, errors.New("sqlite3 does not support modify column")
		}
		alterSQL = fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s",
			meta.Table, s.buildColumnDefinition(alteration.Field))
	default:
		return nil, errors.Errorf("unsupported alter action: %s", alteration.Action)
	}

	if _, err := s.db.ExecContext(ctx, alterSQL); err != nil {
		return nil, errors.Wrapf(err, "alter table %s failed", meta.Table)
	}
	return &ExecResult{}, nil
}

func (s *SQL) ShowTable(ctx context.Context, meta *types.TableMeta) (string, error) {
	switch s.driver {
	case "mysql":
		row, err := s.FetchOne(ctx, &Statement{SQL: fmt.Sprintf("SHOW CREATE TABLE %s", meta.Table)})
		if err != nil {
			return "", err
		}
		if row == nil {
			return "", errors.Errorf("table %s not found", meta.Table)
		}
		ddl, _ := row["Create Table"].(string)
		return ddl, nil
	case "sqlite3":
		row, err := s.FetchOne(ctx, &Statement{
			SQL:  "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?",
			Args: []any{meta.Table},
		})
		if err != nil {
			return "", err
		}
		if row == nil {
			return "", errors.Errorf("table %s not found", meta.Table)
		}
		switch v := row["sql"].(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
		return "", errors.Errorf("table %s not found", meta.Table)
	}
	return "", errors.Errorf("unsupported driver: %s", s.driver)
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// buildCreateTableSQL 构建创建表的 SQL 语句
func (s *SQL) buildCreateTableSQL(meta *types.TableMeta, options *CreateOptions) string {
	var columns []string
	inlinePK := false

	for _, field := range meta.Fields {
		// sqlite 的自增主键只能声明为 INTEGER PRIMARY KEY AUTOINCREMENT
		if s.driver == "sqlite3" && field.PrimaryKey && field.AutoIncrement {
			columns = append(columns, fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", field.Name))
			inlinePK = true
			continue
		}
		columns = append(columns, s.buildColumnDefinition(field))
	}

	if meta.PrimaryKey != "" && !inlinePK {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", meta.PrimaryKey))
	}

	create := "CREATE TABLE"
	if options.IfNotExists {
		create = "CREATE TABLE IF NOT EXISTS"
	}

	ddl := fmt.Sprintf("%s %s (\n  %s\n)", create, meta.Table, strings.Join(columns, ",\n  "))

	if s.driver == "mysql" {
		if meta.Charset != "" {
			ddl += fmt.Sprintf(" DEFAULT CHARSET=%s", meta.Charset)
		}
		if meta.Comment != "" {
			ddl += fmt.Sprintf(" COMMENT='%s'", strings.ReplaceAll(meta.Comment, "'", "''"))
		}
	}

	return ddl
}

// buildColumnDefinition 构建单个字段定义
func (s *SQL) buildColumnDefinition(field *types.Field) string {
	parts := []string{field.Name, s.mapFieldTypeToSQL(field.Type, field.Size)}

	if field.Required || field.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	if field.AutoIncrement && s.driver == "mysql" {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if field.Default != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", formatDefaultValue(field.Default)))
	}
	if field.Comment != "" && s.driver == "mysql" {
		parts = append(parts, fmt.Sprintf("COMMENT '%s'", strings.ReplaceAll(field.Comment, "'", "''")))
	}

	return strings.Join(parts, " ")
}

// mapFieldTypeToSQL 将字段类型映射为 SQL 类型
func (s *SQL) mapFieldTypeToSQL(fieldType types.FieldType, size int) string {
	switch fieldType {
	case types.FieldTypeString:
		if s.driver == "sqlite3" {
			return "TEXT"
		}
		if size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", size)
		}
		return "VARCHAR(255)"
	case types.FieldTypeInt:
		if s.driver == "sqlite3" {
			return "INTEGER"
		}
		return "INT"
	case types.FieldTypeBigInt:
		if s.driver == "sqlite3" {
			return "INTEGER"
		}
		return "BIGINT"
	case types.FieldTypeFloat:
		if s.driver == "sqlite3" {
			return "REAL"
		}
		return "DOUBLE"
	case types.FieldTypeBool:
		if s.driver == "sqlite3" {
			return "INTEGER"
		}
		return "BOOLEAN"
	case types.FieldTypeDate:
		if s.driver == "sqlite3" {
			return "TEXT"
		}
		return "DATETIME"
	case types.FieldTypeJSON:
		if s.driver == "mysql" {
			return "JSON"
		}
		return "TEXT"
	default:
		if s.driver == "sqlite3" {
			return "TEXT"
		}
		return "VARCHAR(255)"
	}
}

// formatDefaultValue 格式化默认值
func formatDefaultValue(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(v, "'", "''"))
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// buildCreateIndexSQL 构建创建索引的 SQL 语句
func (s *SQL) buildCreateIndexSQL(table string, index types.Index) string {
	indexType := "INDEX"
	if index.Unique {
		indexType = "UNIQUE INDEX"
	}

	// MySQL 的索引不支持 IF NOT EXISTS 语法
	if s.driver == "mysql" {
		return fmt.Sprintf("CREATE %s %s ON %s (%s)",
			indexType, index.Name, table, strings.Join(index.Fields, ", "))
	}

	return fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)",
		indexType, index.Name, table, strings.Join(index.Fields, ", "))
}

// scanRow 将当前行扫描为 map
func scanRow(rows *sql.Rows) (map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "read columns failed")
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, errors.Wrap(err, "scan row failed")
	}

	row := make(map[string]any)
	for i, col := range columns {
		row[col] = values[i]
	}

	return row, nil
}
