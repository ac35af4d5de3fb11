package model

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/torm/query"
)

func stmtTestTable() *Table {
	type stmtModel struct {
		ID     int64  `torm:"id,primary,auto"`
		Name   string `torm:"name"`
		Age    int    `torm:"age"`
		Status string `torm:"status"`
	}

	if table, ok := Lookup(&stmtModel{}); ok {
		return table
	}
	return MustRegister(nil, &stmtModel{}, WithTable("member"))
}

func TestSelectStmtBuild(t *testing.T) {
	Convey("测试 Select 语句构建", t, func() {
		table := stmtTestTable()

		Convey("默认查询全部字段", func() {
			stmt, err := table.Select().Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "SELECT id, name, age, status FROM member")
			So(stmt.Args, ShouldBeNil)
		})

		Convey("指定字段和条件", func() {
			stmt, err := table.Select("name", "age").
				Where(&query.TermQuery{Field: "status", Value: "active"}).
				Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "SELECT name, age FROM member WHERE status = ?")
			So(stmt.Args, ShouldResemble, []any{"active"})
		})

		Convey("DISTINCT、排序和分页", func() {
			stmt, err := table.Select("name").
				Distinct().
				OrderBy("age", true).
				Limit(10).
				Offset(20).
				Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "SELECT DISTINCT name FROM member ORDER BY age DESC LIMIT 10 OFFSET 20")
		})

		Convey("链式调用不影响原构建器", func() {
			base := table.Select("name")
			_ = base.Where(&query.TermQuery{Field: "age", Value: 1})

			stmt, err := base.Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "SELECT name FROM member")
		})

		Convey("未声明的字段构建失败", func() {
			_, err := table.Select("missing").Build()
			So(errors.Is(err, ErrUnknownField), ShouldBeTrue)

			_, err = table.Select().OrderBy("missing", false).Build()
			So(errors.Is(err, ErrUnknownField), ShouldBeTrue)
		})

		Convey("条件渲染错误向上传播", func() {
			_, err := table.Select().Where(&query.InQuery{Field: "id"}).Build()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestInsertStmtBuild(t *testing.T) {
	Convey("测试 Insert 语句构建", t, func() {
		table := stmtTestTable()

		Convey("单行插入", func() {
			stmt, err := table.Insert(map[string]any{"name": "Alice", "age": 30}).Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "INSERT INTO member (name, age) VALUES (?, ?)")
			So(stmt.Args, ShouldResemble, []any{"Alice", 30})
		})

		Convey("多行插入", func() {
			stmt, err := table.InsertMany([]map[string]any{
				{"name": "Alice"},
				{"name": "Bob"},
			}).Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "INSERT INTO member (name) VALUES (?), (?)")
			So(stmt.Args, ShouldResemble, []any{"Alice", "Bob"})
		})

		Convey("位置元组插入", func() {
			stmt, err := table.InsertTuples([]string{"name", "age"}, [][]any{
				{"Bob", 20},
				{"Herb", 40},
			}).Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "INSERT INTO member (name, age) VALUES (?, ?), (?, ?)")
			So(stmt.Args, ShouldResemble, []any{"Bob", 20, "Herb", 40})
		})

		Convey("位置元组引用未声明字段构建失败", func() {
			_, err := table.InsertTuples([]string{"name", "missing"}, [][]any{
				{"Bob", 1},
			}).Build()
			So(errors.Is(err, ErrUnknownField), ShouldBeTrue)
		})

		Convey("未声明的键构建失败", func() {
			_, err := table.Insert(map[string]any{"missing": 1}).Build()
			So(errors.Is(err, ErrUnknownField), ShouldBeTrue)
		})
	})
}

func TestUpdateStmtBuild(t *testing.T) {
	Convey("测试 Update 语句构建", t, func() {
		table := stmtTestTable()

		Convey("SET 子句按声明顺序渲染", func() {
			stmt, err := table.Update(map[string]any{"status": "inactive", "age": 31}).
				Where(&query.TermQuery{Field: "id", Value: 1}).
				Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "UPDATE member SET age = ?, status = ? WHERE id = ?")
			So(stmt.Args, ShouldResemble, []any{31, "inactive", 1})
		})

		Convey("更新自增主键构建失败", func() {
			_, err := table.Update(map[string]any{"id": 2}).Build()
			So(errors.Is(err, ErrImmutablePrimaryKey), ShouldBeTrue)
		})

		Convey("未声明的键构建失败", func() {
			_, err := table.Update(map[string]any{"missing": 1}).Build()
			So(errors.Is(err, ErrUnknownField), ShouldBeTrue)
		})

		Convey("空更新构建失败", func() {
			_, err := table.Update(map[string]any{}).Build()
			So(errors.Is(err, ErrRowsMismatch), ShouldBeTrue)
		})
	})
}

func TestDeleteStmtBuild(t *testing.T) {
	Convey("测试 Delete 语句构建", t, func() {
		table := stmtTestTable()

		Convey("全表删除", func() {
			stmt, err := table.Delete().Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "DELETE FROM member")
		})

		Convey("按主键删除", func() {
			stmt, err := table.Delete().WherePrimaryKey(7).Build()
			So(err, ShouldBeNil)
			So(stmt.SQL, ShouldEqual, "DELETE FROM member WHERE id = ?")
			So(stmt.Args, ShouldResemble, []any{7})
		})
	})
}

func TestReplaceStmtBuild(t *testing.T) {
	Convey("测试 Replace 语句构建", t, func() {
		table := stmtTestTable()

		stmt, err := table.Replace(map[string]any{"name": "Alice", "status": "active"}).Build()
		So(err, ShouldBeNil)
		So(stmt.SQL, ShouldEqual, "REPLACE INTO member (name, status) VALUES (?, ?)")
		So(stmt.Args, ShouldResemble, []any{"Alice", "active"})
	})
}
