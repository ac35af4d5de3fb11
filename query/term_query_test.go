package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTermQueryType(t *testing.T) {
	Convey("测试 TermQuery Type 方法", t, func() {
		q := &TermQuery{Field: "status", Value: "active"}
		So(q.Type(), ShouldEqual, QueryTypeTerm)
	})
}

func TestTermQueryToSQL(t *testing.T) {
	Convey("测试 TermQuery ToSQL 方法", t, func() {
		Convey("字符串值", func() {
			q := &TermQuery{Field: "status", Value: "active"}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "status = ?")
			So(args, ShouldResemble, []any{"active"})
		})

		Convey("数字值", func() {
			q := &TermQuery{Field: "age", Value: 25}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "age = ?")
			So(args, ShouldResemble, []any{25})
		})

		Convey("nil 值", func() {
			q := &TermQuery{Field: "optional_field", Value: nil}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "optional_field = ?")
			So(args, ShouldResemble, []any{nil})
		})
	})
}
