package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBoolQueryToSQL(t *testing.T) {
	Convey("测试 BoolQuery ToSQL 方法", t, func() {
		Convey("Must 条件用 AND 连接", func() {
			q := &BoolQuery{
				Must: []Query{
					&TermQuery{Field: "status", Value: "active"},
					&RangeQuery{Field: "age", Gte: 18},
				},
			}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "(status = ? AND age >= ?)")
			So(args, ShouldResemble, []any{"active", 18})
		})

		Convey("Should 条件用 OR 连接", func() {
			q := &BoolQuery{
				Should: []Query{
					&TermQuery{Field: "role", Value: "admin"},
					&TermQuery{Field: "role", Value: "owner"},
				},
			}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "(role = ? OR role = ?)")
			So(args, ShouldResemble, []any{"admin", "owner"})
		})

		Convey("MustNot 条件取反", func() {
			q := &BoolQuery{
				MustNot: []Query{
					&TermQuery{Field: "deleted", Value: true},
				},
			}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "(NOT (deleted = ?))")
			So(args, ShouldResemble, []any{true})
		})

		Convey("MinShouldMatch 使用条件计数", func() {
			min := 2
			q := &BoolQuery{
				Should: []Query{
					&TermQuery{Field: "a", Value: 1},
					&TermQuery{Field: "b", Value: 2},
					&TermQuery{Field: "c", Value: 3},
				},
				MinShouldMatch: &min,
			}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual,
				"(CASE WHEN (a = ?) THEN 1 ELSE 0 END + CASE WHEN (b = ?) THEN 1 ELSE 0 END + CASE WHEN (c = ?) THEN 1 ELSE 0 END) >= 2")
			So(args, ShouldResemble, []any{1, 2, 3})
		})

		Convey("组合条件", func() {
			q := &BoolQuery{
				Must: []Query{
					&TermQuery{Field: "status", Value: "active"},
				},
				MustNot: []Query{
					&NullQuery{Field: "email"},
				},
			}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "(status = ?) AND (NOT (email IS NULL))")
			So(args, ShouldResemble, []any{"active"})
		})

		Convey("空查询退化为恒真条件", func() {
			q := &BoolQuery{}
			sql, args, err := q.ToSQL()
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "1=1")
			So(args, ShouldBeNil)
		})

		Convey("子查询错误向上传播", func() {
			q := &BoolQuery{
				Must: []Query{
					&InQuery{Field: "id"},
				},
			}
			_, _, err := q.ToSQL()
			So(err, ShouldNotBeNil)
		})
	})
}
