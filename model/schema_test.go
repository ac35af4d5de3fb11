package model

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/torm/logger"
	"github.com/hatlonely/torm/types"
)

// recordLogger 记录告警信息的测试日志器
type recordLogger struct {
	warns []string
}

func (l *recordLogger) Debug(msg string, args ...any) {}
func (l *recordLogger) Info(msg string, args ...any)  {}
func (l *recordLogger) Warn(msg string, args ...any) {
	l.warns = append(l.warns, msg)
}
func (l *recordLogger) Error(msg string, args ...any)                            {}
func (l *recordLogger) DebugContext(ctx context.Context, msg string, args ...any) {}
func (l *recordLogger) InfoContext(ctx context.Context, msg string, args ...any)  {}
func (l *recordLogger) WarnContext(ctx context.Context, msg string, args ...any)  {}
func (l *recordLogger) ErrorContext(ctx context.Context, msg string, args ...any) {}
func (l *recordLogger) With(args ...any) logger.Logger                            { return l }
func (l *recordLogger) WithGroup(name string) logger.Logger                       { return l }

func TestRegister(t *testing.T) {
	Convey("测试模型注册", t, func() {
		Convey("基础模型", func() {
			type User struct {
				ID       int64  `torm:"id,primary,auto"`
				Username string `torm:"username,required,size=50"`
				Age      int    `torm:"age,default=18"`
				Profile  string `torm:"profile,type=json"`
				internal string
			}

			table, err := Register(nil, &User{}, WithTable("users"))
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "users")
			So(table.Columns(), ShouldResemble, []string{"id", "username", "age", "profile"})
			So(table.PrimaryKey().Name, ShouldEqual, "id")
			So(table.AutoIncrement(), ShouldBeTrue)

			field, err := table.Field("username")
			So(err, ShouldBeNil)
			So(field.Required, ShouldBeTrue)
			So(field.Size, ShouldEqual, 50)

			field, err = table.Field("age")
			So(err, ShouldBeNil)
			So(field.Default, ShouldEqual, 18)

			field, err = table.Field("profile")
			So(err, ShouldBeNil)
			So(field.Type, ShouldEqual, types.FieldTypeJSON)

			_, err = table.Field("internal")
			So(errors.Is(err, ErrUnknownField), ShouldBeTrue)
		})

		Convey("未指定表名时使用模型名并输出告警", func() {
			type Guestbook struct {
				ID int64 `torm:"id,primary,auto"`
			}

			log := &recordLogger{}
			table, err := Register(nil, &Guestbook{}, WithLogger(log))
			So(err, ShouldBeNil)
			So(table.Name(), ShouldEqual, "guestbook")
			So(len(log.warns), ShouldEqual, 1)
		})

		Convey("自增主键命名不是 id 时输出告警", func() {
			type Counter struct {
				Seq int64 `torm:"seq,primary,auto"`
			}

			log := &recordLogger{}
			_, err := Register(nil, &Counter{}, WithTable("counter"), WithLogger(log))
			So(err, ShouldBeNil)
			So(len(log.warns), ShouldEqual, 1)
		})

		Convey("重复主键在第二个字段处失败", func() {
			type Broken struct {
				ID   int64  `torm:"id,primary"`
				Code string `torm:"code,primary"`
			}

			_, err := Register(nil, &Broken{}, WithTable("broken"))
			So(errors.Is(err, ErrDuplicatePrimaryKey), ShouldBeTrue)
		})

		Convey("缺少主键注册失败", func() {
			type NoPK struct {
				Name string `torm:"name"`
			}

			_, err := Register(nil, &NoPK{}, WithTable("no_pk"))
			So(errors.Is(err, ErrNoPrimaryKey), ShouldBeTrue)
		})

		Convey("无法映射的字段类型注册失败", func() {
			type BadField struct {
				ID int64     `torm:"id,primary"`
				Ch chan int  `torm:"ch"`
			}

			_, err := Register(nil, &BadField{}, WithTable("bad_field"))
			So(errors.Is(err, ErrInvalidFieldType), ShouldBeTrue)
		})

		Convey("非主键字段声明自增注册失败", func() {
			type BadAuto struct {
				ID  int64 `torm:"id,primary"`
				Seq int64 `torm:"seq,auto"`
			}

			_, err := Register(nil, &BadAuto{}, WithTable("bad_auto"))
			So(errors.Is(err, ErrInvalidFieldType), ShouldBeTrue)
		})

		Convey("未知的 tag 选项注册失败", func() {
			type BadTag struct {
				ID int64 `torm:"id,primary,bogus"`
			}

			_, err := Register(nil, &BadTag{}, WithTable("bad_tag"))
			So(errors.Is(err, ErrInvalidFieldType), ShouldBeTrue)
		})

		Convey("重复字段名注册失败", func() {
			type Dup struct {
				ID   int64  `torm:"id,primary"`
				Name string `torm:"name"`
				Nick string `torm:"name"`
			}

			_, err := Register(nil, &Dup{}, WithTable("dup"))
			So(errors.Is(err, ErrDuplicateFieldName), ShouldBeTrue)
		})

		Convey("重复注册同一模型返回冻结错误", func() {
			type Frozen struct {
				ID int64 `torm:"id,primary,auto"`
			}

			_, err := Register(nil, &Frozen{}, WithTable("frozen"))
			So(err, ShouldBeNil)

			_, err = Register(nil, &Frozen{}, WithTable("frozen"))
			So(errors.Is(err, ErrSchemaFrozen), ShouldBeTrue)

			table, ok := Lookup(&Frozen{})
			So(ok, ShouldBeTrue)
			So(table.Name(), ShouldEqual, "frozen")
		})

		Convey("非结构体注册失败", func() {
			_, err := Register(nil, "not a struct", WithTable("str"))
			So(errors.Is(err, ErrInvalidFieldType), ShouldBeTrue)
		})
	})
}

func TestRegisterIndexes(t *testing.T) {
	Convey("测试索引注册", t, func() {
		Convey("tag 声明的索引", func() {
			type Product struct {
				ID         int64   `torm:"id,primary,auto"`
				Name       string  `torm:"name,index"`
				CategoryID int64   `torm:"category_id,index=idx_category"`
				SKU        string  `torm:"sku,unique"`
				Price      float64 `torm:"price"`
			}

			table, err := Register(nil, &Product{}, WithTable("product"))
			So(err, ShouldBeNil)
			So(table.Meta().Indexes, ShouldResemble, []types.Index{
				{Name: "idx_name", Fields: []string{"name"}},
				{Name: "idx_category", Fields: []string{"category_id"}},
				{Name: "uk_sku", Fields: []string{"sku"}, Unique: true},
			})
		})

		Convey("同名索引合并为联合索引", func() {
			type Order struct {
				ID        int64  `torm:"id,primary,auto"`
				UserID    int64  `torm:"user_id,index=idx_user_date"`
				OrderDate string `torm:"order_date,index=idx_user_date"`
			}

			table, err := Register(nil, &Order{}, WithTable("order"))
			So(err, ShouldBeNil)
			So(table.Meta().Indexes, ShouldResemble, []types.Index{
				{Name: "idx_user_date", Fields: []string{"user_id", "order_date"}},
			})
		})

		Convey("选项声明的索引", func() {
			type Event struct {
				ID   int64  `torm:"id,primary,auto"`
				Kind string `torm:"kind"`
				Time string `torm:"time"`
			}

			table, err := Register(nil, &Event{}, WithTable("event"),
				WithIndexes(types.Index{Name: "idx_kind_time", Fields: []string{"kind", "time"}}))
			So(err, ShouldBeNil)
			So(table.Meta().Indexes, ShouldResemble, []types.Index{
				{Name: "idx_kind_time", Fields: []string{"kind", "time"}},
			})
		})

		Convey("索引引用未声明字段注册失败", func() {
			type BadIndex struct {
				ID int64 `torm:"id,primary,auto"`
			}

			_, err := Register(nil, &BadIndex{}, WithTable("bad_index"),
				WithIndexes(types.Index{Name: "idx_missing", Fields: []string{"missing"}}))
			So(errors.Is(err, ErrInvalidFieldType), ShouldBeTrue)
		})
	})
}

// 保留声明接口的测试模型
type taggedModel struct {
	ID   int64  `torm:"id,primary,auto"`
	Name string `torm:"name"`
}

func (taggedModel) TableName() string { return "tagged" }
func (taggedModel) Charset() string   { return "utf8mb4" }
func (taggedModel) Comment() string   { return "tagged model" }
func (taggedModel) Indexes() []types.Index {
	return []types.Index{{Name: "idx_name", Fields: []string{"name"}}}
}

func TestRegisterReserved(t *testing.T) {
	Convey("测试保留声明", t, func() {
		log := &recordLogger{}
		table, err := Register(nil, &taggedModel{}, WithLogger(log))
		So(err, ShouldBeNil)
		So(table.Name(), ShouldEqual, "tagged")
		So(table.Charset(), ShouldEqual, "utf8mb4")
		So(table.Comment(), ShouldEqual, "tagged model")
		So(table.Meta().Indexes, ShouldResemble, []types.Index{
			{Name: "idx_name", Fields: []string{"name"}},
		})
		// 表名来自保留声明，不输出告警
		So(len(log.warns), ShouldEqual, 0)
	})
}
