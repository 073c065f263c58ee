package dal

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrQuerySyntax 查询条件用法错误，属程序 bug，不是用户输入问题
var ErrQuerySyntax = errors.New("SQL查询语法错误")

type filterOp uint8

const (
	opNone filterOp = iota
	opEq
	opLike
	opIn
	opBetween
	opNe
	opGt
	opGte
	opLte
	opIsNull
	opNotNull
	opDateEq
	opMonthEq
)

// Filter 单字段查询条件，由下面的构造函数产生
type Filter struct {
	op filterOp
	v  any
	v2 any
}

func Eq(v any) Filter           { return Filter{op: opEq, v: v} }
func Like(v any) Filter         { return Filter{op: opLike, v: v} }
func In(vals ...any) Filter     { return Filter{op: opIn, v: vals} }
func Between(lo, hi any) Filter { return Filter{op: opBetween, v: lo, v2: hi} }
func Ne(v any) Filter           { return Filter{op: opNe, v: v} }
func Gt(v any) Filter           { return Filter{op: opGt, v: v} }
func Gte(v any) Filter          { return Filter{op: opGte, v: v} }
func Lte(v any) Filter          { return Filter{op: opLte, v: v} }
func IsNull() Filter            { return Filter{op: opIsNull} }
func NotNull() Filter           { return Filter{op: opNotNull} }

// DateEq 按天匹配时间列，v 形如 "2026-01-31"
func DateEq(v any) Filter { return Filter{op: opDateEq, v: v} }

// MonthEq 按月匹配时间列，v 形如 "2026-01"
func MonthEq(v any) Filter { return Filter{op: opMonthEq, v: v} }

// empty 空值条件整体忽略（可选筛选，不是零命中）
func empty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}

// apply 把条件挂到查询上；空值直接跳过
func (f Filter) apply(q *gorm.DB, column, dialect string) (*gorm.DB, error) {
	switch f.op {
	case opEq:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(column+" = ?", f.v), nil
	case opLike:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(column+" LIKE ?", fmt.Sprintf("%%%v%%", f.v)), nil
	case opIn:
		vals, ok := f.v.([]any)
		if !ok || len(vals) == 0 {
			return q, nil
		}
		return q.Where(column+" IN ?", vals), nil
	case opBetween:
		if empty(f.v) || empty(f.v2) {
			return q, nil
		}
		return q.Where(column+" BETWEEN ? AND ?", f.v, f.v2), nil
	case opNe:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(column+" <> ?", f.v), nil
	case opGt:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(column+" > ?", f.v), nil
	case opGte:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(column+" >= ?", f.v), nil
	case opLte:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(column+" <= ?", f.v), nil
	case opIsNull:
		return q.Where(column + " IS NULL"), nil
	case opNotNull:
		return q.Where(column + " IS NOT NULL"), nil
	case opDateEq:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(dateExpr(dialect, column, false)+" = ?", f.v), nil
	case opMonthEq:
		if empty(f.v) {
			return q, nil
		}
		return q.Where(dateExpr(dialect, column, true)+" = ?", f.v), nil
	default:
		return nil, ErrQuerySyntax
	}
}

// dateExpr 时间列格式化表达式，按方言取函数
func dateExpr(dialect, column string, monthOnly bool) string {
	switch dialect {
	case "postgres":
		if monthOnly {
			return fmt.Sprintf("to_char(%s, 'YYYY-MM')", column)
		}
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
	case "sqlite":
		if monthOnly {
			return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
		}
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
	default: // mysql
		if monthOnly {
			return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", column)
		}
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", column)
	}
}
