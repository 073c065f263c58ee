package dal

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"go-user-center/internal/core/errs"
)

// Query 单次查询的声明式配置，随用随建，不要复用
type Query struct {
	Filters    map[string]Filter
	Scopes     []func(*gorm.DB) *gorm.DB // 额外自定义条件
	Joins      []string
	Preloads   []string
	Order      string // "desc"/"descending" 时按 OrderField 倒序，缺省正序
	OrderField string
	Base       *gorm.DB // 自定义起始查询，会跳过默认的 is_delete 过滤
}

var descWords = map[string]bool{"desc": true, "descending": true}

// Dal 泛型数据访问层，持有当前请求的事务句柄
type Dal[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Dal[T] { return &Dal[T]{db: db} }

// build 组装查询：默认基础查询剔除软删行，再挂 join/preload/条件/排序
func (d *Dal[T]) build(ctx context.Context, q Query) (*gorm.DB, error) {
	var model T
	tx := q.Base
	if tx == nil {
		tx = d.db.Model(&model).Where("is_delete = ?", 0)
	}
	tx = tx.WithContext(ctx)

	for _, j := range q.Joins {
		tx = tx.Joins(j)
	}
	for _, p := range q.Preloads {
		tx = tx.Preload(p)
	}
	for _, s := range q.Scopes {
		tx = s(tx)
	}

	dialect := d.db.Dialector.Name()
	// 字段排序保证生成的 SQL 稳定
	fields := make([]string, 0, len(q.Filters))
	for f := range q.Filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		var err error
		tx, err = q.Filters[f].apply(tx, f, dialect)
		if err != nil {
			return nil, err
		}
	}

	if q.OrderField != "" {
		if descWords[q.Order] {
			tx = tx.Order(q.OrderField + " DESC")
		} else {
			tx = tx.Order(q.OrderField)
		}
	} else if descWords[q.Order] {
		tx = tx.Order("id DESC")
	}
	return tx, nil
}

// FetchOne 取首条匹配；nullable=false 时查不到返回 404 业务错误
func (d *Dal[T]) FetchOne(ctx context.Context, id int64, q Query, nullable bool) (*T, error) {
	tx, err := d.build(ctx, q)
	if err != nil {
		return nil, err
	}
	if id != 0 {
		tx = tx.Where("id = ?", id)
	}
	var obj T
	if err := tx.Take(&obj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if nullable {
				return nil, nil
			}
			return nil, errs.NotFound("未找到此数据")
		}
		return nil, err
	}
	return &obj, nil
}

// FetchMany 分页查询；withCount 时 count 覆盖完整过滤集，与分页无关。
// pageSize 为 0 表示不分页。
func (d *Dal[T]) FetchMany(ctx context.Context, q Query, page, pageSize int, withCount bool) ([]T, int64, error) {
	tx, err := d.build(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if withCount {
		if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return nil, 0, err
		}
	}

	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var items []T
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CreateOne 插入并回填服务端生成字段（id、时间戳）
func (d *Dal[T]) CreateOne(ctx context.Context, obj *T) error {
	return d.db.WithContext(ctx).Create(obj).Error
}

// CreateMany 批量插入，不逐行回读
func (d *Dal[T]) CreateMany(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Create(&rows).Error
}

// UpdateOne 先取再改：patch 的每个键覆盖写入，查不到返回 404
func (d *Dal[T]) UpdateOne(ctx context.Context, id int64, patch map[string]any) (*T, error) {
	obj, err := d.FetchOne(ctx, id, Query{}, false)
	if err != nil {
		return nil, err
	}
	if err := d.db.WithContext(ctx).Model(obj).Updates(patch).Error; err != nil {
		return nil, err
	}
	return obj, nil
}

// DeleteMany 按 id 集合删除，软删/硬删都是单条批量语句
func (d *Dal[T]) DeleteMany(ctx context.Context, ids []int64, soft bool) error {
	if len(ids) == 0 {
		return nil
	}
	var model T
	tx := d.db.WithContext(ctx)
	if soft {
		now := time.Now()
		return tx.Model(&model).Where("id IN ?", ids).Updates(map[string]any{
			"is_delete":   1,
			"delete_time": now,
		}).Error
	}
	return tx.Where("id IN ?", ids).Delete(&model).Error
}

// Count 按条件计数
func (d *Dal[T]) Count(ctx context.Context, q Query) (int64, error) {
	tx, err := d.build(ctx, q)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
