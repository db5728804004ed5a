package repository

import (
	"fmt"

	"engage-go/internal/model"

	"gorm.io/gorm"
)

// counterColumn 各类内容上的点赞缓存字段
type counterColumn struct {
	table  string
	column string
	// 仅允许在满足该条件的行上修改计数
	liveCond string
}

func counterFor(kind model.ContentKind) (counterColumn, error) {
	switch kind {
	case model.KindArticle:
		return counterColumn{table: "articles", column: "like_count", liveCond: "status <> 'deleted'"}, nil
	case model.KindReview:
		return counterColumn{table: "reviews", column: "like_count", liveCond: "status <> 'deleted'"}, nil
	case model.KindComment:
		return counterColumn{table: "comments", column: "likes_count", liveCond: "state = 'live'"}, nil
	}
	return counterColumn{}, fmt.Errorf("unknown content kind %q", kind)
}

// adjustCounter 原子增减计数，减法不会低于 0
func adjustCounter(db *gorm.DB, kind model.ContentKind, id int64, delta int64) error {
	cc, err := counterFor(kind)
	if err != nil {
		return err
	}
	q := db.Table(cc.table).Where("id = ?", id)
	if delta > 0 {
		q = q.Where(cc.liveCond)
	} else {
		q = q.Where(cc.column+" >= ?", -delta)
	}
	return q.UpdateColumn(cc.column, gorm.Expr(cc.column+" + ?", delta)).Error
}

// readCounter 读取当前缓存计数
func readCounter(db *gorm.DB, kind model.ContentKind, id int64) (int64, error) {
	cc, err := counterFor(kind)
	if err != nil {
		return 0, err
	}
	var counts []int64
	if err := db.Table(cc.table).Where("id = ?", id).Pluck(cc.column, &counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return counts[0], nil
}

// ContentRef 根内容的最小信息
type ContentRef struct {
	Kind   model.ContentKind
	ID     int64
	Title  string
	Status string
}

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// GetRoot 查询文章或测评（排除已删除）
func (r *ContentRepository) GetRoot(kind model.ContentKind, id int64) (*ContentRef, error) {
	ref := &ContentRef{Kind: kind, ID: id}
	switch kind {
	case model.KindArticle:
		var a model.Article
		if err := r.db.Where("id = ? AND status <> ?", id, model.ContentDeleted).First(&a).Error; err != nil {
			return nil, err
		}
		ref.Title, ref.Status = a.Title, a.Status
	case model.KindReview:
		var rv model.Review
		if err := r.db.Where("id = ? AND status <> ?", id, model.ContentDeleted).First(&rv).Error; err != nil {
			return nil, err
		}
		ref.Title, ref.Status = rv.Title, rv.Status
	default:
		return nil, fmt.Errorf("content kind %q is not a comment root", kind)
	}
	return ref, nil
}

// CreateArticle 创建文章
func (r *ContentRepository) CreateArticle(a *model.Article) error {
	return r.db.Create(a).Error
}

// CreateReview 创建测评
func (r *ContentRepository) CreateReview(rv *model.Review) error {
	return r.db.Create(rv).Error
}

// SoftDelete 标记根内容为已删除，同时清理其点赞流水并清零计数
func (r *ContentRepository) SoftDelete(kind model.ContentKind, id int64) (int64, error) {
	cc, err := counterFor(kind)
	if err != nil {
		return 0, err
	}
	if !kind.IsRoot() {
		return 0, fmt.Errorf("content kind %q is not a comment root", kind)
	}

	var purged int64
	err = r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Table(cc.table).Where("id = ? AND status <> ?", id, model.ContentDeleted).
			Updates(map[string]interface{}{"status": model.ContentDeleted, cc.column: 0})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		del := tx.Where("content_kind = ? AND content_id = ?", kind, id).Delete(&model.Like{})
		if del.Error != nil {
			return del.Error
		}
		purged = del.RowsAffected
		return nil
	})
	return purged, err
}

// TopArticles 按缓存计数取点赞最多的文章
func (r *ContentRepository) TopArticles(limit int) ([]model.Article, error) {
	var items []model.Article
	err := r.db.Where("status <> ?", model.ContentDeleted).
		Order("like_count DESC, id DESC").Limit(limit).Find(&items).Error
	return items, err
}

// TopReviews 按缓存计数取点赞最多的测评
func (r *ContentRepository) TopReviews(limit int) ([]model.Review, error) {
	var items []model.Review
	err := r.db.Where("status <> ?", model.ContentDeleted).
		Order("like_count DESC, id DESC").Limit(limit).Find(&items).Error
	return items, err
}
