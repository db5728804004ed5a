package repository

import (
	"fmt"
	"time"

	"engage-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult 一次点赞切换后的状态
type ToggleResult struct {
	Liked     bool
	LikeCount int64
	// Changed 为 false 表示并发插入撞上唯一索引，按已点赞处理
	Changed bool
}

// Liker 点赞人及时间
type Liker struct {
	LikeID    int64     `gorm:"column:like_id"`
	UserID    int64     `gorm:"column:user_id"`
	UserName  string    `gorm:"column:user_name"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// LikerCount 用户点赞总数
type LikerCount struct {
	UserID     int64  `gorm:"column:user_id"`
	UserName   string `gorm:"column:user_name"`
	LikesCount int64  `gorm:"column:likes_count"`
}

// CounterMismatch 缓存计数与流水计数不一致的内容
type CounterMismatch struct {
	ID          int64  `gorm:"column:id"`
	Label       string `gorm:"column:label"`
	StoredCount int64  `gorm:"column:stored_count"`
	LedgerCount int64  `gorm:"column:ledger_count"`
}

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle 在同一事务内切换点赞流水并同步调整缓存计数
func (r *LikeRepository) Toggle(userID int64, kind model.ContentKind, contentID int64) (*ToggleResult, error) {
	res := &ToggleResult{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		del := tx.Where("user_id = ? AND content_kind = ? AND content_id = ?", userID, kind, contentID).
			Delete(&model.Like{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected > 0 {
			res.Liked, res.Changed = false, true
			if err := adjustCounter(tx, kind, contentID, -1); err != nil {
				return err
			}
		} else {
			inserted, err := insertLike(tx, userID, kind, contentID)
			if err != nil {
				return err
			}
			res.Liked = true
			if inserted {
				res.Changed = true
				if err := adjustCounter(tx, kind, contentID, 1); err != nil {
					return err
				}
			}
		}

		count, err := readCounter(tx, kind, contentID)
		if err != nil {
			return err
		}
		res.LikeCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// insertLike 插入点赞流水，撞上唯一索引时不报错，返回 false
func insertLike(tx *gorm.DB, userID int64, kind model.ContentKind, contentID int64) (bool, error) {
	like := &model.Like{UserID: userID, ContentKind: kind, ContentID: contentID}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists 用户是否点赞过该内容
func (r *LikeRepository) Exists(userID int64, kind model.ContentKind, contentID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("user_id = ? AND content_kind = ? AND content_id = ?", userID, kind, contentID).
		Count(&count).Error
	return count > 0, err
}

// CountByContent 从流水统计内容的真实点赞数
func (r *LikeRepository) CountByContent(kind model.ContentKind, contentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("content_kind = ? AND content_id = ?", kind, contentID).
		Count(&count).Error
	return count, err
}

// CountByKind 按内容类型统计流水总数
func (r *LikeRepository) CountByKind(kind model.ContentKind) (int64, error) {
	var count int64
	err := r.db.Model(&model.Like{}).Where("content_kind = ?", kind).Count(&count).Error
	return count, err
}

// BatchCheckLiked 批量查询用户对一组内容的点赞状态
func (r *LikeRepository) BatchCheckLiked(userID int64, kind model.ContentKind, contentIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(contentIDs))
	if len(contentIDs) == 0 {
		return result, nil
	}

	var likedIDs []int64
	err := r.db.Model(&model.Like{}).
		Where("user_id = ? AND content_kind = ? AND content_id IN ?", userID, kind, contentIDs).
		Pluck("content_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}

	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}

// ListLikers 内容的全部点赞人，最近的在前
func (r *LikeRepository) ListLikers(kind model.ContentKind, contentID int64) ([]Liker, error) {
	var likers []Liker
	err := r.db.Table("likes").
		Select("likes.id AS like_id, likes.user_id, COALESCE(users.user_name, '') AS user_name, likes.created_at").
		Joins("LEFT JOIN users ON users.id = likes.user_id").
		Where("likes.content_kind = ? AND likes.content_id = ?", kind, contentID).
		Order("likes.created_at DESC, likes.id DESC").
		Scan(&likers).Error
	return likers, err
}

// TopLikers 点赞最多的用户
func (r *LikeRepository) TopLikers(limit int) ([]LikerCount, error) {
	var rows []LikerCount
	err := r.db.Table("likes").
		Select("likes.user_id, COALESCE(users.user_name, '') AS user_name, COUNT(likes.id) AS likes_count").
		Joins("LEFT JOIN users ON users.id = likes.user_id").
		Group("likes.user_id, users.user_name").
		Order("likes_count DESC, likes.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DeleteByUser 删除用户的全部点赞，并逐条回退对应内容的缓存计数
func (r *LikeRepository) DeleteByUser(userID int64) (int64, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var likes []model.Like
		if err := tx.Where("user_id = ?", userID).Find(&likes).Error; err != nil {
			return err
		}
		for _, l := range likes {
			if err := adjustCounter(tx, l.ContentKind, l.ContentID, -1); err != nil {
				return err
			}
		}
		del := tx.Where("user_id = ?", userID).Delete(&model.Like{})
		if del.Error != nil {
			return del.Error
		}
		removed = del.RowsAffected
		return nil
	})
	return removed, err
}

// ---- 对账 ----

// FindMismatches 找出缓存计数与流水计数不一致的内容；墓碑评论的期望值恒为 0
func (r *LikeRepository) FindMismatches(kind model.ContentKind) ([]CounterMismatch, error) {
	cc, err := counterFor(kind)
	if err != nil {
		return nil, err
	}

	ledger := "COUNT(l.id)"
	label := "t.title"
	if kind == model.KindComment {
		ledger = "CASE WHEN t.state = 'tombstoned' THEN 0 ELSE COUNT(l.id) END"
		label = "SUBSTR(t.content, 1, 50)"
	}
	stored := "t." + cc.column

	var rows []CounterMismatch
	err = r.db.Table(cc.table+" AS t").
		Select(fmt.Sprintf("t.id AS id, %s AS label, %s AS stored_count, %s AS ledger_count", label, stored, ledger)).
		Joins("LEFT JOIN likes l ON l.content_kind = ? AND l.content_id = t.id", kind).
		Group(groupColumns(kind, stored)).
		Having(fmt.Sprintf("%s <> %s", stored, ledger)).
		Order("t.id ASC").
		Scan(&rows).Error
	return rows, err
}

func groupColumns(kind model.ContentKind, stored string) string {
	if kind == model.KindComment {
		return "t.id, t.content, t.state, " + stored
	}
	return "t.id, t.title, " + stored
}

// SetCounter 用流水计数覆盖缓存计数
func (r *LikeRepository) SetCounter(kind model.ContentKind, contentID, value int64) error {
	cc, err := counterFor(kind)
	if err != nil {
		return err
	}
	return r.db.Table(cc.table).Where("id = ?", contentID).UpdateColumn(cc.column, value).Error
}

// orphanScope 指向不存在内容的流水
func orphanScope(db *gorm.DB, kind model.ContentKind) (*gorm.DB, error) {
	cc, err := counterFor(kind)
	if err != nil {
		return nil, err
	}
	return db.Where("content_kind = ?", kind).
		Where(fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s t WHERE t.id = likes.content_id)", cc.table)), nil
}

// staleScope 指向已删除内容（文章/测评 status=deleted，评论为墓碑）的流水
func staleScope(db *gorm.DB, kind model.ContentKind) (*gorm.DB, error) {
	switch kind {
	case model.KindArticle:
		return db.Where("content_kind = ? AND content_id IN (SELECT id FROM articles WHERE status = ?)", kind, model.ContentDeleted), nil
	case model.KindReview:
		return db.Where("content_kind = ? AND content_id IN (SELECT id FROM reviews WHERE status = ?)", kind, model.ContentDeleted), nil
	case model.KindComment:
		return db.Where("content_kind = ? AND content_id IN (SELECT id FROM comments WHERE state = ?)", kind, model.CommentTombstoned), nil
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}

// CountOrphaned 统计孤儿流水
func (r *LikeRepository) CountOrphaned(kind model.ContentKind) (int64, error) {
	q, err := orphanScope(r.db.Model(&model.Like{}), kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = q.Count(&count).Error
	return count, err
}

// CountStale 统计指向已删除内容的流水
func (r *LikeRepository) CountStale(kind model.ContentKind) (int64, error) {
	q, err := staleScope(r.db.Model(&model.Like{}), kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = q.Count(&count).Error
	return count, err
}

// DeleteOrphaned 删除孤儿流水
func (r *LikeRepository) DeleteOrphaned(kind model.ContentKind) (int64, error) {
	q, err := orphanScope(r.db, kind)
	if err != nil {
		return 0, err
	}
	result := q.Delete(&model.Like{})
	return result.RowsAffected, result.Error
}

// DeleteStale 删除指向已删除内容的流水
func (r *LikeRepository) DeleteStale(kind model.ContentKind) (int64, error) {
	q, err := staleScope(r.db, kind)
	if err != nil {
		return 0, err
	}
	result := q.Delete(&model.Like{})
	return result.RowsAffected, result.Error
}
