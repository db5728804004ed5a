package repository

import (
	"engage-go/internal/model"

	"gorm.io/gorm"
)

// CommentWithLikes 评论及其从点赞流水实时统计出的点赞数
type CommentWithLikes struct {
	model.Comment
	LiveLikes int64 `gorm:"column:live_likes"`
}

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// HasReplies 是否存在以该评论为父评论的回复
func (r *CommentRepository) HasReplies(commentID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("parent_id = ?", commentID).Limit(1).Count(&count).Error
	return count > 0, err
}

// HardDelete 物理删除评论及其点赞流水，返回删除的点赞数
func (r *CommentRepository) HardDelete(commentID int64) (int64, error) {
	var purged int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		del := tx.Where("content_kind = ? AND content_id = ?", model.KindComment, commentID).Delete(&model.Like{})
		if del.Error != nil {
			return del.Error
		}
		purged = del.RowsAffected

		result := tx.Delete(&model.Comment{}, commentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return purged, err
}

// Tombstone 软删除：保留行，替换内容，清空点赞流水并归零计数
func (r *CommentRepository) Tombstone(commentID int64, placeholder string) (int64, error) {
	var purged int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		del := tx.Where("content_kind = ? AND content_id = ?", model.KindComment, commentID).Delete(&model.Like{})
		if del.Error != nil {
			return del.Error
		}
		purged = del.RowsAffected

		result := tx.Model(&model.Comment{}).Where("id = ?", commentID).Updates(map[string]interface{}{
			"state":       model.CommentTombstoned,
			"content":     placeholder,
			"likes_count": 0,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return purged, err
}

// CountByRoot 统计根内容下全部评论（主评论与回复、含墓碑）
func (r *CommentRepository) CountByRoot(kind model.ContentKind, rootID int64) (int64, error) {
	var total int64
	err := r.db.Model(&model.Comment{}).
		Where("root_kind = ? AND root_id = ?", kind, rootID).
		Count(&total).Error
	return total, err
}

// ListPageWithLiveLikes 扁平分页查询评论，点赞数从流水实时联表统计
func (r *CommentRepository) ListPageWithLiveLikes(kind model.ContentKind, rootID int64, sort model.FeedSort, skip, limit int) ([]CommentWithLikes, error) {
	order := "comments.created_at DESC, comments.id DESC"
	if sort == model.SortLikes {
		order = "live_likes DESC, comments.created_at DESC, comments.id DESC"
	}

	var rows []CommentWithLikes
	err := r.db.Model(&model.Comment{}).
		Select("comments.*, COUNT(likes.id) AS live_likes").
		Joins("LEFT JOIN likes ON likes.content_kind = ? AND likes.content_id = comments.id", model.KindComment).
		Where("comments.root_kind = ? AND comments.root_id = ?", kind, rootID).
		Group("comments.id").
		Order(order).
		Offset(skip).Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListTombstonesWithReplies 查询根内容下仍有回复的墓碑，排除已在当前页中的评论
func (r *CommentRepository) ListTombstonesWithReplies(kind model.ContentKind, rootID int64, excludeIDs []int64) ([]model.Comment, error) {
	q := r.db.Model(&model.Comment{}).
		Where("root_kind = ? AND root_id = ? AND state = ?", kind, rootID, model.CommentTombstoned).
		Where("EXISTS (SELECT 1 FROM comments AS replies WHERE replies.parent_id = comments.id)")
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var comments []model.Comment
	err := q.Order("created_at DESC, id DESC").Find(&comments).Error
	return comments, err
}

// ListByAuthor 查询用户发表的全部评论，新评论在前
func (r *CommentRepository) ListByAuthor(authorID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Where("author_id = ?", authorID).Order("created_at DESC, id DESC").Find(&comments).Error
	return comments, err
}

// TopLive 按缓存计数取点赞最多的正常评论
func (r *CommentRepository) TopLive(limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Where("state = ?", model.CommentLive).
		Order("likes_count DESC, id DESC").Limit(limit).Find(&comments).Error
	return comments, err
}
