package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/pkg/logger"
	"engage-go/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommentOptions 评论相关的可配置项
type CommentOptions struct {
	MaxLength        int
	TombstoneContent string
}

type CommentService struct {
	commentRepo *repository.CommentRepository
	userRepo    *repository.UserRepository
	gate        *ContentGate
	events      *emitter
	opts        CommentOptions
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	gate *ContentGate,
	pub EventPublisher,
	opts CommentOptions,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		gate:        gate,
		events:      newEmitter(pub),
		opts:        opts,
	}
}

// Create 发表评论；parentID 非空时父评论必须挂在同一根内容下
func (s *CommentService) Create(ctx context.Context, authorID int64, kind model.ContentKind, rootID int64, content string, parentID *int64) (*dto.CommentInfo, error) {
	if !kind.IsRoot() || rootID <= 0 {
		return nil, ErrInvalidRoot
	}

	content = utils.PlainText(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if s.opts.MaxLength > 0 && utf8.RuneCountInString(content) > s.opts.MaxLength {
		return nil, ErrContentTooLong
	}

	root, err := s.gate.Root(kind, rootID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.commentRepo.GetByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if !parent.SameRoot(kind, rootID) {
			return nil, ErrParentRootMismatch
		}
	}

	comment := &model.Comment{
		AuthorID: authorID,
		RootKind: kind,
		RootID:   rootID,
		ParentID: parentID,
		Content:  content,
		State:    model.CommentLive,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	logger.Info("Comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("author_id", authorID),
		zap.String("root_kind", string(kind)),
		zap.Int64("root_id", rootID),
	)
	s.events.emit(ctx, &model.EngagementEvent{
		Action:       model.ActionCommentCreated,
		ActorID:      authorID,
		ContentKind:  kind,
		ContentID:    rootID,
		ContentTitle: root.Title,
		Data:         map[string]interface{}{"comment_id": comment.ID, "parent_comment_id": parentID},
	})

	info := toCommentInfo(comment, 0)
	info.CanDelete = true
	if names, err := s.userRepo.UsernamesByIDs([]int64{authorID}); err == nil {
		info.AuthorName = names[authorID]
	}
	return info, nil
}

// Delete 删除评论：没有回复时物理删除，有回复时转为墓碑
// hasReplies 判断与删除之间不加锁，并发回复可能越过检查
func (s *CommentService) Delete(ctx context.Context, commentID, requesterID int64) (*dto.CommentDeleteResult, error) {
	comment, err := s.getComment(commentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(comment, requesterID); err != nil {
		return nil, err
	}

	hard, err := s.remove(comment)
	if err != nil {
		return nil, err
	}

	action := model.ActionCommentTombstoned
	if hard {
		action = model.ActionCommentDeleted
	}
	s.events.emit(ctx, &model.EngagementEvent{
		Action:       action,
		ActorID:      requesterID,
		ContentKind:  comment.RootKind,
		ContentID:    comment.RootID,
		ContentTitle: s.gate.Title(comment.RootKind, comment.RootID),
		Data:         map[string]interface{}{"comment_id": commentID, "author_id": comment.AuthorID},
	})

	return &dto.CommentDeleteResult{CommentID: commentID, Deleted: true, HardDeleted: hard}, nil
}

// ForceDelete 彻底删除墓碑，保留其回复；回复的 parent 指向将失效
func (s *CommentService) ForceDelete(ctx context.Context, commentID, requesterID int64) (*dto.CommentDeleteResult, error) {
	comment, err := s.getComment(commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsTombstone() {
		return nil, ErrNotATombstone
	}
	if err := s.authorize(comment, requesterID); err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.HardDelete(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	s.gate.Forget(model.KindComment, commentID)

	logger.Info("Tombstone force deleted",
		zap.Int64("comment_id", commentID),
		zap.Int64("requester_id", requesterID),
	)
	s.events.emit(ctx, &model.EngagementEvent{
		Action:       model.ActionCommentForceDelete,
		Level:        model.LevelWarn,
		ActorID:      requesterID,
		ContentKind:  comment.RootKind,
		ContentID:    comment.RootID,
		ContentTitle: s.gate.Title(comment.RootKind, comment.RootID),
		Data:         map[string]interface{}{"comment_id": commentID, "author_id": comment.AuthorID},
	})

	return &dto.CommentDeleteResult{CommentID: commentID, Deleted: true, HardDeleted: true}, nil
}

// PurgeAuthor 对用户的全部评论执行两级删除；新评论先删，自己回复自己的链条可以整条物理删除
func (s *CommentService) PurgeAuthor(authorID int64) (hard, tombstoned int, err error) {
	comments, err := s.commentRepo.ListByAuthor(authorID)
	if err != nil {
		return 0, 0, err
	}

	for i := range comments {
		wasHard, err := s.remove(&comments[i])
		if err != nil {
			if errors.Is(err, ErrCommentNotFound) {
				continue
			}
			return hard, tombstoned, err
		}
		if wasHard {
			hard++
		} else {
			tombstoned++
		}
	}
	return hard, tombstoned, nil
}

// remove 两级删除，返回是否为物理删除
func (s *CommentService) remove(comment *model.Comment) (bool, error) {
	hasReplies, err := s.commentRepo.HasReplies(comment.ID)
	if err != nil {
		return false, err
	}

	if hasReplies {
		purged, err := s.commentRepo.Tombstone(comment.ID, s.opts.TombstoneContent)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, ErrCommentNotFound
			}
			return false, err
		}
		comment.Tombstone(s.opts.TombstoneContent)
		logger.Info("Comment tombstoned",
			zap.Int64("comment_id", comment.ID),
			zap.Int64("purged_likes", purged),
		)
		return false, nil
	}

	purged, err := s.commentRepo.HardDelete(comment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCommentNotFound
		}
		return false, err
	}
	s.gate.Forget(model.KindComment, comment.ID)
	logger.Info("Comment deleted",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("purged_likes", purged),
	)
	return true, nil
}

func (s *CommentService) getComment(commentID int64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

// authorize 作者本人或管理员
func (s *CommentService) authorize(comment *model.Comment, requesterID int64) error {
	if comment.AuthorID == requesterID {
		return nil
	}
	user, err := s.userRepo.GetByID(requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNoPermission
		}
		return err
	}
	if !user.IsAdmin() {
		return ErrCommentNoPermission
	}
	return nil
}

func toCommentInfo(c *model.Comment, likes int64) *dto.CommentInfo {
	return &dto.CommentInfo{
		ID:              c.ID,
		Content:         c.Content,
		AuthorID:        c.AuthorID,
		RootKind:        c.RootKind,
		RootID:          c.RootID,
		ParentCommentID: c.ParentID,
		State:           c.State,
		IsDeleted:       c.IsTombstone(),
		LikesCount:      likes,
		CreatedAt:       c.CreatedAt,
	}
}
