package service

import (
	"context"
	"errors"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo       *repository.UserRepository
	likeRepo       *repository.LikeRepository
	commentService *CommentService
	events         *emitter
}

func NewUserService(
	userRepo *repository.UserRepository,
	likeRepo *repository.LikeRepository,
	commentService *CommentService,
	pub EventPublisher,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		likeRepo:       likeRepo,
		commentService: commentService,
		events:         newEmitter(pub),
	}
}

// GetRole 查询用户角色（管理员中间件使用）
func (s *UserService) GetRole(userID int64) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	return user.UserRole, nil
}

// Purge 注销账号：撤销全部点赞并回退计数，对其评论执行两级删除，最后软删除用户
func (s *UserService) Purge(ctx context.Context, actorID, userID int64) (*dto.UserPurgeResult, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	likes, err := s.likeRepo.DeleteByUser(userID)
	if err != nil {
		return nil, err
	}

	hard, tombstoned, err := s.commentService.PurgeAuthor(userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SoftDelete(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	result := &dto.UserPurgeResult{
		UserID:              userID,
		LikesRemoved:        likes,
		HardDeletedComments: hard,
		TombstonedComments:  tombstoned,
	}

	logger.Info("User purged",
		zap.Int64("user_id", userID),
		zap.Int64("likes_removed", likes),
		zap.Int("hard_deleted_comments", hard),
		zap.Int("tombstoned_comments", tombstoned),
	)
	s.events.emit(ctx, &model.EngagementEvent{
		Action:  model.ActionUserPurged,
		Level:   model.LevelWarn,
		ActorID: actorID,
		Data: map[string]interface{}{
			"user_id":               userID,
			"likes_removed":         likes,
			"hard_deleted_comments": hard,
			"tombstoned_comments":   tombstoned,
		},
	})
	return result, nil
}
