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

// ContentService 文章/测评的最小管理能力，供评论与点赞挂载
type ContentService struct {
	contentRepo *repository.ContentRepository
	gate        *ContentGate
	events      *emitter
}

func NewContentService(contentRepo *repository.ContentRepository, gate *ContentGate, pub EventPublisher) *ContentService {
	return &ContentService{contentRepo: contentRepo, gate: gate, events: newEmitter(pub)}
}

// Create 创建文章或测评
func (s *ContentService) Create(authorID int64, kind model.ContentKind, req *dto.ContentCreateRequest) (*dto.ContentInfo, error) {
	switch kind {
	case model.KindArticle:
		a := &model.Article{AuthorID: authorID, Title: req.Title, Status: model.ContentPublished}
		if err := s.contentRepo.CreateArticle(a); err != nil {
			return nil, err
		}
		return &dto.ContentInfo{
			Kind: string(kind), ID: a.ID, AuthorID: a.AuthorID, Title: a.Title,
			Status: a.Status, LikeCount: a.LikeCount, CreatedAt: a.CreatedAt,
		}, nil
	case model.KindReview:
		rv := &model.Review{AuthorID: authorID, Title: req.Title, GameTitle: req.GameTitle, Status: model.ContentPublished}
		if err := s.contentRepo.CreateReview(rv); err != nil {
			return nil, err
		}
		return &dto.ContentInfo{
			Kind: string(kind), ID: rv.ID, AuthorID: rv.AuthorID, Title: rv.Title, GameTitle: rv.GameTitle,
			Status: rv.Status, LikeCount: rv.LikeCount, CreatedAt: rv.CreatedAt,
		}, nil
	}
	return nil, ErrInvalidContentKind
}

// Delete 软删除文章或测评，同时清空其点赞流水；评论保留
func (s *ContentService) Delete(ctx context.Context, actorID int64, kind model.ContentKind, id int64) (*dto.ContentDeleteResult, error) {
	ref, err := s.gate.Root(kind, id)
	if err != nil {
		return nil, err
	}

	purged, err := s.contentRepo.SoftDelete(kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	s.gate.Forget(kind, id)

	logger.Info("Content deleted",
		zap.String("kind", string(kind)),
		zap.Int64("content_id", id),
		zap.Int64("purged_likes", purged),
	)
	s.events.emit(ctx, &model.EngagementEvent{
		Action:       model.ActionContentDeleted,
		Level:        model.LevelWarn,
		ActorID:      actorID,
		ContentKind:  kind,
		ContentID:    id,
		ContentTitle: ref.Title,
		Data:         map[string]interface{}{"purged_likes": purged},
	})

	return &dto.ContentDeleteResult{Kind: string(kind), ID: id, PurgedLikes: purged}, nil
}
