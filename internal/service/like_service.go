package service

import (
	"context"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/pkg/logger"

	"go.uber.org/zap"
)

const statsTopN = 5

type LikeService struct {
	likeRepo    *repository.LikeRepository
	contentRepo *repository.ContentRepository
	commentRepo *repository.CommentRepository
	gate        *ContentGate
	events      *emitter
}

func NewLikeService(
	likeRepo *repository.LikeRepository,
	contentRepo *repository.ContentRepository,
	commentRepo *repository.CommentRepository,
	gate *ContentGate,
	pub EventPublisher,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		contentRepo: contentRepo,
		commentRepo: commentRepo,
		gate:        gate,
		events:      newEmitter(pub),
	}
}

// Toggle 点赞/取消点赞
func (s *LikeService) Toggle(ctx context.Context, userID int64, kind model.ContentKind, contentID int64) (*dto.LikeStatus, error) {
	ref, err := s.gate.Likeable(kind, contentID)
	if err != nil {
		return nil, err
	}

	res, err := s.likeRepo.Toggle(userID, kind, contentID)
	if err != nil {
		return nil, err
	}

	if res.Changed {
		action := model.ActionLikeAdded
		if !res.Liked {
			action = model.ActionLikeRemoved
		}
		logger.Info("Like toggled",
			zap.Int64("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Int64("content_id", contentID),
			zap.Bool("liked", res.Liked),
		)
		s.events.emit(ctx, &model.EngagementEvent{
			Action:       action,
			ActorID:      userID,
			ContentKind:  kind,
			ContentID:    contentID,
			ContentTitle: ref.Title,
			Data:         map[string]interface{}{"like_count": res.LikeCount},
		})
	}

	return &dto.LikeStatus{Liked: res.Liked, LikeCount: res.LikeCount}, nil
}

// Status 查询点赞状态，计数取自流水而非缓存；viewerID 为 0 表示匿名
func (s *LikeService) Status(viewerID int64, kind model.ContentKind, contentID int64) (*dto.LikeStatus, error) {
	if _, err := s.gate.Exists(kind, contentID); err != nil {
		return nil, err
	}

	count, err := s.likeRepo.CountByContent(kind, contentID)
	if err != nil {
		return nil, err
	}

	liked := false
	if viewerID > 0 {
		if liked, err = s.likeRepo.Exists(viewerID, kind, contentID); err != nil {
			return nil, err
		}
	}

	return &dto.LikeStatus{Liked: liked, LikeCount: count}, nil
}

// ListLikers 管理员查看内容的点赞人，最近点赞的在前
func (s *LikeService) ListLikers(kind model.ContentKind, contentID int64) (*dto.LikersData, error) {
	if _, err := s.gate.Exists(kind, contentID); err != nil {
		return nil, err
	}

	likers, err := s.likeRepo.ListLikers(kind, contentID)
	if err != nil {
		return nil, err
	}

	list := make([]dto.LikerInfo, 0, len(likers))
	for _, l := range likers {
		list = append(list, dto.LikerInfo{
			UserID:   l.UserID,
			UserName: l.UserName,
			LikedAt:  l.CreatedAt,
		})
	}

	return &dto.LikersData{
		ContentKind: string(kind),
		ContentID:   contentID,
		Total:       len(list),
		Likers:      list,
	}, nil
}

// Stats 点赞统计：各类型流水总数、缓存计数排行、点赞最多的用户
func (s *LikeService) Stats() (*dto.LikeStats, error) {
	stats := &dto.LikeStats{ByKind: make(map[string]int64, len(model.AllContentKinds))}
	for _, kind := range model.AllContentKinds {
		n, err := s.likeRepo.CountByKind(kind)
		if err != nil {
			return nil, err
		}
		stats.ByKind[string(kind)] = n
		stats.TotalLikes += n
	}

	articles, err := s.contentRepo.TopArticles(statsTopN)
	if err != nil {
		return nil, err
	}
	stats.TopArticles = make([]dto.TopContent, 0, len(articles))
	for _, a := range articles {
		stats.TopArticles = append(stats.TopArticles, dto.TopContent{ID: a.ID, Title: a.Title, LikeCount: a.LikeCount})
	}

	reviews, err := s.contentRepo.TopReviews(statsTopN)
	if err != nil {
		return nil, err
	}
	stats.TopReviews = make([]dto.TopContent, 0, len(reviews))
	for _, r := range reviews {
		stats.TopReviews = append(stats.TopReviews, dto.TopContent{ID: r.ID, Title: r.Title, LikeCount: r.LikeCount})
	}

	comments, err := s.commentRepo.TopLive(statsTopN)
	if err != nil {
		return nil, err
	}
	stats.TopComments = make([]dto.TopContent, 0, len(comments))
	for _, c := range comments {
		stats.TopComments = append(stats.TopComments, dto.TopContent{ID: c.ID, Title: commentTitle(c.Content), LikeCount: c.LikesCount})
	}

	likers, err := s.likeRepo.TopLikers(statsTopN)
	if err != nil {
		return nil, err
	}
	stats.TopLikers = make([]dto.TopLiker, 0, len(likers))
	for _, l := range likers {
		stats.TopLikers = append(stats.TopLikers, dto.TopLiker{UserID: l.UserID, UserName: l.UserName, LikesCount: l.LikesCount})
	}

	return stats, nil
}
