package service

import (
	"errors"
	"fmt"
	"time"

	"engage-go/internal/model"
	"engage-go/internal/repository"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"
)

const commentTitleRunes = 50

type titleEntry struct {
	title     string
	expiresAt time.Time
}

// ContentGate 评论与点赞写操作前的内容存在性校验，顺带缓存标题供审计事件使用
type ContentGate struct {
	contentRepo *repository.ContentRepository
	commentRepo *repository.CommentRepository
	titles      *lru.Cache[string, titleEntry]
	ttl         time.Duration
}

// NewContentGate cacheSize 必须为正数
func NewContentGate(contentRepo *repository.ContentRepository, commentRepo *repository.CommentRepository, cacheSize int, ttl time.Duration) (*ContentGate, error) {
	cache, err := lru.New[string, titleEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create title cache: %w", err)
	}
	return &ContentGate{
		contentRepo: contentRepo,
		commentRepo: commentRepo,
		titles:      cache,
		ttl:         ttl,
	}, nil
}

// Root 校验文章/测评存在且未删除
func (g *ContentGate) Root(kind model.ContentKind, id int64) (*repository.ContentRef, error) {
	if !kind.IsRoot() {
		return nil, ErrInvalidContentKind
	}
	ref, err := g.contentRepo.GetRoot(kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	g.remember(kind, id, ref.Title)
	return ref, nil
}

// Exists 校验任意可点赞内容存在；墓碑评论视为存在
func (g *ContentGate) Exists(kind model.ContentKind, id int64) (*repository.ContentRef, error) {
	if !kind.Valid() {
		return nil, ErrInvalidContentKind
	}
	if kind.IsRoot() {
		return g.Root(kind, id)
	}

	comment, err := g.commentRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	ref := &repository.ContentRef{
		Kind:   model.KindComment,
		ID:     comment.ID,
		Title:  commentTitle(comment.Content),
		Status: string(comment.State),
	}
	if !comment.IsTombstone() {
		g.remember(kind, id, ref.Title)
	}
	return ref, nil
}

// Likeable 校验内容可以被点赞：墓碑评论不可点赞
func (g *ContentGate) Likeable(kind model.ContentKind, id int64) (*repository.ContentRef, error) {
	ref, err := g.Exists(kind, id)
	if err != nil {
		return nil, err
	}
	if kind == model.KindComment && ref.Status == string(model.CommentTombstoned) {
		return nil, ErrContentNotFound
	}
	return ref, nil
}

// Title 返回内容标题，缓存未命中时回源；内容不存在返回空串
func (g *ContentGate) Title(kind model.ContentKind, id int64) string {
	key := cacheKey(kind, id)
	if entry, ok := g.titles.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			return entry.title
		}
		g.titles.Remove(key)
	}
	ref, err := g.Exists(kind, id)
	if err != nil {
		return ""
	}
	return ref.Title
}

// Forget 内容被删除或修改后清除缓存
func (g *ContentGate) Forget(kind model.ContentKind, id int64) {
	g.titles.Remove(cacheKey(kind, id))
}

func (g *ContentGate) remember(kind model.ContentKind, id int64, title string) {
	g.titles.Add(cacheKey(kind, id), titleEntry{title: title, expiresAt: time.Now().Add(g.ttl)})
}

func cacheKey(kind model.ContentKind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func commentTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= commentTitleRunes {
		return content
	}
	return string(runes[:commentTitleRunes]) + "..."
}
