package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.EngagementEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *model.EngagementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

func (p *recordingPublisher) last() *model.EngagementEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

type memoryArchiver struct {
	objects map[string][]byte
	err     error
}

func (a *memoryArchiver) Archive(_ context.Context, name string, payload []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[name] = payload
	return "https://reports.local/" + name, nil
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, nil
}

type brokenLocker struct{}

func (brokenLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

// fixture 组装一套完整的服务，外部依赖全部替换为内存实现
type fixture struct {
	db  *gorm.DB
	pub *recordingPublisher
	arc *memoryArchiver

	contentRepo *repository.ContentRepository
	commentRepo *repository.CommentRepository
	likeRepo    *repository.LikeRepository
	userRepo    *repository.UserRepository
	auditRepo   *repository.AuditRepository

	gate      *ContentGate
	comments  *CommentService
	feed      *FeedService
	likes     *LikeService
	reconcile *ReconcileService
	content   *ContentService
	users     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	f := &fixture{
		db:          db,
		pub:         &recordingPublisher{},
		arc:         &memoryArchiver{},
		contentRepo: repository.NewContentRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
		userRepo:    repository.NewUserRepository(db),
		auditRepo:   repository.NewAuditRepository(db),
	}
	gate, err := NewContentGate(f.contentRepo, f.commentRepo, 16, time.Minute)
	require.NoError(t, err)
	f.gate = gate
	f.comments = NewCommentService(f.commentRepo, f.userRepo, f.gate, f.pub, CommentOptions{
		MaxLength:        20,
		TombstoneContent: "该评论已删除",
	})
	f.feed = NewFeedService(f.commentRepo, f.likeRepo, f.userRepo, f.gate, FeedOptions{DefaultPageSize: 5, MaxPageSize: 100})
	f.likes = NewLikeService(f.likeRepo, f.contentRepo, f.commentRepo, f.gate, f.pub)
	f.reconcile = NewReconcileService(f.likeRepo, nil, f.arc, f.pub, time.Minute)
	f.content = NewContentService(f.contentRepo, f.gate, f.pub)
	f.users = NewUserService(f.userRepo, f.likeRepo, f.comments, f.pub)
	return f
}

func (f *fixture) comment(t *testing.T, id int64) *model.Comment {
	t.Helper()
	var c model.Comment
	if err := f.db.First(&c, id).Error; err != nil {
		t.Fatalf("load comment %d: %v", id, err)
	}
	return &c
}

func (f *fixture) commentExists(id int64) bool {
	var count int64
	f.db.Model(&model.Comment{}).Where("id = ?", id).Count(&count)
	return count > 0
}

func commentIDs(infos []dto.CommentInfo) []int64 {
	out := make([]int64, 0, len(infos))
	for _, c := range infos {
		out = append(out, c.ID)
	}
	return out
}
