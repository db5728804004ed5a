package service

import (
	"context"
	"math"
	"testing"

	"engage-go/internal/api/dto"
	"engage-go/internal/model"
	"engage-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threadFixture C1 主评论 3 赞，C2 回复 C1，C3 回复 C2；C2 被删除后成为墓碑
type threadFixture struct {
	*fixture
	author, fan *model.User
	article     *model.Article
	c1, c2, c3  *model.Comment
}

func newThreadFixture(t *testing.T) *threadFixture {
	t.Helper()
	f := newFixture(t)
	tf := &threadFixture{fixture: f}

	tf.author = testutil.User(t, f.db, "author", model.RoleUser)
	tf.fan = testutil.User(t, f.db, "fan", model.RoleUser)
	third := testutil.User(t, f.db, "third", model.RoleUser)
	tf.article = testutil.Article(t, f.db, tf.author.ID, "Patch 1.2 notes")

	tf.c1 = testutil.Comment(t, f.db, tf.author.ID, model.KindArticle, tf.article.ID, nil, 1)
	tf.c2 = testutil.Comment(t, f.db, tf.fan.ID, model.KindArticle, tf.article.ID, tf.c1, 2)
	tf.c3 = testutil.Comment(t, f.db, third.ID, model.KindArticle, tf.article.ID, tf.c2, 3)

	ctx := context.Background()
	for _, u := range []*model.User{tf.author, tf.fan, third} {
		_, err := f.likes.Toggle(ctx, u.ID, model.KindComment, tf.c1.ID)
		require.NoError(t, err)
	}

	res, err := f.comments.Delete(ctx, tf.c2.ID, tf.fan.ID)
	require.NoError(t, err)
	require.False(t, res.HardDeleted)
	return tf
}

func (tf *threadFixture) page(t *testing.T, sort model.FeedSort, page, size int, viewer int64) *dto.FeedData {
	t.Helper()
	data, err := tf.feed.Page(&FeedRequest{
		Kind:     model.KindArticle,
		RootID:   tf.article.ID,
		Page:     page,
		PageSize: size,
		Sort:     sort,
		ViewerID: viewer,
	})
	require.NoError(t, err)
	return data
}

func findComment(t *testing.T, infos []dto.CommentInfo, id int64) dto.CommentInfo {
	t.Helper()
	for _, c := range infos {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("comment %d not in feed", id)
	return dto.CommentInfo{}
}

func TestFeed_RecentIncludesTombstone(t *testing.T) {
	tf := newThreadFixture(t)

	data := tf.page(t, model.SortRecent, 1, 5, 0)
	assert.Equal(t, []int64{tf.c3.ID, tf.c2.ID, tf.c1.ID}, commentIDs(data.Comments))

	c2 := findComment(t, data.Comments, tf.c2.ID)
	assert.True(t, c2.IsDeleted)
	assert.Equal(t, model.CommentTombstoned, c2.State)
	assert.Equal(t, "该评论已删除", c2.Content)
	assert.Zero(t, c2.LikesCount)
	assert.False(t, c2.Backfilled)

	assert.Equal(t, int64(3), findComment(t, data.Comments, tf.c1.ID).LikesCount)
}

func TestFeed_PopularityOrdersByLiveLikes(t *testing.T) {
	tf := newThreadFixture(t)

	data := tf.page(t, model.SortLikes, 1, 5, 0)
	assert.Equal(t, []int64{tf.c1.ID, tf.c3.ID, tf.c2.ID}, commentIDs(data.Comments))
}

func TestFeed_PopularityBackfillsTombstoneOutsidePage(t *testing.T) {
	tf := newThreadFixture(t)

	data := tf.page(t, model.SortLikes, 1, 2, 0)

	// C2 的热度排名在页外，但 C3 依赖它，补入后整体按时间倒序
	assert.Equal(t, []int64{tf.c3.ID, tf.c2.ID, tf.c1.ID}, commentIDs(data.Comments))
	c2 := findComment(t, data.Comments, tf.c2.ID)
	assert.True(t, c2.Backfilled)
	assert.True(t, c2.IsDeleted)

	assert.Equal(t, 2, findComment(t, data.Comments, tf.c3.ID).ReplyDepth)
	assert.Equal(t, dto.Pagination{
		CurrentPage:   1,
		PageSize:      2,
		TotalPages:    2,
		HasNextPage:   true,
		TotalComments: 3,
	}, data.Pagination)
}

func TestFeed_TotalInvariantAcrossSorts(t *testing.T) {
	tf := newThreadFixture(t)

	for _, size := range []int{1, 2, 5} {
		recent := tf.page(t, model.SortRecent, 1, size, 0)
		likes := tf.page(t, model.SortLikes, 1, size, 0)
		assert.Equal(t, int64(3), recent.Pagination.TotalComments)
		assert.Equal(t, recent.Pagination, likes.Pagination)
	}
}

func TestFeed_ViewerAnnotations(t *testing.T) {
	tf := newThreadFixture(t)

	data := tf.page(t, model.SortRecent, 1, 5, tf.author.ID)
	c1 := findComment(t, data.Comments, tf.c1.ID)
	assert.True(t, c1.IsLiked)
	assert.True(t, c1.CanDelete)
	assert.Equal(t, "author", c1.AuthorName)
	assert.False(t, findComment(t, data.Comments, tf.c3.ID).CanDelete)

	anon := tf.page(t, model.SortRecent, 1, 5, 0)
	for _, c := range anon.Comments {
		assert.False(t, c.IsLiked)
		assert.False(t, c.CanDelete)
	}
}

func TestFeed_ReplyDepthAndTree(t *testing.T) {
	tf := newThreadFixture(t)

	data, err := tf.feed.Page(&FeedRequest{
		Kind:   model.KindArticle,
		RootID: tf.article.ID,
		Tree:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, findComment(t, data.Comments, tf.c1.ID).ReplyDepth)
	assert.Equal(t, 1, findComment(t, data.Comments, tf.c2.ID).ReplyDepth)
	assert.Equal(t, 2, findComment(t, data.Comments, tf.c3.ID).ReplyDepth)

	require.Len(t, data.Tree, 1)
	root := data.Tree[0]
	assert.Equal(t, tf.c1.ID, root.ID)
	require.Len(t, root.Replies, 1)
	assert.Equal(t, tf.c2.ID, root.Replies[0].ID)
	require.Len(t, root.Replies[0].Replies, 1)
	assert.Equal(t, tf.c3.ID, root.Replies[0].Replies[0].ID)
}

func TestFeed_DanglingParentAfterForceDelete(t *testing.T) {
	tf := newThreadFixture(t)

	_, err := tf.comments.ForceDelete(context.Background(), tf.c2.ID, tf.fan.ID)
	require.NoError(t, err)

	data, err := tf.feed.Page(&FeedRequest{Kind: model.KindArticle, RootID: tf.article.ID, Tree: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{tf.c3.ID, tf.c1.ID}, commentIDs(data.Comments))
	assert.Equal(t, int64(2), data.Pagination.TotalComments)

	c3 := findComment(t, data.Comments, tf.c3.ID)
	require.NotNil(t, c3.ParentCommentID)
	assert.Equal(t, tf.c2.ID, *c3.ParentCommentID)
	assert.Equal(t, 1, c3.ReplyDepth)
	assert.False(t, c3.ParentLoaded)
	assert.Len(t, data.Tree, 2)
}

func TestFeed_NormalizesRequest(t *testing.T) {
	tf := newThreadFixture(t)

	req := &FeedRequest{Kind: model.KindArticle, RootID: tf.article.ID, Page: -3, PageSize: 1000, Sort: "bogus"}
	data, err := tf.feed.Page(req)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 100, req.PageSize)
	assert.Equal(t, model.SortRecent, req.Sort)
	assert.Equal(t, 1, data.Pagination.CurrentPage)
	assert.False(t, data.Pagination.HasNextPage)

	req = &FeedRequest{Kind: model.KindArticle, RootID: tf.article.ID}
	_, err = tf.feed.Page(req)
	require.NoError(t, err)
	assert.Equal(t, 5, req.PageSize)

	// 超大页码不能让偏移量溢出回到第一页
	huge := tf.page(t, model.SortRecent, math.MaxInt64/50, 100, 0)
	assert.Empty(t, huge.Comments)
	assert.Equal(t, math.MaxInt32/100+1, huge.Pagination.CurrentPage)
	assert.False(t, huge.Pagination.HasNextPage)
	assert.Equal(t, int64(3), huge.Pagination.TotalComments)

	past := tf.page(t, model.SortLikes, 2, 5, 0)
	assert.Empty(t, past.Comments)
	assert.False(t, past.Pagination.HasNextPage)
}

func TestFeed_RootErrors(t *testing.T) {
	tf := newThreadFixture(t)

	_, err := tf.feed.Page(&FeedRequest{Kind: model.KindArticle, RootID: 9999})
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = tf.feed.Page(&FeedRequest{Kind: model.KindComment, RootID: tf.c1.ID})
	assert.ErrorIs(t, err, ErrInvalidContentKind)

	_, err = tf.content.Delete(context.Background(), tf.author.ID, model.KindArticle, tf.article.ID)
	require.NoError(t, err)
	_, err = tf.feed.Page(&FeedRequest{Kind: model.KindArticle, RootID: tf.article.ID})
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestApplyDepth(t *testing.T) {
	p := func(id int64) *int64 { return &id }

	infos := []dto.CommentInfo{
		{ID: 4, ParentCommentID: p(3)},
		{ID: 3, ParentCommentID: p(1)},
		{ID: 1},
		{ID: 9, ParentCommentID: p(42)},
		// 脏数据：互为父评论
		{ID: 7, ParentCommentID: p(8)},
		{ID: 8, ParentCommentID: p(7)},
	}
	applyDepth(infos)

	depths := map[int64]int{}
	for _, c := range infos {
		depths[c.ID] = c.ReplyDepth
	}
	assert.Equal(t, 0, depths[1])
	assert.Equal(t, 1, depths[3])
	assert.Equal(t, 2, depths[4])
	assert.Equal(t, 1, depths[9])
	assert.False(t, infos[3].ParentLoaded)
	assert.True(t, infos[0].ParentLoaded)
	assert.Positive(t, depths[7])
	assert.Positive(t, depths[8])
}

func TestBuildForest(t *testing.T) {
	p := func(id int64) *int64 { return &id }

	forest := BuildForest([]dto.CommentInfo{
		{ID: 5, ParentCommentID: p(1)},
		{ID: 1},
		{ID: 6, ParentCommentID: p(99)},
		{ID: 2},
		{ID: 7, ParentCommentID: p(5)},
	})

	require.Len(t, forest, 3)
	assert.Equal(t, []int64{1, 6, 2}, []int64{forest[0].ID, forest[1].ID, forest[2].ID})
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, int64(5), forest[0].Replies[0].ID)
	require.Len(t, forest[0].Replies[0].Replies, 1)
	assert.Equal(t, int64(7), forest[0].Replies[0].Replies[0].ID)
	assert.NotNil(t, forest[2].Replies)
}

func TestPaginate(t *testing.T) {
	assert.Equal(t, dto.Pagination{CurrentPage: 1, PageSize: 5, TotalPages: 0, HasNextPage: false, TotalComments: 0}, paginate(1, 5, 0))
	assert.Equal(t, dto.Pagination{CurrentPage: 2, PageSize: 5, TotalPages: 3, HasNextPage: true, TotalComments: 11}, paginate(2, 5, 11))
	assert.Equal(t, dto.Pagination{CurrentPage: 2, PageSize: 5, TotalPages: 2, HasNextPage: false, TotalComments: 10}, paginate(2, 5, 10))
}
