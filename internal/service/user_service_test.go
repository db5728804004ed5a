package service

import (
	"context"
	"testing"

	"engage-go/internal/model"
	"engage-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_PurgeCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.User(t, f.db, "root", model.RoleAdmin)
	leaving := testutil.User(t, f.db, "leaving", model.RoleUser)
	other := testutil.User(t, f.db, "other", model.RoleUser)
	a := testutil.Article(t, f.db, other.ID, "news")

	_, err := f.likes.Toggle(ctx, leaving.ID, model.KindArticle, a.ID)
	require.NoError(t, err)
	_, err = f.likes.Toggle(ctx, other.ID, model.KindArticle, a.ID)
	require.NoError(t, err)

	lonely := testutil.Comment(t, f.db, leaving.ID, model.KindArticle, a.ID, nil, 1)
	answered := testutil.Comment(t, f.db, leaving.ID, model.KindArticle, a.ID, nil, 2)
	testutil.Comment(t, f.db, other.ID, model.KindArticle, a.ID, answered, 3)

	res, err := f.users.Purge(ctx, admin.ID, leaving.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LikesRemoved)
	assert.Equal(t, 1, res.HardDeletedComments)
	assert.Equal(t, 1, res.TombstonedComments)

	var stored model.Article
	require.NoError(t, f.db.First(&stored, a.ID).Error)
	assert.Equal(t, int64(1), stored.LikeCount)

	assert.False(t, f.commentExists(lonely.ID))
	assert.True(t, f.comment(t, answered.ID).IsTombstone())

	_, err = f.userRepo.GetByID(leaving.ID)
	assert.Error(t, err)
	_, err = f.users.Purge(ctx, admin.ID, leaving.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	ev := f.pub.last()
	assert.Equal(t, model.ActionUserPurged, ev.Action)
	assert.Equal(t, admin.ID, ev.ActorID)

	// 注销后计数与流水一致
	report, err := f.reconcile.Diagnose(ctx, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, report.TotalMismatches)
	assert.Zero(t, report.OrphanedLikes+report.StaleLikes)
}

func TestUserService_GetRole(t *testing.T) {
	f := newFixture(t)
	admin := testutil.User(t, f.db, "root", model.RoleAdmin)

	role, err := f.users.GetRole(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)

	_, err = f.users.GetRole(9999)
	assert.Error(t, err)
}
