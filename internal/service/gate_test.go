package service

import (
	"strings"
	"testing"
	"time"

	"engage-go/internal/model"
	"engage-go/internal/repository"
	"engage-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentGate_TitleCache(t *testing.T) {
	db := testutil.NewDB(t)
	gate, err := NewContentGate(repository.NewContentRepository(db), repository.NewCommentRepository(db), 8, time.Hour)
	require.NoError(t, err)
	u := testutil.User(t, db, "alice", model.RoleUser)
	a := testutil.Article(t, db, u.ID, "before")

	assert.Equal(t, "before", gate.Title(model.KindArticle, a.ID))

	require.NoError(t, db.Model(a).Update("title", "after").Error)
	assert.Equal(t, "before", gate.Title(model.KindArticle, a.ID))

	gate.Forget(model.KindArticle, a.ID)
	assert.Equal(t, "after", gate.Title(model.KindArticle, a.ID))

	assert.Empty(t, gate.Title(model.KindArticle, 9999))
}

func TestContentGate_TitleExpires(t *testing.T) {
	db := testutil.NewDB(t)
	gate, err := NewContentGate(repository.NewContentRepository(db), repository.NewCommentRepository(db), 8, -time.Second)
	require.NoError(t, err)
	u := testutil.User(t, db, "alice", model.RoleUser)
	a := testutil.Article(t, db, u.ID, "before")

	assert.Equal(t, "before", gate.Title(model.KindArticle, a.ID))
	require.NoError(t, db.Model(a).Update("title", "after").Error)
	assert.Equal(t, "after", gate.Title(model.KindArticle, a.ID))
}

func TestContentGate_TombstoneExistsButNotLikeable(t *testing.T) {
	db := testutil.NewDB(t)
	gate, err := NewContentGate(repository.NewContentRepository(db), repository.NewCommentRepository(db), 8, time.Hour)
	require.NoError(t, err)
	u := testutil.User(t, db, "alice", model.RoleUser)
	a := testutil.Article(t, db, u.ID, "news")
	c := testutil.Comment(t, db, u.ID, model.KindArticle, a.ID, nil, 1)
	require.NoError(t, db.Model(c).Update("state", model.CommentTombstoned).Error)

	_, err = gate.Exists(model.KindComment, c.ID)
	assert.NoError(t, err)
	_, err = gate.Likeable(model.KindComment, c.ID)
	assert.ErrorIs(t, err, ErrContentNotFound)
	_, err = gate.Likeable(model.KindArticle, a.ID)
	assert.NoError(t, err)
}

func TestCommentTitle(t *testing.T) {
	assert.Equal(t, "short", commentTitle("short"))

	long := strings.Repeat("评", 60)
	got := commentTitle(long)
	assert.Equal(t, strings.Repeat("评", 50)+"...", got)
}

func TestNewContentGateRejectsEmptyCache(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := NewContentGate(repository.NewContentRepository(db), repository.NewCommentRepository(db), 0, time.Minute)
	assert.Error(t, err)
}
