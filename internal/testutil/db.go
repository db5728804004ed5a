// Package testutil 测试用的内存数据库与数据构造
package testutil

import (
	"fmt"
	"testing"
	"time"

	"engage-go/internal/infra/database"
	"engage-go/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB 每个测试独享一个 sqlite 内存库，并完成建表
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库在最后一个连接关闭时销毁，且 sqlite 不支持并发写
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Base 测试数据的基准时间，按分钟偏移保证排序稳定
var Base = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func At(minutes int) time.Time {
	return Base.Add(time.Duration(minutes) * time.Minute)
}

func User(t *testing.T, db *gorm.DB, name, role string) *model.User {
	t.Helper()
	u := &model.User{UserName: name, Password: "x", UserRole: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Article(t *testing.T, db *gorm.DB, authorID int64, title string) *model.Article {
	t.Helper()
	a := &model.Article{AuthorID: authorID, Title: title, Status: model.ContentPublished}
	require.NoError(t, db.Create(a).Error)
	return a
}

func Review(t *testing.T, db *gorm.DB, authorID int64, title string) *model.Review {
	t.Helper()
	rv := &model.Review{AuthorID: authorID, Title: title, Status: model.ContentPublished}
	require.NoError(t, db.Create(rv).Error)
	return rv
}

// Comment 直接落库一条评论，parent 为 nil 表示主评论
func Comment(t *testing.T, db *gorm.DB, authorID int64, kind model.ContentKind, rootID int64, parent *model.Comment, minute int) *model.Comment {
	t.Helper()
	c := &model.Comment{
		AuthorID:  authorID,
		RootKind:  kind,
		RootID:    rootID,
		Content:   fmt.Sprintf("comment at +%dm", minute),
		State:     model.CommentLive,
		CreatedAt: At(minute),
	}
	if parent != nil {
		pid := parent.ID
		c.ParentID = &pid
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Like 直接写入一条点赞流水，不触碰缓存计数
func Like(t *testing.T, db *gorm.DB, userID int64, kind model.ContentKind, contentID int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Like{UserID: userID, ContentKind: kind, ContentID: contentID}).Error)
}
