package service

import "errors"

var (
	ErrInvalidContentKind = errors.New("无效的内容类型")
	ErrContentNotFound    = errors.New("内容不存在")

	ErrInvalidRoot         = errors.New("必须且只能指定一篇文章或一篇测评")
	ErrEmptyContent        = errors.New("评论内容不能为空")
	ErrContentTooLong      = errors.New("评论内容超出长度限制")
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrCommentNoPermission = errors.New("没有权限操作该评论")
	ErrParentNotFound      = errors.New("父评论不存在")
	ErrParentRootMismatch  = errors.New("父评论不属于该文章或测评")
	ErrNotATombstone       = errors.New("只能彻底删除已被删除的评论")

	ErrReconcileBusy = errors.New("对账任务正在执行，请稍后再试")

	ErrUserNotFound      = errors.New("用户不存在")
	ErrUsernameExists    = errors.New("用户名已存在")
	ErrInvalidCredential = errors.New("用户名或密码错误")
	ErrUserDeleted       = errors.New("该用户已被删除")
)
