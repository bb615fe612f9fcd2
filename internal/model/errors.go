package model

import "errors"

// 领域错误：全部可恢复，调用方转换为用户可见提示，不中断进程
var (
	ErrDuplicateUsername  = errors.New("用户名已存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrNotAuthenticated   = errors.New("未登录")
	ErrUnauthorized       = errors.New("需要管理员权限")
	ErrAlreadyRated       = errors.New("已对该电影提交过评分")
	ErrInvalidRating      = errors.New("评分必须在 0 到 10 之间")
	ErrNotFound           = errors.New("记录不存在")
	ErrDataLoad           = errors.New("数据加载失败")
)
