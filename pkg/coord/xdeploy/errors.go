package xdeploy

import "errors"

var (
	// ErrMissingTenant ctx 中没有租户 ID
	ErrMissingTenant = errors.New("xdeploy: missing tenant id in context")

	// ErrEmptyModule 模块名为空
	ErrEmptyModule = errors.New("xdeploy: empty module")

	// ErrDuplicateModule RunAll 收到重复的模块名
	ErrDuplicateModule = errors.New("xdeploy: duplicate module")

	// ErrBusy 重试用尽仍未获取到模块锁
	ErrBusy = errors.New("xdeploy: module busy")
)
