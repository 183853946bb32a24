package util

import "errors"

// 错误分类，controller 层用 errors.Is 匹配后映射为对应的HTTP状态码。
// service 层用 fmt.Errorf("%w: ...") 包装补充上下文。
var (
	ErrValidation      = errors.New("invalid input")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("conflict with current state")
	ErrExternalService = errors.New("external service failure")
	ErrPersistence     = errors.New("persistence failure")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrPermissionDenied   = errors.New("permission denied")
)
