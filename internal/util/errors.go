package util

import "errors"

var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrPageNotFound       = errors.New("form page not found")
	ErrPageNotLive        = errors.New("form page not live")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrDuplicateLabel     = errors.New("duplicate field label on this page")
	ErrFieldNotFound      = errors.New("form field not found")
)
