package entity

import "errors"

// 请求前置条件错误，流水线启动前即被拒绝，不会重试
var (
	ErrEmptyTopic         = errors.New("topic must not be empty")
	ErrEmptyKeyword       = errors.New("target keyword must not be empty")
	ErrInvalidWordCount   = errors.New("target word count must be positive")
	ErrInvalidContentType = errors.New("unknown content type")
)
