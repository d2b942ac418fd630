package publisher

import (
	"errors"
	"fmt"

	"github.com/LJTian/WhatHappenedToday/internal/errlvl"
)

var (
	errReadRemote  = errors.New("failed to read remote file")
	errWriteRemote = errors.New("failed to write remote file")
	errMissingRepo = errors.New("repository owner, name and path are required")
)

// APIError 托管平台返回的非预期状态
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// newError 组合通用错误与具体原因，并标记为 ERROR 级别
func newError(errs ...error) error {
	return errlvl.Wrap(errors.Join(errs...), errlvl.ERROR)
}
