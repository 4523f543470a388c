package repository

import "errors"

// 対象が存在しないを統一
var ErrNotFound = errors.New("not found")

// unique制約違反
var ErrDuplicate = errors.New("duplicate")
