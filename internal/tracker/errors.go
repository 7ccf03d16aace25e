package tracker

import "errors"

var ErrNotFound = errors.New("conversation not found")
