package canvas

import (
	"errors"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/palette"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrTabNotFound  = errors.New("tab not found")
	ErrNoTabs       = errors.New("node kind has no tabs")
	ErrInvalidMedia = errors.New("invalid media payload")
	ErrUnknownKind  = palette.ErrUnknownKind
	ErrClosed       = errors.New("workspace closed")
)
