package cloud

import (
	"context"
	"errors"
)

//go:generate mockgen -source=mirror.go -destination=mock_mirror_test.go -package=cloud

// ErrNoSnapshot is returned by Get when the user has never backed up.
var ErrNoSnapshot = errors.New("no cloud snapshot found for user")

// Mirror stores one opaque snapshot payload per user.
type Mirror interface {
	Put(ctx context.Context, userID string, payload []byte) error
	Get(ctx context.Context, userID string) ([]byte, error)
	Close() error
}
