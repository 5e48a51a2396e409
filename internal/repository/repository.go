// Package repository maps pomolit's tables to models on top of a storage.Handle.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// clock is swapped in tests.
type clock func() time.Time

func systemClock() time.Time { return time.Now() }

func newID() string {
	return uuid.New().String()
}
