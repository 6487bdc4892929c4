package storage

import (
	"context"
	"errors"
)

// SlotStore is a durable key-value facility. A slot holds one opaque payload
// that survives process restarts.
// Consumers define the payload format, backends only move bytes.
type SlotStore interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, data []byte) error
	Delete(ctx context.Context, slot string) error
}

var ErrSlotNotFound = errors.New("slot not found")
