package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoBackground    = errors.New("no background image")
	ErrInvalidEvent    = errors.New("invalid event")
)

// SaveError: сбой сохранения; состояние сессии при этом не меняется.
type SaveError struct {
	MapID string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save map %s: %v", e.MapID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// ImageError: сбой декодирования или загрузки подложки.
type ImageError struct {
	Op  string // decode | upload
	Err error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("background %s: %v", e.Op, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }
