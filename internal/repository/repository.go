// Package repository is the only layer that talks to the database.
package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// newID returns a time-ordered UUIDv7 so that ordering by id follows insertion.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
