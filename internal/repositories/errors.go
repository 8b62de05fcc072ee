package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateSlug = errors.New("group with this slug already exists")
	ErrDuplicateUser = errors.New("user with this username or email already exists")
)

// notFound maps gorm's missing-record error onto ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
