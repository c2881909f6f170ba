package service

import (
	"errors"

	"github.com/caps24escola/pixel-world/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInternalServer  = errors.New("internal server error")
)

// mapRepoError translates repository errors into service errors.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return ErrInternalServer
}
