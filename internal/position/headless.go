package position

import (
	"context"
	"errors"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// HeadlessProvider is the live provider for hosts with no location hardware.
// Every tier fails, so Current falls through to ErrNoLocation and the
// operator override becomes the only position source.
type HeadlessProvider struct{}

var errHeadless = errors.New("no live location provider on this host")

// RequestPermission succeeds; there is nothing to grant
func (HeadlessProvider) RequestPermission(context.Context) error { return nil }

// Position always fails
func (HeadlessProvider) Position(context.Context, Accuracy) (models.Position, error) {
	return models.Position{}, errHeadless
}

// LastKnown always fails
func (HeadlessProvider) LastKnown(context.Context) (models.Position, error) {
	return models.Position{}, errHeadless
}
