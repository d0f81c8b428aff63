// Package queue defines the publish transport applications use next to
// storage, for example to announce that an object was uploaded.
package queue

import (
	"context"

	apperrors "github.com/libcatapult/catapult/errors"
)

// Queue publishes messages to named channels. Like storage backends, a queue
// is built unconnected; Publish fails with ErrNotConnected until Connect
// succeeds and again after Close.
type Queue interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, channel string, message []byte) error
	Close() error
}

// ErrNotConnected matches, via errors.Is, the error Publish returns outside
// the Connect/Close window.
var ErrNotConnected = apperrors.New(apperrors.ErrCodeNotConnected, "queue is not connected")
