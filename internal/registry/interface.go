package registry

import "context"

//go:generate mockgen -source=interface.go -destination=../mocks/mock_registry.go -package=mocks

// Registry advertises which rooms have participants on this instance.
type Registry interface {
	Register(ctx context.Context, roomID string) error
	Deregister(ctx context.Context, roomID string) error
	Lookup(ctx context.Context, roomID string) (string, error)
	StartHeartbeat(ctx context.Context) error
	StopHeartbeat()
	Close() error
}
