package messaging

import "context"

// PublisherInterface defines the contract for event publishing
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
	Close() error
}

var _ PublisherInterface = (*Publisher)(nil)
