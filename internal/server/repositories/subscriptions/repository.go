package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/channelhub/internal/server/models"
)

// Filter narrows subscription queries. Empty fields are ignored; a filter
// with both fields empty matches every record.
type Filter struct {
	SubscriberID string
	ChannelID    string
}

type Repository interface {
	Create(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error)
	// Delete removes every record matching the pair and reports how many went.
	Delete(ctx context.Context, subscriberID, channelID string) (int64, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Exists(ctx context.Context, f Filter) (bool, error)
}
