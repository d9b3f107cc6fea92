package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/subscriptions"
	"github.com/google/uuid"
)

const (
	msgUsernameMissing  = "username is missing"
	msgChannelNotFound  = "channel does not exist"
	msgInvalidChannelID = "invalid channel id"
	msgSelfSubscription = "cannot subscribe to your own channel"
)

// ChannelService serves users seen as channels: the profile read model and
// the subscription writes behind it.
type ChannelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewChannelService(db *sql.DB, m repomanager.RepositoryManager) *ChannelService {
	return &ChannelService{db: db, repomanager: m}
}

// ChannelProfile returns the channel named username as seen by viewerID.
// An empty viewerID is an anonymous viewer and never counts as subscribed.
// Counts are numbers of subscription records, so duplicates count twice.
func (s *ChannelService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, common.Validation(msgUsernameMissing)
	}

	user, err := s.repomanager.Users(s.db).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgChannelNotFound)
		}
		return nil, common.Internal("error loading channel", err)
	}

	subs := s.repomanager.Subscriptions(s.db)

	subscribers, err := subs.Count(ctx, subscriptions.Filter{ChannelID: user.ID})
	if err != nil {
		return nil, common.Internal("error counting subscribers", err)
	}

	subscribed, err := subs.Count(ctx, subscriptions.Filter{SubscriberID: user.ID})
	if err != nil {
		return nil, common.Internal("error counting subscriptions", err)
	}

	var isSubscribed bool
	if viewerID != "" {
		isSubscribed, err = subs.Exists(ctx, subscriptions.Filter{ChannelID: user.ID, SubscriberID: viewerID})
		if err != nil {
			return nil, common.Internal("error checking subscription", err)
		}
	}

	return &models.ChannelProfile{
		FullName:         user.FullName,
		UserName:         user.UserName,
		SubscribersCount: subscribers,
		SubscribedCount:  subscribed,
		IsSubscribed:     isSubscribed,
		Avatar:           user.Avatar,
		CoverImage:       user.CoverImage,
		Email:            user.Email,
	}, nil
}

// Subscribe records that subscriberID follows channelID. Repeated calls add
// repeated records.
func (s *ChannelService) Subscribe(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	channel, err := uuid.Parse(channelID)
	if err != nil {
		return nil, common.Validation(msgInvalidChannelID)
	}
	channelID = channel.String()
	if subscriber, err := uuid.Parse(subscriberID); err == nil && subscriber == channel {
		return nil, common.Validation(msgSelfSubscription)
	}

	if _, err = s.repomanager.Users(s.db).GetByID(ctx, channelID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgChannelNotFound)
		}
		return nil, common.Internal("error loading channel", err)
	}

	sub, err := s.repomanager.Subscriptions(s.db).Create(ctx, subscriberID, channelID)
	if err != nil {
		return nil, common.Internal("error creating subscription", err)
	}
	return sub, nil
}

// Unsubscribe removes every record of subscriberID following channelID.
// It succeeds when there was nothing to remove.
func (s *ChannelService) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	channel, err := uuid.Parse(channelID)
	if err != nil {
		return common.Validation(msgInvalidChannelID)
	}
	channelID = channel.String()

	if _, err := s.repomanager.Subscriptions(s.db).Delete(ctx, subscriberID, channelID); err != nil {
		return common.Internal("error removing subscription", err)
	}
	return nil
}
