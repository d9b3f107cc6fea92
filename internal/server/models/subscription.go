package models

import "time"

// Subscription records that Subscriber follows Channel. The same pair may
// appear more than once.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChannelProfile is a user seen as a channel, relative to a viewer.
type ChannelProfile struct {
	FullName         string `json:"fullName"`
	UserName         string `json:"username"`
	SubscribersCount int64  `json:"subscribersCount"`
	SubscribedCount  int64  `json:"subscribedCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
	Avatar           string `json:"avatar"`
	CoverImage       string `json:"coverImage"`
	Email            string `json:"email"`
}
