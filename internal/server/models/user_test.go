package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Public_DropsCredentials(t *testing.T) {
	token := "refresh"
	u := &User{
		ID:           "u1",
		UserName:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice",
		Avatar:       "http://cdn/a.png",
		Password:     "$2a$10$hash",
		RefreshToken: &token,
		CreatedAt:    time.Unix(100, 0).UTC(),
	}

	p := u.Public()
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "alice", p.UserName)
	assert.Equal(t, "http://cdn/a.png", p.Avatar)

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "password")
	assert.NotContains(t, m, "refreshToken")
	assert.NotContains(t, string(b), "$2a$10$hash")
	assert.NotContains(t, string(b), "refresh\"")
}

func TestChannelProfile_JSONFields(t *testing.T) {
	b, err := json.Marshal(ChannelProfile{UserName: "chan", SubscribersCount: 3})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"fullName", "username", "subscribersCount", "subscribedCount",
		"isSubscribed", "avatar", "coverImage", "email",
	}, keys)
}
