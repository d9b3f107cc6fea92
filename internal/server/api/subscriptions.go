package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// POST /api/v1/subscriptions/c/{channelID}
func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := s.channels.Subscribe(r.Context(), GetUserID(r), chi.URLParam(r, "channelID"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]string{
		"_id":        sub.ID,
		"subscriber": sub.SubscriberID,
		"channel":    sub.ChannelID,
	}, "Subscribed successfully")
}

// DELETE /api/v1/subscriptions/c/{channelID}
func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := s.channels.Unsubscribe(r.Context(), GetUserID(r), chi.URLParam(r, "channelID")); err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, struct{}{}, "Unsubscribed successfully")
}
