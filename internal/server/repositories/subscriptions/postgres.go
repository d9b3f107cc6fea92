package subscriptions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/channelhub/internal/dbx"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	query :=
		`INSERT INTO subscriptions (subscriber_id, channel_id)
		 VALUES ($1, $2)
		 RETURNING id, subscriber_id, channel_id, created_at, updated_at`

	s := &models.Subscription{}
	err := r.db.QueryRowContext(ctx, query, subscriberID, channelID).
		Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, subscriberID, channelID string) (int64, error) {
	query :=
		`DELETE FROM subscriptions
		 WHERE subscriber_id = $1 AND channel_id = $2`

	res, err := r.db.ExecContext(ctx, query, subscriberID, channelID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Count returns the number of records, not distinct subscribers.
func (r *PostgresRepository) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := f.where()
	query := `SELECT COUNT(*) FROM subscriptions` + where

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, f Filter) (bool, error) {
	where, args := f.where()
	query := `SELECT EXISTS (SELECT 1 FROM subscriptions` + where + `)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, col+" = $"+strconv.Itoa(len(args)))
	}
	add("channel_id", f.ChannelID)
	add("subscriber_id", f.SubscriberID)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
