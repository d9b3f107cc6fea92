package subscriptions

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+subscriptions\s*\(subscriber_id,\s*channel_id\)\s*VALUES\s*\(\$1,\s*\$2\)`).
		WithArgs("viewer", "channel").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscriber_id", "channel_id", "created_at", "updated_at"}).
			AddRow("s-1", "viewer", "channel", ts, ts))

	s, err := repo.Create(context.Background(), "viewer", "channel")
	require.NoError(t, err)
	assert.Equal(t, "s-1", s.ID)
	assert.Equal(t, "viewer", s.SubscriberID)
	assert.Equal(t, "channel", s.ChannelID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+subscriptions`).WillReturnError(errors.New("fk violation"))

	_, err := repo.Create(context.Background(), "viewer", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: fk violation")
}

func TestDelete_RemovesEveryMatchingRecord(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+subscriptions\s+WHERE\s+subscriber_id\s*=\s*\$1\s+AND\s+channel_id\s*=\s*\$2$`).
		WithArgs("viewer", "channel").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Delete(context.Background(), "viewer", "channel")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCount(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		query  string
		args   []driver.Value
	}{
		{
			name:   "by channel",
			filter: Filter{ChannelID: "c"},
			query:  `^SELECT COUNT\(\*\) FROM subscriptions WHERE channel_id = \$1$`,
			args:   []driver.Value{"c"},
		},
		{
			name:   "by subscriber",
			filter: Filter{SubscriberID: "s"},
			query:  `^SELECT COUNT\(\*\) FROM subscriptions WHERE subscriber_id = \$1$`,
			args:   []driver.Value{"s"},
		},
		{
			name:   "by pair",
			filter: Filter{ChannelID: "c", SubscriberID: "s"},
			query:  `^SELECT COUNT\(\*\) FROM subscriptions WHERE channel_id = \$1 AND subscriber_id = \$2$`,
			args:   []driver.Value{"c", "s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(tt.query).WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

			n, err := repo.Count(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCount_EmptyFilterCountsAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM subscriptions$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.Count(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT EXISTS \(SELECT 1 FROM subscriptions WHERE channel_id = \$1 AND subscriber_id = \$2\)$`
	mock.ExpectQuery(q).WithArgs("c", "s").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("c", "other").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), Filter{ChannelID: "c", SubscriberID: "s"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), Filter{ChannelID: "c", SubscriberID: "other"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExists_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT EXISTS`).WillReturnError(errors.New("boom"))

	_, err := repo.Exists(context.Background(), Filter{ChannelID: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
}
