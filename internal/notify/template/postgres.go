// internal/notify/template/postgres.go
package template

import (
	"context"
	"database/sql"
	"errors"

	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
)

// PostgresStore reads templates from the notification_templates table the
// admin template editor writes to.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetTemplate returns the newest active template for the triple, or
// ErrNotFound. Any other error means the store is unreachable; the resolver
// treats both the same way.
func (s *PostgresStore) GetTemplate(ctx context.Context, key string, channel Channel, audience Audience) (*Template, error) {
	var subject sql.NullString
	var body string

	err := s.db.QueryRowContext(ctx, `
		SELECT subject, body FROM notification_templates
		WHERE template_key = $1 AND channel = $2 AND audience = $3 AND is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1`,
		key, string(channel), string(audience),
	).Scan(&subject, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("notification template lookup", err)
	}

	return &Template{
		Key:      key,
		Channel:  channel,
		Audience: audience,
		Subject:  subject.String,
		Body:     body,
		Active:   true,
	}, nil
}
