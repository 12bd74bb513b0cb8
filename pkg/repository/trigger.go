package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dskvich/trigger-telegram-bot/pkg/database"
	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
)

type triggerRepository struct {
	db     *sql.DB
	driver string
}

func NewTriggerRepository(db *database.DB) *triggerRepository {
	return &triggerRepository{db: db.DB, driver: db.Driver}
}

// rebind rewrites ? placeholders into $n for postgres.
func (r *triggerRepository) rebind(query string) string {
	if r.driver != database.DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *triggerRepository) Get(ctx context.Context, key string) (*domain.TriggerConfig, error) {
	query := r.rebind(`
		SELECT trigger_text, immediate_response, delayed_response, delay_seconds
		FROM triggers
		WHERE trigger_text = ?
	`)

	var trigger domain.TriggerConfig
	err := r.db.QueryRowContext(ctx, query, key).
		Scan(&trigger.Key, &trigger.ImmediateResponse, &trigger.DelayedResponse, &trigger.DelaySeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching trigger by key: %v", domain.ErrStoreUnavailable, err)
	}

	return &trigger, nil
}

func (r *triggerRepository) Upsert(ctx context.Context, trigger domain.TriggerConfig) error {
	query := r.rebind(`
		INSERT INTO triggers (trigger_text, immediate_response, delayed_response, delay_seconds, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (trigger_text)
		DO UPDATE SET
			immediate_response = EXCLUDED.immediate_response,
			delayed_response = EXCLUDED.delayed_response,
			delay_seconds = EXCLUDED.delay_seconds,
			updated_at = EXCLUDED.updated_at
	`)

	_, err := r.db.ExecContext(ctx, query, trigger.Key, trigger.ImmediateResponse, trigger.DelayedResponse, trigger.DelaySeconds)
	if err != nil {
		return fmt.Errorf("%w: saving trigger: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *triggerRepository) Delete(ctx context.Context, key string) error {
	query := r.rebind(`DELETE FROM triggers WHERE trigger_text = ?`)

	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("%w: deleting trigger: %v", domain.ErrStoreUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting trigger: %v", domain.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *triggerRepository) List(ctx context.Context) ([]domain.TriggerConfig, error) {
	const query = `
		SELECT trigger_text, immediate_response, delayed_response, delay_seconds
		FROM triggers
		ORDER BY trigger_text
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing triggers: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var triggers []domain.TriggerConfig
	for rows.Next() {
		var trigger domain.TriggerConfig
		if err := rows.Scan(&trigger.Key, &trigger.ImmediateResponse, &trigger.DelayedResponse, &trigger.DelaySeconds); err != nil {
			return nil, fmt.Errorf("%w: scanning trigger: %v", domain.ErrStoreUnavailable, err)
		}
		triggers = append(triggers, trigger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing triggers: %v", domain.ErrStoreUnavailable, err)
	}

	return triggers, nil
}
