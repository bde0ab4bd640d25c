package metricstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/padelhq/matchrank/internal/domain/model"
)

// Connection pool settings.
const (
	maxOpenConns = 25
	maxIdleConns = 5
)

// Postgres implements Store on a players table.
type Postgres struct {
	db *sql.DB
}

// Connect opens and pings a Postgres connection for the store.
func Connect(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection, mainly for tests.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Name identifies the store.
func (p *Postgres) Name() string { return "postgres" }

// Close releases the underlying connection pool.
func (p *Postgres) Close() error { return p.db.Close() }

// Ping checks store reachability, used by health reporting.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Migrate creates the players table when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		elo INTEGER NOT NULL,
		age INTEGER NOT NULL,
		gender VARCHAR(10) NOT NULL,
		category VARCHAR(20) NOT NULL,
		positions JSONB NOT NULL DEFAULT '[]',
		location JSONB NOT NULL DEFAULT '{}',
		availability JSONB NOT NULL DEFAULT '[]',
		acceptance_rate DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		last_active_days INTEGER NOT NULL DEFAULT 999
	)`
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate players table: %w", err)
	}
	return nil
}

// BatchGet fetches all requested rows with a single ANY($1) query.
func (p *Postgres) BatchGet(ctx context.Context, ids []string) (map[string]model.PlayerMetrics, error) {
	if len(ids) == 0 {
		return map[string]model.PlayerMetrics{}, nil
	}

	const query = `
		SELECT id, acceptance_rate, last_active_days, location, availability
		FROM players
		WHERE id = ANY($1)`

	rows, err := p.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: batch query: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make(map[string]model.PlayerMetrics, len(ids))
	for rows.Next() {
		var (
			id           string
			metrics      model.PlayerMetrics
			locationJSON []byte
			availJSON    []byte
		)
		if err := rows.Scan(&id, &metrics.AcceptanceRate, &metrics.LastActiveDays, &locationJSON, &availJSON); err != nil {
			return nil, fmt.Errorf("scan metrics row: %w", err)
		}
		if len(locationJSON) > 0 {
			if err := json.Unmarshal(locationJSON, &metrics.Location); err != nil {
				return nil, fmt.Errorf("decode location for %s: %w", id, err)
			}
		}
		if len(availJSON) > 0 {
			if err := json.Unmarshal(availJSON, &metrics.Availability); err != nil {
				return nil, fmt.Errorf("decode availability for %s: %w", id, err)
			}
		}
		out[id] = metrics
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %v", ErrUnavailable, err)
	}
	return out, nil
}

// InsertPlayer writes a full player row; used by seeding.
func (p *Postgres) InsertPlayer(ctx context.Context, player model.Player) error {
	positions, err := json.Marshal(player.Positions)
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	location, err := json.Marshal(player.Location)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	availability, err := json.Marshal(player.Availability)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}

	const insert = `
		INSERT INTO players (id, name, elo, age, gender, category, positions, location, availability, acceptance_rate, last_active_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			elo = EXCLUDED.elo,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			category = EXCLUDED.category,
			positions = EXCLUDED.positions,
			location = EXCLUDED.location,
			availability = EXCLUDED.availability,
			acceptance_rate = EXCLUDED.acceptance_rate,
			last_active_days = EXCLUDED.last_active_days`

	_, err = p.db.ExecContext(ctx, insert,
		player.ID, player.Name, player.Elo, player.Age,
		string(player.Gender), string(player.Category),
		positions, location, availability,
		player.AcceptanceRate, player.LastActiveDays,
	)
	if err != nil {
		return fmt.Errorf("%w: insert player %s: %v", ErrUnavailable, player.ID, err)
	}
	return nil
}
