package store

import (
	"context"
	"fmt"
)

// InitSchema creates the knowledge engine tables if they do not exist.
// It is called once during process bootstrap, before any job starts.
//
// The vector column size is fixed here for the whole table: switching to an
// embedding provider with a different output size means dropping and
// recreating event_embeddings (and re-running the pipeline), not a runtime
// reconciliation.
func (s *PostgresStore) InitSchema(ctx context.Context, dimension int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS knowledge_events (
			id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id      text NOT NULL,
			source       text NOT NULL,
			event_type   text NOT NULL CHECK (event_type IN ('create', 'update', 'upsert', 'delete', 'log')),
			content      text NOT NULL,
			timestamp    timestamptz NOT NULL DEFAULT now(),
			project_id   text,
			mood         text,
			sentiment    text,
			intensity    double precision,
			tags         text[] NOT NULL DEFAULT '{}',
			raw_metadata jsonb NOT NULL DEFAULT '{}',
			created_at   timestamptz NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_knowledge_events_user_ts
			ON knowledge_events (user_id, timestamp DESC)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS event_embeddings (
			event_id   uuid PRIMARY KEY REFERENCES knowledge_events(id) ON DELETE CASCADE,
			vector     vector(%d) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, dimension),

		`CREATE TABLE IF NOT EXISTS insights (
			id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id      text NOT NULL,
			scope        text NOT NULL,
			title        text NOT NULL,
			body         text NOT NULL,
			sources      text[] NOT NULL DEFAULT '{}',
			confidence   double precision NOT NULL,
			created_at   timestamptz NOT NULL DEFAULT now(),
			seen_at      timestamptz,
			dismissed_at timestamptz,
			muted        boolean NOT NULL DEFAULT false,
			meta         jsonb NOT NULL DEFAULT '{}'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_insights_user_created
			ON insights (user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
