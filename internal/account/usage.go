package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertUsageEvent appends a tool usage event. Callers treat this as
// best-effort; see the usage package for the failure boundary.
func (s *Store) InsertUsageEvent(ctx context.Context, userID uuid.UUID, toolSlug, action string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO tool_usage_events (user_id, tool_slug, action, created_at)
		VALUES ($1, $2, $3, now())`,
		userID, toolSlug, action,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}
	return nil
}

// UsageByTool returns per-tool event totals for the admin analytics view.
func (s *Store) UsageByTool(ctx context.Context) ([]ToolUsageCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT tool_slug, count(*) FROM tool_usage_events
		GROUP BY tool_slug ORDER BY count(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage by tool: %w", err)
	}
	defer rows.Close()

	var counts []ToolUsageCount
	for rows.Next() {
		var c ToolUsageCount
		if err := rows.Scan(&c.ToolSlug, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan usage count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// UsageByUser returns per-user event totals for the admin analytics view.
func (s *Store) UsageByUser(ctx context.Context) ([]UserUsageCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, count(*) FROM tool_usage_events
		GROUP BY user_id ORDER BY count(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage by user: %w", err)
	}
	defer rows.Close()

	var counts []UserUsageCount
	for rows.Next() {
		var c UserUsageCount
		if err := rows.Scan(&c.UserID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan usage count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
