package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Stats summarizes the current snapshot.
type Stats struct {
	SnapshotID string      `json:"snapshot_id,omitempty"`
	LoadedAt   *time.Time  `json:"loaded_at,omitempty"`
	Launches   int         `json:"launches"`
	LaunchPads int         `json:"launch_pads"`
	FirstYear  int         `json:"first_year,omitempty"`
	LastYear   int         `json:"last_year,omitempty"`
	Sites      []SiteStats `json:"sites"`
}

// SiteStats holds per-site launch counts.
type SiteStats struct {
	SiteID   string `json:"site_id"`
	Launches int    `json:"launches"`
}

// Stats returns counts for the current snapshot.
func (c *Catalog) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Sites: []SiteStats{}}

	var loadedAt string
	err := c.db.QueryRowContext(ctx, `SELECT id, loaded_at FROM snapshots LIMIT 1`).Scan(&st.SnapshotID, &loadedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return st, nil
	case err != nil:
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, loadedAt); err == nil {
		st.LoadedAt = &t
	}

	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM launches`).Scan(&st.Launches); err != nil {
		return nil, err
	}
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM launchpads`).Scan(&st.LaunchPads); err != nil {
		return nil, err
	}
	if st.Launches > 0 {
		if err := c.db.QueryRowContext(ctx,
			`SELECT MIN(launch_year), MAX(launch_year) FROM launches`).Scan(&st.FirstYear, &st.LastYear); err != nil {
			return nil, err
		}
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT site_id, COUNT(*) AS cnt
		FROM launches
		GROUP BY site_id ORDER BY cnt DESC, site_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s SiteStats
		if err := rows.Scan(&s.SiteID, &s.Launches); err != nil {
			return nil, err
		}
		st.Sites = append(st.Sites, s)
	}
	return st, rows.Err()
}
