// Package catalog indexes loaded page data in an in-memory SQLite database
// so the derived lists (available years, per-site counts) come from SQL.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/space-missions/internal/filter"
	"github.com/rcliao/space-missions/internal/model"
)

// MemoryDSN keeps the catalog in memory for the life of the process.
const MemoryDSN = ":memory:"

// Catalog is a SQLite-backed index of one page-data snapshot.
type Catalog struct {
	db  *sql.DB
	loc *time.Location

	mu      sync.Mutex
	entropy *rand.Rand
}

// Open opens the catalog at dsn (MemoryDSN when empty). loc is the zone
// launch years are derived in; nil means time.Local.
func Open(dsn string, loc *time.Location) (*Catalog, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if loc == nil {
		loc = time.Local
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// Every new connection to an in-memory database is a new database.
	db.SetMaxOpenConns(1)

	c := &Catalog{
		db:      db,
		loc:     loc,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c *Catalog) newID(now time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), c.entropy).String()
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS launches (
		seq           INTEGER PRIMARY KEY,
		flight_number INTEGER NOT NULL,
		rocket_name   TEXT NOT NULL,
		payload_id    TEXT,
		site_id       TEXT NOT NULL,
		launch_year   INTEGER NOT NULL,
		body          TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_launches_site ON launches(site_id);
	CREATE INDEX IF NOT EXISTS idx_launches_year ON launches(launch_year);

	CREATE TABLE IF NOT EXISTS launchpads (
		seq     INTEGER PRIMARY KEY,
		site_id TEXT NOT NULL,
		name    TEXT NOT NULL,
		status  TEXT,
		body    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id        TEXT PRIMARY KEY,
		loaded_at TEXT NOT NULL,
		launches  INTEGER NOT NULL,
		pads      INTEGER NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Load replaces the catalog contents with the given launches and pads and
// returns the new snapshot id.
func (c *Catalog) Load(ctx context.Context, launches []model.Launch, pads []model.LaunchPad) (string, error) {
	now := time.Now().UTC()
	id := c.newID(now)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	for _, table := range []string{"launches", "launchpads", "snapshots"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return "", fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, l := range launches {
		body, err := json.Marshal(l)
		if err != nil {
			return "", fmt.Errorf("encode launch %d: %w", l.FlightNumber, err)
		}
		var payloadID *string
		if p, ok := l.PrimaryPayloadID(); ok {
			payloadID = &p
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO launches (seq, flight_number, rocket_name, payload_id, site_id, launch_year, body)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, l.FlightNumber, l.Rocket.RocketName, payloadID, l.LaunchSite.SiteID,
			filter.LaunchYear(l, c.loc), string(body))
		if err != nil {
			return "", fmt.Errorf("insert launch: %w", err)
		}
	}

	for i, p := range pads {
		body, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("encode pad %s: %w", p.SiteID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO launchpads (seq, site_id, name, status, body) VALUES (?, ?, ?, ?, ?)`,
			i, p.SiteID, p.Name, p.Status, string(body))
		if err != nil {
			return "", fmt.Errorf("insert launch pad: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, loaded_at, launches, pads) VALUES (?, ?, ?, ?)`,
		id, now.Format(time.RFC3339), len(launches), len(pads))
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Launches returns the loaded launches in load order.
func (c *Catalog) Launches(ctx context.Context) ([]model.Launch, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT body FROM launches ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Launch{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var l model.Launch
		if err := json.Unmarshal([]byte(body), &l); err != nil {
			return nil, fmt.Errorf("decode launch: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LaunchPads returns the loaded pads in load order.
func (c *Catalog) LaunchPads(ctx context.Context) ([]model.LaunchPad, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT body FROM launchpads ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LaunchPad{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var p model.LaunchPad
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decode launch pad: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AvailableYears returns the distinct launch years, ascending.
func (c *Catalog) AvailableYears(ctx context.Context) ([]int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT launch_year FROM launches ORDER BY launch_year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// Close closes the database. An in-memory catalog is discarded.
func (c *Catalog) Close() error {
	return c.db.Close()
}
