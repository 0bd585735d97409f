// Package store persists feature rows, extraction runs and cached results.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

const clickhouseSchema = `
	CREATE TABLE IF NOT EXISTS battle_features (
		battle_id    String,
		profile      LowCardinality(String),
		player_won   Nullable(UInt8),
		numeric      Map(String, Float64),
		categorical  Map(String, String),
		extracted_at DateTime64(3)
	)
	ENGINE = ReplacingMergeTree(extracted_at)
	ORDER BY (profile, battle_id)
`

// OpenClickHouse connects using a clickhouse:// DSN and verifies the
// connection.
func OpenClickHouse(ctx context.Context, dsn string) (driver.Conn, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return conn, nil
}

// ClickHouseSink writes feature rows to the battle_features table. Rows are
// keyed by profile and battle id; re-extractions replace older rows on merge.
type ClickHouseSink struct {
	conn driver.Conn
	now  func() time.Time
}

// NewClickHouseSink wraps an open connection.
func NewClickHouseSink(conn driver.Conn) *ClickHouseSink {
	return &ClickHouseSink{conn: conn, now: time.Now}
}

// Migrate creates the feature table if needed.
func (s *ClickHouseSink) Migrate(ctx context.Context) error {
	if err := s.conn.Exec(ctx, clickhouseSchema); err != nil {
		return fmt.Errorf("create battle_features: %w", err)
	}
	return nil
}

// WriteFeatures inserts rows in a single batch.
func (s *ClickHouseSink) WriteFeatures(ctx context.Context, profile string, _ []models.Column, rows []models.FeatureRecord) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO battle_features (battle_id, profile, player_won, numeric, categorical, extracted_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := s.now()
	for i := range rows {
		r := &rows[i]
		if err := batch.Append(r.BattleID, profile, wonFlag(r.PlayerWon), r.Numeric, r.Categorical, now); err != nil {
			batch.Abort()
			return fmt.Errorf("append battle %s: %w", r.BattleID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// LeadWinRate is player 1's record with one lead.
type LeadWinRate struct {
	Lead    string
	Battles uint64
	Wins    uint64
}

// WinRate is Wins/Battles, 0 when there are no battles.
func (l LeadWinRate) WinRate() float64 {
	if l.Battles == 0 {
		return 0
	}
	return float64(l.Wins) / float64(l.Battles)
}

// LeadWinRates aggregates labelled rows of a profile by player 1's lead.
// The profile must emit the lead_identity unit.
func (s *ClickHouseSink) LeadWinRates(ctx context.Context, profile string, minBattles int) ([]LeadWinRate, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT categorical['p1_lead_name'] AS lead,
		       count() AS battles,
		       countIf(player_won = 1) AS wins
		FROM battle_features FINAL
		WHERE profile = ? AND player_won IS NOT NULL AND lead != ''
		GROUP BY lead
		HAVING battles >= ?
		ORDER BY battles DESC, lead
	`, profile, uint64(max(minBattles, 0)))
	if err != nil {
		return nil, fmt.Errorf("query lead win rates: %w", err)
	}
	defer rows.Close()

	var out []LeadWinRate
	for rows.Next() {
		var l LeadWinRate
		if err := rows.Scan(&l.Lead, &l.Battles, &l.Wins); err != nil {
			return nil, fmt.Errorf("scan lead win rate: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func wonFlag(won *bool) *uint8 {
	if won == nil {
		return nil
	}
	var v uint8
	if *won {
		v = 1
	}
	return &v
}
