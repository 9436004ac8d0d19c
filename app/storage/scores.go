package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/sentibayes/app/storage/engine"
	"github.com/umputun/sentibayes/lib/sentiment"
)

// Scores is a storage for classification history
type Scores struct {
	*engine.SQL
	engine.RWLocker
	maxEntries int
}

// ScoreInfo is a single classification result
type ScoreInfo struct {
	ID        int64              `db:"id" json:"id"`
	GID       string             `db:"gid" json:"-"`
	Text      string             `db:"text" json:"text"`
	Score     float64            `db:"score" json:"score"`
	Polarity  sentiment.Polarity `db:"polarity" json:"polarity"`
	Timestamp time.Time          `db:"timestamp" json:"timestamp"`
}

// ScoresStats is a number of stored results per polarity
type ScoresStats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// scores queries
const (
	cmdCreateScoresTable engine.DBCmd = iota + 100
	cmdCreateScoresIndexes
	cmdAddScore
	cmdReadScores
	cmdScoresStats
	cmdCleanupScores
)

var scoresQueries = engine.NewQueryMap().
	Add(cmdCreateScoresTable, engine.Query{
		Sqlite: `CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			gid TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			score REAL NOT NULL,
			polarity TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		Postgres: `CREATE TABLE IF NOT EXISTS scores (
			id SERIAL PRIMARY KEY,
			gid TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			polarity TEXT NOT NULL,
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	}).
	AddSame(cmdCreateScoresIndexes, `CREATE INDEX IF NOT EXISTS idx_scores_gid_id ON scores(gid, id)`).
	AddSame(cmdAddScore, `INSERT INTO scores (gid, text, score, polarity, timestamp) VALUES (?, ?, ?, ?, ?)`).
	AddSame(cmdReadScores, `SELECT id, gid, text, score, polarity, timestamp FROM scores
		WHERE gid = ? ORDER BY id DESC LIMIT ?`).
	AddSame(cmdScoresStats, `SELECT polarity, COUNT(*) AS count FROM scores WHERE gid = ? GROUP BY polarity`).
	AddSame(cmdCleanupScores, `DELETE FROM scores WHERE gid = ? AND id NOT IN (
		SELECT id FROM scores WHERE gid = ? ORDER BY id DESC LIMIT ?)`)

// NewScores makes scores storage, creating the table if needed.
// maxEntries limits the number of kept results per group, 0 keeps everything.
func NewScores(ctx context.Context, db *engine.SQL, maxEntries int) (*Scores, error) {
	if db == nil {
		return nil, fmt.Errorf("no db provided")
	}
	res := &Scores{SQL: db, RWLocker: db.MakeLock(), maxEntries: maxEntries}
	cfg := engine.TableConfig{
		Name:          "scores",
		CreateTable:   cmdCreateScoresTable,
		CreateIndexes: cmdCreateScoresIndexes,
		QueriesMap:    scoresQueries,
	}
	if err := engine.InitTable(ctx, db, cfg); err != nil {
		return nil, fmt.Errorf("failed to init scores table: %w", err)
	}
	return res, nil
}

// Add stores a classification result, zero timestamp is set to now
func (s *Scores) Add(ctx context.Context, entry ScoreInfo) error {
	s.Lock()
	defer s.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	query, err := scoresQueries.Pick(s.Type(), cmdAddScore)
	if err != nil {
		return fmt.Errorf("failed to get insert query: %w", err)
	}
	if _, err = s.ExecContext(ctx, query, s.GID(), entry.Text, entry.Score, string(entry.Polarity), entry.Timestamp); err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	log.Printf("[DEBUG] score %.4f (%s) stored", entry.Score, entry.Polarity)

	if s.maxEntries <= 0 {
		return nil
	}
	cleanup, err := scoresQueries.Pick(s.Type(), cmdCleanupScores)
	if err != nil {
		return fmt.Errorf("failed to get cleanup query: %w", err)
	}
	if _, err = s.ExecContext(ctx, cleanup, s.GID(), s.GID(), s.maxEntries); err != nil {
		return fmt.Errorf("failed to cleanup scores: %w", err)
	}
	return nil
}

// Read returns up to limit latest results, newest first
func (s *Scores) Read(ctx context.Context, limit int) ([]ScoreInfo, error) {
	s.RLock()
	defer s.RUnlock()

	query, err := scoresQueries.Pick(s.Type(), cmdReadScores)
	if err != nil {
		return nil, fmt.Errorf("failed to get read query: %w", err)
	}
	res := []ScoreInfo{}
	if err = sqlx.SelectContext(ctx, s, &res, query, s.GID(), limit); err != nil {
		return nil, fmt.Errorf("failed to read scores: %w", err)
	}
	for i := range res {
		res[i].Timestamp = res[i].Timestamp.Local()
	}
	return res, nil
}

// Stats returns number of stored results per polarity
func (s *Scores) Stats(ctx context.Context) (ScoresStats, error) {
	s.RLock()
	defer s.RUnlock()

	query, err := scoresQueries.Pick(s.Type(), cmdScoresStats)
	if err != nil {
		return ScoresStats{}, fmt.Errorf("failed to get stats query: %w", err)
	}
	var counts []struct {
		Polarity sentiment.Polarity `db:"polarity"`
		Count    int                `db:"count"`
	}
	if err = sqlx.SelectContext(ctx, s, &counts, query, s.GID()); err != nil {
		return ScoresStats{}, fmt.Errorf("failed to get scores stats: %w", err)
	}

	res := ScoresStats{}
	for _, c := range counts {
		res.Total += c.Count
		switch c.Polarity {
		case sentiment.Positive:
			res.Positive = c.Count
		case sentiment.Neutral:
			res.Neutral = c.Count
		case sentiment.Negative:
			res.Negative = c.Count
		}
	}
	return res, nil
}
