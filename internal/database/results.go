package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/ports"
)

// StoredResult is a persisted match outcome.
type StoredResult struct {
	ID            string         `json:"id"`
	MatchCode     string         `json:"match_code"`
	RedScore      int            `json:"red_score"`
	BlueScore     int            `json:"blue_score"`
	Winner        *internal.Team `json:"winner"`
	RedPlayerIDs  []string       `json:"red_player_ids"`
	BluePlayerIDs []string       `json:"blue_player_ids"`
	CreatedAt     time.Time      `json:"created_at"`
}

const idSeparator = ","

func (s *service) SaveMatchResult(ctx context.Context, result ports.MatchResult) error {
	var winner sql.NullString
	switch {
	case result.RedScore > result.BlueScore:
		winner = sql.NullString{String: string(internal.TeamRed), Valid: true}
	case result.BlueScore > result.RedScore:
		winner = sql.NullString{String: string(internal.TeamBlue), Valid: true}
	}

	q := s.sb.Insert("match_results").
		Columns("id", "match_code", "red_score", "blue_score", "winner",
			"red_player_ids", "blue_player_ids", "created_at").
		Values(uuid.NewString(), result.MatchCode, result.RedScore, result.BlueScore, winner,
			strings.Join(result.RedPlayerIDs, idSeparator),
			strings.Join(result.BluePlayerIDs, idSeparator),
			time.Now().UTC())

	if _, err := qExec(ctx, s.db, q); err != nil {
		return fmt.Errorf("save result of match %s: %w", result.MatchCode, err)
	}
	log.WithField("match", result.MatchCode).Infof("[SaveMatchResult] Stored red=%d blue=%d",
		result.RedScore, result.BlueScore)
	return nil
}

// AwardPointsToWinners adds points to every player in one transaction.
func (s *service) AwardPointsToWinners(ctx context.Context, playerIDs []string, points int) error {
	if len(playerIDs) == 0 || points == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin award transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, id := range playerIDs {
		q := s.sb.Insert("player_points").
			Columns("player_id", "points", "updated_at").
			Values(id, points, now).
			Suffix("ON CONFLICT (player_id) DO UPDATE SET points = player_points.points + excluded.points, updated_at = excluded.updated_at")
		if _, err := qExec(ctx, tx, q); err != nil {
			return fmt.Errorf("award %d points to %s: %w", points, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit award transaction: %w", err)
	}
	log.Infof("[AwardPointsToWinners] Awarded %d points to %v", points, playerIDs)
	return nil
}

// PlayerPoints returns the accumulated points of a player, zero if unknown.
func (s *service) PlayerPoints(ctx context.Context, playerID string) (int, error) {
	var points int
	err := qRow(ctx, s.db, s.sb.Select("points").From("player_points").Where(sq.Eq{"player_id": playerID})).
		Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("points of %s: %w", playerID, err)
	}
	return points, nil
}

// ResultsForMatch lists stored outcomes for a match code, newest first.
func (s *service) ResultsForMatch(ctx context.Context, matchCode string) ([]StoredResult, error) {
	q := s.sb.Select("id", "match_code", "red_score", "blue_score", "winner",
		"red_player_ids", "blue_player_ids", "created_at").
		From("match_results").
		Where(sq.Eq{"match_code": matchCode}).
		OrderBy("created_at DESC")

	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("results of match %s: %w", matchCode, err)
	}
	defer rows.Close()

	results := make([]StoredResult, 0)
	for rows.Next() {
		var (
			r       StoredResult
			winner  sql.NullString
			redIDs  string
			blueIDs string
		)
		if err := rows.Scan(&r.ID, &r.MatchCode, &r.RedScore, &r.BlueScore, &winner,
			&redIDs, &blueIDs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result of match %s: %w", matchCode, err)
		}
		if winner.Valid {
			team := internal.Team(winner.String)
			r.Winner = &team
		}
		r.RedPlayerIDs = splitIDs(redIDs)
		r.BluePlayerIDs = splitIDs(blueIDs)
		results = append(results, r)
	}
	return results, rows.Err()
}

func splitIDs(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, idSeparator)
}
