package ports

import "context"

// MatchResult is the final outcome of a match as recorded by the ResultStore.
type MatchResult struct {
	MatchCode     string
	RedScore      int
	BlueScore     int
	RedPlayerIDs  []string
	BluePlayerIDs []string
}

// ResultStore persists finished matches and player points.
type ResultStore interface {
	// SaveMatchResult records the final scores and the players of each team.
	SaveMatchResult(ctx context.Context, result MatchResult) error

	// AwardPointsToWinners adds points to every listed player.
	AwardPointsToWinners(ctx context.Context, playerIDs []string, points int) error
}
