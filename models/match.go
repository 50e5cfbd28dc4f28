package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MatchStatus string

const (
	// MatchWaiting means at least one player slot is still empty.
	MatchWaiting MatchStatus = "waiting"
	// MatchPending means both players were known when the match was generated.
	MatchPending MatchStatus = "pending"
	// MatchScheduled means the second player arrived through advancement.
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
)

// BracketType distinguishes the parallel structures of a double elimination
// tournament. Empty for all other formats.
type BracketType string

const (
	BracketNone            BracketType = ""
	BracketWinners         BracketType = "winners"
	BracketLosers          BracketType = "losers"
	BracketGrandFinal      BracketType = "grand_final"
	BracketGrandFinalReset BracketType = "grand_final_reset"
)

// Match is a single pairing inside a tournament. Round and MatchNumber are
// 1-based; MatchNumber is unique within round+bracket but not necessarily
// contiguous (single elimination keeps virtual slot numbers across byes).
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Round        int         `json:"round" db:"round"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	Bracket      BracketType `json:"bracket,omitempty" db:"bracket"`
	Player1ID    *int        `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID    *int        `json:"player2_id,omitempty" db:"player2_id"`
	Status       MatchStatus `json:"status" db:"status"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	Score        *MatchScore `json:"score,omitempty" db:"-"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

// HasPlayer reports whether participantID occupies one of the match's slots.
func (m *Match) HasPlayer(participantID int) bool {
	return (m.Player1ID != nil && *m.Player1ID == participantID) ||
		(m.Player2ID != nil && *m.Player2ID == participantID)
}

// LoserID returns the participant who did not win. Valid only for a
// completed match with both players set.
func (m *Match) LoserID() *int {
	if m.WinnerID == nil || m.Player1ID == nil || m.Player2ID == nil {
		return nil
	}
	if *m.WinnerID == *m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

// MatchScore is the structured result payload recorded when a match
// completes: per-player point totals plus an open metadata map for anything
// format- or venue-specific the caller wants to keep.
type MatchScore struct {
	Player1 int               `json:"player1"`
	Player2 int               `json:"player2"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Validate rejects score payloads that cannot describe a finished match.
func (s *MatchScore) Validate() error {
	if s == nil {
		return nil
	}
	if s.Player1 < 0 || s.Player2 < 0 {
		return fmt.Errorf("score values must not be negative")
	}
	return nil
}

// EncodeScore serializes a score for storage in the matches.score column.
func EncodeScore(s *MatchScore) (*string, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode match score: %w", err)
	}
	out := string(raw)
	return &out, nil
}

// DecodeScore parses a stored score column value.
func DecodeScore(raw *string) (*MatchScore, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var s MatchScore
	if err := json.Unmarshal([]byte(*raw), &s); err != nil {
		return nil, fmt.Errorf("decode match score: %w", err)
	}
	return &s, nil
}
