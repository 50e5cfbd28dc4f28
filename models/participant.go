package models

import "time"

type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "registered"
	ParticipantActive     ParticipantStatus = "active"
	ParticipantEliminated ParticipantStatus = "eliminated"
)

// Participant is one entrant in a tournament. Seed is unique within the
// tournament and fixed at registration; 1 is the strongest.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	UserID       int               `json:"user_id" db:"user_id"`
	Seed         int               `json:"seed" db:"seed"`
	Status       ParticipantStatus `json:"status" db:"status"`
	// ByeRound records the most recent round in which the participant
	// received a bye; Byes counts them all. A second bye is possible when
	// the round count exceeds the field size, and each one scores.
	ByeRound  *int      `json:"bye_round,omitempty" db:"bye_round"`
	Byes      int       `json:"byes" db:"byes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
