package models

// Standing is one row of the final (or current) ranking projection.
// It is derived from terminal match and participant state and never
// written back to storage.
type Standing struct {
	Rank          int               `json:"rank"`
	ParticipantID int               `json:"participant_id"`
	UserID        int               `json:"user_id"`
	Seed          int               `json:"seed"`
	Wins          int               `json:"wins"`
	Losses        int               `json:"losses"`
	Status        ParticipantStatus `json:"status"`
}
