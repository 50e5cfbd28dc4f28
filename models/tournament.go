package models

import "time"

// TournamentStatus represents tournament lifecycle states, matching the ENUM in the DB.
type TournamentStatus string

const (
	StatusPending      TournamentStatus = "pending"
	StatusRegistration TournamentStatus = "registration"
	StatusInProgress   TournamentStatus = "in_progress"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

// IsPreStart reports whether registration-phase operations (register, update,
// cancel, start) are still allowed.
func (s TournamentStatus) IsPreStart() bool {
	return s == StatusPending || s == StatusRegistration
}

// IsTerminal reports whether no further transition is allowed.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TournamentFormat identifies the competition format. Immutable once set.
type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatSwiss             TournamentFormat = "swiss"
)

func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin, FormatSwiss:
		return true
	}
	return false
}

// Tournament represents a tournament.
type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	Description          *string          `json:"description,omitempty" db:"description"`
	Format               TournamentFormat `json:"format" db:"format"`
	Status               TournamentStatus `json:"status" db:"status"`
	MaxParticipants      int              `json:"max_participants" db:"max_participants"`
	RegistrationDeadline time.Time        `json:"registration_deadline" db:"registration_deadline"`
	// SwissRounds caps the number of Swiss rounds. Nil means the default
	// of ceil(log2(N)) computed when the tournament starts.
	SwissRounds *int       `json:"swiss_rounds,omitempty" db:"swiss_rounds"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by the service layer.
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}
