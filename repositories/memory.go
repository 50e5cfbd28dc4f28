package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openbracket/tournament-engine/models"
)

// In-memory repository implementations. They back the engine's test suites
// and any embedding that does not want a database; the Postgres
// implementations are the production path.

type MemoryStore struct {
	mu           sync.Mutex
	tournaments  map[int]*models.Tournament
	participants map[int]*models.Participant
	matches      map[int]*models.Match
	nextID       int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tournaments:  make(map[int]*models.Tournament),
		participants: make(map[int]*models.Participant),
		matches:      make(map[int]*models.Match),
		nextID:       1,
	}
}

func (s *MemoryStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// RunInTx satisfies TxRunner. The store is not transactional; tests that need
// rollback behavior exercise the Postgres runner instead.
func (s *MemoryStore) RunInTx(_ context.Context, fn func(exec SQLExecutor) error) error {
	return fn(nil)
}

func (s *MemoryStore) Tournaments() TournamentRepository { return &memoryTournamentRepo{s} }
func (s *MemoryStore) Participants() ParticipantRepository {
	return &memoryParticipantRepo{s}
}
func (s *MemoryStore) Matches() MatchRepository { return &memoryMatchRepo{s} }

type memoryTournamentRepo struct{ s *MemoryStore }

func (r *memoryTournamentRepo) Create(_ context.Context, _ SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name {
			return ErrTournamentNameConflict
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Now().UTC()
	clone := *t
	r.s.tournaments[t.ID] = &clone
	return nil
}

func (r *memoryTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *memoryTournamentRepo) List(_ context.Context, filter TournamentFilter) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.Tournament{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryTournamentRepo) Update(_ context.Context, _ SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[t.ID]; !ok {
		return ErrTournamentNotFound
	}
	clone := *t
	r.s.tournaments[t.ID] = &clone
	return nil
}

type memoryParticipantRepo struct{ s *MemoryStore }

func (r *memoryParticipantRepo) Create(_ context.Context, _ SQLExecutor, p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.participants {
		if existing.TournamentID != p.TournamentID {
			continue
		}
		if existing.UserID == p.UserID {
			return ErrParticipantConflict
		}
		if existing.Seed == p.Seed {
			return ErrSeedConflict
		}
	}
	p.ID = r.s.id()
	p.CreatedAt = time.Now().UTC()
	clone := *p
	r.s.participants[p.ID] = &clone
	return nil
}

func (r *memoryParticipantRepo) GetByID(_ context.Context, id int) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memoryParticipantRepo) GetByTournamentAndUser(_ context.Context, tournamentID, userID int) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.TournamentID == tournamentID && p.UserID == userID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, ErrParticipantNotFound
}

func (r *memoryParticipantRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Participant, 0)
	for _, p := range r.s.participants {
		if p.TournamentID == tournamentID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (r *memoryParticipantRepo) CountByTournament(_ context.Context, tournamentID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, p := range r.s.participants {
		if p.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *memoryParticipantRepo) UpdateStatus(_ context.Context, _ SQLExecutor, id int, status models.ParticipantStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return ErrParticipantNotFound
	}
	p.Status = status
	return nil
}

func (r *memoryParticipantRepo) SetByeRound(_ context.Context, _ SQLExecutor, id int, round int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return ErrParticipantNotFound
	}
	p.ByeRound = &round
	p.Byes++
	return nil
}

type memoryMatchRepo struct{ s *MemoryStore }

func (r *memoryMatchRepo) Create(_ context.Context, _ SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.id()
	m.CreatedAt = time.Now().UTC()
	clone := *m
	r.s.matches[m.ID] = &clone
	return nil
}

func (r *memoryMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *memoryMatchRepo) ListByTournament(_ context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Bracket != nil && m.Bracket != *filter.Bracket {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].MatchNumber != out[j].MatchNumber {
			return out[i].MatchNumber < out[j].MatchNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryMatchRepo) UpdatePlayers(_ context.Context, _ SQLExecutor, id int, player1ID, player2ID *int, status models.MatchStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok || m.Status == models.MatchCompleted {
		return ErrMatchNotFound
	}
	m.Player1ID = player1ID
	m.Player2ID = player2ID
	m.Status = status
	return nil
}

func (r *memoryMatchRepo) Complete(_ context.Context, _ SQLExecutor, id int, winnerID int, score *string, completedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok || m.Status == models.MatchCompleted {
		return ErrMatchNotFound
	}
	m.WinnerID = &winnerID
	decoded, err := models.DecodeScore(score)
	if err != nil {
		return err
	}
	m.Score = decoded
	m.Status = models.MatchCompleted
	ts := completedAt
	m.CompletedAt = &ts
	return nil
}

func (r *memoryMatchRepo) Delete(_ context.Context, _ SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[id]; !ok {
		return ErrMatchNotFound
	}
	delete(r.s.matches, id)
	return nil
}
