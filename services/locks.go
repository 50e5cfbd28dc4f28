package services

import "sync"

// TournamentLocks serializes all mutating lifecycle operations per
// tournament: two results reported for the same tournament must not
// interleave their advancement writes. Operations on different tournaments
// proceed in parallel. One registry is shared by every service touching
// tournament state.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[int]*sync.Mutex)}
}

// Lock acquires the mutex for a tournament and returns its unlock func.
func (l *TournamentLocks) Lock(tournamentID int) func() {
	l.mu.Lock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
