// Package stats holds the shared, lock-protected view of controller
// state that an external reader (a TUI, a status endpoint) polls.
package stats

import "sync"

// ClientStats mirrors connection-level state: whether a transport is
// currently up, the last human-readable status and message lines, and
// the algorithm the controller is bound to.
type ClientStats struct {
	Connected                bool
	ConnectionStatus         string
	MyAlgorithm              string
	AlgorithmNeeded          string
	CurrentNetworkDifficulty string
	LastMessageSent          string
	LastMessageReceived      string
}

// SolutionStats holds the non-decreasing share counters.
type SolutionStats struct {
	NumSharesAccepted uint64
	NumRejected       uint64
	NumStaled         uint64
	NumBlocksFound    uint64
}

// Stats is the aggregate shared view. A single RWMutex guards both
// nested sections; it is held only for the duration of a read or
// mutation, never across network I/O or a channel send (Testable
// Property 4 / Invariant in Design Notes — "never embed the lock
// inside the transport").
type Stats struct {
	mu       sync.RWMutex
	client   ClientStats
	solution SolutionStats
}

// New returns a Stats bound to algo, not yet connected.
func New(myAlgorithm string) *Stats {
	return &Stats{
		client: ClientStats{
			MyAlgorithm:      myAlgorithm,
			ConnectionStatus: "Not connected",
		},
	}
}

// Snapshot returns a copy of both sections for a reader.
func (s *Stats) Snapshot() (ClientStats, SolutionStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.solution
}

// SetConnected updates the connected flag and status line together,
// matching the invariant that connection_status=="Server requires
// login" implies connected==false.
func (s *Stats) SetConnected(connected bool, status string) {
	s.mu.Lock()
	s.client.Connected = connected
	s.client.ConnectionStatus = status
	s.mu.Unlock()
}

func (s *Stats) SetAlgorithmNeeded(token string) {
	s.mu.Lock()
	s.client.AlgorithmNeeded = token
	s.mu.Unlock()
}

func (s *Stats) SetNetworkDifficulty(display string) {
	s.mu.Lock()
	s.client.CurrentNetworkDifficulty = display
	s.mu.Unlock()
}

func (s *Stats) SetLastMessageSent(line string) {
	s.mu.Lock()
	s.client.LastMessageSent = line
	s.mu.Unlock()
}

func (s *Stats) SetLastMessageReceived(line string) {
	s.mu.Lock()
	s.client.LastMessageReceived = line
	s.mu.Unlock()
}

// IncShareAccepted increments the accepted-share counter by one and,
// if blockFound, also increments the block counter. Called once per
// inbound submit response whose result was present (Testable
// Property 1).
func (s *Stats) IncShareAccepted(blockFound bool) {
	s.mu.Lock()
	s.solution.NumSharesAccepted++
	if blockFound {
		s.solution.NumBlocksFound++
	}
	s.mu.Unlock()
}

// IncShareRejected increments either the staled or the plain-rejected
// counter, never both (Testable Property 2).
func (s *Stats) IncShareRejected(stale bool) {
	s.mu.Lock()
	if stale {
		s.solution.NumStaled++
	} else {
		s.solution.NumRejected++
	}
	s.mu.Unlock()
}
