package stats

import (
	"sync"
	"testing"
)

func TestNewSetsAlgorithm(t *testing.T) {
	s := New("cuckoo")
	client, _ := s.Snapshot()
	if client.MyAlgorithm != "cuckoo" {
		t.Errorf("MyAlgorithm = %q, want cuckoo", client.MyAlgorithm)
	}
	if client.Connected {
		t.Error("a freshly constructed Stats should not report connected")
	}
}

func TestIncShareAccepted(t *testing.T) {
	s := New("cuckoo")
	s.IncShareAccepted(false)
	s.IncShareAccepted(true)

	_, sol := s.Snapshot()
	if sol.NumSharesAccepted != 2 {
		t.Errorf("NumSharesAccepted = %d, want 2", sol.NumSharesAccepted)
	}
	if sol.NumBlocksFound != 1 {
		t.Errorf("NumBlocksFound = %d, want 1", sol.NumBlocksFound)
	}
}

func TestIncShareRejectedNeverBoth(t *testing.T) {
	s := New("cuckoo")
	s.IncShareRejected(true)
	s.IncShareRejected(false)

	_, sol := s.Snapshot()
	if sol.NumStaled != 1 {
		t.Errorf("NumStaled = %d, want 1", sol.NumStaled)
	}
	if sol.NumRejected != 1 {
		t.Errorf("NumRejected = %d, want 1", sol.NumRejected)
	}
}

func TestSetConnectedLoginFailureInvariant(t *testing.T) {
	s := New("cuckoo")
	s.SetConnected(false, "Server requires login")

	client, _ := s.Snapshot()
	if client.Connected {
		t.Error("connection_status == \"Server requires login\" must imply connected == false")
	}
	if client.ConnectionStatus != "Server requires login" {
		t.Errorf("ConnectionStatus = %q", client.ConnectionStatus)
	}
}

func TestCountersMonotonicUnderConcurrency(t *testing.T) {
	s := New("cuckoo")
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.IncShareAccepted(false)
			} else {
				s.IncShareRejected(i%4 == 1)
			}
		}(i)
	}
	wg.Wait()

	_, sol := s.Snapshot()
	if sol.NumSharesAccepted != 50 {
		t.Errorf("NumSharesAccepted = %d, want 50", sol.NumSharesAccepted)
	}
	if sol.NumStaled+sol.NumRejected != 50 {
		t.Errorf("NumStaled+NumRejected = %d, want 50", sol.NumStaled+sol.NumRejected)
	}
}
