package controller

import (
	"testing"
	"time"

	"github.com/epicminer/stratctl/internal/protocol"
)

// S5 (partial): a mid-session disconnect must restart the retry
// cooldown at the disconnect moment, not leave it anchored to the
// original connect attempt — otherwise a failure long after that
// original attempt would see the retry interval already elapsed and
// reconnect on the very next loop tick instead of waiting 5s.
func TestEnterDisconnected_ResetsRetryCooldown(t *testing.T) {
	c, toMiner := newTestController(protocol.AlgorithmCuckoo)
	c.state = stateSteady
	c.lastConnectAttempt = time.Now().Add(-1 * time.Hour).Unix()

	before := time.Now().Unix()
	c.enterDisconnected("Connection to server lost")
	after := time.Now().Unix()

	if c.lastConnectAttempt < before || c.lastConnectAttempt > after {
		t.Fatalf("lastConnectAttempt = %d, want within [%d, %d]", c.lastConnectAttempt, before, after)
	}
	if c.state != stateDisconnected {
		t.Errorf("state = %v, want disconnected", c.state)
	}

	msg, ok := toMiner.TryRecv()
	if !ok || !msg.IsStopJob() {
		t.Fatalf("expected StopJob after a Steady-state disconnect, got %+v (ok=%v)", msg, ok)
	}
}

func TestEnterDisconnected_NoStopJobWhenNotSteady(t *testing.T) {
	c, toMiner := newTestController(protocol.AlgorithmCuckoo)
	c.state = stateConnecting

	c.enterDisconnected("Can't establish connection to server")

	if msg, ok := toMiner.TryRecv(); ok {
		t.Fatalf("expected no miner message from a non-Steady disconnect, got %+v", msg)
	}
}
