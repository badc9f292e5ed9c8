package controller

import "time"

// sessionState is the C4 session state machine: Disconnected →
// Connecting → Authenticating → Steady, with any transport failure
// returning to Disconnected.
type sessionState int

const (
	stateDisconnected sessionState = iota
	stateConnecting
	stateAuthenticating
	stateSteady
)

func (s sessionState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnecting:
		return "connecting"
	case stateAuthenticating:
		return "authenticating"
	case stateSteady:
		return "steady"
	default:
		return "unknown"
	}
}

const (
	retryInterval  = 5  // seconds
	readInterval   = 1  // seconds
	statusInterval = 30 // seconds
)

// enterDisconnected transitions to Disconnected. If the previous state
// was Steady (i.e. we were authenticated), the miner is told to stop
// working — its job is no longer valid. The disconnect moment also
// restarts the retry cooldown (Testable Property / S5: "a reconnect is
// not attempted before 5s have elapsed") — without this, a failure long
// after the original connect attempt would see the retry interval
// already elapsed and reconnect immediately.
func (c *Controller) enterDisconnected(status string) {
	wasSteady := c.state == stateSteady
	c.state = stateDisconnected
	c.transport = nil
	c.lastConnectAttempt = time.Now().Unix()
	c.stats.SetConnected(false, status)
	if wasSteady {
		c.sendToMiner(StopJob())
	}
}

// attemptConnect runs the Connecting state: a synchronous connect
// attempt, gated to at most once per retry interval by the caller.
// On success the state becomes Authenticating; on failure it returns
// to Disconnected with a descriptive status.
func (c *Controller) attemptConnect(now int64) {
	c.state = stateConnecting
	c.lastConnectAttempt = now

	t, err := dialTransport(c.cfg.Endpoint, c.cfg.TLS)
	if err != nil {
		wrapped := newError(errConnection, "connect to "+c.cfg.Endpoint+" failed", err)
		c.log.Errorf("controller", "%v", wrapped)
		c.enterDisconnected("Can't establish connection to server")
		return
	}

	c.transport = t
	c.state = stateAuthenticating
	c.stats.SetConnected(true, "Connected")
	c.authenticate()
}

// authenticate runs the Authenticating state: send login (unless the
// configured login is empty — Design Notes §9's login-empty
// short-circuit) and getjobtemplate, then move to Steady. A login
// failure is handled by its response handler, not here. A failed write
// of either request has already dropped the transport and returned the
// session to Disconnected, which is left in place.
func (c *Controller) authenticate() {
	if c.cfg.Login != "" {
		c.sendLogin()
	}
	c.sendGetJobTemplate()
	if c.state == stateAuthenticating {
		c.state = stateSteady
	}
}
