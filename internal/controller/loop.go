package controller

import (
	"errors"
	"time"

	"github.com/epicminer/stratctl/internal/protocol"
	"github.com/epicminer/stratctl/internal/transport"
)

// Run is the C5 controller loop: a single cooperative loop that
// multiplexes timed reads, a timed status ping, retry ticks, and
// miner-channel drains, using wall-clock unix-second deadlines. It
// returns only when the miner sends Shutdown. Besides the final 10ms
// sleep, the loop waits only inside transport calls: the synchronous
// Transport.Connect / TLS handshake inside attemptConnect, the short
// poll deadline of each ReadLine, and WriteAll.
func (c *Controller) Run() {
	for {
		now := time.Now().Unix()

		if c.state == stateDisconnected {
			if c.lastConnectAttempt == 0 || now-c.lastConnectAttempt >= retryInterval {
				c.attemptConnect(now)
			}
		} else {
			c.tickRead(now)
			c.tickStatus(now)
		}

		if c.drainMiner() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func (c *Controller) tickRead(now int64) {
	if now-c.lastReadAttempt < readInterval {
		return
	}
	c.lastReadAttempt = now

	line, err := c.transport.ReadLine()
	if err != nil {
		if errors.Is(err, transport.ErrWouldBlock) {
			return
		}
		wrapped := newError(errConnection, "read failed", err)
		c.log.Errorf("controller", "%v", wrapped)
		c.enterDisconnected("Connection to server lost")
		return
	}

	frame, err := protocol.DecodeLine(line)
	if err != nil {
		wrapped := newError(errJSON, "dropping malformed frame", err)
		c.log.Warnf("controller", "%v", wrapped)
		return
	}
	c.handleFrame(frame)
}

func (c *Controller) tickStatus(now int64) {
	if c.state != stateSteady {
		return
	}
	if now-c.lastStatusRequest < statusInterval {
		return
	}
	c.lastStatusRequest = now
	c.sendStatus()
}

// drainMiner drains the miner→controller mailbox non-blockingly,
// submitting each FoundSolution and reporting whether a Shutdown was
// observed (the only signal that ends the loop).
func (c *Controller) drainMiner() bool {
	for {
		msg, ok := c.fromMiner.TryRecv()
		if !ok {
			return false
		}
		if msg.IsShutdown() {
			return true
		}
		height, sol := msg.Solution()
		c.sendSubmit(height, sol.JobID, sol.Nonce, sol.AlgorithmParams)
	}
}
