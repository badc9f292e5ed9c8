// Package controller implements the stratum client controller: the
// cooperative, single-threaded loop that owns one connection to a pool,
// drives its session state machine, dispatches JSON-RPC frames, and
// bridges solutions and jobs to and from a mining worker over
// in-process channels (C3, C4, C5 of the component design).
package controller

import (
	"fmt"

	"github.com/epicminer/stratctl/internal/logger"
	"github.com/epicminer/stratctl/internal/mailbox"
	"github.com/epicminer/stratctl/internal/protocol"
	"github.com/epicminer/stratctl/internal/stats"
	"github.com/epicminer/stratctl/internal/transport"
)

// Config is the controller's static configuration, resolved once at
// construction and never mutated for the controller's lifetime.
type Config struct {
	Endpoint  string // "host:port"
	TLS       bool
	Login     string
	Password  string
	Algorithm protocol.Algorithm
	Agent     string // e.g. "epic-miner/v1.2.3"
}

// Controller is the stratum client controller. It is not safe for
// concurrent use from more than one goroutine: Run must be the only
// caller of its unexported methods.
type Controller struct {
	cfg Config

	transport *transport.Transport
	state     sessionState

	lastConnectAttempt int64
	lastReadAttempt    int64
	lastStatusRequest  int64

	ids protocol.IDCounter

	stats *stats.Stats
	log   *logger.Logger

	fromMiner *mailbox.Mailbox[ClientMessage]
	toMiner   *mailbox.Mailbox[MinerMessage]
}

// New builds a Controller bound to cfg.Algorithm for its entire
// lifetime. fromMiner/toMiner are the two halves of the unbounded
// miner↔controller mailbox pair (§5); their ownership is split at
// construction per §3's lifecycle note.
func New(cfg Config, st *stats.Stats, log *logger.Logger, fromMiner *mailbox.Mailbox[ClientMessage], toMiner *mailbox.Mailbox[MinerMessage]) *Controller {
	st.SetAlgorithmNeeded(cfg.Algorithm.Display())
	return &Controller{
		cfg:       cfg,
		state:     stateDisconnected,
		stats:     st,
		log:       log,
		fromMiner: fromMiner,
		toMiner:   toMiner,
	}
}

func dialTransport(endpoint string, useTLS bool) (*transport.Transport, error) {
	return transport.Connect(endpoint, useTLS)
}

// sendToMiner delivers msg without blocking the loop. The mailbox is
// unbounded, so this can never fail or drop a message; it exists as a
// named seam mirroring §5's "shared-resource policy" rather than to
// guard against a full queue.
func (c *Controller) sendToMiner(msg MinerMessage) {
	c.toMiner.Send(msg)
}

func (c *Controller) nextID() string { return c.ids.Next() }

func (c *Controller) writeRequest(req *protocol.RpcRequest, sentLine string) {
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		c.log.Errorf("controller", "encode %s request: %v", req.Method, err)
		return
	}
	if c.transport == nil {
		return
	}
	if err := c.transport.WriteAll(data); err != nil {
		wrapped := newError(errConnection, "write "+req.Method+" request", err)
		c.log.Errorf("controller", "%v", wrapped)
		c.enterDisconnected("Can't establish connection to server")
		return
	}
	c.stats.SetLastMessageSent(sentLine)
}

func (c *Controller) sendLogin() {
	params := protocol.LoginParams{Login: c.cfg.Login, Pass: c.cfg.Password, Agent: c.cfg.Agent}
	req, err := protocol.NewRequest(c.nextID(), "login", params)
	if err != nil {
		c.log.Errorf("controller", "build login request: %v", err)
		return
	}
	c.writeRequest(req, "Last Message Sent: Login")
}

func (c *Controller) sendGetJobTemplate() {
	params := protocol.GetJobTemplateParams{Algorithm: c.cfg.Algorithm.Token()}
	req, err := protocol.NewRequest(c.nextID(), "getjobtemplate", params)
	if err != nil {
		c.log.Errorf("controller", "build getjobtemplate request: %v", err)
		return
	}
	c.writeRequest(req, "Last Message Sent: Get New Job")
}

func (c *Controller) sendStatus() {
	req, err := protocol.NewRequest(c.nextID(), "status", nil)
	if err != nil {
		c.log.Errorf("controller", "build status request: %v", err)
		return
	}
	c.writeRequest(req, "Last Message Sent: Status")
}

func (c *Controller) sendSubmit(height, jobID, nonce uint64, pow any) {
	params := protocol.SubmitParams{Height: height, JobID: jobID, Nonce: nonce, Pow: pow}
	req, err := protocol.NewRequest(c.nextID(), "submit", params)
	if err != nil {
		c.log.Errorf("controller", "build submit request: %v", err)
		return
	}
	c.writeRequest(req, fmt.Sprintf("Last Message Sent: Found share for height: %d - nonce: %d", height, nonce))
}
