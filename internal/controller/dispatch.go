package controller

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/epicminer/stratctl/internal/protocol"
)

// handleFrame is the C3 entry point: classify, then dispatch to the
// request or response handler. Classification itself already happened
// in protocol.DecodeLine (method=="job" is the sole server request).
func (c *Controller) handleFrame(frame *protocol.Frame) {
	if frame.Request != nil {
		c.handleRequest(frame.Request)
		return
	}
	c.handleResponse(frame.Response)
}

func (c *Controller) handleRequest(req *protocol.RpcRequest) {
	switch req.Method {
	case "job":
		c.handleJob(req.Params)
	default:
		err := newError(errRequest, "Unknown method", nil)
		c.log.Warnf("controller", "%v (method=%q)", err, req.Method)
	}
}

// handleJob implements the job-dispatch rule shared by the inbound
// "job" request and a successful "getjobtemplate" response: forward
// ReceivedJob+ReceivedSeed when the template's algorithm matches ours,
// otherwise forward StopJob (Testable Property 5).
func (c *Controller) handleJob(params json.RawMessage) {
	if len(params) == 0 {
		err := newError(errRequest, "No params in job request", nil)
		c.log.Warnf("controller", "%v", err)
		return
	}

	var tmpl protocol.JobTemplate
	if err := json.Unmarshal(params, &tmpl); err != nil {
		wrapped := newError(errJSON, "decode job template", err)
		c.log.Warnf("controller", "%v", wrapped)
		return
	}

	c.dispatchJobTemplate(&tmpl)
}

// dispatchJobTemplate re-asserts the needed-algorithm stat on every
// decoded job template, matching or not, not just at construction. The
// value written is always the controller's own configured algorithm in
// display form; the template's algorithm field is not copied into it.
func (c *Controller) dispatchJobTemplate(tmpl *protocol.JobTemplate) {
	c.stats.SetNetworkDifficulty(tmpl.BlockDifficulty.String())
	c.stats.SetAlgorithmNeeded(c.cfg.Algorithm.Display())

	if tmpl.Algorithm != c.cfg.Algorithm.Token() {
		c.sendToMiner(StopJob())
		c.log.Infof("controller", "Last Message Received: job for algorithm %s, need %s — stopping", tmpl.Algorithm, c.cfg.Algorithm.Token())
		return
	}

	diff := tmpl.Difficulty.For(c.cfg.Algorithm)
	c.sendToMiner(ReceivedJob(tmpl.Height, tmpl.JobID, diff, tmpl.PrePow))
	c.sendToMiner(ReceivedSeed(tmpl.Epochs))
	c.stats.SetLastMessageReceived(fmt.Sprintf("Last Message Received: Start Job for Height: %d, Share Difficulty: %d", tmpl.Height, diff))
}

func (c *Controller) handleResponse(resp *protocol.RpcResponse) {
	switch resp.Method {
	case "getjobtemplate":
		c.handleGetJobTemplateResponse(resp)
	case "submit":
		c.handleSubmitResponse(resp)
	case "status":
		c.handleStatusResponse(resp)
	case "login":
		c.handleLoginResponse(resp)
	case "keepalive":
		c.handleKeepaliveResponse(resp)
	case "seed":
		c.handleSeedResponse(resp)
	default:
		err := newError(errResponse, "Unknown Response", nil)
		c.log.Debugf("controller", "%v (method=%q)", err, resp.Method)
	}
}

func (c *Controller) handleGetJobTemplateResponse(resp *protocol.RpcResponse) {
	if resp.Error != nil {
		c.stats.SetLastMessageReceived(fmt.Sprintf("Last Message Received: Failed to get job: %s", resp.Error.Message))
		return
	}
	c.handleJob(resp.Result)
}

// handleSubmitResponse classifies a submit result by exact-case
// substring match ("too late", "blockfound") — brittle, but the match
// must stay case-sensitive to track the pool's observed wording.
func (c *Controller) handleSubmitResponse(resp *protocol.RpcResponse) {
	if resp.Error != nil {
		stale := strings.Contains(resp.Error.Message, "too late")
		c.stats.IncShareRejected(stale)
		c.stats.SetLastMessageReceived(fmt.Sprintf("Last Message Received: Share rejected: %s", resp.Error.Message))
		return
	}

	blockFound := strings.Contains(string(resp.Result), "blockfound")
	c.stats.IncShareAccepted(blockFound)
	if blockFound {
		c.stats.SetLastMessageReceived("Last Message Received: Block Found!!")
	} else {
		c.stats.SetLastMessageReceived("Last Message Received: Share accepted")
	}
}

func (c *Controller) handleStatusResponse(resp *protocol.RpcResponse) {
	if resp.Error != nil {
		c.log.Warnf("controller", "status request failed: %s", resp.Error.Message)
		return
	}

	var ws protocol.WorkerStatus
	if err := json.Unmarshal(resp.Result, &ws); err != nil {
		wrapped := newError(errJSON, "decode worker status", err)
		c.log.Warnf("controller", "%v", wrapped)
		return
	}
	c.stats.SetLastMessageReceived(fmt.Sprintf(
		"Last Message Received: Status accepted=%d rejected=%d stale=%d",
		ws.NumShares, ws.NumInvalid, ws.NumStale))
}

func (c *Controller) handleLoginResponse(resp *protocol.RpcResponse) {
	if resp.Error != nil {
		c.stats.SetConnected(false, "Server requires login")
		c.stats.SetLastMessageReceived(fmt.Sprintf("Last Message Received: Failed to log in: %s", resp.Error.Message))
		c.log.Errorf("controller", "login rejected: %s", resp.Error.Message)
		return
	}
	c.stats.SetLastMessageReceived("Last Message Received: Logged in")
}

func (c *Controller) handleKeepaliveResponse(resp *protocol.RpcResponse) {
	if resp.Error != nil {
		c.log.Warnf("controller", "keepalive failed: %s", resp.Error.Message)
	}
}

func (c *Controller) handleSeedResponse(resp *protocol.RpcResponse) {
	if resp.Error != nil {
		c.log.Warnf("controller", "seed request failed: %s", resp.Error.Message)
		return
	}
	var epochs protocol.EpochTemplate
	if err := json.Unmarshal(resp.Result, &epochs); err != nil {
		wrapped := newError(errJSON, "decode seed epochs", err)
		c.log.Warnf("controller", "%v", wrapped)
		return
	}
	c.sendToMiner(ReceivedSeed(epochs))
}
