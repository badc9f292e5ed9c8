package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// peekFrame is the first parse phase: just enough structure to
// classify the frame by method without committing to a shape.
type peekFrame struct {
	Method string `json:"method"`
}

// Frame is a decoded line: exactly one of Request / Response is set,
// according to IsServerRequest's rule.
type Frame struct {
	Request  *RpcRequest
	Response *RpcResponse
}

// IsServerRequest reports whether method classifies as the server's
// sole outbound request type. Per the wire protocol, "job" is the only
// method the server ever initiates; every other method name appearing
// on an inbound frame is the server echoing back a prior client call.
func IsServerRequest(method string) bool {
	return method == "job"
}

// DecodeLine runs the two-phase parse: peek at method, then decode the
// full typed shape. A frame that isn't a JSON object, or whose typed
// fields don't decode, is reported as an error — callers log and drop
// it without tearing down the session.
func DecodeLine(line []byte) (*Frame, error) {
	if trimmed := bytes.TrimSpace(line); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("decode frame: not a JSON object")
	}

	var peek peekFrame
	if err := json.Unmarshal(line, &peek); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	if IsServerRequest(peek.Method) {
		var req RpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("decode request %q: %w", peek.Method, err)
		}
		return &Frame{Request: &req}, nil
	}

	var resp RpcResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", peek.Method, err)
	}
	resp.Normalize()
	return &Frame{Response: &resp}, nil
}

// IDCounter hands out decimal-string request ids. It is monotonically
// non-decreasing within a process but is allowed to repeat across
// reconnects — the protocol never correlates by id, only by method
// echo, so repetition is harmless.
type IDCounter struct {
	next atomic.Uint64
}

// Next returns the next request id as a decimal string.
func (c *IDCounter) Next() string {
	v := c.next.Add(1)
	return itoa(v)
}

// EncodeRequest serializes req as canonical JSON followed by a single
// trailing newline. Callers own framing; the transport does not add one.
func EncodeRequest(req *RpcRequest) ([]byte, error) {
	if req.Jsonrpc == "" {
		req.Jsonrpc = "2.0"
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request %q: %w", req.Method, err)
	}
	return append(data, '\n'), nil
}

// NewRequest builds a login/getjobtemplate/status/submit request frame
// stamped with the given id and jsonrpc version.
func NewRequest(id, method string, params any) (*RpcRequest, error) {
	req := &RpcRequest{ID: id, Jsonrpc: "2.0", Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode params for %q: %w", method, err)
		}
		req.Params = raw
	}
	return req, nil
}
