package protocol

import "encoding/json"

// RpcRequest is a JSON-RPC 2.0 request frame, either sent by the
// controller or (for method "job") received from the pool.
type RpcRequest struct {
	ID      string          `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RpcError is the error member of an RpcResponse.
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// invalidErrorResponse is substituted when a response carries neither
// a result nor an error — a malformed but otherwise parseable frame.
func invalidErrorResponse() *RpcError {
	return &RpcError{Code: 0, Message: "Invalid error response received"}
}

// RpcResponse is a JSON-RPC 2.0 response frame. Exactly one of Result
// or Error is meaningful; classification of request vs. response
// happens purely on Method (see IsServerRequest), never on ID.
type RpcResponse struct {
	ID      string          `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RpcError       `json:"error,omitempty"`
}

// Normalize substitutes the synthetic invalid-error-response value when
// neither Result nor Error was present on the wire.
func (r *RpcResponse) Normalize() {
	if len(r.Result) == 0 && r.Error == nil {
		r.Error = invalidErrorResponse()
	}
}

// algDifficulty is one element of the JobTemplate's parallel
// association lists: (algorithm name, difficulty value).
type algDifficulty struct {
	Name  string
	Value uint64
}

func (d *algDifficulty) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &d.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &d.Value)
}

func (d algDifficulty) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{d.Name, d.Value})
}

// DifficultyList is the JobTemplate's algorithm-keyed difficulty
// association list, e.g. [["cuckoo",1000],["progpow",50]].
type DifficultyList []algDifficulty

// For extracts the difficulty value for algo, defaulting to 1 if the
// algorithm is absent from the list.
func (l DifficultyList) For(algo Algorithm) uint64 {
	token := algo.Token()
	for _, d := range l {
		if d.Name == token {
			return d.Value
		}
	}
	return 1
}

// String renders a human-readable "Cuckatoo: X, ProgPow: Y, RandomX: Z"
// summary of a difficulty list, one entry per list element in list
// order (names without a display label are shown as given), used for
// the current-network-difficulty stats field.
func (l DifficultyList) String() string {
	labels := map[string]string{"cuckoo": "Cuckatoo", "progpow": "ProgPow", "randomx": "RandomX"}
	var out []byte
	for i, d := range l {
		if i > 0 {
			out = append(out, ", "...)
		}
		label, ok := labels[d.Name]
		if !ok {
			label = d.Name
		}
		out = append(out, label...)
		out = append(out, ": "...)
		out = append(out, []byte(json.Number(itoa(d.Value)))...)
	}
	return string(out)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// EpochTemplate is opaque auxiliary data (e.g. ProgPow dataset epochs)
// passed through to the miner unexamined.
type EpochTemplate json.RawMessage

func (e EpochTemplate) MarshalJSON() ([]byte, error) {
	if len(e) == 0 {
		return []byte("null"), nil
	}
	return e, nil
}

func (e *EpochTemplate) UnmarshalJSON(data []byte) error {
	*e = append((*e)[0:0], data...)
	return nil
}

// JobTemplate is the work unit sent by the pool, either unsolicited
// (method "job") or as the result of a getjobtemplate call.
type JobTemplate struct {
	Height          uint64         `json:"height"`
	JobID           uint64         `json:"job_id"`
	PrePow          string         `json:"pre_pow"`
	Algorithm       string         `json:"algorithm"`
	Difficulty      DifficultyList `json:"difficulty"`
	BlockDifficulty DifficultyList `json:"block_difficulty"`
	Epochs          EpochTemplate  `json:"epochs,omitempty"`
}

// Solution is produced by the miner worker and serialized into a
// submit request's params.
type Solution struct {
	JobID          uint64          `json:"job_id"`
	Nonce          uint64          `json:"nonce"`
	AlgorithmParams json.RawMessage `json:"algorithm_params,omitempty"`
}

// WorkerStatus is the decoded result of a status response.
type WorkerStatus struct {
	NumShares  uint64 `json:"num_shares"`
	NumInvalid uint64 `json:"num_invalid"`
	NumStale   uint64 `json:"num_stale"`
}
