package controller

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/epicminer/stratctl/internal/logger"
	"github.com/epicminer/stratctl/internal/mailbox"
	"github.com/epicminer/stratctl/internal/protocol"
	"github.com/epicminer/stratctl/internal/stats"
)

type fakeRequest struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func acceptOne(t *testing.T, l net.Listener) net.Conn {
	t.Helper()
	conn, err := l.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	return conn
}

func readRequest(t *testing.T, r *bufio.Reader) fakeRequest {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read request line: %v", err)
	}
	var req fakeRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		t.Fatalf("decode request %q: %v", line, err)
	}
	return req
}

func newControllerForLoop(t *testing.T, endpoint string, algo protocol.Algorithm) (*Controller, *mailbox.Mailbox[ClientMessage], *mailbox.Mailbox[MinerMessage]) {
	t.Helper()
	fromMiner := mailbox.New[ClientMessage]()
	toMiner := mailbox.New[MinerMessage]()
	st := stats.New(algo.Token())
	log := logger.New("error")
	c := New(Config{Endpoint: endpoint, Login: "alice", Password: "x", Algorithm: algo}, st, log, fromMiner, toMiner)
	return c, fromMiner, toMiner
}

// S1: cold start, plain TCP, successful login — ReceivedJob then
// ReceivedSeed reach the miner, in that order, and stats.connected
// becomes true.
func TestRun_ColdStartSuccessfulLogin(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	c, fromMiner, toMiner := newControllerForLoop(t, l.Addr().String(), protocol.AlgorithmCuckoo)

	done := make(chan struct{})
	go func() { c.Run(); close(done) }()

	conn := acceptOne(t, l)
	defer conn.Close()
	r := bufio.NewReader(conn)

	loginReq := readRequest(t, r)
	if loginReq.Method != "login" {
		t.Fatalf("first request method = %q, want login", loginReq.Method)
	}
	var loginParams protocol.LoginParams
	if err := json.Unmarshal(loginReq.Params, &loginParams); err != nil {
		t.Fatalf("decode login params: %v", err)
	}
	if loginParams.Login != "alice" {
		t.Errorf("login.login = %q, want alice", loginParams.Login)
	}
	conn.Write([]byte(`{"id":"` + loginReq.ID + `","jsonrpc":"2.0","method":"login","result":"ok"}` + "\n"))

	jobTmplReq := readRequest(t, r)
	if jobTmplReq.Method != "getjobtemplate" {
		t.Fatalf("second request method = %q, want getjobtemplate", jobTmplReq.Method)
	}

	tmpl := protocol.JobTemplate{
		Height:     100,
		JobID:      7,
		PrePow:     "cafebabe",
		Algorithm:  "cuckoo",
		Difficulty: protocol.DifficultyList{{Name: "cuckoo", Value: 7}},
	}
	tmplJSON, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatalf("marshal template: %v", err)
	}
	resp := `{"id":"` + jobTmplReq.ID + `","jsonrpc":"2.0","method":"getjobtemplate","result":` + string(tmplJSON) + `}` + "\n"
	conn.Write([]byte(resp))

	first := waitForMinerMessage(t, toMiner)
	if !first.IsReceivedJob() {
		t.Fatalf("expected ReceivedJob first, got %+v", first)
	}
	height, jobID, diff, prePow := first.Job()
	if height != 100 || jobID != 7 || diff != 7 || prePow != "cafebabe" {
		t.Errorf("unexpected job: height=%d job_id=%d diff=%d pre_pow=%q", height, jobID, diff, prePow)
	}

	second := waitForMinerMessage(t, toMiner)
	if !second.IsReceivedSeed() {
		t.Fatalf("expected ReceivedSeed second, got %+v", second)
	}

	if !waitForConnected(t, c) {
		t.Fatal("stats.connected did not become true")
	}

	fromMiner.Send(Shutdown())
	waitForDone(t, done)
}

// S6: malformed frame tolerance — a non-JSON line is logged and
// dropped, a subsequent well-formed frame is still processed.
func TestRun_MalformedFrameTolerance(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	c, fromMiner, _ := newControllerForLoop(t, l.Addr().String(), protocol.AlgorithmCuckoo)

	done := make(chan struct{})
	go func() { c.Run(); close(done) }()

	conn := acceptOne(t, l)
	defer conn.Close()
	r := bufio.NewReader(conn)

	readRequest(t, r) // login
	conn.Write([]byte(`{"id":"0","jsonrpc":"2.0","method":"login","result":"ok"}` + "\n"))
	readRequest(t, r) // getjobtemplate
	conn.Write([]byte("not-json\n"))
	conn.Write([]byte(`{"id":"1","jsonrpc":"2.0","method":"status","result":{"num_shares":1,"num_invalid":0,"num_stale":0}}` + "\n"))

	const wantStatus = "Last Message Received: Status accepted=1 rejected=0 stale=0"
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		client, _ := c.stats.Snapshot()
		if client.LastMessageReceived == wantStatus {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	client, _ := c.stats.Snapshot()
	if client.LastMessageReceived != wantStatus {
		t.Errorf("LastMessageReceived = %q, want %q", client.LastMessageReceived, wantStatus)
	}
	if !client.Connected {
		t.Error("transport should remain connected after a malformed frame")
	}

	fromMiner.Send(Shutdown())
	waitForDone(t, done)
}

func waitForMinerMessage(t *testing.T, mb *mailbox.Mailbox[MinerMessage]) MinerMessage {
	t.Helper()
	result := make(chan MinerMessage, 1)
	go func() {
		msg, _ := mb.Recv()
		result <- msg
	}()
	select {
	case msg := <-result:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a miner message")
		return MinerMessage{}
	}
}

func waitForConnected(t *testing.T, c *Controller) bool {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		client, _ := c.stats.Snapshot()
		if client.Connected {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func waitForDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("controller.Run did not return after Shutdown")
	}
}
