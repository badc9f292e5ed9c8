package controller

import "github.com/epicminer/stratctl/internal/protocol"

// ClientMessage is sent by the miner worker to the controller over an
// unbounded channel. It is a closed sum type; exactly one of the
// constructors below should be used to build a value.
type ClientMessage struct {
	kind     clientMsgKind
	height   uint64
	solution protocol.Solution
}

type clientMsgKind int

const (
	clientMsgFoundSolution clientMsgKind = iota
	clientMsgShutdown
)

// FoundSolution builds a ClientMessage reporting a candidate solution
// found at the given block height.
func FoundSolution(height uint64, sol protocol.Solution) ClientMessage {
	return ClientMessage{kind: clientMsgFoundSolution, height: height, solution: sol}
}

// Shutdown builds the ClientMessage that tells the controller loop to
// return. It is the only cancellation signal the loop recognizes.
func Shutdown() ClientMessage {
	return ClientMessage{kind: clientMsgShutdown}
}

// MinerMessage is sent by the controller to the miner worker over an
// unbounded channel, describing job lifecycle events.
type MinerMessage struct {
	kind       minerMsgKind
	height     uint64
	jobID      uint64
	difficulty uint64
	prePow     string
	epochs     protocol.EpochTemplate
}

type minerMsgKind int

const (
	minerMsgReceivedJob minerMsgKind = iota
	minerMsgReceivedSeed
	minerMsgStopJob
)

// ReceivedJob builds the MinerMessage delivered when an inbound job
// targets the controller's own algorithm.
func ReceivedJob(height, jobID, difficulty uint64, prePow string) MinerMessage {
	return MinerMessage{kind: minerMsgReceivedJob, height: height, jobID: jobID, difficulty: difficulty, prePow: prePow}
}

// ReceivedSeed builds the MinerMessage carrying opaque epoch data.
func ReceivedSeed(epochs protocol.EpochTemplate) MinerMessage {
	return MinerMessage{kind: minerMsgReceivedSeed, epochs: epochs}
}

// StopJob builds the MinerMessage telling the miner to halt work,
// either because of an algorithm mismatch or a transport disconnect.
func StopJob() MinerMessage {
	return MinerMessage{kind: minerMsgStopJob}
}

// Kind-testing accessors, used by the miner worker (and tests) to
// switch on the message without exposing the internal enum.

func (m MinerMessage) IsReceivedJob() bool  { return m.kind == minerMsgReceivedJob }
func (m MinerMessage) IsReceivedSeed() bool { return m.kind == minerMsgReceivedSeed }
func (m MinerMessage) IsStopJob() bool      { return m.kind == minerMsgStopJob }

func (m MinerMessage) Job() (height, jobID, difficulty uint64, prePow string) {
	return m.height, m.jobID, m.difficulty, m.prePow
}

func (m MinerMessage) Seed() protocol.EpochTemplate { return m.epochs }

func (m ClientMessage) IsShutdown() bool { return m.kind == clientMsgShutdown }

func (m ClientMessage) Solution() (height uint64, sol protocol.Solution) {
	return m.height, m.solution
}
