// Package protocol implements the JSON-RPC data model and wire encoding
// used to talk to an Epic-family mining pool: request/response shapes,
// job templates, and the algorithm enumeration the controller is bound to.
package protocol

import "fmt"

// Algorithm is the closed set of proof-of-work algorithms a controller
// can be configured for. It is bound for the controller's entire lifetime.
type Algorithm int

const (
	AlgorithmCuckoo Algorithm = iota
	AlgorithmRandomX
	AlgorithmProgPow
)

// Token returns the lowercase ASCII wire form of the algorithm.
func (a Algorithm) Token() string {
	switch a {
	case AlgorithmCuckoo:
		return "cuckoo"
	case AlgorithmRandomX:
		return "randomx"
	case AlgorithmProgPow:
		return "progpow"
	default:
		return "unknown"
	}
}

func (a Algorithm) String() string { return a.Token() }

// Display returns the capitalized form used in human-facing stats
// fields (e.g. "Cuckatoo", "RandomX", "ProgPow") — distinct from the
// lowercase wire token.
func (a Algorithm) Display() string {
	switch a {
	case AlgorithmCuckoo:
		return "Cuckatoo"
	case AlgorithmRandomX:
		return "RandomX"
	case AlgorithmProgPow:
		return "ProgPow"
	default:
		return "Unknown"
	}
}

// ParseAlgorithm maps a lowercase wire token to an Algorithm.
func ParseAlgorithm(token string) (Algorithm, error) {
	switch token {
	case "cuckoo":
		return AlgorithmCuckoo, nil
	case "randomx":
		return AlgorithmRandomX, nil
	case "progpow":
		return AlgorithmProgPow, nil
	default:
		return 0, fmt.Errorf("unrecognized algorithm %q", token)
	}
}
