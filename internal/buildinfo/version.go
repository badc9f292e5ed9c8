// Package buildinfo holds the version string sent as the login
// request's agent field, mirroring env!("CARGO_PKG_VERSION") in the
// original Rust client.
package buildinfo

// Version is overridable at build time via -ldflags
// "-X github.com/epicminer/stratctl/internal/buildinfo.Version=...".
var Version = "0.1.0"

// Agent returns the "epic-miner/v<version>" string sent with login.
func Agent() string {
	return "epic-miner/v" + Version
}
