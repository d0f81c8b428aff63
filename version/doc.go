// Package version reports build information for catapult binaries.
//
// Version, Commit and BuildTime are set at link time:
//
//	go build -ldflags "-X github.com/libcatapult/catapult/version.Version=1.2.0"
//
// Unset values fall back to the VCS stamps the Go toolchain embeds.
package version
