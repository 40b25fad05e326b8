// Package version holds build metadata, overridden at link time with
// -ldflags "-X github.com/kstrohbeck/maestro/internal/version.Version=...".
package version

var Version = "dev"
