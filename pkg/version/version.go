// Package version exposes the build-time version of the rolo binary.
package version

// version is overridden at build time via
// -ldflags "-X github.com/ldellis/rolo/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Set by the linker.
var version = "0.1.0-dev"

// GetVersion returns the rolo version string.
func GetVersion() string {
	return version
}
