// Package hosttag names the host platform the way prebuilt toolchain
// directories are laid out ("linux-x64", "mac-arm64", ...).
package hosttag

import "runtime"

// Platform returns the host OS component of the tag.
func Platform() string {
	if runtime.GOOS == "darwin" {
		return "mac"
	}
	return runtime.GOOS
}

// Arch returns the host architecture component of the tag.
func Arch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	default:
		return runtime.GOARCH
	}
}

// Tag returns "<platform>-<arch>".
func Tag() string {
	return Platform() + "-" + Arch()
}
