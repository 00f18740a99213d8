//go:build !linux

package kernel

import (
	"errors"

	"github.com/docker/docker/pkg/parsers/kernel"
)

var errUnsupportedPlatform = errors.New("kernel: version detection is only supported on linux")

func detect() (*kernel.VersionInfo, error) {
	return nil, errUnsupportedPlatform
}
