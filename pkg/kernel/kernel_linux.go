//go:build linux

package kernel

import (
	"github.com/docker/docker/pkg/parsers/kernel"
)

func detect() (*kernel.VersionInfo, error) {
	return kernel.GetKernelVersion()
}
