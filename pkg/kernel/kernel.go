// Package kernel detects the running kernel version and gates which
// AF_PACKET socket options pkg/tap may use. The kernel version is detected
// once at startup; each Supports call compares it against a table of
// minimum versions per feature.
package kernel

import (
	"github.com/docker/docker/pkg/parsers/kernel"
)

// FeatureFanout gates PACKET_FANOUT, which needs
// Linux >= 3.1 to fan a tap's received frames out across multiple reader
// goroutines.
const FeatureFanout = "fanout"

// FeatureQdiscBypass gates PACKET_QDISC_BYPASS, which needs Linux >= 3.14
// and lets a tap skip the queueing discipline on transmit-side captures.
const FeatureQdiscBypass = "qdisc_bypass"

var featureVersions = map[string]kernel.VersionInfo{
	FeatureFanout:      {Kernel: 3, Major: 1, Minor: 0},
	FeatureQdiscBypass: {Kernel: 3, Major: 14, Minor: 0},
}

var detectedVersion *kernel.VersionInfo

func init() {
	v, err := detect()
	if err != nil {
		// No usable kernel version (unsupported platform, or a detection
		// failure): every gated feature is treated as unavailable rather
		// than panicking the process, since pkg/tap has a fallback path
		// for each of them.
		detectedVersion = nil
		return
	}
	detectedVersion = v
}

// Supports reports whether the running kernel is new enough for the named
// feature. An unknown feature name or an undetectable kernel version both
// report false rather than erroring, since every caller already has a
// conservative fallback.
func Supports(feature string) bool {
	required, ok := featureVersions[feature]
	if !ok || detectedVersion == nil {
		return false
	}
	return kernel.CompareKernelVersion(*detectedVersion, required) >= 0
}

// Version returns the detected kernel version and true, or false if it
// could not be determined (e.g. an unsupported platform).
func Version() (kernel.VersionInfo, bool) {
	if detectedVersion == nil {
		return kernel.VersionInfo{}, false
	}
	return *detectedVersion, true
}

// overrideForTest replaces the detected version, restoring it via the
// returned func. Exported only to _test.go files in this package via the
// lowercase name (same-package visibility), mirroring pkg/linux's test
// practice of overriding linuxKernelVersion instead of calling uname(2).
func overrideForTest(v *kernel.VersionInfo) (restore func()) {
	prev := detectedVersion
	detectedVersion = v
	return func() { detectedVersion = prev }
}
