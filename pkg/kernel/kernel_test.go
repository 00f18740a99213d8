package kernel

import (
	"testing"

	"github.com/docker/docker/pkg/parsers/kernel"
)

func TestSupportsGatesOnVersion(t *testing.T) {
	restore := overrideForTest(&kernel.VersionInfo{Kernel: 3, Major: 0, Minor: 0})
	defer restore()

	if Supports(FeatureFanout) {
		t.Error("3.0 should not support fanout (needs 3.1)")
	}
	if Supports(FeatureQdiscBypass) {
		t.Error("3.0 should not support qdisc bypass (needs 3.14)")
	}
}

func TestSupportsOnNewKernel(t *testing.T) {
	restore := overrideForTest(&kernel.VersionInfo{Kernel: 5, Major: 10, Minor: 0})
	defer restore()

	if !Supports(FeatureFanout) {
		t.Error("5.10 should support fanout")
	}
	if !Supports(FeatureQdiscBypass) {
		t.Error("5.10 should support qdisc bypass")
	}
}

func TestSupportsFalseWhenVersionUndetected(t *testing.T) {
	restore := overrideForTest(nil)
	defer restore()

	if Supports(FeatureFanout) {
		t.Error("an undetected kernel version must never report feature support")
	}
}

func TestSupportsFalseForUnknownFeature(t *testing.T) {
	restore := overrideForTest(&kernel.VersionInfo{Kernel: 99, Major: 0, Minor: 0})
	defer restore()

	if Supports("not-a-real-feature") {
		t.Error("an unknown feature name must report false, not panic")
	}
}
