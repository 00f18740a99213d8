//go:build !linux

package tap

func open(iface string) (Tap, error) {
	return nil, ErrUnsupportedPlatform
}
