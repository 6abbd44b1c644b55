package transport

import "strings"

// Address identifies a listening context on a Bus.
type Address string

// Coordinator is the address of the background coordinator.
const Coordinator Address = "coordinator"

const (
	surfacePrefix = "surface/"
	panelPrefix   = "panel/"
)

// SurfaceAddress is where the page session of a surface listens.
func SurfaceAddress(surfaceID string) Address {
	return Address(surfacePrefix + surfaceID)
}

// PanelAddress is where the panel embedded in a surface listens.
func PanelAddress(surfaceID string) Address {
	return Address(panelPrefix + surfaceID)
}

// SurfaceID returns the surface id of a surface or panel address.
func (a Address) SurfaceID() (string, bool) {
	s := string(a)
	if id, ok := strings.CutPrefix(s, surfacePrefix); ok {
		return id, true
	}
	if id, ok := strings.CutPrefix(s, panelPrefix); ok {
		return id, true
	}
	return "", false
}

func (a Address) String() string { return string(a) }
