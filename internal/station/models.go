package station

import "strings"

// Station is a ward/room. The room number is its identity.
type Station struct {
	Room    int
	Name    string
	MaxBeds int
}

// String returns the display name, as a selection list shows it
func (s Station) String() string {
	return s.Name
}

// IsTest reports stations that exist only for testing the installation
func (s Station) IsTest() bool {
	return strings.EqualFold(strings.TrimSpace(s.Name), "test")
}
