package playground

import "fmt"

// Zone ids for mouse hit testing.
const (
	zoneButton       = "playground-button"
	zoneSearch       = "playground-search"
	zoneDropdown     = "playground-dropdown"
	zoneOptionPrefix = "playground-option:"
)

func zoneID(t Target) string {
	switch t {
	case TargetButton:
		return zoneButton
	case TargetSearch:
		return zoneSearch
	case TargetDropdown:
		return zoneDropdown
	}
	return ""
}

func optionZoneID(i int) string {
	return fmt.Sprintf("%s%d", zoneOptionPrefix, i)
}
