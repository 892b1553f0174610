package pipeline

import "strings"

// presenceMarkers are name fragments that weakly indicate an organization
// presenting itself as a charitable entity. A heuristic, not a verification;
// it only ever adds a small bonus.
var presenceMarkers = []string{"foundation", "fund", "charity", "relief"}

func presenceSignal(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range presenceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
