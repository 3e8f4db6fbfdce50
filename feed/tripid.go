package feed

import "strings"

// JR-East ODPT trip ids look like "4201301G": a 4-digit block prefix followed
// by the train number. The prefix encodes the loop direction.

// TrainNumber extracts the train number used to key tracked state,
// e.g. "4201301G" -> "301G".
func TrainNumber(tripID string) string {
	if len(tripID) > 4 {
		return tripID[4:]
	}
	return tripID
}

// Direction derives the loop direction from the trip id. Prefixes 4201 and
// 4211 are authoritative; otherwise fall back to train number parity
// (outer loop trains run odd numbers).
func Direction(tripID string) string {
	if strings.HasPrefix(tripID, "4201") {
		return "OuterLoop"
	}
	if strings.HasPrefix(tripID, "4211") {
		return "InnerLoop"
	}

	digits := 0
	for _, r := range TrainNumber(tripID) {
		if r >= '0' && r <= '9' {
			digits = digits*10 + int(r-'0')
		}
	}
	if digits > 0 {
		if digits%2 == 1 {
			return "OuterLoop"
		}
		return "InnerLoop"
	}
	return "Unknown"
}

// MatchesRoute reports whether a trip id belongs to the route identified by
// the given trip suffix (the Yamanote loop tags its trips with a trailing
// "G"). An empty suffix matches everything.
func MatchesRoute(tripID, tripSuffix string) bool {
	if tripSuffix == "" {
		return true
	}
	return strings.HasSuffix(tripID, tripSuffix)
}
