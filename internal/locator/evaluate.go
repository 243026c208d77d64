package locator

// IsFeasible reports whether p is within k of every occupied position. It
// stops at the first house that is too far away.
func IsFeasible(p Position, occupied []Position, k int) bool {
	for _, o := range occupied {
		if Distance(p, o) > k {
			return false
		}
	}
	return true
}

// Aggregate returns the feasible plots of empty, preserving their order.
func Aggregate(empty, occupied []Position, k int) []Position {
	locations := make([]Position, 0)
	for _, p := range empty {
		if IsFeasible(p, occupied, k) {
			locations = append(locations, p)
		}
	}
	return locations
}
