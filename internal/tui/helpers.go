package tui

// truncate shortens a string to a maximum number of runes
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func atLeast(n, min int) int {
	if n < min {
		return min
	}
	return n
}
