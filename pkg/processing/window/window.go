// Package window selects which split rows are visible in a list of limited
// size. The goal is always the last visible row.
package window

// Select returns the indices to show for the trackable order.
// activePos is the position of the segment awaiting entry; values outside of
// the order (e.g. after the run finished) select the last position.
func Select(order []int, activePos, rows int) []int {
	n := len(order)
	if n == 0 {
		return []int{}
	}
	if rows < 1 {
		rows = 1
	}
	goal := order[n-1]
	if rows == 1 {
		return []int{goal}
	}
	if activePos < 0 || activePos >= n {
		activePos = n - 1
	}
	maxStart := max(0, (n-1)-(rows-1))
	start := min(max(activePos-(rows-2), 0), maxStart)
	end := min(start+rows-1, n-1)

	ret := make([]int, 0, rows)
	ret = append(ret, order[start:end]...)
	return append(ret, goal)
}
