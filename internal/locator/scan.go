package locator

// Scan splits the grid into house and plot positions in row-major order.
func Scan(g *Grid) (occupied, empty []Position) {
	for r := 0; r < g.rows; r++ {
		base := r * g.cols
		for c := 0; c < g.cols; c++ {
			p := Position{Row: r, Col: c}
			if g.cells[base+c] == Occupied {
				occupied = append(occupied, p)
			} else {
				empty = append(empty, p)
			}
		}
	}
	return occupied, empty
}
