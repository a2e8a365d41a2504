package geom

import "strconv"

// ElementID returns the on-page identifier "{prefix}-r{row}-c{col}-{id}".
// The shape is part of the contract with downstream editors.
func ElementID(prefix string, row, col int, id string) string {
	return prefix + "-r" + strconv.Itoa(row) + "-c" + strconv.Itoa(col) + "-" + id
}

// TileID returns the tile group identifier "tile-r{row}-c{col}".
func TileID(row, col int) string {
	return "tile-r" + strconv.Itoa(row) + "-c" + strconv.Itoa(col)
}

// ClipID returns the clip-path identifier for one element instance.
func ClipID(row, col int, id string) string {
	return ElementID("clip", row, col, id)
}
