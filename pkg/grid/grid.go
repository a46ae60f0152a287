// Package grid maps linear memory indices onto two-dimensional screen
// positions.
package grid

// GetGridCoords returns the column and row of index in a grid cols wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// WordPixel returns the pixel position of bit within screen word index on a
// display where each row is wordsPerRow words of 16 pixels. Bit 0 is the
// leftmost pixel of the word.
func WordPixel(index, bit, wordsPerRow int) (x, y int) {
	col, row := GetGridCoords(index, wordsPerRow)
	return col*16 + bit, row
}
