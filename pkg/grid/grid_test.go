package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 32 words per screen row
		{0, 32, 0, 0},
		{1, 32, 1, 0},
		{31, 32, 31, 0},
		{32, 32, 0, 1},
		{33, 32, 1, 1},
		{8191, 32, 31, 255},

		// 64 cols
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{1023, 64, 63, 15},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}

func TestWordPixel(t *testing.T) {
	tests := []struct {
		index, bit   int
		wantX, wantY int
	}{
		{0, 0, 0, 0},
		{0, 15, 15, 0},
		{1, 0, 16, 0},
		{32, 3, 3, 1},
		{8191, 15, 511, 255},
	}
	for _, tc := range tests {
		x, y := WordPixel(tc.index, tc.bit, 32)
		if x != tc.wantX || y != tc.wantY {
			t.Errorf("WordPixel(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.bit, x, y, tc.wantX, tc.wantY)
		}
	}
}
