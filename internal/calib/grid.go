// Package calib implements the PRBS-based interface-timing calibration
// between the FPGA fabric and the AD9361 digital interface: a 2-D eye scan
// over the clock/data delay taps of each data path, and the selection of a
// robust operating point at the center of the widest valid window.
package calib

// GridSize is the number of delay taps per axis. The AD9361 clock/data
// delay fields are 4 bits each, a fixed hardware property.
const GridSize = 16

// SyncGrid records, for every (clock delay, data delay) tap pair, whether
// the PRBS checker reported synchronization at that setting. It is filled
// row-major by the scan and read-only afterwards.
type SyncGrid [GridSize][GridSize]bool

// Run is a maximal contiguous span of synchronized settings along the data
// delay axis of a single clock delay row.
type Run struct {
	Clk   int // clock delay row
	Start int // first synchronized data delay
	Len   int // number of contiguous synchronized taps
}

// Setting is a committed clock/data delay tap pair.
type Setting struct {
	Clk int
	Dat int
}

// Center returns the operating point for a run: its clock delay row and the
// data delay at the middle of the span. Integer division biases the choice
// toward the lower half of even-length windows.
func (r Run) Center() Setting {
	return Setting{Clk: r.Clk, Dat: r.Start + r.Len/2}
}

// BestRun returns the longest run of synchronized settings in the grid.
// Rows are examined low to high and, within a row, data delays low to high;
// a later run of equal length never displaces an earlier one. The second
// return is false when the grid holds no synchronized setting at all.
func BestRun(g *SyncGrid) (Run, bool) {
	var best Run
	for clk := 0; clk < GridSize; clk++ {
		for dat := 0; dat < GridSize; dat++ {
			if !g[clk][dat] {
				continue
			}
			n := 0
			for i := dat; i < GridSize && g[clk][i]; i++ {
				n++
			}
			if n > best.Len {
				best = Run{Clk: clk, Start: dat, Len: n}
			}
		}
	}
	return best, best.Len > 0
}
