package calib

import (
	"fmt"
	"io"
	"time"
)

// Direction selects which side of the digital interface a scan exercises.
type Direction int

const (
	RX Direction = iota
	TX
)

func (d Direction) String() string {
	if d == TX {
		return "TX"
	}
	return "RX"
}

// DelayProber is the hardware seam of the scan: it applies a tap pair to
// the direction's clock/data delay register and reports whether the PRBS
// checker is synchronized. Applying a setting perturbs the live interface,
// which is acceptable only because calibration has exclusive access and the
// path carries no traffic during the scan.
type DelayProber interface {
	SetDelays(dir Direction, clk, dat int) error
	PRBSSynced() bool
}

// DefaultSettle is the wait after each delay change before sampling the
// checker, long enough for the PRBS checker to re-lock. Lock can be
// unstable at window edges; sampling earlier reads garbage.
const DefaultSettle = 10 * time.Millisecond

// Scanner sweeps the full 16x16 delay grid of one direction and commits the
// centered optimal setting when one exists.
type Scanner struct {
	Prober DelayProber
	Settle time.Duration // settle time per cell, DefaultSettle when zero
	Out    io.Writer     // scan table and result output, io.Discard when nil

	// MinRunLen is the narrowest window accepted as a calibration result.
	// The default of 1 accepts even a single lucky lock, matching the
	// behavior this tool has always had; raise it to demand margin.
	MinRunLen int
}

// Result is the outcome of one direction's scan. When Found is false the
// hardware is left at the last probed setting and Best is meaningless.
type Result struct {
	Grid  SyncGrid
	Best  Setting
	Found bool
}

// Scan probes every tap pair of dir in row-major order, selects the widest
// synchronized window, and writes its center back to the delay register.
// A grid with no synchronized setting is a diagnostic outcome, not an
// error; errors are transport faults from the prober.
func (s *Scanner) Scan(dir Direction) (Result, error) {
	settle := s.Settle
	if settle == 0 {
		settle = DefaultSettle
	}
	out := s.Out
	if out == nil {
		out = io.Discard
	}
	minLen := s.MinRunLen
	if minLen < 1 {
		minLen = 1
	}

	var res Result

	fmt.Fprintf(out, "%s Clk/Dat delays scan...\n", dir)
	fmt.Fprintf(out, "-------------------------\n")
	fmt.Fprintf(out, "Clk/Dat |  0  1  2  3  4  5  6  7  8  9 10 11 12 13 14 15\n")
	for clk := 0; clk < GridSize; clk++ {
		fmt.Fprintf(out, " %2d     |", clk)
		for dat := 0; dat < GridSize; dat++ {
			if err := s.Prober.SetDelays(dir, clk, dat); err != nil {
				return res, fmt.Errorf("set %s delays (%d,%d): %w", dir, clk, dat, err)
			}
			time.Sleep(settle)
			synced := s.Prober.PRBSSynced()
			res.Grid[clk][dat] = synced
			v := 0
			if synced {
				v = 1
			}
			fmt.Fprintf(out, " %2d", v)
		}
		fmt.Fprintf(out, "\n")
	}

	run, ok := BestRun(&res.Grid)
	if !ok || run.Len < minLen {
		fmt.Fprintf(out, "No valid %s Clk/Dat delay settings found.\n", dir)
		return res, nil
	}

	res.Best = run.Center()
	res.Found = true
	fmt.Fprintf(out, "Optimal %s Clk Delay: %d, Optimal %s Dat Delay: %d\n",
		dir, res.Best.Clk, dir, res.Best.Dat)

	if err := s.Prober.SetDelays(dir, res.Best.Clk, res.Best.Dat); err != nil {
		return res, fmt.Errorf("commit %s delays (%d,%d): %w", dir, res.Best.Clk, res.Best.Dat, err)
	}
	return res, nil
}
