package calib

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeProber serves a scripted grid and records every delay write.
type fakeProber struct {
	grid    SyncGrid
	applied []Setting
	dirs    []Direction
	current Setting
	failAt  *Setting // SetDelays error injection
}

func (f *fakeProber) SetDelays(dir Direction, clk, dat int) error {
	if f.failAt != nil && f.failAt.Clk == clk && f.failAt.Dat == dat {
		return errors.New("spi timeout")
	}
	f.current = Setting{Clk: clk, Dat: dat}
	f.applied = append(f.applied, f.current)
	f.dirs = append(f.dirs, dir)
	return nil
}

func (f *fakeProber) PRBSSynced() bool {
	return f.grid[f.current.Clk][f.current.Dat]
}

func newTestScanner(p *fakeProber) *Scanner {
	return &Scanner{Prober: p, Settle: time.Nanosecond}
}

func TestScanVisitsEveryCellOnce(t *testing.T) {
	p := &fakeProber{}
	fillRow(&p.grid, 5, 3, 7)
	s := newTestScanner(p)

	res, err := s.Scan(RX)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// 256 probe writes plus the final commit.
	if len(p.applied) != GridSize*GridSize+1 {
		t.Fatalf("delay writes = %d, want %d", len(p.applied), GridSize*GridSize+1)
	}
	// Row-major, low-to-high.
	for i, set := range p.applied[:GridSize*GridSize] {
		if set.Clk != i/GridSize || set.Dat != i%GridSize {
			t.Fatalf("probe %d = %+v, out of scan order", i, set)
		}
	}
	for _, d := range p.dirs {
		if d != RX {
			t.Fatal("probe addressed the wrong direction")
		}
	}
	if res.Grid != p.grid {
		t.Error("recorded grid differs from hardware responses")
	}
}

func TestScanCommitsCenteredSetting(t *testing.T) {
	p := &fakeProber{}
	fillRow(&p.grid, 5, 3, 7)
	s := newTestScanner(p)

	res, err := s.Scan(TX)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.Found {
		t.Fatal("expected a valid window")
	}
	want := Setting{Clk: 5, Dat: 6}
	if res.Best != want {
		t.Errorf("best = %+v, want %+v", res.Best, want)
	}
	if last := p.applied[len(p.applied)-1]; last != want {
		t.Errorf("committed setting = %+v, want %+v", last, want)
	}
}

func TestScanNoWindowLeavesDelaysUntouched(t *testing.T) {
	p := &fakeProber{} // all-false grid
	var out strings.Builder
	s := newTestScanner(p)
	s.Out = &out

	res, err := s.Scan(RX)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Found {
		t.Fatal("found a window in an all-false grid")
	}
	// Only the 256 probe writes; no commit.
	if len(p.applied) != GridSize*GridSize {
		t.Errorf("delay writes = %d, want %d (no commit)", len(p.applied), GridSize*GridSize)
	}
	if !strings.Contains(out.String(), "No valid RX Clk/Dat delay settings found.") {
		t.Error("missing not-found diagnostic in scan output")
	}
}

func TestScanMinRunLenRejectsNarrowWindow(t *testing.T) {
	p := &fakeProber{}
	p.grid[8][8] = true // single lucky lock
	s := newTestScanner(p)

	res, err := s.Scan(RX)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.Found || res.Best != (Setting{Clk: 8, Dat: 8}) {
		t.Fatalf("default MinRunLen must accept a length-1 window, got %+v", res)
	}

	p2 := &fakeProber{grid: p.grid}
	s2 := newTestScanner(p2)
	s2.MinRunLen = 3
	res, err = s2.Scan(RX)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Found {
		t.Error("MinRunLen=3 accepted a length-1 window")
	}
}

func TestScanPropagatesTransportFault(t *testing.T) {
	p := &fakeProber{failAt: &Setting{Clk: 2, Dat: 9}}
	s := newTestScanner(p)

	if _, err := s.Scan(RX); err == nil {
		t.Fatal("expected transport fault to propagate")
	}
}

func TestScanTableOutput(t *testing.T) {
	p := &fakeProber{}
	fillRow(&p.grid, 0, 0, 2)
	var out strings.Builder
	s := newTestScanner(p)
	s.Out = &out

	if _, err := s.Scan(TX); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "TX Clk/Dat delays scan...") {
		t.Error("missing scan banner")
	}
	if !strings.Contains(got, "  0     |  1  1  0") {
		t.Errorf("row 0 not rendered as expected:\n%s", got)
	}
	if !strings.Contains(got, "Optimal TX Clk Delay: 0, Optimal TX Dat Delay: 1") {
		t.Errorf("missing optimal-setting line:\n%s", got)
	}
}
