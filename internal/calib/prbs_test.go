package calib

import (
	"errors"
	"testing"
	"time"
)

// seqRecorder captures the global order of BIST plumbing and scan steps.
type seqRecorder struct {
	steps []string
}

type seqPhy struct {
	rec     *seqRecorder
	loopErr error
}

func (p *seqPhy) InjectRXPRBS() error {
	p.rec.steps = append(p.rec.steps, "inject-rx-prbs")
	return nil
}

func (p *seqPhy) EnableLoopback() error {
	p.rec.steps = append(p.rec.steps, "loopback")
	return p.loopErr
}

type seqFabric struct {
	rec *seqRecorder
}

func (f *seqFabric) SetTXPRBS(enable bool) {
	if enable {
		f.rec.steps = append(f.rec.steps, "fabric-tx-prbs-on")
	} else {
		f.rec.steps = append(f.rec.steps, "fabric-tx-prbs-off")
	}
}

// seqProber reports a healthy window per direction and records which scan
// ran when.
type seqProber struct {
	rec  *seqRecorder
	grid map[Direction]*SyncGrid
	cur  Setting
	dir  Direction
}

func (p *seqProber) SetDelays(dir Direction, clk, dat int) error {
	if len(p.rec.steps) == 0 || p.rec.steps[len(p.rec.steps)-1] != "scan-"+dir.String() {
		p.rec.steps = append(p.rec.steps, "scan-"+dir.String())
	}
	p.dir = dir
	p.cur = Setting{Clk: clk, Dat: dat}
	return nil
}

func (p *seqProber) PRBSSynced() bool {
	return p.grid[p.dir][p.cur.Clk][p.cur.Dat]
}

func TestCalibratorSequence(t *testing.T) {
	rec := &seqRecorder{}
	rxGrid, txGrid := &SyncGrid{}, &SyncGrid{}
	fillRow(rxGrid, 4, 2, 6)
	fillRow(txGrid, 9, 5, 4)

	c := &Calibrator{
		Scanner: &Scanner{
			Prober: &seqProber{rec: rec, grid: map[Direction]*SyncGrid{RX: rxGrid, TX: txGrid}},
			Settle: time.Nanosecond,
		},
		Phy:    &seqPhy{rec: rec},
		Fabric: &seqFabric{rec: rec},
	}

	rx, tx, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"fabric-tx-prbs-off",
		"inject-rx-prbs",
		"scan-RX",
		"loopback",
		"fabric-tx-prbs-on",
		"scan-TX",
	}
	if len(rec.steps) != len(want) {
		t.Fatalf("steps = %v, want %v", rec.steps, want)
	}
	for i := range want {
		if rec.steps[i] != want[i] {
			t.Fatalf("step %d = %q, want %q (full: %v)", i, rec.steps[i], want[i], rec.steps)
		}
	}

	if !rx.Found || rx.Best != (Setting{Clk: 4, Dat: 5}) {
		t.Errorf("RX result = %+v, want centered (4,5)", rx)
	}
	if !tx.Found || tx.Best != (Setting{Clk: 9, Dat: 7}) {
		t.Errorf("TX result = %+v, want centered (9,7)", tx)
	}
}

func TestCalibratorContinuesWithoutRXWindow(t *testing.T) {
	// An uncalibrated RX direction is a diagnostic outcome; the TX scan
	// must still run.
	rec := &seqRecorder{}
	txGrid := &SyncGrid{}
	fillRow(txGrid, 1, 1, 3)

	c := &Calibrator{
		Scanner: &Scanner{
			Prober: &seqProber{rec: rec, grid: map[Direction]*SyncGrid{RX: {}, TX: txGrid}},
			Settle: time.Nanosecond,
		},
		Phy:    &seqPhy{rec: rec},
		Fabric: &seqFabric{rec: rec},
	}

	rx, tx, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rx.Found {
		t.Error("RX unexpectedly found a window")
	}
	if !tx.Found {
		t.Error("TX scan did not run to a result")
	}
}

func TestCalibratorLoopbackFaultAborts(t *testing.T) {
	rec := &seqRecorder{}
	rxGrid := &SyncGrid{}
	fillRow(rxGrid, 0, 0, 4)

	c := &Calibrator{
		Scanner: &Scanner{
			Prober: &seqProber{rec: rec, grid: map[Direction]*SyncGrid{RX: rxGrid, TX: {}}},
			Settle: time.Nanosecond,
		},
		Phy:    &seqPhy{rec: rec, loopErr: errors.New("spi timeout")},
		Fabric: &seqFabric{rec: rec},
	}

	if _, _, err := c.Run(); err == nil {
		t.Fatal("expected loopback fault to abort calibration")
	}
	for _, s := range rec.steps {
		if s == "scan-TX" {
			t.Fatal("TX scan ran after loopback fault")
		}
	}
}
