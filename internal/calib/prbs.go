package calib

import "fmt"

// PatternSource is the transceiver-side BIST control the orchestration
// needs: PRBS injection on the receive path and the analog RX->TX loopback
// that lets the same pattern reach the transmit interface. The chip has a
// single pattern generator, so the TX side can only be tested through the
// loop.
type PatternSource interface {
	InjectRXPRBS() error
	EnableLoopback() error
}

// FabricPRBS controls the FPGA-side TX PRBS generator/checker.
type FabricPRBS interface {
	SetTXPRBS(enable bool)
}

// Calibrator sequences the RX and TX delay scans around the required BIST
// plumbing. The step order is load-bearing: each step depends on the
// hardware state the previous one leaves behind.
type Calibrator struct {
	Scanner *Scanner
	Phy     PatternSource
	Fabric  FabricPRBS
}

// Run performs the full PRBS interface calibration. Each direction's
// optimal tap pair is committed by its scan; a direction with no valid
// window is reported in the scan output and left uncalibrated.
func (c *Calibrator) Run() (rx, tx Result, err error) {
	// The FPGA generator must be quiet while the transceiver injects the
	// RX pattern, otherwise the checker sees both sources.
	c.Fabric.SetTXPRBS(false)
	if err = c.Phy.InjectRXPRBS(); err != nil {
		return rx, tx, fmt.Errorf("enable RX PRBS injection: %w", err)
	}

	rx, err = c.Scanner.Scan(RX)
	if err != nil {
		return rx, tx, err
	}

	// Route the pattern through the analog loopback so it appears on the
	// TX digital path, then let the fabric check it.
	if err = c.Phy.EnableLoopback(); err != nil {
		return rx, tx, fmt.Errorf("enable RX->TX loopback: %w", err)
	}
	c.Fabric.SetTXPRBS(true)

	tx, err = c.Scanner.Scan(TX)
	return rx, tx, err
}
