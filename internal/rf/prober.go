package rf

import (
	"github.com/rjboer/GoM2SDR/internal/ad9361"
	"github.com/rjboer/GoM2SDR/internal/calib"
	"github.com/rjboer/GoM2SDR/litepcie"
)

// prbsHardware adapts the transceiver facade and the fabric CSRs to the
// seams the calibration engine scans through.
type prbsHardware struct {
	phy  Transceiver
	regs litepcie.RegIO
}

var (
	_ calib.DelayProber   = (*prbsHardware)(nil)
	_ calib.PatternSource = (*prbsHardware)(nil)
	_ calib.FabricPRBS    = (*prbsHardware)(nil)
)

func (h *prbsHardware) SetDelays(dir calib.Direction, clk, dat int) error {
	path := ad9361.PathRX
	if dir == calib.TX {
		path = ad9361.PathTX
	}
	return h.phy.SetClockDataDelays(path, clk, dat)
}

func (h *prbsHardware) PRBSSynced() bool {
	return h.regs.ReadL(litepcie.CSRAD9361PRBSRX)&litepcie.PRBSRXSyncBit != 0
}

func (h *prbsHardware) InjectRXPRBS() error {
	return h.phy.SetBISTPRBS(ad9361.InjRX)
}

func (h *prbsHardware) EnableLoopback() error {
	return h.phy.SetBISTLoopback(true)
}

func (h *prbsHardware) SetTXPRBS(enable bool) {
	var v uint32
	if enable {
		v = litepcie.PRBSTXEnableBit
	}
	h.regs.WriteL(litepcie.CSRAD9361PRBSTX, v)
}
