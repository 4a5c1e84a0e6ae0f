package litepcie

// CSR map for the M2SDR gateware, BAR0-relative byte offsets. These mirror
// the csr.h generated by the gateware build; regenerating the gateware with
// a different CSR layout requires updating this table.
const (
	// Control/identification block.
	CSRCtrlReset   uint32 = 0x0000
	CSRCtrlScratch uint32 = 0x0004

	// SI5351 I2C master (bit-banged through the fabric).
	CSRI2CW uint32 = 0x1000 // SCL/SDA drive register
	CSRI2CR uint32 = 0x1004 // SDA readback register

	// AD9361 SPI master.
	CSRSPIControl uint32 = 0x2000
	CSRSPIStatus  uint32 = 0x2004
	CSRSPIMOSI    uint32 = 0x2008
	CSRSPIMISO    uint32 = 0x200c
	CSRSPICS      uint32 = 0x2010

	// AD9361 digital interface block.
	CSRAD9361PhyControl uint32 = 0x3000
	CSRAD9361BitMode    uint32 = 0x3004
	CSRAD9361PRBSTX     uint32 = 0x3008
	CSRAD9361PRBSRX     uint32 = 0x300c
)

// Bit fields within the CSRs above.
const (
	// CSRI2CW drive bits and CSRI2CR readback bit.
	i2cSCLBit   = 1 << 0
	i2cSDAOEBit = 1 << 1
	i2cSDAWBit  = 1 << 2
	i2cSDARBit  = 1 << 0

	// CSRSPIControl/CSRSPIStatus.
	spiStartBit    = 1 << 0
	spiLengthShift = 8
	spiDoneBit     = 1 << 0

	// CSRAD9361PRBSTX: bit 0 enables the FPGA-side TX PRBS generator/checker.
	PRBSTXEnableBit = 1 << 0

	// CSRAD9361PRBSRX: bit 0 reports PRBS checker synchronization.
	PRBSRXSyncBit = 1 << 0
)
