package rf

// The oversample recipe reconfigures the transceiver's baseband filter,
// BIST, and data-port blocks for an overclocked digital interface,
// doubling the usable rate by disabling the half-band decimation the
// normal rate plan relies on. The values originate from the BladeRF
// 122.88MSPS work and are reproduced verbatim; they are a fixed recipe,
// not derived from the bring-up configuration, and changing individual
// values risks a dysfunctional RF path.
//
// See:
//   - https://www.nuand.com/2023-02-release-122-88mhz-bandwidth
//   - https://destevez.net/2023/02/running-the-ad9361-at-122-88-msps
//
// In 2T2R mode the FPGA-to-RFIC interface itself is overclocked from
// 245.76MHz to 491.52MHz; 1T1R mode keeps the overclock inside the RFIC.
var oversampleRecipe = []struct {
	reg uint16
	val uint8
}{
	{0x003, 0x54}, // general oversampling control

	// TX path.
	{0x002, 0xc0}, // TX enable and filter control
	{0x0c2, 0x9f}, // TX BBF R1
	{0x0c3, 0x9f}, // TX BBF R2
	{0x0c4, 0x9f}, // TX BBF R3
	{0x0c5, 0x9f}, // TX BBF R4
	{0x0c6, 0x9f}, // TX BBF real pole word
	{0x0c7, 0x00}, // TX BBF capacitor C1
	{0x0c8, 0x00}, // TX BBF capacitor C2
	{0x0c9, 0x00}, // TX BBF real pole word

	// RX path.
	{0x1e0, 0xbf},
	{0x1e4, 0xff},
	{0x1f2, 0xff},

	// Miller and BBF capacitors.
	{0x1e7, 0x00},
	{0x1e8, 0x00},
	{0x1e9, 0x00},
	{0x1ea, 0x00},
	{0x1eb, 0x00},
	{0x1ec, 0x00},
	{0x1ed, 0x00},
	{0x1ee, 0x00},
	{0x1ef, 0x00},
	{0x1e0, 0xbf},

	{0x3f6, 0x03}, // BIST and data port test config, must be 0x03
}

func applyOversampleRecipe(phy Transceiver) error {
	for _, rv := range oversampleRecipe {
		if err := phy.WriteReg(rv.reg, rv.val); err != nil {
			return err
		}
	}
	return nil
}
