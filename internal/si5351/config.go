package si5351

// RefClk38p4Config is the register plan for a 38.4MHz reference on CLK0
// from the board's 25MHz crystal (PLLA at 806.4MHz, MultiSynth0 at /21).
// Exported from ClockBuilder Pro and reproduced verbatim; edit the project
// file and re-export rather than patching individual values.
var RefClk38p4Config = []RegVal{
	{15, 0x00}, // PLL input source: XTAL for both PLLs
	{16, 0x4f}, // CLK0: MS0 integer mode, PLLA, 8mA drive
	{17, 0x80}, // CLK1: powered down
	{18, 0x80}, // CLK2: powered down
	{19, 0x80}, // CLK3: powered down
	{20, 0x80}, // CLK4: powered down
	{21, 0x80}, // CLK5: powered down
	{22, 0x80}, // CLK6: powered down
	{23, 0x80}, // CLK7: powered down

	// PLLA feedback divider: 25MHz * (32 + 16/125) = 806.4MHz.
	{26, 0x00}, {27, 0x7d},
	{28, 0x00}, {29, 0x0e},
	{30, 0x10}, {31, 0x00},
	{32, 0x00}, {33, 0x66},

	// MultiSynth0 divider: 806.4MHz / 21 = 38.4MHz.
	{42, 0x00}, {43, 0x01},
	{44, 0x00}, {45, 0x08},
	{46, 0x80}, {47, 0x00},
	{48, 0x00}, {49, 0x00},

	// Spread spectrum off, fanout defaults.
	{149, 0x00},
	{150, 0x00},
	{151, 0x00},
	{152, 0x00},
	{153, 0x00},
	{154, 0x00},
	{155, 0x00},
	{156, 0x00},
	{157, 0x00},
	{158, 0x00},
	{159, 0x00},
	{160, 0x00},
	{161, 0x00},

	{162, 0x00},
	{163, 0x00},
	{164, 0x00},
	{165, 0x00},

	{183, 0xd2}, // crystal load capacitance: 10pF
	{187, 0xc0}, // fanout enable: XO and MS fanout on
}
