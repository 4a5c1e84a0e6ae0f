//go:build !m2sdr_1t1r

package rf

// Antenna mode is a gateware build property, selected at compile time to
// match it. Default build: 2T2R.
const (
	phyChannelMode uint32 = 0
	twoRxTwoTx            = true
)
