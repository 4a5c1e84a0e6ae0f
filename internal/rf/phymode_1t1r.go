//go:build m2sdr_1t1r

package rf

// 1T1R build: single antenna pair, halves the digital interface clock.
const (
	phyChannelMode uint32 = 1
	twoRxTwoTx            = false
)
