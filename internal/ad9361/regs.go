package ad9361

// SPI register map, AD9361 register reference subset used by this facade.
const (
	regSPIConf             uint16 = 0x000
	regTxEnableFilterCtrl  uint16 = 0x002
	regRxEnableFilterCtrl  uint16 = 0x003
	regInputSelect         uint16 = 0x004
	regRxClockDataDelay    uint16 = 0x006
	regTxClockDataDelay    uint16 = 0x007
	regClockEnable         uint16 = 0x009
	regBBPLLFracByte2      uint16 = 0x041
	regBBPLLFracByte1      uint16 = 0x042
	regBBPLLFracByte0      uint16 = 0x043
	regBBPLLInteger        uint16 = 0x044
	regTxFIRConfig         uint16 = 0x065
	regTxFIRCoefAddr       uint16 = 0x060
	regTxFIRCoefWriteLSB   uint16 = 0x061
	regTxFIRCoefWriteMSB   uint16 = 0x062
	regProductID           uint16 = 0x037
	regTx1AttenLSB         uint16 = 0x073
	regTx1AttenMSB         uint16 = 0x074
	regTx2AttenLSB         uint16 = 0x075
	regTx2AttenMSB         uint16 = 0x076
	regTxBBFR1             uint16 = 0x0c2
	regCalCtrl             uint16 = 0x016
	regRxFIRConfig         uint16 = 0x0f5
	regRxFIRCoefAddr       uint16 = 0x0f6
	regRxFIRCoefWriteLSB   uint16 = 0x0f7
	regRxFIRCoefWriteMSB   uint16 = 0x0f8
	regRx1ManualGainIndex  uint16 = 0x109
	regRx2ManualGainIndex  uint16 = 0x10c
	regRxBBFTuneDivide     uint16 = 0x1fb
	regRxBBFTuneDivideFrac uint16 = 0x1fc
	regTxSynthFracByte0    uint16 = 0x231
	regTxSynthFracByte1    uint16 = 0x232
	regTxSynthFracByte2    uint16 = 0x233
	regTxSynthIntByte0     uint16 = 0x234
	regTxSynthIntByte1     uint16 = 0x235
	regTxVCOCal            uint16 = 0x247
	regRxSynthFracByte0    uint16 = 0x271
	regRxSynthFracByte1    uint16 = 0x272
	regRxSynthFracByte2    uint16 = 0x273
	regRxSynthIntByte0     uint16 = 0x274
	regRxSynthIntByte1     uint16 = 0x275
	regRxVCOCal            uint16 = 0x287
	regBISTConfig          uint16 = 0x3f4
	regObserveConfig       uint16 = 0x3f5
	regBISTAndDataPortTest uint16 = 0x3f6
)

const (
	// regSPIConf bits.
	softResetBit = 0x81 // soft reset + self-clear

	// regProductID: bits [7:3] identify the part.
	productIDMask   = 0xf8
	productIDAD9361 = 0x08

	// regBISTConfig bits.
	bistEnableBit    = 1 << 0
	bistTonePRBSBit  = 1 << 1 // 0 = tone, 1 = PRBS
	bistInjTXBit     = 1 << 2 // injection point: set = TX, clear = RX
	bistToneFreqLSB  = 4      // bits [5:4], tone frequency = Fs/32 << n
	bistToneLevelLSB = 6      // bits [7:6], 0/-6/-12/-18 dB

	// regBISTAndDataPortTest bits [1:0]: loopback mode.
	loopbackRXTX = 0x01

	// regCalCtrl: start the baseband filter tune state machine.
	bbfTuneStartBit = 1 << 7

	// regTxSynthIntByte1/regRxSynthIntByte1 bit 7 arms the VCO calibration.
	vcoCalStartBit = 1 << 7
)

// bbpllModulus is the fixed modulus of the BBPLL fractional divider.
const bbpllModulus = 2088960
