package dsp

// VerifyTone locates the strongest spectral peak in the capture and checks
// it falls within one bin of the expected tone frequency. It returns the
// peak's frequency and whether it matched. A zero expected frequency
// matches a DC peak.
func VerifyTone(iq []complex64, sampleRate, toneHz float64) (peakHz float64, ok bool) {
	if len(iq) == 0 || sampleRate <= 0 {
		return 0, false
	}
	spectrum := SpectrumDBFS(iq)

	peak := 0
	for i, v := range spectrum {
		if v > spectrum[peak] {
			peak = i
		}
	}

	binHz := sampleRate / float64(len(spectrum))
	peakHz = (float64(peak) - float64(len(spectrum)/2)) * binHz
	return peakHz, peakHz >= toneHz-binHz && peakHz <= toneHz+binHz
}
