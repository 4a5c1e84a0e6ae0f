// Package dsp holds the small amount of signal processing the RF utility
// needs: windowed FFT magnitude spectra for verifying injected test tones.
package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const adcScale = 2048.0 // 2^11 for the 12-bit signed converters

// Hamming returns a Hamming window of length n.
func Hamming(n int) []float64 {
	if n <= 0 {
		return nil
	}
	win := make([]float64, n)
	for i := range win {
		win[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return win
}

// FFTShift reorders FFT output so that DC sits at the center bin.
func FFTShift(data []complex128) []complex128 {
	half := len(data) / 2
	return append(data[half:], data[:half]...)
}

// SpectrumDBFS windows the samples, runs an FFT, and returns the shifted
// magnitude spectrum in dBFS, normalized by the window sum.
func SpectrumDBFS(samples []complex64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	win := Hamming(len(samples))
	windowed := make([]complex128, len(samples))
	sumWin := 0.0
	for i, v := range samples {
		windowed[i] = complex(float64(real(v))*win[i], float64(imag(v))*win[i])
		sumWin += win[i]
	}

	fft := fourier.NewCmplxFFT(len(samples)).Coefficients(nil, windowed)
	shifted := FFTShift(fft)

	dbfs := make([]float64, len(shifted))
	for i, v := range shifted {
		mag := cmplx.Abs(v) / sumWin
		if mag == 0 {
			dbfs[i] = math.Inf(-1)
			continue
		}
		dbfs[i] = 20 * math.Log10(mag/adcScale)
	}
	return dbfs
}

// IQFromInterleaved deinterleaves one channel's IQ stream out of a raw
// multi-channel int16 capture (frame layout I0 Q0 I1 Q1 ...).
func IQFromInterleaved(samples []int16, channels, ch int) []complex64 {
	if channels <= 0 || ch < 0 || ch >= channels {
		return nil
	}
	stride := 2 * channels
	n := len(samples) / stride
	out := make([]complex64, n)
	scale := float32(1.0 / 2048.0)
	for i := 0; i < n; i++ {
		out[i] = complex(
			float32(samples[i*stride+2*ch])*scale,
			float32(samples[i*stride+2*ch+1])*scale,
		)
	}
	return out
}
