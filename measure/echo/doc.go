// Package echo measures the repeat structure of a delay output.
//
// Given the response of a feedback delay to a short excitation, the
// analyzer recovers:
//
//   - Period: spacing between repeats, from the FFT autocorrelation
//   - Gain: amplitude ratio between successive repeats (the loop gain)
//   - Repeats: number of repeats above the detection floor
//   - DecayTime: time for the repeats to fall by 60 dB
//
// # Usage
//
//	a := echo.NewAnalyzer(48000)
//	res, err := a.Analyze(response)
//	fmt.Printf("%.1f ms, gain %.2f\n", res.PeriodMs, res.Gain)
package echo
