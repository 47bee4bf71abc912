package fir

import "sync"

// Parameters of the reference anti-aliasing table.
const (
	AntiAliasSourceRate = 44100.0
	AntiAliasTargetRate = 16000.0
	AntiAliasCutoff     = 7200.0
	AntiAliasNumTaps    = 64
)

// antiAliasCoeffs is a 64-tap windowed-sinc low-pass (Kaiser beta=8,
// cutoff 7200 Hz at 44.1 kHz, ~80 dB stopband), i.e. 0.9 of the 16 kHz
// Nyquist frequency. The table is symmetric.
var antiAliasCoeffs = [AntiAliasNumTaps]float64{
	0.0000184784, -0.0000071143, -0.0000963332, -0.0001462596,
	0.0000180091, 0.0003734039, 0.0005192430, -0.0000000000,
	-0.0009897702, -0.0013696611, -0.0001297310, 0.0021426840,
	0.0030400929, 0.0005345436, -0.0040657142, -0.0060149894,
	-0.0014979200, 0.0070431688, 0.0110111194, 0.0035014124,
	-0.0115048512, -0.0192846525, -0.0074570493, 0.0183993315,
	0.0337949562, 0.0156463642, -0.0308599694, -0.0652113602,
	-0.0376749062, 0.0678416378, 0.2103109281, 0.3121149084,
	0.3121149084, 0.2103109281, 0.0678416378, -0.0376749062,
	-0.0652113602, -0.0308599694, 0.0156463642, 0.0337949562,
	0.0183993315, -0.0074570493, -0.0192846525, -0.0115048512,
	0.0035014124, 0.0110111194, 0.0070431688, -0.0014979200,
	-0.0060149894, -0.0040657142, 0.0005345436, 0.0030400929,
	0.0021426840, -0.0001297310, -0.0013696611, -0.0009897702,
	-0.0000000000, 0.0005192430, 0.0003734039, 0.0000180091,
	-0.0001462596, -0.0000963332, -0.0000071143, 0.0000184784,
}

var antiAliasTaps = sync.OnceValue(func() *Taps {
	t, err := NewTaps(antiAliasCoeffs[:])
	if err != nil {
		panic(err)
	}
	return t
})

// AntiAliasTaps returns the shared 64-tap anti-aliasing table for
// 44.1 kHz to 16 kHz downsampling. Every call returns the same table.
func AntiAliasTaps() *Taps {
	return antiAliasTaps()
}
