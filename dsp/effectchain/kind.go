package effectchain

// Kind identifies the primitive implementing an effect. The set is closed.
type Kind int

const (
	KindChorus Kind = iota + 1
	KindReverb
	KindDistortion
	KindGain
	KindCompressor
	KindHighpassFilter
	KindLowpassFilter
	KindNoiseGate
	KindLimiter
	KindPhaser
	KindDelay
	KindPitchShift
	KindBitcrush
	KindClipping
	KindGSMFullRateCompressor
	KindHighShelfFilter
	KindLowShelfFilter
	KindMP3Compressor
	KindLadderFilter
	KindPeakFilter
	KindResample
)

var kindIDs = [...]string{
	KindChorus:                "Chorus",
	KindReverb:                "Reverb",
	KindDistortion:            "Distortion",
	KindGain:                  "Gain",
	KindCompressor:            "Compressor",
	KindHighpassFilter:        "HighpassFilter",
	KindLowpassFilter:         "LowpassFilter",
	KindNoiseGate:             "NoiseGate",
	KindLimiter:               "Limiter",
	KindPhaser:                "Phaser",
	KindDelay:                 "Delay",
	KindPitchShift:            "PitchShift",
	KindBitcrush:              "Bitcrush",
	KindClipping:              "Clipping",
	KindGSMFullRateCompressor: "GSMFullRateCompressor",
	KindHighShelfFilter:       "HighShelfFilter",
	KindLowShelfFilter:        "LowShelfFilter",
	KindMP3Compressor:         "MP3Compressor",
	KindLadderFilter:          "LadderFilter",
	KindPeakFilter:            "PeakFilter",
	KindResample:              "Resample",
}

// IntegerParams lists parameters rounded half up (toward +Inf) before use.
var IntegerParams = map[string]struct{}{
	"semitones":          {},
	"bit_depth":          {},
	"target_sample_rate": {},
}

// ParseKind resolves an implementation id such as "Reverb".
func ParseKind(id string) (Kind, bool) {
	for k := KindChorus; k <= KindResample; k++ {
		if kindIDs[k] == id {
			return k, true
		}
	}

	return 0, false
}

// Kinds returns every supported kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindIDs)-1)
	for k := KindChorus; k <= KindResample; k++ {
		out = append(out, k)
	}

	return out
}

func (k Kind) String() string {
	if k < KindChorus || k > KindResample {
		return "Unknown"
	}

	return kindIDs[k]
}
