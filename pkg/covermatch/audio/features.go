// Package audio extracts the four-channel harmonic feature set used for
// cover matching: chroma (STFT and constant-Q style), tonnetz, and spectral
// contrast, each averaged over frames into a single fixed-length vector.
package audio

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ryanseay/covermatch/pkg/covermatch"
)

// Feature vector dimensions.
const (
	chromaBins   = 12
	tonnetzDims  = 6
	contrastBins = 7 // 6 octave bands plus the sub-band
)

// c1Hz is the reference frequency of pitch C1, anchoring pitch-class
// assignment of spectrogram bins.
const c1Hz = 32.703

const eps = 1e-10

// Extractor computes covermatch.AudioFeatures from an audio file. It
// implements covermatch.FeatureExtractor.
type Extractor struct {
	TempDir    string
	SampleRate int
}

// NewExtractor returns an extractor converting audio in tempDir at the
// default analysis rate.
func NewExtractor(tempDir string) *Extractor {
	return &Extractor{TempDir: tempDir, SampleRate: DefaultSampleRate}
}

// Extract converts the input to mono WAV, computes the STFT, and derives the
// four mean feature vectors.
func (e *Extractor) Extract(ctx context.Context, audioPath string) (covermatch.AudioFeatures, error) {
	var empty covermatch.AudioFeatures

	sampleRate := e.SampleRate
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}

	wavPath, err := ConvertToMonoWAV(ctx, audioPath, e.TempDir, ConvertWAVConfig{SampleRate: sampleRate})
	if err != nil {
		return empty, &covermatch.FeatureExtractionError{Err: err}
	}

	samples, sr, err := ReadWavAsFloat64(wavPath)
	if err != nil {
		return empty, &covermatch.FeatureExtractionError{Err: err}
	}

	features, err := ComputeFeatures(samples, sr)
	if err != nil {
		return empty, &covermatch.FeatureExtractionError{Err: err}
	}
	return features, nil
}

// ComputeFeatures derives the four-channel feature set from mono samples.
func ComputeFeatures(samples []float64, sampleRate int) (covermatch.AudioFeatures, error) {
	var empty covermatch.AudioFeatures

	spec, err := STFT(samples, WindowSize, HopSize, Hamming(WindowSize))
	if err != nil {
		return empty, fmt.Errorf("stft: %w", err)
	}
	if len(spec) == 0 {
		return empty, fmt.Errorf("no frames produced from %d samples", len(samples))
	}

	return covermatch.AudioFeatures{
		ChromaSTFT:       meanOverFrames(spec, chromaBins, func(frame []float64) []float64 { return chromaFrame(frame, sampleRate, false) }),
		ChromaCQT:        meanOverFrames(spec, chromaBins, func(frame []float64) []float64 { return chromaFrame(frame, sampleRate, true) }),
		Tonnetz:          tonnetzMean(spec, sampleRate),
		SpectralContrast: meanOverFrames(spec, contrastBins, func(frame []float64) []float64 { return contrastFrame(frame, sampleRate) }),
	}, nil
}

func meanOverFrames(spec [][]float64, dims int, perFrame func([]float64) []float64) []float64 {
	mean := make([]float64, dims)
	for _, frame := range spec {
		v := perFrame(frame)
		for i := 0; i < dims; i++ {
			mean[i] += v[i]
		}
	}
	n := float64(len(spec))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}

// chromaFrame folds a magnitude spectrum into 12 pitch-class energies,
// normalized so the strongest class is 1. With logWeight set, bin energy is
// spread over neighboring semitones with a log-frequency triangular weight,
// approximating a constant-Q analysis; otherwise each bin contributes
// squared magnitude to its nearest pitch class.
func chromaFrame(frame []float64, sampleRate int, logWeight bool) []float64 {
	chroma := make([]float64, chromaBins)

	for bin := 1; bin < len(frame); bin++ {
		freq := binFrequency(bin, WindowSize, sampleRate)
		if freq < c1Hz {
			continue
		}

		semis := chromaBins * math.Log2(freq/c1Hz)
		energy := frame[bin] * frame[bin]

		if !logWeight {
			pc := int(math.Round(semis)) % chromaBins
			chroma[pc] += energy
			continue
		}

		// Triangular weighting between the two nearest semitones.
		lower := math.Floor(semis)
		frac := semis - lower
		pcLow := int(lower) % chromaBins
		pcHigh := (pcLow + 1) % chromaBins
		chroma[pcLow] += energy * (1 - frac)
		chroma[pcHigh] += energy * frac
	}

	return normalizeMax(chroma)
}

func normalizeMax(v []float64) []float64 {
	max := 0.0
	for _, x := range v {
		if x > max {
			max = x
		}
	}
	if max > 0 {
		for i := range v {
			v[i] /= max
		}
	}
	return v
}

// tonnetzMean projects per-frame chroma onto the six tonal centroid
// dimensions (fifths, minor thirds, major thirds; sine and cosine each) and
// averages over frames.
func tonnetzMean(spec [][]float64, sampleRate int) []float64 {
	// Interval circle radii and angular steps per pitch class.
	radii := [3]float64{1.0, 1.0, 0.5}
	steps := [3]float64{
		7 * math.Pi / 6, // circle of fifths
		3 * math.Pi / 2, // minor thirds
		2 * math.Pi / 3, // major thirds
	}

	mean := make([]float64, tonnetzDims)
	for _, frame := range spec {
		chroma := chromaFrame(frame, sampleRate, true)

		var l1 float64
		for _, c := range chroma {
			l1 += c
		}
		if l1 == 0 {
			continue
		}

		for k := 0; k < 3; k++ {
			var sin, cos float64
			for pc, c := range chroma {
				angle := steps[k] * float64(pc)
				sin += c / l1 * radii[k] * math.Sin(angle)
				cos += c / l1 * radii[k] * math.Cos(angle)
			}
			mean[2*k] += sin
			mean[2*k+1] += cos
		}
	}

	n := float64(len(spec))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}

// contrastFrame computes the log peak-to-valley contrast within the sub-band
// below 200 Hz and six octave bands above it.
func contrastFrame(frame []float64, sampleRate int) []float64 {
	const quantile = 0.02

	edges := bandEdges(sampleRate)
	contrast := make([]float64, contrastBins)

	for band := 0; band < contrastBins; band++ {
		lo, hi := edges[band], edges[band+1]
		var mags []float64
		for bin := 0; bin < len(frame); bin++ {
			freq := binFrequency(bin, WindowSize, sampleRate)
			if freq >= lo && freq < hi {
				mags = append(mags, frame[bin])
			}
		}
		if len(mags) == 0 {
			continue
		}

		sort.Float64s(mags)
		k := int(quantile * float64(len(mags)))
		if k < 1 {
			k = 1
		}

		var valley, peak float64
		for i := 0; i < k; i++ {
			valley += mags[i]
			peak += mags[len(mags)-1-i]
		}
		valley /= float64(k)
		peak /= float64(k)

		contrast[band] = math.Log(peak+eps) - math.Log(valley+eps)
	}
	return contrast
}

// bandEdges returns the 8 frequency edges delimiting the 7 contrast bands:
// [0, 200) then octave doublings up to the Nyquist frequency.
func bandEdges(sampleRate int) [contrastBins + 1]float64 {
	var edges [contrastBins + 1]float64
	edges[0] = 0
	edges[1] = 200
	for i := 2; i <= contrastBins; i++ {
		edges[i] = edges[i-1] * 2
	}
	// Clamp the top band to the Nyquist frequency.
	edges[contrastBins] = float64(sampleRate) / 2
	return edges
}
