// ABOUTME: Streaming linear resampler for mono PCM16
// ABOUTME: Converts decoder output rates down to the 8 kHz link rate
package resample

// Resampler performs linear interpolation between sample rates. It keeps the
// last input sample and the fractional read position so consecutive chunks of
// one stream join without clicks.
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64
	position   float64
	last       int16
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Passthrough reports whether input and output rates match
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// Resample converts one chunk of input and appends the result to dst
func (r *Resampler) Resample(dst []int16, input []int16) []int16 {
	if len(input) == 0 {
		return dst
	}
	if r.Passthrough() {
		return append(dst, input...)
	}

	src := input
	if r.primed {
		src = make([]int16, 0, len(input)+1)
		src = append(src, r.last)
		src = append(src, input...)
	}

	for {
		idx := int(r.position)
		if idx+1 >= len(src) {
			break
		}
		frac := r.position - float64(idx)
		s1 := float64(src[idx])
		s2 := float64(src[idx+1])
		dst = append(dst, int16(s1*(1.0-frac)+s2*frac))
		r.position += r.ratio
	}

	// The last sample becomes index 0 of the next chunk
	r.position -= float64(len(src) - 1)
	r.last = src[len(src)-1]
	r.primed = true

	return dst
}

// Reset clears stream state
func (r *Resampler) Reset() {
	r.position = 0
	r.last = 0
	r.primed = false
}

// OutputSamples estimates how many output samples n input samples produce
func (r *Resampler) OutputSamples(n int) int {
	return int(float64(n) / r.ratio)
}
