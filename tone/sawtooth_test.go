package tone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSawtooth_FirstFrames(t *testing.T) {
	var s Sawtooth
	out := make([]float32, 6)
	s.Process(out)

	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 0.0, out[1], 1e-6)
	assert.InDelta(t, 0.01, out[2], 1e-6)
	assert.InDelta(t, 0.0075, out[3], 1e-6)
	assert.InDelta(t, 0.02, out[4], 1e-6)
	assert.InDelta(t, 0.015, out[5], 1e-6)
	assert.Equal(t, uint64(3), s.Frames())
}

func TestSawtooth_StaysInRange(t *testing.T) {
	var s Sawtooth
	out := make([]float32, 2*10000)
	s.Process(out)

	for i := 0; i < len(out); i += 2 {
		require.GreaterOrEqual(t, out[i], float32(-0.5), "left frame %d", i/2)
		require.Less(t, out[i], float32(0.5), "left frame %d", i/2)
		require.GreaterOrEqual(t, out[i+1], float32(-0.3), "right frame %d", i/2)
		require.Less(t, out[i+1], float32(0.3), "right frame %d", i/2)
	}
}

func TestSawtooth_RightChannelHigherPitch(t *testing.T) {
	var s Sawtooth
	const frames = 20000
	out := make([]float32, 2*frames)
	s.Process(out)

	wraps := func(ch int) int {
		n := 0
		for i := 2 + ch; i < len(out); i += 2 {
			if out[i] < out[i-2] {
				n++
			}
		}
		return n
	}

	// left period is 1.0/0.01 = 100 frames, right 0.6/0.0075 = 80 frames
	assert.InDelta(t, frames/100, wraps(0), 2)
	assert.InDelta(t, frames/80, wraps(1), 2)
	assert.Greater(t, wraps(1), wraps(0))
}

func TestSawtooth_ContinuesAcrossBuffers(t *testing.T) {
	var a, b Sawtooth
	whole := make([]float32, 2*300)
	a.Process(whole)

	var split []float32
	for _, n := range []int{64, 128, 108} {
		buf := make([]float32, 2*n)
		b.Process(buf)
		split = append(split, buf...)
	}

	assert.Equal(t, whole, split)
	assert.Equal(t, a.Frames(), b.Frames())
}

func TestSawtooth_OddBufferLeavesTail(t *testing.T) {
	var s Sawtooth
	out := []float32{9, 9, 9, 9, 9}
	s.Process(out)

	assert.Equal(t, float32(9), out[4])
	assert.Equal(t, uint64(2), s.Frames())
}
