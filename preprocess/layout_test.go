package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawShape(t *rapid.T) Shape {
	return Shape{
		Height:   rapid.IntRange(1, 12).Draw(t, "height"),
		Width:    rapid.IntRange(1, 12).Draw(t, "width"),
		Channels: rapid.IntRange(1, 4).Draw(t, "channels"),
	}
}

func drawPixels(t *rapid.T, shape Shape) []uint8 {
	return rapid.SliceOfN(rapid.Uint8(), shape.Size(), shape.Size()).Draw(t, "pixels")
}

// TestConvertHWCIsIdentity checks that HWC conversion is a plain float cast of
// the decoded buffer.
func TestConvertHWCIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		shape := drawShape(t)
		src := drawPixels(t, shape)

		dst := ConvertNew(src, shape, LayoutHWC)

		if len(dst) != shape.Size() {
			t.Fatalf("tensor length %d, want %d", len(dst), shape.Size())
		}
		for i := range src {
			if dst[i] != float32(src[i]) {
				t.Fatalf("index %d: got %v, want %v", i, dst[i], float32(src[i]))
			}
		}
	})
}

// TestIndexCHWIsBijection checks that the CHW index mapping hits every
// destination cell exactly once.
func TestIndexCHWIsBijection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		shape := drawShape(t)
		h, w, ch := shape.Height, shape.Width, shape.Channels

		seen := make([]int, shape.Size())
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for c := 0; c < ch; c++ {
					idx := IndexCHW(x, y, c, h, w, ch)
					if idx < 0 || idx >= len(seen) {
						t.Fatalf("index %d out of range for %v", idx, shape)
					}
					seen[idx]++
				}
			}
		}
		for i, n := range seen {
			if n != 1 {
				t.Fatalf("destination %d written %d times", i, n)
			}
		}
	})
}

// TestConvertCHWMatchesIndexFormula checks every converted cell against the
// index formulas.
func TestConvertCHWMatchesIndexFormula(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		shape := drawShape(t)
		src := drawPixels(t, shape)
		h, w, ch := shape.Height, shape.Width, shape.Channels

		dst := ConvertNew(src, shape, LayoutCHW)

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for c := 0; c < ch; c++ {
					want := float32(src[IndexHWC(x, y, c, h, w, ch)])
					got := dst[IndexCHW(x, y, c, h, w, ch)]
					if got != want {
						t.Fatalf("(%d,%d,%d): got %v, want %v", x, y, c, got, want)
					}
				}
			}
		}
	})
}

func TestConvertCHWKnownImage(t *testing.T) {
	// 2x2 RGB, pixel (x,y) = [10*(y*2+x)+1, +2, +3].
	src := []uint8{
		1, 2, 3, 11, 12, 13,
		21, 22, 23, 31, 32, 33,
	}
	shape := Shape{Height: 2, Width: 2, Channels: 3}

	dst := ConvertNew(src, shape, LayoutCHW)

	assert.Equal(t, []float32{
		1, 11, 21, 31, // R plane
		2, 12, 22, 32, // G plane
		3, 13, 23, 33, // B plane
	}, dst)
}

func TestConvertReusesBuffer(t *testing.T) {
	shape := Shape{Height: 1, Width: 2, Channels: 1}
	dst := []float32{-1, -1}

	Convert([]uint8{7, 9}, dst, shape, LayoutCHW)
	assert.Equal(t, []float32{7, 9}, dst)

	Convert([]uint8{255, 0}, dst, shape, LayoutHWC)
	assert.Equal(t, []float32{255, 0}, dst)
}

func TestParseLayout(t *testing.T) {
	for _, name := range []string{"hwc", "HWC", "tf", "nhwc"} {
		l, err := ParseLayout(name)
		require.NoError(t, err, name)
		assert.Equal(t, LayoutHWC, l, name)
	}
	for _, name := range []string{"chw", "torch", " NCHW "} {
		l, err := ParseLayout(name)
		require.NoError(t, err, name)
		assert.Equal(t, LayoutCHW, l, name)
	}

	_, err := ParseLayout("whc")
	assert.Error(t, err)
}

func TestLayoutTextRoundTrip(t *testing.T) {
	var l Layout
	require.NoError(t, l.UnmarshalText([]byte("torch")))
	assert.Equal(t, LayoutCHW, l)

	text, err := l.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "chw", string(text))
}

func TestShape(t *testing.T) {
	s := Shape{Height: 640, Width: 480, Channels: 3}
	assert.Equal(t, 640*480*3, s.Size())
	assert.NoError(t, s.Validate())
	assert.Equal(t, []int64{1, 640, 480, 3}, s.Dims(LayoutHWC))
	assert.Equal(t, []int64{1, 3, 640, 480}, s.Dims(LayoutCHW))

	assert.Error(t, Shape{Height: 0, Width: 1, Channels: 1}.Validate())
	assert.Equal(t, LayoutCHW, LayoutFromTorchMode(true))
	assert.Equal(t, LayoutHWC, LayoutFromTorchMode(false))
}

func BenchmarkConvertCHW(b *testing.B) {
	shape := Shape{Height: 640, Width: 640, Channels: 3}
	src := make([]uint8, shape.Size())
	dst := make([]float32, shape.Size())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Convert(src, dst, shape, LayoutCHW)
	}
}
