// Package preprocess - Tensor layout conversion for model inputs.
package preprocess

import (
	"fmt"
	"strings"
)

// Layout defines the memory ordering a model expects for its input tensor.
type Layout int

const (
	// LayoutHWC is Height-Width-Channel ordering (TensorFlow style, "tf-mode").
	LayoutHWC Layout = iota
	// LayoutCHW is Channel-Height-Width ordering (PyTorch style, "torch-mode").
	LayoutCHW
)

// String returns the canonical name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutHWC:
		return "hwc"
	case LayoutCHW:
		return "chw"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler so layouts read naturally in
// scenario files and reports.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLayout parses a layout name.
//
// Arguments:
//   - s: One of "hwc", "tf", "nhwc", "chw", "torch" or "nchw" (case-insensitive).
//
// Returns:
//   - Layout: The parsed layout.
//   - error: An error if the name is not recognized.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hwc", "nhwc", "tf":
		return LayoutHWC, nil
	case "chw", "nchw", "torch":
		return LayoutCHW, nil
	default:
		return LayoutHWC, fmt.Errorf("unknown tensor layout %q", s)
	}
}

// LayoutFromTorchMode maps the bridge-level boolean flag onto a Layout.
func LayoutFromTorchMode(torchInputMode bool) Layout {
	if torchInputMode {
		return LayoutCHW
	}
	return LayoutHWC
}

// Shape is the logical (height, width, channels) shape of a single image input.
type Shape struct {
	Height   int `json:"height"   yaml:"height"`
	Width    int `json:"width"    yaml:"width"`
	Channels int `json:"channels" yaml:"channels"`
}

// Size returns the number of elements in a tensor of this shape.
func (s Shape) Size() int {
	return s.Height * s.Width * s.Channels
}

// Validate reports whether every dimension is positive.
func (s Shape) Validate() error {
	if s.Height <= 0 || s.Width <= 0 || s.Channels <= 0 {
		return fmt.Errorf("invalid input shape %dx%dx%d", s.Height, s.Width, s.Channels)
	}
	return nil
}

// Dims returns the batched tensor dimensions for the given layout, i.e.
// [1, H, W, C] for HWC and [1, C, H, W] for CHW.
func (s Shape) Dims(layout Layout) []int64 {
	if layout == LayoutCHW {
		return []int64{1, int64(s.Channels), int64(s.Height), int64(s.Width)}
	}
	return []int64{1, int64(s.Height), int64(s.Width), int64(s.Channels)}
}

// IndexHWC returns the flat offset of (x, y, c) in an HWC buffer. This is also
// the layout of a decoded image.
func IndexHWC(x, y, c, height, width, channels int) int {
	return y*width*channels + x*channels + c
}

// IndexCHW returns the flat offset of (x, y, c) in a CHW buffer.
func IndexCHW(x, y, c, height, width, channels int) int {
	return c*height*width + y*width + x
}

// Convert writes decoded HWC pixels into dst using the requested layout.
//
// Values are cast to float32 without scaling (0-255 in, 0-255 out). Every
// destination cell is written exactly once. Both src and dst must hold at least
// shape.Size() elements; the caller is responsible for validating that.
//
// Arguments:
//   - src: Row-major HWC pixel data.
//   - dst: The destination tensor buffer.
//   - shape: The logical image shape.
//   - layout: The destination layout.
func Convert(src []uint8, dst []float32, shape Shape, layout Layout) {
	h, w, ch := shape.Height, shape.Width, shape.Channels

	if layout != LayoutCHW {
		// HWC is the identity permutation.
		n := shape.Size()
		for i := 0; i < n; i++ {
			dst[i] = float32(src[i])
		}
		return
	}

	plane := h * w
	for c := 0; c < ch; c++ {
		out := dst[c*plane : (c+1)*plane]
		for y := 0; y < h; y++ {
			row := y * w
			for x := 0; x < w; x++ {
				out[row+x] = float32(src[IndexHWC(x, y, c, h, w, ch)])
			}
		}
	}
}

// ConvertNew allocates a tensor of shape.Size() elements and fills it with
// Convert.
func ConvertNew(src []uint8, shape Shape, layout Layout) []float32 {
	dst := make([]float32, shape.Size())
	Convert(src, dst, shape, layout)
	return dst
}
