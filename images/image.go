// Package images - Image decoding collaborators for benchmark runs.
//
// A collaborator turns an image file into raw pixels at a requested size: it
// decodes, resizes and converts to RGB (or gray) in that order. Pixels are row
// major HWC uint8, which is what the layout converter consumes.
package images

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
)

// DecodedImage is a decoded, resized image in row-major HWC order.
type DecodedImage struct {
	Height   int
	Width    int
	Channels int
	// Pix holds Height*Width*Channels bytes, RGB order for three channels.
	Pix []uint8
}

// Collaborator loads image files for a benchmark run.
type Collaborator interface {
	// Load decodes path, resizes it to width x height and converts it to the
	// requested channel count.
	Load(path string, height, width, channels int) (*DecodedImage, error)
}

// Decoder identifies a Collaborator implementation.
type Decoder string

const (
	// DecoderGoCV decodes and resizes with OpenCV.
	DecoderGoCV Decoder = "gocv"
	// DecoderVips resizes with libvips thumbnailing.
	DecoderVips Decoder = "vips"
	// DecoderNative uses pure Go decoders and resamplers.
	DecoderNative Decoder = "native"
)

// DefaultDecoder is the decoder used when none is configured.
const DefaultDecoder = DecoderNative

// ParseDecoder parses a decoder name. An empty name selects DefaultDecoder.
func ParseDecoder(s string) (Decoder, error) {
	switch d := Decoder(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DefaultDecoder, nil
	case DecoderGoCV, DecoderVips, DecoderNative:
		return d, nil
	default:
		return "", fmt.Errorf("unknown image decoder %q", s)
	}
}

// New returns the collaborator for d.
//
// Arguments:
//   - d: The decoder to create.
//
// Returns:
//   - Collaborator: The collaborator.
//   - error: An error if the decoder is unknown.
func New(d Decoder) (Collaborator, error) {
	switch d {
	case DecoderGoCV:
		return NewGoCV(), nil
	case DecoderVips:
		return NewVips(), nil
	case DecoderNative, "":
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown image decoder %q", d)
	}
}

// ChannelConstrained is implemented by collaborators that can only produce
// some channel counts.
type ChannelConstrained interface {
	SupportedChannels() []int
}

// SupportsChannels reports whether c can produce images with the given
// channel count. Collaborators that declare no constraint accept any count.
func SupportsChannels(c Collaborator, channels int) bool {
	constrained, ok := c.(ChannelConstrained)
	if !ok {
		return true
	}
	for _, n := range constrained.SupportedChannels() {
		if n == channels {
			return true
		}
	}
	return false
}

// gray, RGB and RGBA
func standardChannels() []int {
	return []int{1, 3, 4}
}

func checkRequest(height, width, channels int) error {
	if height <= 0 || width <= 0 {
		return errors.Errorf("invalid target size %dx%d", width, height)
	}
	for _, n := range standardChannels() {
		if n == channels {
			return nil
		}
	}
	return errors.Errorf("unsupported channel count %d", channels)
}

// FromImage extracts HWC pixels from img. Three channels yield RGB, four
// yield RGBA and one yields BT.601 luma.
func FromImage(img image.Image, channels int) (*DecodedImage, error) {
	b := img.Bounds()
	if err := checkRequest(b.Dy(), b.Dx(), channels); err != nil {
		return nil, err
	}

	out := &DecodedImage{
		Height:   b.Dy(),
		Width:    b.Dx(),
		Channels: channels,
		Pix:      make([]uint8, b.Dx()*b.Dy()*channels),
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			switch channels {
			case 1:
				// Same weights as OpenCV's BGR2GRAY.
				lum := (299*r + 587*g + 114*bl + 500) / 1000
				out.Pix[i] = uint8(lum >> 8)
			case 3:
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			case 4:
				out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8)
			}
			i += channels
		}
	}

	return out, nil
}
