package images

import (
	"image"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// Native loads images with pure Go decoders. It needs no native libraries,
// which makes it the default for CLI runs and tests.
type Native struct {
	// Filter is the resampling filter.
	Filter imaging.ResampleFilter
}

// NewNative creates a pure Go collaborator using Lanczos resampling.
func NewNative() *Native {
	return &Native{Filter: imaging.Lanczos}
}

// SupportedChannels implements ChannelConstrained.
func (n *Native) SupportedChannels() []int {
	return standardChannels()
}

// Load implements Collaborator.
func (n *Native) Load(path string, height, width, channels int) (*DecodedImage, error) {
	if err := checkRequest(height, width, channels); err != nil {
		return nil, err
	}

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if s := img.Bounds().Size(); s.X != width || s.Y != height {
		img = imaging.Resize(img, width, height, n.Filter)
	}

	if channels == 1 {
		img = imaging.Grayscale(img)
	}

	return FromImage(img, channels)
}

func decodeFile(path string) (image.Image, error) {
	switch FormatFromPath(path) {
	case FormatBMP, FormatWebP:
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open image %s", path)
		}
		defer f.Close()

		var img image.Image
		if FormatFromPath(path) == FormatBMP {
			img, err = bmp.Decode(f)
		} else {
			img, err = webp.Decode(f)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode image %s", path)
		}
		return img, nil
	default:
		img, err := imaging.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode image %s", path)
		}
		return img, nil
	}
}
