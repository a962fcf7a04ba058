package images

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// GoCV loads images with OpenCV.
type GoCV struct {
	// Interpolation is the resize interpolation.
	Interpolation gocv.InterpolationFlags
}

// NewGoCV creates an OpenCV collaborator using linear interpolation.
func NewGoCV() *GoCV {
	return &GoCV{Interpolation: gocv.InterpolationLinear}
}

// SupportedChannels implements ChannelConstrained.
func (g *GoCV) SupportedChannels() []int {
	return standardChannels()
}

// Load implements Collaborator.
func (g *GoCV) Load(path string, height, width, channels int) (*DecodedImage, error) {
	if err := checkRequest(height, width, channels); err != nil {
		return nil, err
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return nil, errors.Errorf("failed to read image %s", path)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(width, height), 0, 0, g.Interpolation)

	// OpenCV decodes to BGR.
	converted := gocv.NewMat()
	defer converted.Close()
	gocv.CvtColor(resized, &converted, colorCode(channels))

	pix := converted.ToBytes()
	if len(pix) != height*width*channels {
		return nil, errors.Errorf("decoded %d bytes from %s, want %d", len(pix), path, height*width*channels)
	}

	return &DecodedImage{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      pix,
	}, nil
}

func colorCode(channels int) gocv.ColorConversionCode {
	switch channels {
	case 1:
		return gocv.ColorBGRToGray
	case 4:
		return gocv.ColorBGRToRGBA
	default:
		return gocv.ColorBGRToRGB
	}
}
