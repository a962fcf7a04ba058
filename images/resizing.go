package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/chai2010/webp"
	"github.com/cshum/vipsgen/vips"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Vips loads images through libvips thumbnailing, which shrinks on load for
// JPEG and WebP sources.
type Vips struct{}

// NewVips creates a libvips collaborator.
func NewVips() *Vips {
	return &Vips{}
}

// SupportedChannels implements ChannelConstrained.
func (v *Vips) SupportedChannels() []int {
	return standardChannels()
}

// Load implements Collaborator.
func (v *Vips) Load(path string, height, width, channels int) (*DecodedImage, error) {
	if err := checkRequest(height, width, channels); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %s", path)
	}

	img, err := ResizeToImage(b, width, height, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resize image %s", path)
	}

	// Thumbnailing keeps the aspect ratio, so the result can be smaller than
	// requested on one axis.
	if s := img.Bounds().Size(); s.X != width || s.Y != height {
		img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	}

	return FromImage(img, channels)
}

// ResizeToImage resizes an encoded image with libvips and decodes the result
// into an image.Image. The output is re-encoded in the source format, or PNG
// when the format is not one libvips is asked to write.
//
// Arguments:
//   - b: The encoded image.
//   - width: The target width.
//   - height: The target height.
//   - format: The source format.
//
// Returns:
//   - image.Image: The resized image.
//   - error: An error if the image fails to resize.
func ResizeToImage(b []byte, width, height int, format ImageFormat) (image.Image, error) {
	if len(b) == 0 {
		return nil, errors.New("empty image data")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}

	// Load the image from buffer.
	img, err := vips.NewImageFromBuffer(b, &vips.LoadOptions{
		Access: vips.AccessSequential,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load image")
	}
	defer img.Close()

	// Resize the image in-place.
	err = img.ThumbnailImage(width, &vips.ThumbnailImageOptions{
		Height: height,
		FailOn: vips.FailOnError,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to resize image")
	}

	var resized []byte
	switch format {
	case FormatJPEG:
		resized, err = img.JpegsaveBuffer(&vips.JpegsaveBufferOptions{})
	case FormatWebP:
		resized, err = img.WebpsaveBuffer(&vips.WebpsaveBufferOptions{})
	default:
		resized, err = img.PngsaveBuffer(&vips.PngsaveBufferOptions{})
	}
	if err != nil || len(resized) == 0 {
		return nil, errors.New("failed to encode resized image")
	}

	var decoded image.Image
	switch format {
	case FormatJPEG:
		decoded, err = jpeg.Decode(bytes.NewReader(resized))
	case FormatWebP:
		decoded, err = webp.Decode(bytes.NewReader(resized))
	default:
		decoded, err = png.Decode(bytes.NewReader(resized))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode resized %s", format)
	}

	return decoded, nil
}
