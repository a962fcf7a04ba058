package images

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// AspectRatio represents an aspect ratio by name (e.g., "16:9").
type AspectRatio string

const (
	AspectRatio11  AspectRatio = "1:1"
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio54  AspectRatio = "5:4"
)

// ResolutionType names a common model input size or camera frame size.
type ResolutionType string

// Square sizes used by the usual classification and detection models, then
// the camera frame sizes a model may be fed without resizing.
const (
	ResolutionType224      ResolutionType = "224"
	ResolutionType256      ResolutionType = "256"
	ResolutionType299      ResolutionType = "299"
	ResolutionType320      ResolutionType = "320"
	ResolutionType416      ResolutionType = "416"
	ResolutionType512      ResolutionType = "512"
	ResolutionType640      ResolutionType = "640"
	ResolutionTypeNHD      ResolutionType = "nHD"
	ResolutionTypeFWVGA    ResolutionType = "FWVGA"
	ResolutionTypeQHD540   ResolutionType = "qHD 540p"
	ResolutionTypeHD720p   ResolutionType = "HD 720p"
	ResolutionType1MP54    ResolutionType = "1MP (5:4)"
	ResolutionTypeFHD1080p ResolutionType = "Full HD 1080p"
)

// ResolutionPixels describes the exact dimensions of a resolution.
type ResolutionPixels struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Resolution is a named input size.
type Resolution struct {
	Name        ResolutionType   `json:"name"        yaml:"name"`
	AspectRatio AspectRatio      `json:"aspectRatio" yaml:"aspectRatio"`
	Pixels      ResolutionPixels `json:"pixels"      yaml:"pixels"`
}

// GetMegaPixels returns the pixel count in megapixels rounded to two decimal
// places (e.g., 2.07 for 1080p).
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Pixels.Width*r.Pixels.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
}

func square(t ResolutionType, side int) Resolution {
	return Resolution{Name: t, AspectRatio: AspectRatio11, Pixels: ResolutionPixels{Width: side, Height: side}}
}

var resolutions = map[ResolutionType]Resolution{
	ResolutionType224: square(ResolutionType224, 224),
	ResolutionType256: square(ResolutionType256, 256),
	ResolutionType299: square(ResolutionType299, 299),
	ResolutionType320: square(ResolutionType320, 320),
	ResolutionType416: square(ResolutionType416, 416),
	ResolutionType512: square(ResolutionType512, 512),
	ResolutionType640: square(ResolutionType640, 640),
	ResolutionTypeNHD: {
		Name:        ResolutionTypeNHD,
		AspectRatio: AspectRatio169,
		Pixels:      ResolutionPixels{Width: 640, Height: 360},
	},
	ResolutionTypeFWVGA: {
		Name:        ResolutionTypeFWVGA,
		AspectRatio: AspectRatio169,
		Pixels:      ResolutionPixels{Width: 854, Height: 480},
	},
	ResolutionTypeQHD540: {
		Name:        ResolutionTypeQHD540,
		AspectRatio: AspectRatio169,
		Pixels:      ResolutionPixels{Width: 960, Height: 540},
	},
	ResolutionTypeHD720p: {
		Name:        ResolutionTypeHD720p,
		AspectRatio: AspectRatio169,
		Pixels:      ResolutionPixels{Width: 1280, Height: 720},
	},
	ResolutionType1MP54: {
		Name:        ResolutionType1MP54,
		AspectRatio: AspectRatio54,
		Pixels:      ResolutionPixels{Width: 1280, Height: 1024},
	},
	ResolutionTypeFHD1080p: {
		Name:        ResolutionTypeFHD1080p,
		AspectRatio: AspectRatio169,
		Pixels:      ResolutionPixels{Width: 1920, Height: 1080},
	},
}

// GetAllResolutions returns every named resolution ordered by pixel count.
func GetAllResolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		pi := all[i].Pixels.Width * all[i].Pixels.Height
		pj := all[j].Pixels.Width * all[j].Pixels.Height
		if pi != pj {
			return pi < pj
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// GetResolutionByType retrieves a specific resolution by its type.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	res, ok := resolutions[t]
	return res, ok
}

// FitPrefix marks a bound in ParseResolution, e.g. "fit:1300x800".
const FitPrefix = "fit:"

// ParseResolution resolves a resolution name, a literal "WxH" size, or a
// "fit:WxH" bound that selects the largest named resolution within it.
//
// Arguments:
//   - s: A ResolutionType (case-insensitive), a size such as "320x240" or a
//     bound such as "fit:1300x800".
//
// Returns:
//   - Resolution: The resolution.
//   - error: An error if s is none of the above, or no named resolution fits
//     the bound.
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(s)
	for t, res := range resolutions {
		if strings.EqualFold(string(t), s) {
			return res, nil
		}
	}

	if bound, ok := cutPrefixFold(s, FitPrefix); ok {
		width, height, ok := parseSize(bound)
		if !ok {
			return Resolution{}, fmt.Errorf("invalid resolution bound %q", s)
		}
		res, found := GetHighestResolutionUnderDimensions(width, height)
		if !found {
			return Resolution{}, fmt.Errorf("no named resolution fits within %dx%d", width, height)
		}
		return res, nil
	}

	if width, height, ok := parseSize(s); ok {
		return Resolution{
			Name:   ResolutionType(fmt.Sprintf("%dx%d", width, height)),
			Pixels: ResolutionPixels{Width: width, Height: height},
		}, nil
	}

	return Resolution{}, fmt.Errorf("unknown resolution %q", s)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// parseSize parses a positive "WxH" size.
func parseSize(s string) (int, int, bool) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, false
	}
	width, werr := strconv.Atoi(w)
	height, herr := strconv.Atoi(h)
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// GetHighestResolutionUnderDimensions retrieves the largest named resolution
// that fits within the given width and height.
//
// Arguments:
//   - width: The maximum width.
//   - height: The maximum height.
//
// Returns:
//   - Resolution: The largest fitting resolution.
//   - bool: True if a resolution was found, otherwise false.
func GetHighestResolutionUnderDimensions(width, height int) (Resolution, bool) {
	var highest Resolution
	var found bool

	for _, res := range GetAllResolutions() {
		if res.Pixels.Width <= width && res.Pixels.Height <= height {
			highest = res
			found = true
		}
	}
	return highest, found
}
