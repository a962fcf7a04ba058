package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolution_GetMegaPixels checks the megapixel rounding.
func TestResolution_GetMegaPixels(t *testing.T) {
	testCases := []struct {
		name     string
		res      ResolutionType
		expected float64
	}{
		// 1920 * 1080 = 2,073,600
		{name: "Full HD 1080p", res: ResolutionTypeFHD1080p, expected: 2.07},
		// 1280 * 1024 = 1,310,720
		{name: "1MP (5:4)", res: ResolutionType1MP54, expected: 1.31},
		// 224 * 224 = 50,176
		{name: "224", res: ResolutionType224, expected: 0.05},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, ok := GetResolutionByType(tc.res)
			require.True(t, ok)
			assert.Equal(t, tc.expected, res.GetMegaPixels())
		})
	}

	assert.Equal(t, 0.0, Resolution{}.GetMegaPixels())
}

func TestParseResolution(t *testing.T) {
	res, err := ParseResolution("hd 720P")
	require.NoError(t, err)
	assert.Equal(t, ResolutionPixels{Width: 1280, Height: 720}, res.Pixels)

	res, err = ParseResolution("640")
	require.NoError(t, err)
	assert.Equal(t, ResolutionPixels{Width: 640, Height: 640}, res.Pixels)

	res, err = ParseResolution("320X240")
	require.NoError(t, err)
	assert.Equal(t, ResolutionPixels{Width: 320, Height: 240}, res.Pixels)
	assert.Equal(t, ResolutionType("320x240"), res.Name)

	res, err = ParseResolution("FIT:1300x800")
	require.NoError(t, err)
	assert.Equal(t, ResolutionTypeHD720p, res.Name)

	_, err = ParseResolution("fit:100x100")
	assert.Error(t, err, "nothing fits")

	for _, bad := range []string{"", "8K", "0x10", "axb", "10x", "fit:", "fit:wide"} {
		_, err := ParseResolution(bad)
		assert.Error(t, err, bad)
	}
}

func TestGetAllResolutionsOrdered(t *testing.T) {
	all := GetAllResolutions()
	require.Len(t, all, len(resolutions))
	assert.Equal(t, ResolutionType224, all[0].Name)
	assert.Equal(t, ResolutionTypeFHD1080p, all[len(all)-1].Name)
}

func TestGetHighestResolutionUnderDimensions(t *testing.T) {
	res, ok := GetHighestResolutionUnderDimensions(1300, 800)
	require.True(t, ok)
	assert.Equal(t, ResolutionTypeHD720p, res.Name)

	res, ok = GetHighestResolutionUnderDimensions(300, 300)
	require.True(t, ok)
	assert.Equal(t, ResolutionType299, res.Name)

	_, ok = GetHighestResolutionUnderDimensions(100, 100)
	assert.False(t, ok)
}

func TestResolutionString(t *testing.T) {
	res, _ := GetResolutionByType(ResolutionTypeFHD1080p)
	assert.Equal(t, "Full HD 1080p (1920x1080, 2.07MP)", res.String())
}
