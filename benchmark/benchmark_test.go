package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-fps/preprocess"
)

var rgb2x2 = preprocess.Shape{Height: 2, Width: 2, Channels: 3}

func newTestRunner(engine *fakeEngine, imgs *fakeImages) *Runner {
	return NewRunner(NewRunnerArgs{Engine: engine, Images: imgs})
}

func TestEstimateFPSOneSamplePerPath(t *testing.T) {
	engine := newFakeEngine()
	imgs := &fakeImages{}
	paths := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"}

	var progress []int
	runner := NewRunner(NewRunnerArgs{
		Engine: engine,
		Images: imgs,
		Progress: func(done, total int, latency time.Duration) {
			assert.Equal(t, len(paths), total)
			progress = append(progress, done)
		},
	})

	result, err := runner.EstimateFPS(context.Background(), "model.onnx", paths, rgb2x2, preprocess.LayoutHWC)
	require.NoError(t, err)

	assert.Len(t, result.Samples, len(paths))
	assert.Equal(t, len(paths), engine.invokes)
	assert.Equal(t, paths, imgs.loads)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	assert.Equal(t, []string{"model.onnx"}, engine.loads)

	mean, err := result.Samples.Mean()
	require.NoError(t, err)
	assert.Equal(t, mean, result.MeanSeconds)
	assert.Equal(t, FPS(mean), result.FPS)
	assert.Equal(t, engine.backend, result.Backend)
	assert.Equal(t, rgb2x2, result.Shape)

	assert.Equal(t, 1, engine.closed, "executable released")
	assert.Equal(t, 1, engine.released, "model released")
}

func TestEstimateFPSFeedsCHWTensor(t *testing.T) {
	engine := newFakeEngine()
	imgs := &fakeImages{pix: map[string][]uint8{
		"frame.png": {
			1, 2, 3, 11, 12, 13,
			21, 22, 23, 31, 32, 33,
		},
	}}

	_, err := newTestRunner(engine, imgs).
		EstimateFPS(context.Background(), "m", []string{"frame.png"}, rgb2x2, preprocess.LayoutCHW)
	require.NoError(t, err)

	require.Len(t, engine.inputs, 1)
	assert.Equal(t, []float32{
		1, 11, 21, 31,
		2, 12, 22, 32,
		3, 13, 23, 33,
	}, engine.inputs[0])
	assert.Equal(t, []int64{1, 3, 2, 2}, engine.specs[0].Dims())
}

func TestEstimateFPSFeedsHWCTensor(t *testing.T) {
	engine := newFakeEngine()
	pix := []uint8{1, 2, 3, 11, 12, 13, 21, 22, 23, 31, 32, 33}
	imgs := &fakeImages{pix: map[string][]uint8{"frame.png": pix}}

	_, err := newTestRunner(engine, imgs).
		EstimateFPS(context.Background(), "m", []string{"frame.png"}, rgb2x2, preprocess.LayoutHWC)
	require.NoError(t, err)

	require.Len(t, engine.inputs, 1)
	for i, p := range pix {
		assert.Equal(t, float32(p), engine.inputs[0][i])
	}
}

func TestEstimateFPSFromList(t *testing.T) {
	engine := newFakeEngine()
	imgs := &fakeImages{}

	result, err := newTestRunner(engine, imgs).
		EstimateFPSFromList(context.Background(), "m", "a.png;b.png;", rgb2x2, preprocess.LayoutHWC)
	require.NoError(t, err)

	assert.Len(t, result.Samples, 2)
	assert.Equal(t, []string{"a.png", "b.png"}, imgs.loads)
}

func TestEstimateFPSEmptyPaths(t *testing.T) {
	engine := newFakeEngine()

	_, err := newTestRunner(engine, &fakeImages{}).
		EstimateFPSFromList(context.Background(), "m", "", rgb2x2, preprocess.LayoutHWC)

	assert.ErrorIs(t, err, ErrEmptyTimingSample)
	assert.Equal(t, 0, engine.invokes)
	assert.Equal(t, 1, engine.closed)
}

func TestEstimateFPSErrorKinds(t *testing.T) {
	cause := errors.New("boom")

	cases := []struct {
		name  string
		setup func(e *fakeEngine, imgs *fakeImages)
		shape preprocess.Shape
		kind  error
	}{
		{
			name:  "model load",
			setup: func(e *fakeEngine, _ *fakeImages) { e.loadErr = cause },
			kind:  ErrModelLoad,
		},
		{
			name:  "engine init",
			setup: func(e *fakeEngine, _ *fakeImages) { e.prepareErr = cause },
			kind:  ErrEngineInit,
		},
		{
			name:  "static shape mismatch",
			setup: func(e *fakeEngine, _ *fakeImages) { e.inputShape = []int64{1, 3, 4, 4} },
			kind:  ErrEngineInit,
		},
		{
			name:  "short input buffer",
			setup: func(e *fakeEngine, _ *fakeImages) { e.shortInput = true },
			kind:  ErrEngineInit,
		},
		{
			name:  "inference",
			setup: func(e *fakeEngine, _ *fakeImages) { e.failAt = 2 },
			kind:  ErrInference,
		},
		{
			name:  "image load",
			setup: func(_ *fakeEngine, imgs *fakeImages) { imgs.fail = map[string]bool{"b.png": true} },
			kind:  ErrImageLoad,
		},
		{
			name:  "invalid shape",
			setup: func(*fakeEngine, *fakeImages) {},
			shape: preprocess.Shape{Height: 0, Width: 2, Channels: 3},
			kind:  ErrInvalidConfig,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newFakeEngine()
			imgs := &fakeImages{}
			tc.setup(engine, imgs)

			shape := tc.shape
			if shape == (preprocess.Shape{}) {
				shape = rgb2x2
			}

			result, err := newTestRunner(engine, imgs).
				EstimateFPS(context.Background(), "m", []string{"a.png", "b.png", "c.png"}, shape, preprocess.LayoutCHW)

			assert.Nil(t, result, "no partial result")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.kind, KindOf(err))

			var runErr *Error
			require.ErrorAs(t, err, &runErr)
			assert.Equal(t, engine.backend, runErr.Backend)
		})
	}
}

func TestEstimateFPSInferenceFailureIsFatal(t *testing.T) {
	engine := newFakeEngine()
	engine.failAt = 2

	_, err := newTestRunner(engine, &fakeImages{}).
		EstimateFPS(context.Background(), "m", []string{"a", "b", "c", "d"}, rgb2x2, preprocess.LayoutHWC)

	assert.ErrorIs(t, err, ErrInference)
	assert.Equal(t, 2, engine.invokes, "no invocation after the failure")
	assert.Equal(t, 1, engine.closed)
	assert.Equal(t, 1, engine.released)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, "b", runErr.Path)
}

func TestEstimateFPSChannelConstraint(t *testing.T) {
	engine := newFakeEngine()
	runner := NewRunner(NewRunnerArgs{Engine: planarEngine{engine}, Images: &fakeImages{}})

	_, err := runner.EstimateFPS(context.Background(), "m", []string{"a"},
		preprocess.Shape{Height: 2, Width: 2, Channels: 4}, preprocess.LayoutCHW)

	assert.ErrorIs(t, err, ErrUnsupportedChannelCount)
	assert.Empty(t, engine.loads, "rejected before load")
}

func TestEstimateFPSDecoderChannelConstraint(t *testing.T) {
	engine := newFakeEngine()
	runner := NewRunner(NewRunnerArgs{Engine: engine})

	_, err := runner.EstimateFPS(context.Background(), "m", []string{"a.png"},
		preprocess.Shape{Height: 2, Width: 2, Channels: 2}, preprocess.LayoutHWC)

	assert.ErrorIs(t, err, ErrUnsupportedChannelCount)
	assert.Empty(t, engine.loads, "rejected before load")
	assert.Empty(t, engine.specs)
}

func TestEstimateFPSPinnedLayout(t *testing.T) {
	engine := newFakeEngine()
	runner := NewRunner(NewRunnerArgs{Engine: planarEngine{engine}, Images: &fakeImages{}})

	result, err := runner.EstimateFPS(context.Background(), "m", []string{"a"}, rgb2x2, preprocess.LayoutHWC)
	require.NoError(t, err)

	assert.Equal(t, preprocess.LayoutCHW, result.Layout)
	assert.Equal(t, preprocess.LayoutCHW, engine.specs[0].Layout)
}

func TestEstimateFPSCancelled(t *testing.T) {
	engine := newFakeEngine()
	ctx, cancel := context.WithCancel(context.Background())

	runner := NewRunner(NewRunnerArgs{
		Engine: engine,
		Images: &fakeImages{},
		Progress: func(done, total int, _ time.Duration) {
			if done == 1 {
				cancel()
			}
		},
	})

	result, err := runner.EstimateFPS(ctx, "m", []string{"a", "b", "c"}, rgb2x2, preprocess.LayoutHWC)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, engine.invokes)
	assert.Equal(t, 1, engine.closed)
}

func TestEstimateFPSNoEngine(t *testing.T) {
	_, err := NewRunner(NewRunnerArgs{}).
		EstimateFPS(context.Background(), "m", []string{"a"}, rgb2x2, preprocess.LayoutHWC)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: ErrModelLoad, Backend: "ort", Path: "m.onnx", Err: errors.New("no such file")}
	assert.Equal(t, "ort: model load failed (m.onnx): no such file", err.Error())
	assert.Nil(t, KindOf(errors.New("other")))
}
