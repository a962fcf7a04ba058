package mobile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-fps/benchmark"
	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/preprocess"
)

type recordingEngine struct {
	backend inference.Backend
	loadErr error
	specs   []inference.TensorSpec
	invokes int
}

func (e *recordingEngine) Backend() inference.Backend { return e.backend }

func (e *recordingEngine) Load(path string) (inference.Model, error) {
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	return &recordingModel{e}, nil
}

type recordingModel struct{ e *recordingEngine }

func (m *recordingModel) Prepare(spec inference.TensorSpec) (inference.Executable, error) {
	m.e.specs = append(m.e.specs, spec)
	return &recordingExec{e: m.e, buf: make([]float32, spec.Shape.Size())}, nil
}

func (m *recordingModel) Close() error { return nil }

type recordingExec struct {
	e   *recordingEngine
	buf []float32
}

func (x *recordingExec) Input() []float32    { return x.buf }
func (x *recordingExec) InputShape() []int64 { return nil }
func (x *recordingExec) Close() error        { return nil }

func (x *recordingExec) Invoke() error {
	x.e.invokes++
	return nil
}

type stubImages struct{ loads []string }

func (s *stubImages) Load(path string, h, w, c int) (*images.DecodedImage, error) {
	s.loads = append(s.loads, path)
	return &images.DecodedImage{Height: h, Width: w, Channels: c, Pix: make([]uint8, h*w*c)}, nil
}

// stub swaps the engine and image factories for the duration of a test.
func stub(t *testing.T, engine *recordingEngine) (*stubImages, *[]inference.Backend) {
	t.Helper()
	imgs := &stubImages{}
	var requested []inference.Backend

	origEngine, origImages := newEngine, newCollaborator
	newEngine = func(b inference.Backend, _ inference.Options) (inference.Engine, error) {
		requested = append(requested, b)
		engine.backend = b
		return engine, nil
	}
	newCollaborator = func(images.Decoder) (images.Collaborator, error) { return imgs, nil }
	t.Cleanup(func() { newEngine, newCollaborator = origEngine, origImages })

	return imgs, &requested
}

func TestEstimateORTFPS(t *testing.T) {
	engine := &recordingEngine{}
	imgs, requested := stub(t, engine)

	fps, err := EstimateORTFPS("m.onnx", "a.jpg;b.jpg;c.jpg;", 4, 4, 3, true)
	require.NoError(t, err)

	assert.Greater(t, fps, 0.0)
	assert.Equal(t, []inference.Backend{inference.BackendORT}, *requested)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, imgs.loads)
	assert.Equal(t, 3, engine.invokes)
	assert.Equal(t, preprocess.LayoutCHW, engine.specs[0].Layout)
}

func TestEstimateTFLiteFPSInterleaved(t *testing.T) {
	engine := &recordingEngine{}
	_, requested := stub(t, engine)

	_, err := EstimateTFLiteFPS("m.tflite", "a.jpg", 4, 4, 3, false)
	require.NoError(t, err)

	assert.Equal(t, []inference.Backend{inference.BackendTFLite}, *requested)
	assert.Equal(t, preprocess.LayoutHWC, engine.specs[0].Layout)
}

func TestEstimateTorchFPSAlwaysPlanar(t *testing.T) {
	engine := &recordingEngine{}
	_, requested := stub(t, engine)

	_, err := EstimateTorchFPS("m.onnx", "a.jpg", 4, 4, 1)
	require.NoError(t, err)

	assert.Equal(t, []inference.Backend{inference.BackendGorgonia}, *requested)
	assert.Equal(t, preprocess.LayoutCHW, engine.specs[0].Layout)
}

func TestEstimateErrorsPassThrough(t *testing.T) {
	engine := &recordingEngine{loadErr: errors.New("bad flatbuffer")}
	stub(t, engine)

	fps, err := EstimateTFLiteFPS("m.tflite", "a.jpg", 4, 4, 3, false)
	assert.Zero(t, fps)
	assert.ErrorIs(t, err, benchmark.ErrModelLoad)
	assert.ErrorContains(t, err, "bad flatbuffer")
}

func TestEstimateEmptyPathList(t *testing.T) {
	stub(t, &recordingEngine{})

	_, err := EstimateORTFPS("m.onnx", "", 4, 4, 3, false)
	assert.ErrorIs(t, err, benchmark.ErrEmptyTimingSample)
}

func TestEstimateEngineInitFailure(t *testing.T) {
	orig := newEngine
	newEngine = func(inference.Backend, inference.Options) (inference.Engine, error) {
		return nil, errors.New("library not found")
	}
	t.Cleanup(func() { newEngine = orig })

	_, err := EstimateORTFPS("m.onnx", "a.jpg", 4, 4, 3, false)
	assert.ErrorIs(t, err, benchmark.ErrEngineInit)
}

func TestSettings(t *testing.T) {
	t.Cleanup(func() {
		SetLibraryPath("")
		SetThreads(0)
		require.NoError(t, SetDecoder(""))
		require.NoError(t, SetProvider(""))
	})

	SetLibraryPath("/opt/ort.so")
	SetThreads(2)
	require.NoError(t, SetDecoder("vips"))
	assert.Error(t, SetDecoder("magick"))
	require.NoError(t, SetProvider("coreml"))
	assert.Error(t, SetProvider("nnapi"))

	assert.Equal(t, "/opt/ort.so", settings.options.LibraryPath)
	assert.Equal(t, 2, settings.options.Threads)
	assert.Equal(t, images.DecoderVips, settings.decoder)
	assert.Equal(t, "coreml", settings.options.Provider)
}
