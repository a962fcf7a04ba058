package benchmark

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-fps/images"
	"github.com/nvr-ai/go-fps/inference"
	"github.com/nvr-ai/go-fps/preprocess"
)

// fakeEngine records the protocol calls a run makes.
type fakeEngine struct {
	backend    inference.Backend
	loadErr    error
	prepareErr error
	// failAt makes the n-th Invoke (1-based) fail.
	failAt     int
	inputShape []int64
	shortInput bool

	mu       sync.Mutex
	loads    []string
	specs    []inference.TensorSpec
	invokes  int
	inputs   [][]float32
	closed   int
	released int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{backend: "fake"}
}

func (e *fakeEngine) Backend() inference.Backend { return e.backend }

func (e *fakeEngine) Load(path string) (inference.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads = append(e.loads, path)
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	return &fakeModel{engine: e}, nil
}

type fakeModel struct {
	engine *fakeEngine
}

func (m *fakeModel) Prepare(spec inference.TensorSpec) (inference.Executable, error) {
	e := m.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	e.specs = append(e.specs, spec)
	if e.prepareErr != nil {
		return nil, e.prepareErr
	}

	shape := e.inputShape
	if shape == nil {
		shape = spec.Dims()
	}
	size := spec.Shape.Size()
	if e.shortInput {
		size--
	}
	return &fakeExecutable{engine: e, input: make([]float32, size), shape: shape}, nil
}

func (m *fakeModel) Close() error {
	m.engine.mu.Lock()
	m.engine.released++
	m.engine.mu.Unlock()
	return nil
}

type fakeExecutable struct {
	engine *fakeEngine
	input  []float32
	shape  []int64
}

func (x *fakeExecutable) Input() []float32    { return x.input }
func (x *fakeExecutable) InputShape() []int64 { return x.shape }

func (x *fakeExecutable) Invoke() error {
	e := x.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invokes++
	e.inputs = append(e.inputs, append([]float32(nil), x.input...))
	if e.failAt > 0 && e.invokes == e.failAt {
		return errors.New("kernel exploded")
	}
	return nil
}

func (x *fakeExecutable) Close() error {
	x.engine.mu.Lock()
	x.engine.closed++
	x.engine.mu.Unlock()
	return nil
}

// planarEngine accepts only one or three channels and always takes CHW.
type planarEngine struct {
	*fakeEngine
}

func (p planarEngine) SupportedChannels() []int        { return []int{1, 3} }
func (p planarEngine) PinnedLayout() preprocess.Layout { return preprocess.LayoutCHW }

// fakeImages serves fixed pixels per path; unknown paths get a ramp.
type fakeImages struct {
	pix   map[string][]uint8
	fail  map[string]bool
	loads []string
}

func (f *fakeImages) Load(path string, height, width, channels int) (*images.DecodedImage, error) {
	f.loads = append(f.loads, path)
	if f.fail[path] {
		return nil, errors.Errorf("cannot decode %s", path)
	}

	pix, ok := f.pix[path]
	if !ok {
		pix = make([]uint8, height*width*channels)
		for i := range pix {
			pix[i] = uint8(i)
		}
	}
	return &images.DecodedImage{Height: height, Width: width, Channels: channels, Pix: pix}, nil
}
