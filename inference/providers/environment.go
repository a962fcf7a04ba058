package providers

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// LibraryPathEnv names the environment variable that overrides the default
// ONNX Runtime shared library location.
const LibraryPathEnv = "ONNXRUNTIME_LIB"

var environmentMu sync.Mutex

// GetSharedLibPath returns the default path to the shared library for the
// current platform.
//
// Returns:
//   - string: The path to the shared library.
//   - error: An error if no library is known for this platform.
func GetSharedLibPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "../third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.1.23.0.dylib", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "../third_party/onnxruntime_arm64.so", nil
		}
		return "../third_party/onnxruntime.so", nil
	}
	return "", errors.Errorf("no onnxruntime library known for %s/%s", runtime.GOOS, runtime.GOARCH)
}

// ResolveLibraryPath picks the shared library path: explicit if set, then
// the ONNXRUNTIME_LIB environment variable, then the platform default.
func ResolveLibraryPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(LibraryPathEnv); env != "" {
		return env, nil
	}
	return GetSharedLibPath()
}

// InitializeEnvironment loads the ONNX Runtime shared library and prepares
// its global environment. It is safe to call more than once; only the first
// successful call loads the library.
//
// Arguments:
//   - libPath: The shared library, or empty to resolve it with ResolveLibraryPath.
//
// Returns:
//   - error: An error if the library is missing or fails to initialize.
func InitializeEnvironment(libPath string) error {
	environmentMu.Lock()
	defer environmentMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	libPath, err := ResolveLibraryPath(libPath)
	if err != nil {
		return err
	}

	// Check if the shared library exists before trying to use it.
	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "ONNX Runtime library not found at %s (set %s or pass the path explicitly)",
			libPath, LibraryPathEnv)
	}

	// Point ONNX Runtime to the exact shared library path (overrides default search).
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "error initializing ORT environment")
	}

	return nil
}

// DestroyEnvironment releases the ONNX Runtime environment if it was
// initialized.
func DestroyEnvironment() error {
	environmentMu.Lock()
	defer environmentMu.Unlock()

	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}
