package onnx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/digiclo/clothtagger/config"
	"github.com/digiclo/clothtagger/util"
	ort "github.com/yalue/onnxruntime_go"
)

var pathOnce sync.Once
var libPath string

func LibPath() string {
	pathOnce.Do(func() {
		libPath = loadLibPath()
		if libPath == "" {
			slog.Error("ONNX Runtime library path could not be determined for this OS")
		} else {
			slog.Info("Using ONNX Runtime library", slog.String("path", libPath))
		}
	})
	return libPath
}

func loadLibPath() string {
	if config.C().Libonnx != "" {
		return config.C().Libonnx
	}
	if p := os.Getenv("ONNXRUNTIME_LIB"); p != "" {
		return p
	}
	var candidates []string
	switch runtime.GOOS {
	case "linux":
		candidates = []string{
			filepath.Join("onnxlibs", "libonnxruntime.so"),
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
		}
	case "darwin":
		candidates = []string{
			filepath.Join("onnxlibs", "libonnxruntime.dylib"),
			"/usr/local/lib/libonnxruntime.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		}
	case "windows":
		candidates = []string{filepath.Join("onnxlibs", "onnxruntime.dll"), "onnxruntime.dll"}
	default:
		return ""
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	// let the loader search the system paths
	return filepath.Base(candidates[len(candidates)-1])
}

// Init loads the shared library and initializes the ONNX Runtime environment.
// The returned func destroys the environment.
func Init() (func(), error) {
	ort.SetSharedLibraryPath(LibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime environment: %w", err)
	}
	return func() { _ = ort.DestroyEnvironment() }, nil
}

// ModelPath returns the configured segmentation model path, downloading the
// model from model_url first when the file is missing.
func ModelPath() (string, error) {
	path := filepath.Join(config.C().ModelDir, config.C().ModelFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if config.C().ModelUrl == "" {
		return "", fmt.Errorf("model file %s not found and no model_url configured", path)
	}
	slog.Info("Downloading model", slog.String("url", config.C().ModelUrl), slog.String("path", path))
	defer util.Trace("download model")()
	if err := util.DownloadFile(config.C().ModelUrl, path); err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}
	return path, nil
}
