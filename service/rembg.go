package service

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	ort "github.com/yalue/onnxruntime_go"
)

// U2NetRemover removes backgrounds with a U²-Net saliency model. Sessions are
// pooled; each call borrows one.
type U2NetRemover struct {
	pool   chan *Model
	models []*Model
}

// NewU2NetRemover requires an initialized ONNX Runtime environment.
func NewU2NetRemover(onnxPath string, poolSize int) (*U2NetRemover, error) {
	if poolSize < 1 {
		poolSize = 1
	}

	inputs, outputs, err := ort.GetInputOutputInfo(onnxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s has no inputs or outputs", onnxPath)
	}

	r := &U2NetRemover{pool: make(chan *Model, poolSize)}
	for range poolSize {
		m, err := newModel(onnxPath, inputs[0].Name, outputs[0].Name)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.models = append(r.models, m)
		r.pool <- m
	}
	slog.Info("Loaded segmentation model", slog.String("path", onnxPath), slog.Int("sessions", poolSize))
	return r, nil
}

func newModel(onnxPath, inputName, outputName string) (*Model, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, U2NetSize, U2NetSize), make([]float32, 3*U2NetSize*U2NetSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, U2NetSize, U2NetSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		onnxPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX Runtime session: %w", err)
	}

	return &Model{
		session:    session,
		input:      inputTensor,
		output:     outputTensor,
		inputName:  inputName,
		outputName: outputName,
	}, nil
}

// Remove returns an NRGBA image with img's bounds whose alpha is the
// predicted foreground mask.
func (r *U2NetRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	src := ToNRGBA(img)
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}
	mask, err := r.predict(ctx, src)
	if err != nil {
		return nil, err
	}
	return ApplyMask(src, mask), nil
}

func (r *U2NetRemover) Close() {
	for _, m := range r.models {
		m.mu.Lock()
		_ = m.session.Destroy()
		_ = m.input.Destroy()
		_ = m.output.Destroy()
		m.mu.Unlock()
	}
	r.models = nil
}
