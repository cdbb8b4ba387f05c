package service

import (
	"context"
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"
)

func (r *U2NetRemover) acquire(ctx context.Context) (*Model, error) {
	if r == nil || r.pool == nil {
		return nil, ErrModelNotInitialized
	}
	select {
	case m := <-r.pool:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *U2NetRemover) release(m *Model) {
	r.pool <- m
}

// predict runs the segmentation model and returns a U2NetSize square mask.
func (r *U2NetRemover) predict(ctx context.Context, img image.Image) (*image.Gray, error) {
	inputData := Preprocess(img)

	m, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.release(m)

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.input.(*ort.Tensor[float32]).GetData(), inputData)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w", m.inputName, err)
	}

	outputTensor := m.output.(*ort.Tensor[float32]).GetData()
	pred := make([]float32, U2NetSize*U2NetSize)
	copy(pred, outputTensor)

	return MaskFromPrediction(pred, U2NetSize), nil
}
