package service

import (
	"context"
	"errors"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// U2NetSize is the square input resolution of the segmentation model.
const U2NetSize = 320

var (
	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

var (
	// ErrCaptionFailed means the captioning model returned no usable text.
	// It is distinct from a caption that yields no tags.
	ErrCaptionFailed       = errors.New("captioning failed")
	ErrModelNotInitialized = errors.New("model not initialized")
)

// POS is a universal part-of-speech tag.
type POS string

const (
	POSAdjective  POS = "ADJ"
	POSNoun       POS = "NOUN"
	POSProperNoun POS = "PROPN"
	POSVerb       POS = "VERB"
	POSAux        POS = "AUX"
	POSPronoun    POS = "PRON"
	POSDeterminer POS = "DET"
	POSAdposition POS = "ADP"
	POSNumber     POS = "NUM"
	POSPunct      POS = "PUNCT"
	POSOther      POS = "X"
)

type Token struct {
	Text  string
	Lemma string
	POS   POS
}

// Analyzer tokenizes, lemmatizes and part-of-speech tags text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]Token, error)
}

// Captioner returns a natural-language caption for img. prompt may be empty.
type Captioner interface {
	Caption(ctx context.Context, img image.Image, prompt string) (string, error)
}

// Remover returns img with its background made transparent. The result has
// the same bounds as img.
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

type TagResult struct {
	Tags []string `json:"tags"`
}

type UploadResult struct {
	URL string `json:"url"`
}

type Model struct {
	session    *ort.AdvancedSession
	input      ort.Value
	output     ort.Value
	inputName  string
	outputName string
	mu         sync.Mutex
}
