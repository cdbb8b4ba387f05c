package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"

	"github.com/digiclo/clothtagger/service"
)

type lemmatizer interface {
	Lemma(word string) string
}

// Analyzer tags English text with prose and lemmatizes it with golem.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	model      *prose.Model
	lemmatizer lemmatizer
}

func NewAnalyzer() (*Analyzer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmatizer: %w", err)
	}

	// decode the tagger weights once; every document reuses them
	warm, err := prose.NewDocument("warm up",
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("load tagging model: %w", err)
	}
	return &Analyzer{model: warm.Model, lemmatizer: lem}, nil
}

func (a *Analyzer) Analyze(ctx context.Context, text string) ([]service.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	opts := []prose.DocOpt{
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	}
	if a.model != nil {
		opts = append(opts, prose.UsingModel(a.model))
	}
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("tag text: %w", err)
	}

	ptoks := doc.Tokens()
	tokens := make([]service.Token, 0, len(ptoks))
	for _, tok := range ptoks {
		tokens = append(tokens, service.Token{
			Text:  tok.Text,
			Lemma: a.lemma(tok.Text, tok.Tag),
			POS:   universalPOS(tok.Tag),
		})
	}
	return tokens, nil
}

func (a *Analyzer) lemma(text, tag string) string {
	word := strings.ToLower(text)
	if !inflected(tag) {
		return word
	}
	if lemma := strings.ToLower(a.lemmatizer.Lemma(word)); lemma != "" {
		return lemma
	}
	return word
}
