package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

type FilterConfig struct {
	StopNouns      []string
	StopAdjectives []string
	// Prompt is the fixed instruction given to the captioning model. Empty
	// disables prompt-echo stripping.
	Prompt string
}

// Filter reduces a caption to single-word adjective and noun tags.
// It is immutable after NewFilter and safe for concurrent use.
type Filter struct {
	analyzer    Analyzer
	stopNouns   map[string]struct{}
	stopAdjs    map[string]struct{}
	prompt      string
	promptWords map[string]struct{}
}

func NewFilter(ctx context.Context, analyzer Analyzer, cfg FilterConfig) (*Filter, error) {
	f := &Filter{
		analyzer:    analyzer,
		stopNouns:   toSet(cfg.StopNouns),
		stopAdjs:    toSet(cfg.StopAdjectives),
		prompt:      normalize(cfg.Prompt),
		promptWords: map[string]struct{}{},
	}
	if f.prompt == "" {
		return f, nil
	}

	tokens, err := analyzer.Analyze(ctx, f.prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze prompt: %w", err)
	}
	for _, tok := range tokens {
		if isAlpha(tok.Text) {
			f.promptWords[normalize(tok.Lemma)] = struct{}{}
		}
	}
	return f, nil
}

// Prompt returns the normalized captioning prompt.
func (f *Filter) Prompt() string {
	return f.prompt
}

// Tags returns at most topK unique tags in order of first appearance.
// The result is never nil.
func (f *Filter) Tags(ctx context.Context, caption string, topK int) ([]string, error) {
	tags := []string{}
	if topK <= 0 {
		return tags, nil
	}

	text := f.stripPrompt(normalize(caption))
	if text == "" {
		return tags, nil
	}

	tokens, err := f.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analyze caption: %w", err)
	}

	seen := make(map[string]struct{}, topK)
	for _, tok := range tokens {
		lemma := normalize(tok.Lemma)
		if !f.accept(tok, lemma) {
			continue
		}
		if _, ok := seen[lemma]; ok {
			continue
		}
		seen[lemma] = struct{}{}
		tags = append(tags, lemma)
		if len(tags) >= topK {
			break
		}
	}
	return tags, nil
}

func (f *Filter) stripPrompt(caption string) string {
	if f.prompt != "" && strings.HasPrefix(caption, f.prompt) {
		return strings.TrimSpace(caption[len(f.prompt):])
	}
	return caption
}

func (f *Filter) accept(tok Token, lemma string) bool {
	if _, ok := f.promptWords[lemma]; ok {
		return false
	}
	if !isAlpha(tok.Text) || !isAlpha(lemma) || len([]rune(lemma)) <= 1 {
		return false
	}
	switch tok.POS {
	case POSAdjective:
		_, stopped := f.stopAdjs[lemma]
		return !stopped
	case POSNoun, POSProperNoun:
		_, stopped := f.stopNouns[lemma]
		return !stopped
	default:
		return false
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = normalize(w); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
