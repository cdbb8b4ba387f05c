package service

import (
	"context"
	"errors"
	"image"
	"strings"
	"unicode"
)

type entry struct {
	lemma string
	pos   POS
}

// dictAnalyzer tags words from a fixed lexicon; unknown alphabetic words are
// nouns, anything else is punctuation or a number.
type dictAnalyzer struct {
	lexicon map[string]entry
	calls   int
	err     error
}

func newDictAnalyzer() *dictAnalyzer {
	return &dictAnalyzer{lexicon: map[string]entry{
		"a":        {"a", POSDeterminer},
		"an":       {"an", POSDeterminer},
		"the":      {"the", POSDeterminer},
		"of":       {"of", POSAdposition},
		"in":       {"in", POSAdposition},
		"with":     {"with", POSAdposition},
		"on":       {"on", POSAdposition},
		"is":       {"be", POSAux},
		"are":      {"be", POSAux},
		"standing": {"stand", POSVerb},
		"wearing":  {"wear", POSVerb},
		"she":      {"she", POSPronoun},
		"red":      {"red", POSAdjective},
		"blue":     {"blue", POSAdjective},
		"white":    {"white", POSAdjective},
		"striped":  {"striped", POSAdjective},
		"nice":     {"nice", POSAdjective},
		"buttons":  {"button", POSNoun},
		"shoes":    {"shoe", POSNoun},
		"people":   {"people", POSNoun},
		"laces":    {"lace", POSNoun},
		"and":      {"and", POSOther},
		"nike":     {"nike", POSProperNoun},
		"x":        {"x", POSNoun},
		"clothing": {"clothing", POSNoun},
		"item":     {"item", POSNoun},
	}}
}

func (d *dictAnalyzer) Analyze(_ context.Context, text string) ([]Token, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	var tokens []Token
	for _, field := range strings.Fields(text) {
		word := strings.TrimRightFunc(field, unicode.IsPunct)
		if word != "" {
			tokens = append(tokens, d.token(word))
		}
		if punct := field[len(word):]; punct != "" {
			tokens = append(tokens, Token{Text: punct, Lemma: punct, POS: POSPunct})
		}
	}
	return tokens, nil
}

func (d *dictAnalyzer) token(word string) Token {
	if e, ok := d.lexicon[word]; ok {
		return Token{Text: word, Lemma: e.lemma, POS: e.pos}
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return Token{Text: word, Lemma: word, POS: POSNumber}
		}
	}
	return Token{Text: word, Lemma: word, POS: POSNoun}
}

type stubCaptioner struct {
	caption    string
	err        error
	gotPrompt  string
	sawTimeout bool
}

func (s *stubCaptioner) Caption(ctx context.Context, _ image.Image, prompt string) (string, error) {
	s.gotPrompt = prompt
	_, s.sawTimeout = ctx.Deadline()
	return s.caption, s.err
}

var errAnalyzer = errors.New("analyzer down")
