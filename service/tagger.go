package service

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"
)

type Tagger struct {
	captioner Captioner
	filter    *Filter
	timeout   time.Duration
}

// NewTagger wires a captioner to a filter. timeout bounds each captioning
// call; zero means no extra bound beyond the caller's context.
func NewTagger(captioner Captioner, filter *Filter, timeout time.Duration) *Tagger {
	return &Tagger{
		captioner: captioner,
		filter:    filter,
		timeout:   timeout,
	}
}

// Tag captions img and returns at most topK tags. A captioner that produces no
// usable text yields an error wrapping ErrCaptionFailed.
func (t *Tagger) Tag(ctx context.Context, img image.Image, topK int) ([]string, error) {
	if t == nil || t.captioner == nil || t.filter == nil {
		return nil, ErrModelNotInitialized
	}

	caption, err := t.caption(ctx, img)
	if err != nil {
		return nil, err
	}

	tags, err := t.filter.Tags(ctx, caption, topK)
	if err != nil {
		return nil, err
	}
	slog.Debug("Tagged image", slog.String("caption", caption), slog.Any("tags", tags))
	return tags, nil
}

func (t *Tagger) caption(ctx context.Context, img image.Image) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	caption, err := t.captioner.Caption(ctx, img, t.filter.Prompt())
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(caption) == "" {
		return "", fmt.Errorf("%w: empty caption", ErrCaptionFailed)
	}
	return caption, nil
}
