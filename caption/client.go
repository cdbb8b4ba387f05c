// Package caption talks to an external image-captioning service.
package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/digiclo/clothtagger/service"
	nhttp "github.com/digiclo/clothtagger/util/http"
)

type Options struct {
	URL   string
	Token string
	// generation bounds forwarded to the model
	MaxNewTokens      int
	NoRepeatNgramSize int
	Timeout           time.Duration
}

type Client struct {
	opts Options
	cli  nhttp.IClient
}

func NewClient(opts Options) *Client {
	return &Client{opts: opts, cli: nhttp.NewHTTPClient()}
}

type parameters struct {
	Text              string `json:"text,omitempty"`
	MaxNewTokens      int    `json:"max_new_tokens,omitempty"`
	NoRepeatNgramSize int    `json:"no_repeat_ngram_size,omitempty"`
	EarlyStopping     bool   `json:"early_stopping"`
}

type captionReq struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type generation struct {
	GeneratedText *string `json:"generated_text"`
}

// Caption implements service.Captioner.
func (c *Client) Caption(ctx context.Context, img image.Image, prompt string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	header := map[string]string{"Content-Type": "application/json"}
	if c.opts.Token != "" {
		header["Authorization"] = "Bearer " + c.opts.Token
	}

	var raw json.RawMessage
	reqParam := &nhttp.RequestParam{
		RequestURI: c.opts.URL,
		Method:     "POST",
		Header:     header,
		Body: captionReq{
			Inputs: base64.StdEncoding.EncodeToString(buf.Bytes()),
			Parameters: parameters{
				Text:              prompt,
				MaxNewTokens:      c.opts.MaxNewTokens,
				NoRepeatNgramSize: c.opts.NoRepeatNgramSize,
				EarlyStopping:     true,
			},
		},
		Response: &raw,
		Timeout:  c.opts.Timeout,
	}
	if err := c.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		if errors.Is(err, nhttp.ErrDecodeResponse) {
			return "", fmt.Errorf("%w: %v", service.ErrCaptionFailed, err)
		}
		return "", fmt.Errorf("caption request: %w", err)
	}

	text, err := parseCaption(raw)
	if err != nil {
		return "", err
	}
	slog.Debug("get the caption", slog.String("caption", text))
	return text, nil
}

// parseCaption accepts {"generated_text": "..."} or a list of those and
// returns the first text.
func parseCaption(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty response", service.ErrCaptionFailed)
	}

	var gens []generation
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &gens); err != nil {
			return "", fmt.Errorf("%w: %v", service.ErrCaptionFailed, err)
		}
	} else {
		var g generation
		if err := json.Unmarshal(raw, &g); err != nil {
			return "", fmt.Errorf("%w: %v", service.ErrCaptionFailed, err)
		}
		gens = append(gens, g)
	}

	if len(gens) == 0 || gens[0].GeneratedText == nil {
		return "", fmt.Errorf("%w: no generated_text in response", service.ErrCaptionFailed)
	}
	text := strings.TrimSpace(*gens[0].GeneratedText)
	if text == "" {
		return "", fmt.Errorf("%w: blank generated_text", service.ErrCaptionFailed)
	}
	return text, nil
}
