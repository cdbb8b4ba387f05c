package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/digiclo/clothtagger/caption"
	"github.com/digiclo/clothtagger/config"
	"github.com/digiclo/clothtagger/nlp"
	"github.com/digiclo/clothtagger/onnx"
	"github.com/digiclo/clothtagger/service"
	"github.com/robfig/cron/v3"
)

var (
	tagger         *service.Tagger
	remover        service.Remover
	outputDir      string
	outputMaxWidth int
	cleanup        *cron.Cron
)

// Init loads the shared models once before serving. The ONNX Runtime
// environment must already be initialized. A missing segmentation model only
// disables background removal.
func Init(ctx context.Context) error {
	analyzer, err := nlp.NewAnalyzer()
	if err != nil {
		return fmt.Errorf("failed to load analyzer: %w", err)
	}

	filter, err := service.NewFilter(ctx, analyzer, service.FilterConfig{
		StopNouns:      config.C().StopNouns,
		StopAdjectives: config.C().StopAdjectives,
		Prompt:         config.C().CaptionPrompt,
	})
	if err != nil {
		return fmt.Errorf("failed to build caption filter: %w", err)
	}

	timeout := time.Duration(config.C().CaptionTimeout) * time.Second
	captioner := caption.NewClient(caption.Options{
		URL:               config.C().CaptionUrl,
		Token:             config.C().CaptionToken,
		MaxNewTokens:      config.C().CaptionMaxNewTokens,
		NoRepeatNgramSize: config.C().CaptionNoRepeatNgramSize,
		Timeout:           timeout,
	})
	tagger = service.NewTagger(captioner, filter, timeout)
	slog.Info("Caption tagger ready", slog.String("caption_url", config.C().CaptionUrl))

	outputDir = config.C().OutputDir
	outputMaxWidth = config.C().OutputMaxWidth

	modelPath, err := onnx.ModelPath()
	if err != nil {
		slog.Error("Background removal disabled", slog.String("error", err.Error()))
	} else if r, err := service.NewU2NetRemover(modelPath, config.C().RemoverPoolSize); err != nil {
		slog.Error("Background removal disabled", slog.String("error", err.Error()))
	} else {
		remover = r
	}

	ttl := time.Duration(config.C().OutputTTL) * time.Minute
	if ttl > 0 {
		cleanup, err = StartCleanup(outputDir, ttl, config.C().CleanupSpec)
		if err != nil {
			return fmt.Errorf("failed to schedule output cleanup: %w", err)
		}
	}
	return nil
}

// Close stops the cleanup job and releases model sessions.
func Close() {
	if cleanup != nil {
		<-cleanup.Stop().Done()
	}
	if r, ok := remover.(*service.U2NetRemover); ok {
		r.Close()
	}
}
