// Command removebg writes a copy of an image with its background made
// transparent.
//
//	removebg input_path output_path
package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/digiclo/clothtagger/config"
	"github.com/digiclo/clothtagger/onnx"
	"github.com/digiclo/clothtagger/service"
	"github.com/digiclo/clothtagger/util"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: removebg input_path output_path")
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2]); err != nil {
		slog.Error("Background removal failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, inputPath, outputPath string) error {
	img, err := util.OpenImage(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}

	destroy, err := onnx.Init()
	if err != nil {
		return err
	}
	defer destroy()

	modelPath, err := onnx.ModelPath()
	if err != nil {
		return err
	}
	remover, err := service.NewU2NetRemover(modelPath, config.C().RemoverPoolSize)
	if err != nil {
		return err
	}
	defer remover.Close()

	return removeBackground(ctx, remover, img, outputPath)
}

func removeBackground(ctx context.Context, remover service.Remover, img image.Image, outputPath string) error {
	defer util.Trace("remove background")()

	out, err := remover.Remove(ctx, service.ToNRGBA(img))
	if err != nil {
		return fmt.Errorf("remove background: %w", err)
	}
	if err := util.SavePNG(outputPath, out); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}
	slog.Info("Background removed", slog.String("output", outputPath))
	return nil
}
