package server

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"github.com/segmentio/ksuid"

	"github.com/digiclo/clothtagger/config"
	"github.com/digiclo/clothtagger/service"
	"github.com/digiclo/clothtagger/util"
)

func TagImageHandler(c *gin.Context) {
	topK, err := strconv.Atoi(c.DefaultQuery("top_k", strconv.Itoa(config.C().DefaultTopK)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top_k must be an integer"})
		return
	}

	img, ok := readImage(c)
	if !ok {
		return
	}

	tags, err := tagger.Tag(c.Request.Context(), img, topK)
	if err != nil {
		status, msg := statusFor(err)
		slog.Error("Tagging failed", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, service.TagResult{Tags: tags})
}

func RemoveBackgroundHandler(c *gin.Context) {
	if remover == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "background removal is not available"})
		return
	}

	img, ok := readImage(c)
	if !ok {
		return
	}

	out, err := remover.Remove(c.Request.Context(), img)
	if err != nil {
		status, msg := statusFor(err)
		slog.Error("Background removal failed", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	if outputMaxWidth > 0 && out.Bounds().Dx() > outputMaxWidth {
		out = resize.Resize(uint(outputMaxWidth), 0, out, resize.Lanczos3)
	}

	name := ksuid.New().String() + ".png"
	if err := util.SavePNG(filepath.Join(outputDir, name), out); err != nil {
		slog.Error("Failed to store output", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	c.JSON(http.StatusOK, service.UploadResult{URL: "/outputs/" + name})
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func readImage(c *gin.Context) (image.Image, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return nil, false
	}
	defer file.Close()

	img, err := util.DecodeImage(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot decode image"})
		return nil, false
	}
	return img, true
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrModelNotInitialized):
		return http.StatusServiceUnavailable, "model not initialized"
	case errors.Is(err, service.ErrCaptionFailed):
		return http.StatusBadGateway, "captioning failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "model timed out"
	default:
		return http.StatusInternalServerError, "inference failed"
	}
}
