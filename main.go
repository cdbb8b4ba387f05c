package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/digiclo/clothtagger/config"
	"github.com/digiclo/clothtagger/onnx"
	"github.com/digiclo/clothtagger/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	slog.Info("Starting clothtagger")

	destroy, err := onnx.Init()
	if err != nil {
		slog.Error("Failed to initialize ONNX Runtime environment", slog.String("error", err.Error()))
		return
	}
	defer destroy()

	if err := server.Init(ctx); err != nil {
		slog.Error("Failed to initialize server", slog.String("error", err.Error()))
		return
	}
	defer server.Close()

	gin.SetMode(gin.ReleaseMode)
	addr := config.C().Host + ":" + config.C().Port
	srv := &http.Server{Addr: addr, Handler: server.NewRouter()}

	slog.Info("Listening on", slog.String("address", addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", slog.String("error", err.Error()))
	}
}
