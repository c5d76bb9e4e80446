package main

import (
	"bitwise74/auth-api/app"
	"bitwise74/auth-api/config"
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	gin.SetMode(gin.ReleaseMode)

	if err := config.Setup(os.Args[1:]); err != nil {
		return err
	}

	if err := config.SetupLogger(); err != nil {
		return fmt.Errorf("failed to set up logger, %w", err)
	}
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := internal.NewDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	// Used and expired reset tokens pile up slowly, checking once a day is enough
	go service.TokenCleanup(ctx, v.GetDuration("cleanup.interval"), d.Tokens)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", v.GetInt("host.port")),
		Handler:           app.NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if v.GetBool("host.ssl.enabled") {
			errCh <- srv.ListenAndServeTLS(v.GetString("host.ssl.certificate_path"), v.GetString("host.ssl.certificate_key_path"))
			return
		}

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped, %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
