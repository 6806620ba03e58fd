package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rusenback/labconsole/internal/logging"
	"github.com/rusenback/labconsole/internal/stub"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	iface := flag.String("iface", "vmbr1", "network interface that carries the bridge")
	match := flag.String("addr-match", "10.10.10.1", "address expected on the bridge interface")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logging.NewConsole(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	gin.SetMode(gin.ReleaseMode)
	router := stub.NewRouter(
		stub.WithProbe(stub.InterfaceProbe(*iface, *match)),
		stub.WithLogger(log),
	)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("bridge stub listening",
		zap.String("addr", *addr),
		zap.String("iface", *iface),
		zap.String("match", *match),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("listen", zap.Error(err))
	}
	log.Info("bridge stub stopped")
}
