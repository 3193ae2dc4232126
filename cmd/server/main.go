package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savor-pos/api/internal/config"
	"github.com/savor-pos/api/internal/notify"
	"github.com/savor-pos/api/internal/router"
	"github.com/savor-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: connect database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("FATAL: ping database: %v", err)
	}

	events, err := notify.Connect(cfg.AMQPUrl)
	if err != nil {
		// The broker is optional; run without it rather than refusing to start.
		log.Printf("WARN: amqp connect: %v, events disabled", err)
	}
	defer events.Close()

	hub := ws.NewHub()
	go hub.Run()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(router.Deps{Cfg: cfg, Pool: pool, Hub: hub, Events: events}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("INFO: shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}
