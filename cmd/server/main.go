package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kintai-bot/internal/config"
	"kintai-bot/internal/handler"
	"kintai-bot/internal/i18n"
	"kintai-bot/internal/service"
	"kintai-bot/internal/slackgw"
	"kintai-bot/internal/store"
)

func main() {
	cfg := config.Load()
	i18n.Init(cfg.Locale)

	db, err := store.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	attendanceStore, err := store.NewAttendanceStore(ctx, db)
	if err != nil {
		cancel()
		log.Fatalf("Failed to init attendance store: %v", err)
	}
	memberStore, err := store.NewMemberStore(ctx, db)
	if err != nil {
		cancel()
		log.Fatalf("Failed to init member store: %v", err)
	}
	cancel()

	gw := slackgw.New(cfg.SlackBotToken)
	svc := service.NewAttendanceService(attendanceStore, memberStore, gw)

	mux := http.NewServeMux()
	interactions := handler.NewInteractionHandler(svc, cfg.ChannelID)
	interactions.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.LoggingMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Attendance bot started on :%s (env: %s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	interactions.Drain()
}
