// Package main, meydan backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//   1.  Config'i yükle
//   2.  Database'i başlat (embedded migration'lar ile)
//   3.  i18n çevirilerini yükle
//   4.  Upload dizinini oluştur
//   5.  Chat şifreleme anahtarını türet
//   6.  WebSocket Hub'ı başlat
//   7.  Repository → Service → Handler katmanlarını kur (init_*.go)
//   8.  HTTP router + CORS + Server
//   9.  Bakım görevlerini başlat
//  10.  Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinalp/meydan/config"
	"github.com/akinalp/meydan/database"
	"github.com/akinalp/meydan/pkg/crypto"
	"github.com/akinalp/meydan/pkg/i18n"
	"github.com/akinalp/meydan/ws"
	"github.com/rs/cors"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] meydan server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to access embedded migrations: %v", err)
	}
	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. i18n (Çoklu Dil Desteği) ───
	localesFS, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		log.Fatalf("[main] failed to access embedded locales: %v", err)
	}
	if err := i18n.Load(localesFS); err != nil {
		log.Fatalf("[main] failed to load i18n translations: %v", err)
	}

	// ─── 4. Upload Dizini ───
	if err := os.MkdirAll(cfg.Upload.Dir, 0755); err != nil {
		log.Fatalf("[main] failed to create upload directory: %v", err)
	}

	// ─── 5. Chat Şifreleme Anahtarı ───
	// Anahtar yoksa mesajlar düz metin saklanır (dev ortamı için kabul edilebilir).
	var encryptionKey []byte
	if cfg.Chat.EncryptionKey != "" {
		encryptionKey, err = crypto.DeriveKey(cfg.Chat.EncryptionKey)
		if err != nil {
			log.Fatalf("[main] invalid CHAT_ENCRYPTION_KEY: %v", err)
		}
		log.Println("[main] chat message encryption enabled")
	} else {
		log.Println("[main] chat message encryption disabled (CHAT_ENCRYPTION_KEY not set)")
	}

	// ─── 6. WebSocket Hub ───
	hub := ws.NewHub()

	// ─── 7. Katmanlar: Repository → Service → Handler ───
	repos := initRepositories(db.Conn)
	svcs, limiters := initServices(db.Conn, repos, hub, cfg, encryptionKey)

	// Presence callback'leri Hub.Run() başlamadan ÖNCE bağlanmalı.
	registerHubCallbacks(hub, svcs.User)
	go hub.Run()

	h := initHandlers(svcs, limiters, hub, cfg)

	// ─── 8. Router + CORS + Server ───
	mux := http.NewServeMux()
	authMw := initRoutes(mux, h, svcs.Auth, repos.User, cfg)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(mux)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// ─── 9. Periyodik Bakım ───
	svcs.Maintenance.Start()

	// ─── 10. Graceful Shutdown ───
	go func() {
		log.Printf("[main] listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[main] shutdown signal received")

	svcs.Maintenance.Stop()
	authMw.Close()
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}
	log.Println("[main] server stopped")
}
