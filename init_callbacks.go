// Package main — WebSocket Hub callback wire-up.
//
// registerHubCallbacks, Hub'ın presence callback'lerini ayarlar.
//
// Bu callback'ler neden burada (main package'da)?
// Hub ws paketinde yaşıyor, ama DB güncellemesi service katmanında.
// Hub'ın service'lere bağımlı olmasını istemiyoruz (Dependency Inversion).
// main package wire-up noktasıdır — tüm katmanları birbirine bağlar.
//
// Callback'ler Hub.Run() goroutine'inden ayrı goroutine'de çalışır
// (addClient/removeClient içinde `go callback()` ile çağrılır),
// böylece Hub'ın mutex Lock'u ile BroadcastToAll'ın RLock'u çakışmaz.
package main

import (
	"context"
	"log"

	"github.com/akinalp/meydan/models"
	"github.com/akinalp/meydan/services"
	"github.com/akinalp/meydan/ws"
)

// registerHubCallbacks, tüm Hub callback'lerini register eder.
// Hub.Run() başlamadan ÖNCE çağrılmalıdır.
//
// UpdatePresence hem DB'yi günceller hem OpPresence broadcast'ini yapar;
// callback'ler sadece delege eder, ikinci bir broadcast yapılmaz.
func registerHubCallbacks(hub *ws.Hub, userService services.UserService) {
	hub.SetPresenceCallbacks(
		func(userID string) {
			if err := userService.UpdatePresence(context.Background(), userID, models.UserStatusOnline); err != nil {
				log.Printf("[presence] failed to set online for user %s: %v", userID, err)
			}
		},
		func(userID string) {
			if err := userService.UpdatePresence(context.Background(), userID, models.UserStatusOffline); err != nil {
				log.Printf("[presence] failed to set offline for user %s: %v", userID, err)
			}
		},
		func(userID, status string) {
			if err := userService.UpdatePresence(context.Background(), userID, models.UserStatus(status)); err != nil {
				log.Printf("[presence] failed to set %s for user %s: %v", status, userID, err)
			}
		},
	)
}
