package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, access token'ın payload'ı.
//
// models paketinde tanımlıdır çünkü services, ws ve middleware
// katmanlarının üçü de kullanır; her katman models'e bağımlı
// olabildiği için circular dependency oluşmaz.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
