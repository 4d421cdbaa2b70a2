// Package pkg, projede paylaşılan küçük yardımcıları barındırır.
// Bu dosya domain-level error tanımlarıdır.
//
// Error'ları sabit değer olarak tanımlayınca karşılaştırma string yerine
// errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Service katmanı bu değerleri fmt.Errorf("%w: detay") ile sarar,
// handler katmanı errors.Is ile yakalayıp HTTP status'a çevirir.
package pkg

import "errors"

// Domain-level error'lar. Sıralama HTTP karşılıklarına göre:
// 404, 401, 403, 409, 400, 500.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
