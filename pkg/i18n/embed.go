// Çeviri JSON dosyaları (en.json, tr.json) derleme zamanında binary'ye
// gömülür; deploy edilen sunucu harici dosyaya ihtiyaç duymaz.
package i18n

import "embed"

// EmbeddedLocales, locales/ dizinindeki JSON dosyalarını içerir.
// Kullanım: fs.Sub(EmbeddedLocales, "locales") ile alt dizine eriş.
//
//go:embed locales/*.json
var EmbeddedLocales embed.FS
