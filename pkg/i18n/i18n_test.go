package i18n

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadLocales(t *testing.T) {
	t.Helper()

	localesFS, err := fs.Sub(EmbeddedLocales, "locales")
	require.NoError(t, err)
	require.NoError(t, Load(localesFS))
}

func TestLocalizer_T(t *testing.T) {
	loadLocales(t)

	en := NewLocalizer("en")
	tr := NewLocalizer("tr")

	assert.Equal(t, "Invalid username or password", en.T("auth.invalidCredentials"))
	assert.NotEqual(t, en.T("auth.invalidCredentials"), tr.T("auth.invalidCredentials"))

	// Bilinmeyen anahtar kendisine düşer.
	assert.Equal(t, "no.such.key", en.T("no.such.key"))
}

func TestLocalizer_UnsupportedLanguageFallsBack(t *testing.T) {
	loadLocales(t)

	l := NewLocalizer("de")
	assert.Equal(t, "Invalid username or password", l.T("auth.invalidCredentials"))
}

func TestLocalizer_TWithParams(t *testing.T) {
	loadLocales(t)

	l := NewLocalizer("en")
	msg := l.TWithParams("auth.tooManyAttempts", map[string]string{"wait": "2 minute(s)"})
	assert.Equal(t, "Too many login attempts, try again in 2 minute(s)", msg)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage(""))
	assert.Equal(t, "tr", DetectLanguage("tr-TR,tr;q=0.9,en-US;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("de-DE,de;q=0.9"))
	assert.Equal(t, "en", DetectLanguage("en-GB"))
}
