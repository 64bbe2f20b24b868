package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(query, acceptLanguage string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/public/listings"+query, nil)
	if acceptLanguage != "" {
		c.Request.Header.Set("Accept-Language", acceptLanguage)
	}
	return c
}

func TestResolveLocaleQueryOverridesHeader(t *testing.T) {
	c := newTestContext("?lang=ru-RU", "en-US,en;q=0.9")
	if locale := ResolveLocale(c); locale != "ru-RU" {
		t.Fatalf("expected ru-RU, got %s", locale)
	}
}

func TestResolveLocaleFromHeaderPrefix(t *testing.T) {
	c := newTestContext("", "en;q=0.9,az;q=0.8")
	if locale := ResolveLocale(c); locale != "en-US" {
		t.Fatalf("expected en-US, got %s", locale)
	}
}

func TestResolveLocaleFallsBackToDefault(t *testing.T) {
	c := newTestContext("", "fr-FR")
	if locale := ResolveLocale(c); locale != DefaultLocale {
		t.Fatalf("expected default locale, got %s", locale)
	}
}

func TestTranslationFallbackChain(t *testing.T) {
	if msg := T("ru-RU", "error.not_found"); msg == "" || msg == "error.not_found" {
		t.Fatalf("expected russian translation, got %q", msg)
	}
	// 未知语言回退到默认语言
	if msg := T("fr-FR", "error.not_found"); msg != T(DefaultLocale, "error.not_found") {
		t.Fatalf("expected default locale fallback, got %q", msg)
	}
	// 未知键原样返回
	if msg := T(DefaultLocale, "error.nonexistent_key"); msg != "error.nonexistent_key" {
		t.Fatalf("expected key passthrough, got %q", msg)
	}
}

func TestSprintfFormatsArguments(t *testing.T) {
	msg := Sprintf("en-US", "error.rate_limited", 30)
	if msg == "" || msg == "error.rate_limited" {
		t.Fatalf("expected formatted message, got %q", msg)
	}
}
