package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认语言
const DefaultLocale = "az-AZ"

var supportedLocales = []string{"az-AZ", "ru-RU", "en-US"}

// ResolveLocale 从请求解析语言，优先级：query > header
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		if locale := matchLocale(lang); locale != "" {
			return locale
		}
	}
	accept := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(accept, ",") {
		lang := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if lang == "" {
			continue
		}
		if locale := matchLocale(lang); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// T 翻译消息，缺失时回退默认语言，再缺失时返回 key 本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func matchLocale(lang string) string {
	normalized := strings.ToLower(strings.TrimSpace(lang))
	for _, locale := range supportedLocales {
		if strings.EqualFold(locale, normalized) {
			return locale
		}
	}
	prefix := strings.SplitN(normalized, "-", 2)[0]
	for _, locale := range supportedLocales {
		if strings.HasPrefix(strings.ToLower(locale), prefix) {
			return locale
		}
	}
	return ""
}
