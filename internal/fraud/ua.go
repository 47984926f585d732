package fraud

import "strings"

// Signatures of known bots, crawlers and automation tools, matched as
// case-insensitive substrings against the User-Agent.
var botSignatures = []string{
	"bot", "crawl", "spider", "scrape", "headless", "phantom",
	"selenium", "puppeteer", "playwright", "wget", "curl",
	"python-requests", "httpx", "axios", "node-fetch", "go-http",
	"java/", "libwww", "apache-httpclient", "okhttp",
	"googlebot", "bingbot", "yandex", "baiduspider",
	"facebookexternalhit", "twitterbot", "slurp", "duckduckbot",
	"ia_archiver", "ahrefsbot", "semrushbot", "dotbot",
	"rogerbot", "mj12bot", "blexbot", "petalbot",
}

var browserTokens = []string{"mozilla", "chrome", "safari", "firefox", "edge", "opera", "okhttp"}

// IsBot classifies a User-Agent as non-human: empty or suspiciously short,
// missing every real-browser token, or carrying a known bot signature.
func IsBot(userAgent string) bool {
	if len(userAgent) < 10 {
		return true
	}
	ua := strings.ToLower(userAgent)
	hasBrowserToken := false
	for _, tok := range browserTokens {
		if strings.Contains(ua, tok) {
			hasBrowserToken = true
			break
		}
	}
	if !hasBrowserToken {
		return true
	}
	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}

func ParseDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "mobile") {
		return "Mobile"
	}
	if strings.Contains(ua, "tablet") {
		return "Tablet"
	}
	return "Desktop"
}

// ParseBrowser resolves the browser family. Chrome excludes Edge, Safari
// excludes Chrome; both UAs carry the other's token.
func ParseBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edge"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		return "Safari"
	case strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		return "Opera"
	default:
		return "Unknown"
	}
}
