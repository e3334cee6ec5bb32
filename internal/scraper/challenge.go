package scraper

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

// ErrChallenged is returned when a bot-protection service intercepted the request.
var ErrChallenged = errors.New("request challenged by bot protection")

// detector reports the protection vendor that produced p, if any.
type detector func(p *Page) (source string, ok bool)

var detectors = []detector{
	detectCloudflare,
	detectAkamai,
	detectDataDome,
	detectPerimeterX,
}

// DetectChallenge returns the vendor name when p looks like a challenge or
// block page, or "" otherwise.
func DetectChallenge(p *Page) string {
	if p == nil {
		return ""
	}
	for _, d := range detectors {
		if src, ok := d(p); ok {
			return src
		}
	}
	return ""
}

func server(p *Page) string {
	return strings.ToLower(p.Header.Get("Server"))
}

func bodyHas(p *Page, needles ...string) bool {
	for _, n := range needles {
		if bytes.Contains(p.Body, []byte(n)) {
			return true
		}
	}
	return false
}

func detectCloudflare(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden && p.StatusCode != http.StatusServiceUnavailable {
		return "", false
	}
	if strings.Contains(server(p), "cloudflare") ||
		bodyHas(p, "cf-browser-verification", "cloudflare-nginx", "cf-turnstile", "Attention Required! | Cloudflare") {
		return "Cloudflare", true
	}
	return "", false
}

func detectAkamai(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden {
		return "", false
	}
	// Akamai's generic block page carries a "Reference #" id.
	if strings.Contains(server(p), "akamai") ||
		(bodyHas(p, "Reference #") && bodyHas(p, "Access Denied")) {
		return "Akamai", true
	}
	return "", false
}

func detectDataDome(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden {
		return "", false
	}
	if strings.Contains(server(p), "datadome") ||
		p.Header.Get("X-DataDome") != "" || p.Header.Get("X-DataDome-Response") != "" ||
		bodyHas(p, "geo.captcha-delivery.com", "datadome") {
		return "DataDome", true
	}
	return "", false
}

func detectPerimeterX(p *Page) (string, bool) {
	if p.StatusCode != http.StatusForbidden {
		return "", false
	}
	if p.Header.Get("X-Px-Captcha") != "" ||
		bodyHas(p, "client.perimeterx.net", "px-captcha", "_pxBlock") {
		return "PerimeterX", true
	}
	return "", false
}
