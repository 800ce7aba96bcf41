// Package linkclean canonicalizes shared URLs: it strips tracking query
// parameters and guesses a short label from well-known domains.
package linkclean

import (
	"net/url"
	"strings"
)

// trackingParams are query parameter names removed during canonicalization.
// Matching is case-insensitive; any name starting with "utm_" is removed too.
var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {},
	"utm_content": {}, "gclid": {}, "gbraid": {}, "wbraid": {}, "fbclid": {},
	"mc_eid": {}, "mc_cid": {}, "igsh": {}, "vero_id": {}, "spm": {},
	"yclid": {}, "msclkid": {}, "otc": {}, "cmpid": {}, "s_cid": {},
}

// domainLabels maps known domain families to a suggested label.
var domainLabels = map[string]string{
	"youtube.com":       "Video",
	"youtu.be":          "Video",
	"vimeo.com":         "Video",
	"github.com":        "Dev",
	"gitlab.com":        "Dev",
	"stackoverflow.com": "Dev",
	"reddit.com":        "Social",
	"twitter.com":       "Social",
	"x.com":             "Social",
	"instagram.com":     "Social",
	"facebook.com":      "Social",
	"amazon.com":        "Shop",
	"ebay.com":          "Shop",
}

func isTrackingParam(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "utm_") {
		return true
	}
	_, ok := trackingParams[lower]
	return ok
}

// Clean removes tracking query parameters from a URL and re-attaches the
// remaining ones sorted by name (multi-valued parameters keep their original
// per-name order). A trailing slash is dropped when the cleaned URL contains
// more than two slashes. On any parse failure the input is returned unchanged.
func Clean(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	params, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return raw
	}

	for name := range params {
		if isTrackingParam(name) {
			delete(params, name)
		}
	}
	// url.Values.Encode sorts by name and keeps per-name value order.
	u.RawQuery = params.Encode()

	cleaned := u.String()
	if strings.HasSuffix(cleaned, "/") && strings.Count(cleaned, "/") > 2 {
		cleaned = cleaned[:len(cleaned)-1]
	}
	return cleaned
}

// SuggestLabel returns a short label for URLs on well-known domains, or the
// empty string when the host is not recognized. Subdomains of a known domain
// match; unrelated hosts never produce a fallback guess.
func SuggestLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	if label, ok := domainLabels[host]; ok {
		return label
	}
	for domain, label := range domainLabels {
		if strings.HasSuffix(host, "."+domain) {
			return label
		}
	}
	return ""
}
