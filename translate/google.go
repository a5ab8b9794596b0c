package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Separator joins chunk items into one request body and splits the provider
// response back into items. Google Translate passes it through untouched
// because it looks like markup, not prose.
const Separator = "\n<<<SEG>>>\n"

// reSeparator tolerates the whitespace mangling the service occasionally
// applies inside and right next to the marker. Only spaces and tabs are
// consumed around it; the join's newlines are stripped separately so the
// segments' own edge whitespace survives.
var reSeparator = regexp.MustCompile(`[ \t]*<<<\s*SEG\s*>>>[ \t]*`)

// googleClient talks to the free Google Translate web endpoint
// (translate_a/single with client=gtx). No credentials required.
type googleClient struct {
	prov Provider
	http *http.Client
}

func (c *googleClient) name() string { return ProviderGoogle }

func (c *googleClient) translateBatch(ctx context.Context, texts []string, source, target string) ([]string, error) {
	joined := strings.Join(texts, Separator)

	endpoint := strings.TrimRight(c.prov.BaseURL, "/") + "/translate_a/single"
	params := url.Values{
		"client": {"gtx"},
		"sl":     {source},
		"tl":     {target},
		"dt":     {"t"},
	}
	form := url.Values{"q": {joined}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint+"?"+params.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryableError{
			err:  fmt.Errorf("rate limited (429)"),
			wait: retryAfter(resp),
		}
	case resp.StatusCode >= 500:
		return nil, &retryableError{err: fmt.Errorf("server error %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	translated, err := parseGtxResponse(body)
	if err != nil {
		return nil, err
	}

	parts := splitSegments(translated)
	if len(parts) != len(texts) {
		return nil, fmt.Errorf("response split into %d segments, expected %d", len(parts), len(texts))
	}
	return parts, nil
}

// parseGtxResponse extracts the translated text from the gtx JSON payload:
// [[["translated","source",...],...],...]. The first element is a list of
// sentence pairs whose first field is the translation.
func parseGtxResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var sentences [][]any
	if err := json.Unmarshal(raw[0], &sentences); err != nil {
		return "", fmt.Errorf("unexpected response shape: %w", err)
	}

	var b strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		if text, ok := s[0].(string); ok {
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

// splitSegments splits the concatenated translation on the separator marker,
// trimming only the one newline per side that the Separator join introduced.
func splitSegments(s string) []string {
	parts := reSeparator.Split(s, -1)
	for i := range parts {
		if i > 0 {
			parts[i] = strings.TrimPrefix(parts[i], "\n")
		}
		if i < len(parts)-1 {
			parts[i] = strings.TrimSuffix(parts[i], "\n")
		}
	}
	return parts
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
