package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// systemPrompt instructs chat-style providers. {{target}} is replaced with
// the target language code before sending.
const systemPrompt = `You are a professional translator specializing in mobile app localization. You are translating UI strings for an Android application into {{target}}.

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in the target language, not word-for-word
- Use idiomatic expressions natural to the target language
- Keep brand names and proper nouns unchanged
- Maintain the original tone and intent

TECHNICAL REQUIREMENTS:
- Return ONLY a JSON array of translated strings, one for each input entry, in the same order.
- Preserve any __TOKn__ markers exactly as-is; they stand for format specifiers.
- Preserve leading/trailing whitespace and punctuation patterns.
- Return ONLY the JSON array, no explanations or markdown code blocks.`

// openaiClient talks to any OpenAI-compatible chat completions endpoint.
type openaiClient struct {
	prov Provider
	http *http.Client
}

func (c *openaiClient) name() string { return ProviderOpenAI }

func (c *openaiClient) translateBatch(ctx context.Context, texts []string, source, target string) ([]string, error) {
	var user strings.Builder
	fmt.Fprintf(&user, "Translate these Android app UI strings from %s to %s:\n\n", source, target)
	for i, t := range texts {
		fmt.Fprintf(&user, "%d. %s\n", i+1, escapeForPrompt(t))
	}
	fmt.Fprintf(&user, "\nReturn a JSON array with exactly %d translated strings.", len(texts))

	body, err := json.Marshal(map[string]any{
		"model": c.prov.Model,
		"messages": []map[string]string{
			{"role": "system", "content": strings.ReplaceAll(systemPrompt, "{{target}}", target)},
			{"role": "user", "content": user.String()},
		},
		"temperature": 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := strings.TrimRight(c.prov.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.prov.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.prov.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryableError{
			err:  fmt.Errorf("rate limited (429)"),
			wait: retryAfter(resp),
		}
	case resp.StatusCode >= 500:
		return nil, &retryableError{err: fmt.Errorf("server error %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	content, err := extractChatContent(respBody)
	if err != nil {
		return nil, err
	}
	return parseTranslationArray(content, len(texts))
}

// extractChatContent pulls choices[0].message.content from a chat
// completions response, surfacing API-level errors first.
func extractChatContent(body []byte) (string, error) {
	var raw struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if raw.Error != nil {
		return "", fmt.Errorf("API error: %s", raw.Error.Message)
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return raw.Choices[0].Message.Content, nil
}

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseTranslationArray parses the model output as a JSON array of exactly
// expected strings, stripping markdown fences and surrounding chatter.
func parseTranslationArray(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}
	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start >= 0 && end > start {
		content = content[start : end+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("parsing response as JSON array: %w (response: %s)", err, truncate(content, 200))
	}
	if len(translations) != expected {
		return nil, fmt.Errorf("got %d translations, expected %d", len(translations), expected)
	}
	return translations, nil
}

// escapeForPrompt keeps multi-line values on one numbered prompt line.
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}
