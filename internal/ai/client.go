package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a Gemini-style generateContent endpoint and backs both
// the classification and rewrite capabilities. A nil *Client is a valid
// "capability absent" value for the pipeline.
type Client struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}
}

// Label asks the model to pick one label from the closed set. The answer is
// returned as-is; the caller validates membership.
func (c *Client) Label(ctx context.Context, text string, labels []string) (string, error) {
	prompt := fmt.Sprintf(
		"صنف النص الإخباري التالي في واحدة فقط من هذه الفئات وأجب باسم الفئة دون أي إضافة:\n%s\n\nالنص:\n%s",
		strings.Join(labels, "، "), escapeForPrompt(text))

	answer, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Rewrite asks the model to restyle the text for the given category and
// tone without adding facts.
func (c *Client) Rewrite(ctx context.Context, text, category, source, tone string) (string, error) {
	prompt := fmt.Sprintf(
		`أعد صياغة الخبر التالي بأسلوب %s مناسب لقسم "%s" دون إضافة أي معلومات غير واردة في النص الأصلي، مع الحفاظ على كل الحقائق كما هي.

المصدر: %s

النص:
%s`,
		tone, category, source, escapeForPrompt(text))

	return c.generate(ctx, prompt)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req := generateRequest{
		Contents: []content{{
			Parts: []part{{Text: prompt}},
		}},
	}

	var resp generateResponse
	_, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&resp).
		Post(url)

	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
