package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"finagent/internal/nlg"

	genai "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

type Client struct {
	svc   *genai.Service
	model string
}

var _ nlg.Generator = (*Client)(nil)

// New creates a Generative Language client authenticated with an API key.
// model is the bare model name, e.g. "gemini-1.5-flash".
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("missing API key")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("missing model name")
	}

	svc, err := genai.NewService(ctx, goption.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("generativelanguage service: %w", err)
	}
	return &Client{svc: svc, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := &genai.GenerateContentRequest{
		Contents: []*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
	}

	resp, err := c.svc.Models.GenerateContent("models/"+c.model, req).Context(ctx).Do()
	if err != nil {
		return "", mapError(err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text, nil
		}
	}
	return "", nlg.ErrUnavailable
}

// mapError folds transport and API failures into the small error set
// callers branch on. The original cause stays wrapped.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", nlg.ErrTimeout, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", nlg.ErrRateLimited, err)
		case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", nlg.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", nlg.ErrUnavailable, err)
}
