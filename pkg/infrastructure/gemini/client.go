// Package gemini adapts the Google generative AI SDK to the shared
// ModelClient and FileStore interfaces.
package gemini

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	shared "github.com/roamly/server/pkg"
)

// ModelName is the model every section request goes to.
const ModelName = "gemini-1.5-flash"

// Client wraps one genai client plus a model pre-configured for structured
// extraction: JSON-leaning output, deterministic-leaning sampling, and the
// dangerous-content filter relaxed because the payload is the user's own
// activity data, not generated prose.
type Client struct {
	genai *genai.Client
	model *genai.GenerativeModel
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	model := client.GenerativeModel(ModelName)
	model.SetTemperature(1)
	model.SetTopP(0.95)
	model.SetTopK(0)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockNone,
		},
	}

	return &Client{genai: client, model: model}, nil
}

func (c *Client) Close() error {
	return c.genai.Close()
}

// Upload stages a payload in the Gemini Files API and returns its reference.
// No retry here: re-uploading identical bytes will not fix a quota or auth
// failure, so upload failure is fatal for the caller's run.
func (c *Client) Upload(ctx context.Context, data []byte, displayName string) (shared.FileRef, error) {
	file, err := c.genai.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: displayName,
		MIMEType:    "text/plain",
	})
	if err != nil {
		return shared.FileRef{}, fmt.Errorf("gemini: upload file: %w", err)
	}
	return shared.FileRef{URI: file.URI, Name: file.Name}, nil
}

// Delete removes a staged file. Callers treat failure as log-only cleanup.
func (c *Client) Delete(ctx context.Context, name string) error {
	return c.genai.DeleteFile(ctx, name)
}

// GenerateContent sends the instruction plus the staged file reference and
// concatenates the text parts of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, instruction string, file shared.FileRef) (string, error) {
	resp, err := c.model.GenerateContent(ctx,
		genai.Text(instruction),
		genai.FileData{URI: file.URI, MIMEType: "text/plain"},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no content generated")
	}

	output := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}
	return output, nil
}
