// Package gemini wraps the Google GenAI SDK for answer generation and
// for structured extraction of incident fields from alert PDFs.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/khanijo/minewatch/internal/llm"
)

type Config struct {
	APIKey string
	Model  string
}

type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing Gemini API key", llm.ErrUnavailable)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-flash-latest"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("generate content: empty response")
	}
	return text, nil
}

const extractionSystemPrompt = `Return a single JSON object that matches the schema exactly.
For any field that is NOT explicitly mentioned in the document, return null (without quotes).
Date format: DD-MM-YY. Time format: HH:MM.
Do not add extra keys.`

var incidentFieldDescriptions = map[string]string{
	"mine":           "Name of the Mine",
	"owner":          "Owner of the Mine",
	"district":       "District of the Mine",
	"state":          "State (location) of the Mine",
	"mineral":        "Mineral of the Mine",
	"place":          "Place of Accident",
	"date":           "Date of Accident",
	"time":           "Time of Accident",
	"casualties":     "Number of People killed",
	"injured":        "Number of People seriously injured",
	"cause":          "Prime facie cause of the Accident",
	"best_practices": "Best Practices only if the text best practices is explicitly mentioned",
	"cause_label":    "Analyze the cause and classify among 'Fire', 'Explosion', 'Roof Fall', 'Fall', 'Machinery', 'Transport', 'Electricity', 'Ground Movement', 'Eruption Of Water', 'Flying Pieces', 'Combustible Gas', 'Inundation'",
}

func incidentSchema() *genai.Schema {
	properties := make(map[string]*genai.Schema, len(incidentFieldDescriptions))
	required := make([]string, 0, len(incidentFieldDescriptions))
	for field, description := range incidentFieldDescriptions {
		fieldType := genai.TypeString
		if field == "casualties" || field == "injured" {
			fieldType = genai.TypeInteger
		}
		properties[field] = &genai.Schema{
			Type:        fieldType,
			Description: description,
			Nullable:    genai.Ptr(true),
		}
		required = append(required, field)
	}
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: "Structured fields of a DGMS safety alert",
		Properties:  properties,
		Required:    required,
	}
}

// ExtractIncidentJSON runs structured extraction over a safety-alert
// PDF and returns the model's JSON object verbatim.
func (c *Client) ExtractIncidentJSON(ctx context.Context, pdf []byte) ([]byte, error) {
	contents := []*genai.Content{
		genai.NewContentFromBytes(pdf, "application/pdf", genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		ResponseSchema:    incidentSchema(),
		SystemInstruction: genai.NewContentFromText(extractionSystemPrompt, genai.RoleUser),
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(0)),
		},
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("extract incident: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("extract incident: empty response")
	}
	return []byte(text), nil
}
