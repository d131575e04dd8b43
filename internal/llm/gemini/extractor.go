// Package gemini implements contract metadata extraction against the
// Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// Config captures the parameters for the Gemini extractor.
type Config struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TwoCallForPDFs routes PDF-derived text through translate-then-extract.
	// OCR output tends to confuse direct multilingual extraction.
	TwoCallForPDFs bool `mapstructure:"two_call_for_pdfs" yaml:"two_call_for_pdfs"`

	// AlwaysTwoCall forces translate-then-extract for every document.
	AlwaysTwoCall bool `mapstructure:"always_two_call" yaml:"always_two_call"`
}

// Extractor calls Gemini to pull structured metadata out of contract text.
type Extractor struct {
	client *genai.Client
	model  string
	cfg    Config
	logger *zap.Logger
}

// New creates a Gemini-backed extractor.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Extractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Extractor{
		client: client,
		model:  strings.TrimSpace(cfg.Model),
		cfg:    cfg,
		logger: logger,
	}, nil
}

var metadataSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"Customer (CK) Entity":        {Type: genai.TypeString},
		"Supplier Entity":             {Type: genai.TypeString},
		"Effective Date":              {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Expiration Date":             {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Term Type":                   {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Governing Law":               {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Contract Type":               {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Contract Currency":           {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Payment Term":                {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Termination for Convenience": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Notice Period for Termination for Convenience":     {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"Party with the Right to Terminate for Convenience": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"source_language":  {Type: genai.TypeString},
		"confidence":       {Type: genai.TypeString},
		"extraction_notes": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
	},
	Required: []string{"Customer (CK) Entity", "Supplier Entity", "source_language", "confidence"},
}

// Extract pulls the structured fields from one document's text. PDFs are
// routed through the two-call strategy when configured; malformed model
// output is a permanent failure, rate limiting a retryable one.
func (e *Extractor) Extract(ctx context.Context, text string, item contracts.WorkItem) (contracts.Metadata, error) {
	if e.cfg.AlwaysTwoCall || (e.cfg.TwoCallForPDFs && item.Extension() == ".pdf") {
		return e.extractTwoCall(ctx, text, item)
	}
	return e.extractDirect(ctx, text, item)
}

func (e *Extractor) extractDirect(ctx context.Context, text string, item contracts.WorkItem) (contracts.Metadata, error) {
	md, err := e.generateMetadata(ctx, buildDirectPrompt(text))
	if err != nil {
		return contracts.Metadata{}, fmt.Errorf("%s: %w", item.Name, err)
	}
	md.Method = contracts.MethodDirect
	return finalize(md), nil
}

// extractTwoCall translates the full contract to English first, then
// extracts from the translation with a wider text window.
func (e *Extractor) extractTwoCall(ctx context.Context, text string, item contracts.WorkItem) (contracts.Metadata, error) {
	english, err := e.Translate(ctx, text)
	if err != nil {
		return contracts.Metadata{}, fmt.Errorf("%s: translate: %w", item.Name, err)
	}
	e.logger.Debug("contract translated",
		zap.String("file", item.Name),
		zap.Int("original_chars", len(text)),
		zap.Int("english_chars", len(english)),
	)
	md, err := e.generateMetadata(ctx, buildEnglishPrompt(english))
	if err != nil {
		return contracts.Metadata{}, fmt.Errorf("%s: %w", item.Name, err)
	}
	md.Method = contracts.MethodTwoCall
	return finalize(md), nil
}

// Translate renders the contract text into English.
func (e *Extractor) Translate(ctx context.Context, text string) (string, error) {
	resp, err := e.client.Models.GenerateContent(
		ctx,
		e.model,
		genai.Text(buildTranslatePrompt(text)),
		&genai.GenerateContentConfig{
			CandidateCount:    1,
			SystemInstruction: genai.NewContentFromText(translatorSystemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return "", classifyErr(err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("translation response was empty")
	}
	return out, nil
}

func (e *Extractor) generateMetadata(ctx context.Context, prompt string) (contracts.Metadata, error) {
	resp, err := e.client.Models.GenerateContent(
		ctx,
		e.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount:    1,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    metadataSchema,
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return contracts.Metadata{}, classifyErr(err)
	}
	return parseMetadata(resp.Text())
}

// parseMetadata decodes the model's JSON payload. A payload that does not
// decode is unrecoverable for the item, so the error is non-retryable.
func parseMetadata(raw string) (contracts.Metadata, error) {
	var md contracts.Metadata
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &md); err != nil {
		return contracts.Metadata{}, fmt.Errorf("parse model json: %w", err)
	}
	return md, nil
}

// finalize normalizes the payload and flags missing critical fields in the
// notes so downstream review can spot them.
func finalize(md contracts.Metadata) contracts.Metadata {
	switch md.Confidence {
	case contracts.ConfidenceHigh, contracts.ConfidenceMedium, contracts.ConfidenceLow:
	default:
		md.Confidence = contracts.ConfidenceMedium
	}
	if missing := md.MissingCriticalFields(); len(missing) > 0 {
		note := "missing critical fields: " + strings.Join(missing, ", ")
		if md.Notes != "" {
			md.Notes += "; " + note
		} else {
			md.Notes = note
		}
		if md.Confidence == contracts.ConfidenceHigh {
			md.Confidence = contracts.ConfidenceMedium
		}
	}
	return md
}

// classifyErr wraps rate-limit responses so the executor retries with
// backoff. Everything else fails the attempt permanently.
func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return &contracts.RateLimitError{StatusCode: apiErr.Code, Err: err}
		}
		return err
	}
	return err
}
