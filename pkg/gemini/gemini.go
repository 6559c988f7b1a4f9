// Package gemini provides the Google Gemini client used as the chat
// assistant's generation backend.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"tienda/internal/models"
)

const (
	// DefaultBaseURL is the Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
	// FallbackModel is retried once when the configured model is
	// rejected as unknown or unsupported.
	FallbackModel = "gemini-1.5-flash"
)

// fallbackReply is returned when the provider answers with empty text.
const fallbackReply = "No pude generar una respuesta en este momento."

// Client calls the Gemini generateContent API. It implements the chat
// service's Generator interface.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config holds Gemini connection details.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// NewClient creates a new Gemini client. The HTTP timeout bounds the whole
// generation call so a hung provider cannot stall a chat turn indefinitely.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// generateContentRequest is the generateContent API request body.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateContentResponse is the generateContent API response body.
type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FormatProductsInfo renders the catalog as one line per product for the
// prompt. An empty catalog yields an explicit placeholder.
func FormatProductsInfo(products []models.Product) string {
	if len(products) == 0 {
		return "- (sin productos)"
	}
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("- %s | %s | $%.2f | Stock: %d | Talla: %s | Color: %s",
			p.Name, p.Brand, p.Price, p.Stock, p.Size, p.Color))
	}
	return strings.Join(lines, "\n")
}

// buildPrompt assembles the sales-assistant prompt from the catalog, the
// formatted conversation history and the user's message.
func (c *Client) buildPrompt(userMessage string, products []models.Product, contextText string) string {
	var b strings.Builder
	b.WriteString("Eres un asistente virtual experto en ventas de zapatos para un e-commerce.\n")
	b.WriteString("Tu objetivo es ayudar a los clientes a encontrar los zapatos perfectos.\n\n")
	b.WriteString("PRODUCTOS DISPONIBLES:\n")
	b.WriteString(FormatProductsInfo(products))
	b.WriteString("\n\n")
	b.WriteString("INSTRUCCIONES:\n")
	b.WriteString("- Sé amigable y profesional\n")
	b.WriteString("- Usa el contexto de la conversación anterior\n")
	b.WriteString("- Recomienda productos específicos cuando sea apropiado\n")
	b.WriteString("- Menciona precios, tallas y disponibilidad\n")
	b.WriteString("- Si no tienes información, sé honesto\n\n")
	b.WriteString(contextText)
	b.WriteString("\n\n")
	b.WriteString("Usuario: " + userMessage + "\n\nAsistente:")
	return b.String()
}

// GenerateResponse produces the assistant's reply for one chat turn. If the
// configured model is rejected as unknown or unsupported, the call is retried
// once against FallbackModel.
func (c *Client) GenerateResponse(ctx context.Context, userMessage string, products []models.Product, contextText string) (string, error) {
	prompt := c.buildPrompt(userMessage, products, contextText)

	text, err := c.generate(ctx, c.model, prompt)
	if err != nil && c.model != FallbackModel && isUnknownModelError(err) {
		log.Printf("Gemini model %s rejected, retrying with %s: %v", c.model, FallbackModel, err)
		text, err = c.generate(ctx, FallbackModel, prompt)
	}
	return text, err
}

// isUnknownModelError reports whether the provider rejected the requested
// model rather than the request itself.
func isUnknownModelError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "unsupported")
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}

	text := ""
	if len(genResp.Candidates) > 0 && len(genResp.Candidates[0].Content.Parts) > 0 {
		text = strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text)
	}
	if text == "" {
		return fallbackReply, nil
	}
	return text, nil
}
