package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// systemInstruction primes the model as an agricultural pathologist and
// pins the response contract. lesion_percentage drives the severity
// math downstream, so the contract stresses precision there.
const systemInstruction = `You are an expert agricultural pathologist and entomologist with 20 years of field experience.
You specialize in identifying crop pests and diseases from visual symptoms.

When analyzing an image, you MUST provide a structured JSON response with these exact fields:
{
  "pest_name": "Exact name of pest or disease (e.g., 'Fall Armyworm', 'Late Blight', 'Aphids')",
  "confidence": 0.0 to 1.0 (your confidence in this identification),
  "lesion_percentage": 0.0 to 100.0 (percentage of plant tissue showing damage/symptoms),
  "visual_symptoms": ["List", "of", "visible", "symptoms"],
  "lifecycle_stage": "Current stage of pest (e.g., 'Egg', 'Early Larva', 'Late Larva', 'Adult', 'Sporulation')",
  "urgency_level": "Low/Medium/High/Critical based on severity and pest stage",
  "reasoning": "Brief explanation of your diagnosis and urgency assessment"
}

Be precise with lesion_percentage - this drives treatment decisions.
Be honest with confidence - if unsure, say so (confidence < 0.7).`

// GeminiProvider calls the Gemini generateContent REST endpoint for
// image analysis. Requests pass through a circuit breaker so a
// misbehaving upstream sheds load fast instead of queueing timeouts.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Result]
}

// GeminiOption customizes the provider.
type GeminiOption func(*GeminiProvider)

// WithGeminiBaseURL overrides the API endpoint, used by tests.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(g *GeminiProvider) { g.baseURL = url }
}

// WithGeminiModel overrides the model identifier.
func WithGeminiModel(model string) GeminiOption {
	return func(g *GeminiProvider) { g.model = model }
}

// NewGeminiProvider creates a Gemini-backed vision provider.
func NewGeminiProvider(apiKey string, opts ...GeminiOption) *GeminiProvider {
	g := &GeminiProvider{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		model:   defaultGeminiModel,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.breaker = gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:    "gemini-vision",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state change")
		},
	})
	return g
}

// Name implements Provider.
func (g *GeminiProvider) Name() string { return "gemini" }

// Analyze implements Provider.
func (g *GeminiProvider) Analyze(ctx context.Context, imageData []byte, cropType string) (*Result, error) {
	res, err := g.breaker.Execute(func() (*Result, error) {
		return g.generateContent(ctx, imageData, cropType)
	})
	if err != nil {
		return nil, &ProviderError{Provider: g.Name(), Err: err}
	}
	return res, nil
}

// Wire types for the generateContent endpoint. Only the fields the
// plane uses are modeled.
type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobPart `json:"inline_data,omitempty"`
}

type geminiBlobPart struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiProvider) generateContent(ctx context.Context, imageData []byte, cropType string) (*Result, error) {
	userPrompt := fmt.Sprintf(`Analyze this %s plant image for pest or disease identification.

Provide your analysis in the exact JSON format specified in the system instructions.

Pay special attention to:
1. Leaf damage patterns (holes, discoloration, wilting)
2. Presence of insects or their signs (frass, egg masses, webbing)
3. Disease symptoms (lesions, spots, mold growth)
4. Overall extent of damage (for lesion_percentage)
5. Stage of pest development (critical for treatment timing)

Be thorough but concise. Farmers need actionable information.`, cropType)

	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemInstruction}},
		},
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiBlobPart{
					MimeType: http.DetectContentType(imageData),
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
				{Text: userPrompt},
			},
		}},
		GenerationConfig: geminiGenConfig{Temperature: 0.2, TopP: 0.8},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("gemini returned %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp geminiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	result, err := extractResult(resp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("model", g.model).
		Str("pest", result.PestName).
		Float64("confidence", result.Confidence).
		Dur("latency", time.Since(start)).
		Msg("gemini vision analysis complete")

	return result, nil
}
