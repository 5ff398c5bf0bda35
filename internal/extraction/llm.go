package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// Default Ollama configuration values.
const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2:1b"
	defaultTimeout       = 8 * time.Second
	defaultMaxAttempts   = 3
)

// Rate limiter defaults: local model, but still bounded against
// prompt storms from a misbehaving mailbox.
const (
	defaultRateLimit = 2.0 // requests per second
	defaultBurst     = 5
)

var (
	reISODate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reWireTime = regexp.MustCompile(`^\d{2}:\d{2}$`)
	reJSONBody = regexp.MustCompile(`\{[^}]*\}`)
)

// ollamaStrategy extracts a slot by prompting a local Ollama model
// for strict JSON and validating the result. Any failure after all
// attempts makes the strategy fall through to the heuristics.
type ollamaStrategy struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
}

func newOllamaStrategy(cfg Config) *ollamaStrategy {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &ollamaStrategy{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxAttempts: maxAttempts,
	}
}

func (o *ollamaStrategy) name() string { return "ollama" }

// ollamaRequest is the request format for Ollama's generate API.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

// ollamaResponse is the non-streaming response from Ollama.
type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// wireSlot is the model's output schema. This is the single adapter
// between the snake_case wire naming and the negotiation slot shape.
type wireSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (w wireSlot) toSlot() negotiation.Slot {
	return negotiation.Slot{Date: w.Date, StartTime: w.StartTime, EndTime: w.EndTime}
}

func (o *ollamaStrategy) extract(ctx context.Context, text string, snap *Snapshot, now time.Time) (negotiation.Slot, bool) {
	if err := o.limiter.Wait(ctx); err != nil {
		return negotiation.Slot{}, false
	}

	prompt := buildSlotPrompt(text, snap, now)

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		// First attempt runs slightly warmer; retries clamp down for
		// more deterministic JSON.
		temperature := 0.1
		if attempt > 1 {
			temperature = 0.05
		}

		slot, err := o.generate(ctx, prompt, temperature)
		if err == nil {
			return slot, true
		}
		if ctx.Err() != nil {
			return negotiation.Slot{}, false
		}
	}

	return negotiation.Slot{}, false
}

func (o *ollamaStrategy) generate(ctx context.Context, prompt string, temperature float64) (negotiation.Slot, error) {
	req := ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			Temperature: temperature,
			TopP:        0.9,
			NumPredict:  100,
		},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return negotiation.Slot{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return negotiation.Slot{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return negotiation.Slot{}, fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return negotiation.Slot{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return negotiation.Slot{}, fmt.Errorf("generate error (%d): %s", resp.StatusCode, string(body))
	}

	var genResp ollamaResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return negotiation.Slot{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return parseSlotJSON(genResp.Response)
}

// parseSlotJSON pulls the first JSON object out of the model output
// and validates its shape before accepting it.
func parseSlotJSON(content string) (negotiation.Slot, error) {
	// Models sometimes wrap JSON in markdown code blocks.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	raw := reJSONBody.FindString(content)
	if raw == "" {
		return negotiation.Slot{}, fmt.Errorf("no JSON object in model output")
	}

	var w wireSlot
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return negotiation.Slot{}, fmt.Errorf("malformed model JSON: %w", err)
	}

	if !reISODate.MatchString(w.Date) {
		return negotiation.Slot{}, fmt.Errorf("invalid date %q in model output", w.Date)
	}
	if !reWireTime.MatchString(w.StartTime) || !reWireTime.MatchString(w.EndTime) {
		return negotiation.Slot{}, fmt.Errorf("invalid times %q-%q in model output", w.StartTime, w.EndTime)
	}

	return w.toSlot(), nil
}

// buildSlotPrompt instructs the model to emit strict JSON. The date
// convention is spelled out with examples because small models
// reliably confuse day-first and month-first triples.
func buildSlotPrompt(text string, snap *Snapshot, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are an intelligent interview scheduling assistant. Parse the following message and extract the date and time information.

Current Date: %s
Current Time: %s
`, now.Format("2006-01-02"), now.Format("15:04"))

	if snap != nil {
		fmt.Fprintf(&b, `
Current Interview Context:
- Candidate: %s
- Interviewer: %s
- Originally proposed date: %s
- Originally proposed time: %s - %s
`, orUnknown(snap.Candidate), orUnknown(snap.Interviewer),
			orUnknown(snap.ScheduledDate), orUnknown(snap.ScheduledStartTime), orUnknown(snap.ScheduledEndTime))
	}

	fmt.Fprintf(&b, `
Message to parse: "%s"

Instructions:
1. Extract the date in YYYY-MM-DD format
2. Extract start time in HH:MM format (24-hour)
3. Extract end time in HH:MM format (24-hour)
4. If end time is not specified, assume 1-hour duration
5. CRITICAL DATE FORMAT HANDLING:
   - Input format is ALWAYS DD-MM-YYYY (day first, then month, then year)
   - "3-08-2025" = 3rd August 2025 = "2025-08-03"
   - "12-11-2025" = 12th November 2025 = "2025-11-12" (NOT December 11th!)
   - "31-12-2025" = 31st December 2025 = "2025-12-31"
6. Handle times like "13:00-14:00PM", "1:00-2:00PM", "1 PM to 2 PM", "morning", "afternoon", etc.
7. Convert AM/PM to 24-hour format: 1:00PM = 13:00, 2:00PM = 14:00
8. If you see "PM" after a time range already in 24-hour format (like "13:00-14:00PM"), ignore the PM
9. For single times like "3:00 PM", convert to "15:00" and add 1 hour duration = "15:00-16:00"

If no date is found, use tomorrow (%s).

Respond ONLY with valid JSON in this exact format:
{"date": "YYYY-MM-DD", "start_time": "HH:MM", "end_time": "HH:MM"}`,
		text, now.AddDate(0, 0, 1).Format("2006-01-02"))

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
