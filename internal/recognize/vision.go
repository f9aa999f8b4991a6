package recognize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// labelPrompt asks the model for the label and nothing else. Models still
// wrap the answer in prose often enough that the response always goes
// through ParseLabel.
const labelPrompt = `This is a cropped region of a venue floor plan. It contains one TV screen marker and its printed label, such as "TV 01", "TV 12", or "#5". Reply with only the label text. If no label is readable, reply with NONE.`

// visionConfidence is assigned to labels the vision tier reads. The model
// reports no per-token score for this kind of answer, so the tier carries
// the fixed confidence the matcher expects for model-read labels.
const visionConfidence = 0.95

// Vision is the primary recognition tier: a Gemini vision model reads the
// label out of the cropped region. Accurate but slow (seconds per call)
// and remote, so it always runs under a deadline.
type Vision struct {
	apiKey string
	model  string
}

// NewVision builds the vision tier for the given API key and model name.
func NewVision(apiKey, model string) *Vision {
	return &Vision{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

func (v *Vision) Method() Method { return MethodVision }

// Recognize sends the crop to the model and parses a label from its
// response. A response with no recognizable label is an error so the
// orchestrator falls through to the next tier.
func (v *Vision) Recognize(ctx context.Context, cropPNG []byte) (Result, error) {
	if v.apiKey == "" {
		return Result{}, errors.New("vision: API key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(v.apiKey))
	if err != nil {
		return Result{}, fmt.Errorf("vision: create client: %w", err)
	}
	defer client.Close()

	m := client.GenerativeModel(v.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(labelPrompt),
		&genai.Blob{MIMEType: "image/png", Data: cropPNG},
	)
	if err != nil {
		return Result{}, fmt.Errorf("vision: generate: %w", err)
	}

	text := firstText(resp)
	if text == "" || strings.EqualFold(strings.TrimSpace(text), "NONE") {
		return Result{}, errors.New("vision: no label in response")
	}

	label, ok := ParseLabel(text)
	if !ok {
		return Result{}, fmt.Errorf("vision: unparseable response %q", truncate(text, 80))
	}
	return Result{Text: label, Confidence: visionConfidence}, nil
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func ptrFloat32(v float32) *float32 { return &v }
