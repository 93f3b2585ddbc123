package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/classroom/config"
	"github.com/lshigami/classroom/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const (
	MinGenerateCount = 1
	MaxGenerateCount = 5
)

// ErrGeneratorUnavailable is returned when no text-generation client is configured.
var ErrGeneratorUnavailable = errors.New("problem generator is not configured")

// GenerationRequest describes the problems a teacher asks the model for. The same
// values serve as defaults when the resulting drafts are accepted.
type GenerationRequest struct {
	Subject     string
	SchoolLevel string
	Grade       string
	Difficulty  model.Difficulty
	Topic       string
	Kind        model.ProblemKind
	Count       int
}

func (r GenerationRequest) Validate() error {
	if !r.Kind.Valid() {
		return model.NewValidationError("kind", "unknown problem kind %q", r.Kind)
	}
	if !r.Difficulty.Valid() {
		return model.NewValidationError("difficulty", "unknown difficulty %q", r.Difficulty)
	}
	if strings.TrimSpace(r.Subject) == "" {
		return model.NewValidationError("subject", "subject is required")
	}
	if r.Count < MinGenerateCount || r.Count > MaxGenerateCount {
		return model.NewValidationError("count", "count must be between %d and %d", MinGenerateCount, MaxGenerateCount)
	}
	return nil
}

// ProblemGeneratorService produces raw field-tagged problem text.
type ProblemGeneratorService interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (ProblemGeneratorService, error) {
	if cfg.Gemini.ApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Problem generation will be unavailable.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.ApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	m := client.GenerativeModel(cfg.Gemini.Model)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(2048)
	return &geminiLLMService{client: m, cfg: cfg}, nil
}

func (s *geminiLLMService) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if s.client == nil {
		return "", ErrGeneratorUnavailable
	}

	prompt := BuildGenerationPrompt(req)
	log.Debug().Str("subject", req.Subject).Str("kind", string(req.Kind)).Int("count", req.Count).Msg("Requesting problems from Gemini")

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini GenerateContent failed")
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		log.Warn().Msg("Gemini returned no candidates")
		return "", nil
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return out.String(), nil
}

// BuildGenerationPrompt renders the instructions, including the exact field tags
// the parser reads back.
func BuildGenerationPrompt(req GenerationRequest) string {
	var b strings.Builder
	b.WriteString("You are an experienced teacher writing high quality practice problems for students.\n")
	fmt.Fprintf(&b, "Write %d %s problem(s) with these properties:\n", req.Count, kindLabel(req.Kind))
	fmt.Fprintf(&b, "- Subject: %s\n", req.Subject)
	if req.SchoolLevel != "" {
		fmt.Fprintf(&b, "- School level: %s\n", req.SchoolLevel)
	}
	if req.Grade != "" {
		fmt.Fprintf(&b, "- Grade: %s\n", req.Grade)
	}
	fmt.Fprintf(&b, "- Difficulty: %s\n", req.Difficulty)
	if req.Topic != "" {
		fmt.Fprintf(&b, "- Topic: %s\n", req.Topic)
	}
	b.WriteString("\nUse exactly this format and nothing else:\n\n")

	if req.Kind == model.KindMultipleChoice {
		b.WriteString(`Problem 1:
Title: [problem title]
Content: [problem text]
Option1: [choice 1]
Option2: [choice 2]
Option3: [choice 3]
Option4: [choice 4]
Answer: [number of the correct choice, 1-4]
Explanation: [why the answer is correct]
Expected time: [minutes needed]

Problem 2:
...
`)
		return b.String()
	}

	b.WriteString(`Problem 1:
Title: [problem title]
Content: [problem text]
Sample answer: [model answer]
Grading criteria: [how the answer is graded]
Expected time: [minutes needed]

Problem 2:
...
`)
	return b.String()
}

func kindLabel(k model.ProblemKind) string {
	switch k {
	case model.KindMultipleChoice:
		return "multiple choice"
	case model.KindShortAnswer:
		return "short answer"
	case model.KindEssay:
		return "essay"
	}
	return string(k)
}
