package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/openai"
)

// Hard cap on the serialized JSON context shipped to the model.
const maxContextBytes = 1_500_000

// ErrContextTooLarge is returned when a caller-supplied context exceeds the
// payload budget. Callers should send summarized slices instead.
var ErrContextTooLarge = errors.New("context too large")

// ErrNotConfigured is returned when no upstream API key is set.
var ErrNotConfigured = errors.New("OPENAI_API_KEY is not configured")

// Dataset sections in descending priority for context assembly. When the
// budget runs out, lower-priority sections are dropped first.
var contextPriority = []string{"crm", "hris", "lrs", "lms_lrs", "cms", "content_catalog", "gong", "support"}

var enablementSystemPrompt = strings.Join([]string{
	"You are EnablementGPT, a consulting-grade analyst for Sales, CS, and Production.",
	"Answer ONLY with calculations and facts derived from the provided JSON context (HRIS, CRM, LRS, catalogs).",
	"If data is missing, explicitly state what is missing and the minimal additional fields needed.",
	"Style: executive. Start with a short headline, then bullet insights. Be concise.",
	"Prioritize KPI-first reasoning (win rate, revenue, margins, cycle time, retention, defects).",
	"Never invent data or metrics not in context. No fluff.",
}, " ")

// AskRequest is a question for EnablementGPT. Context is optional; when
// empty, the current dataset snapshot is injected instead.
type AskRequest struct {
	Query   string         `json:"query" binding:"required"`
	Scope   string         `json:"scope"`
	Context map[string]any `json:"context"`
}

// AskResponse carries the model's answer plus request accounting. Sources
// lists the snapshot sections that made it into a server-assembled context;
// TrimmedSources lists the ones dropped to stay under the payload budget.
type AskResponse struct {
	SessionID      string       `json:"session_id"`
	Answer         string       `json:"answer"`
	Model          string       `json:"model"`
	Sources        []string     `json:"sources,omitempty"`
	TrimmedSources []string     `json:"trimmed_sources,omitempty"`
	Usage          openai.Usage `json:"usage"`
}

// AskService proxies analyst questions to OpenAI with dataset context
// injected server-side.
type AskService struct {
	client   *openai.Client
	datasets *DatasetService
	vectors  *VectorStoreService
}

// NewAskService creates a new AskService. vectors may be nil; related-content
// enrichment is skipped in that case.
func NewAskService(client *openai.Client, datasets *DatasetService, vectors *VectorStoreService) *AskService {
	return &AskService{client: client, datasets: datasets, vectors: vectors}
}

// Ask answers a question against either the caller's context slices or the
// current snapshot, keeping the serialized payload under the budget.
func (s *AskService) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("missing query")
	}
	if s.client == nil || !s.client.Configured() {
		return nil, ErrNotConfigured
	}
	scope := req.Scope
	if scope == "" {
		scope = "sales"
	}

	dataCtx := req.Context
	var sources, trimmed []string
	if len(dataCtx) > 0 {
		raw, err := json.Marshal(dataCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to encode context: %w", err)
		}
		if len(raw) > maxContextBytes {
			return nil, ErrContextTooLarge
		}
	} else {
		dataCtx, sources, trimmed = s.assembleContext()
	}

	if s.vectors != nil {
		if hits, err := s.vectors.SearchContent(ctx, req.Query, 5); err != nil {
			log.Printf("⚠️ Related-content search failed, continuing without: %v", err)
		} else if len(hits) > 0 {
			dataCtx["related_content"] = hits
		}
	}

	userPayload, err := json.Marshal(map[string]any{
		"scope": scope,
		"query": req.Query,
		"data":  dataCtx,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode user payload: %w", err)
	}

	messages := []openai.ChatMessage{
		{Role: "system", Content: enablementSystemPrompt},
		{Role: "user", Content: string(userPayload)},
	}

	resp, err := s.client.ChatCompletion(ctx, messages, 0, 0.2)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI returned an empty response")
	}

	return &AskResponse{
		SessionID:      uuid.New().String(),
		Answer:         resp.Choices[0].Message.Content,
		Model:          resp.Model,
		Sources:        sources,
		TrimmedSources: trimmed,
		Usage:          resp.Usage,
	}, nil
}

// assembleContext serializes snapshot sections in priority order, skipping
// any section that would push the payload over budget. Returns the payload
// plus the names of the sections that fit and the ones that were dropped.
func (s *AskService) assembleContext() (map[string]any, []string, []string) {
	snap := s.datasets.Snapshot()

	sections := map[string]any{
		"crm":             snap.Deals,
		"hris":            snap.People,
		"lrs":             snap.LRSEvents,
		"lms_lrs":         snap.Trainings,
		"cms":             snap.ContentUsage,
		"content_catalog": snap.Catalog,
		"gong":            snap.Calls,
		"support":         snap.Tickets,
	}

	out := map[string]any{}
	var included, dropped []string
	used := 0
	for _, name := range contextPriority {
		raw, err := json.Marshal(sections[name])
		if err != nil {
			continue
		}
		if used+len(raw) > maxContextBytes {
			log.Printf("⚠️ Context budget reached, dropping section %q (%d bytes)", name, len(raw))
			dropped = append(dropped, name)
			continue
		}
		out[name] = json.RawMessage(raw)
		included = append(included, name)
		used += len(raw)
	}
	return out, included, dropped
}

// SuggestQuestions proposes scope-aware starter questions for the chat panel.
func (s *AskService) SuggestQuestions(mode models.Mode) []string {
	switch mode {
	case models.ModeSales:
		return []string{
			"Which competency gap is costing us the most pipeline?",
			"Which reps would benefit most from discovery coaching?",
			"What is the expected revenue impact of closing the top gap?",
		}
	case models.ModeCS:
		return []string{
			"Where are we losing the most renewal risk to skill gaps?",
			"Which CSMs have low onboarding scores and high account loads?",
			"How much ticket cost could faster triage avoid?",
		}
	default:
		return []string{
			"Which engineering skill gap drives the most cycle-time loss?",
			"What share of our downtime is preventable with training?",
			"Which training content has the highest leverage right now?",
		}
	}
}
