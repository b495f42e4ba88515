package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/openai"
)

func newAskFixture(t *testing.T, client *openai.Client) *AskService {
	t.Helper()
	datasets := NewDatasetService(t.TempDir())
	datasets.SetSnapshot(&Snapshot{
		People: []models.Person{{PersonID: "p-1", OrgUnit: "Sales"}},
		Deals:  []models.DealRecord{{PersonID: "p-1", AccountID: "a-1", Amount: 50000}},
	})
	return NewAskService(client, datasets, nil)
}

func TestAskRequiresQuery(t *testing.T) {
	svc := newAskFixture(t, openai.NewClient("", "test-key", "gpt-4o-mini", "text-embedding-3-small"))
	_, err := svc.Ask(context.Background(), AskRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing query")
}

func TestAskRequiresAPIKey(t *testing.T) {
	svc := newAskFixture(t, openai.NewClient("", "", "gpt-4o-mini", "text-embedding-3-small"))
	_, err := svc.Ask(context.Background(), AskRequest{Query: "What is our biggest gap?"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	svc = newAskFixture(t, nil)
	_, err = svc.Ask(context.Background(), AskRequest{Query: "What is our biggest gap?"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAskRejectsOversizedContext(t *testing.T) {
	svc := newAskFixture(t, openai.NewClient("", "test-key", "gpt-4o-mini", "text-embedding-3-small"))

	big := strings.Repeat("x", maxContextBytes+1)
	_, err := svc.Ask(context.Background(), AskRequest{
		Query:   "Summarize",
		Context: map[string]any{"blob": big},
	})
	assert.ErrorIs(t, err, ErrContextTooLarge)
}

func TestAssembleContextPriorityOrder(t *testing.T) {
	svc := newAskFixture(t, nil)

	payload, sources, trimmed := svc.assembleContext()
	assert.Len(t, sources, len(contextPriority))
	assert.Equal(t, contextPriority, sources)
	assert.Empty(t, trimmed)
	for _, name := range contextPriority {
		assert.Contains(t, payload, name)
	}
}

func TestAssembleContextDropsOversizedSection(t *testing.T) {
	datasets := NewDatasetService(t.TempDir())
	blob := strings.Repeat("y", 10_000)
	catalog := make([]models.CatalogItem, 200)
	for i := range catalog {
		catalog[i] = models.CatalogItem{"content_id": "c-1", "text": blob}
	}
	datasets.SetSnapshot(&Snapshot{
		People:  []models.Person{{PersonID: "p-1"}},
		Catalog: catalog,
	})
	svc := NewAskService(nil, datasets, nil)

	payload, sources, trimmed := svc.assembleContext()
	assert.NotContains(t, sources, "content_catalog")
	assert.NotContains(t, payload, "content_catalog")
	assert.Equal(t, []string{"content_catalog"}, trimmed)
	assert.Contains(t, sources, "hris")
	// Sections after the dropped one still fit and stay included.
	assert.Contains(t, sources, "gong")
	assert.Contains(t, sources, "support")
}

func TestSuggestQuestionsPerMode(t *testing.T) {
	svc := newAskFixture(t, nil)
	for _, m := range models.Modes {
		qs := svc.SuggestQuestions(m)
		assert.Len(t, qs, 3, string(m))
		for _, q := range qs {
			assert.NotEmpty(t, q)
		}
	}
}
