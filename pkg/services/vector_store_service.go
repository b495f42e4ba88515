package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/openai"
)

const (
	contentCollection = "content_catalog"
	// text-embedding-3-small dimensionality.
	embeddingSize = uint64(1536)
)

// VectorStoreService indexes the training content catalog in Qdrant and
// serves semantic lookups for the chat panel and content search endpoint.
type VectorStoreService struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	embedder    *openai.Client
}

// NewVectorStoreService connects to Qdrant and ensures the catalog
// collection exists. An API key switches the connection to Cloud mode
// (TLS plus per-call key metadata); without one it dials plaintext.
func NewVectorStoreService(embedder *openai.Client, qdrantURL, qdrantAPIKey string) (*VectorStoreService, error) {
	var dialOpts []grpc.DialOption
	if qdrantAPIKey != "" {
		log.Println("Preparing Qdrant Cloud (TLS) connection...")
		creds := credentials.NewTLS(&tls.Config{})
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(creds))

		authInterceptor := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx, "api-key", qdrantAPIKey)
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(authInterceptor))
	} else {
		log.Println("Preparing local Qdrant (plaintext) connection...")
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(qdrantURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant gRPC client: %w", err)
	}

	s := &VectorStoreService{
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		embedder:    embedder,
	}
	if err := s.ensureCollection(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureCollection waits out Qdrant startup and creates the catalog
// collection if it does not exist yet.
func (s *VectorStoreService) ensureCollection(ctx context.Context) error {
	const maxRetries = 10
	retryInterval := 2 * time.Second

	var exists bool
	var listErr error
	for i := 0; i < maxRetries; i++ {
		listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		res, err := s.collections.List(listCtx, &qdrant.ListCollectionsRequest{})
		cancel()
		listErr = err
		if err == nil {
			for _, collection := range res.GetCollections() {
				if collection.GetName() == contentCollection {
					exists = true
					break
				}
			}
			break
		}
		log.Printf("⚠️ Qdrant not ready (attempt %d/%d), retrying in %v...", i+1, maxRetries, retryInterval)
		time.Sleep(retryInterval)
	}
	if listErr != nil {
		return fmt.Errorf("failed to list Qdrant collections: %w", listErr)
	}

	if exists {
		log.Printf("Collection '%s' already exists", contentCollection)
		return nil
	}

	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := s.collections.Create(createCtx, &qdrant.CreateCollection{
		CollectionName: contentCollection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     embeddingSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection '%s': %w", contentCollection, err)
	}
	log.Printf("✅ Created collection '%s'", contentCollection)
	return nil
}

// IndexCatalog embeds every catalog item and upserts it keyed by content id,
// so reindexing after a dataset reload overwrites in place. A nil receiver
// (no Qdrant configured) indexes nothing.
func (s *VectorStoreService) IndexCatalog(ctx context.Context, catalog []models.CatalogItem) (int, error) {
	if s == nil {
		return 0, nil
	}
	var indexed int
	for _, item := range catalog {
		cid := item.ContentID()
		if cid == "" {
			continue
		}
		text := catalogItemText(item)

		vector, err := s.embedder.CreateEmbedding(ctx, text)
		if err != nil {
			return indexed, fmt.Errorf("failed to embed content '%s': %w", cid, err)
		}

		payload := map[string]*qdrant.Value{
			"content_id": {Kind: &qdrant.Value_StringValue{StringValue: cid}},
			"skill_id":   {Kind: &qdrant.Value_StringValue{StringValue: item.SkillID()}},
			"mode":       {Kind: &qdrant.Value_StringValue{StringValue: item.Mode()}},
			"text":       {Kind: &qdrant.Value_StringValue{StringValue: text}},
		}

		// Deterministic point id derived from the content id keeps
		// reindex runs idempotent.
		pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(cid)).String()

		waitUpsert := true
		_, err = s.points.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: contentCollection,
			Wait:           &waitUpsert,
			Points: []*qdrant.PointStruct{
				{
					Id: &qdrant.PointId{
						PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID},
					},
					Vectors: &qdrant.Vectors{
						VectorsOptions: &qdrant.Vectors_Vector{
							Vector: &qdrant.Vector{Data: vector},
						},
					},
					Payload: payload,
				},
			},
		})
		if err != nil {
			return indexed, fmt.Errorf("failed to upsert content '%s': %w", cid, err)
		}
		indexed++
	}
	log.Printf("📊 Indexed %d catalog items into '%s'", indexed, contentCollection)
	return indexed, nil
}

// SearchContent runs a semantic lookup over the indexed catalog.
func (s *VectorStoreService) SearchContent(ctx context.Context, query string, topK uint64) ([]models.ContentHit, error) {
	queryVector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	withPayload := true
	searchResult, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: contentCollection,
		Vector:         queryVector,
		Limit:          topK,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: withPayload}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search content catalog: %w", err)
	}

	hits := make([]models.ContentHit, 0, len(searchResult.GetResult()))
	for _, result := range searchResult.GetResult() {
		payload := result.GetPayload()
		hits = append(hits, models.ContentHit{
			ContentID: payloadString(payload, "content_id"),
			SkillID:   payloadString(payload, "skill_id"),
			Mode:      payloadString(payload, "mode"),
			Text:      payloadString(payload, "text"),
			Score:     float64(result.GetScore()),
		})
	}
	log.Printf("Content search for '%s' returned %d hits", query, len(hits))
	return hits, nil
}

// catalogItemText flattens a catalog row into the text that gets embedded.
func catalogItemText(item models.CatalogItem) string {
	parts := []string{item.ContentID(), item.SkillID(), item.Tag()}
	parts = append(parts, item.Tags()...)
	parts = append(parts, item.Competencies()...)
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// payloadString reads a string value out of a Qdrant payload.
func payloadString(payload map[string]*qdrant.Value, key string) string {
	if val, ok := payload[key]; ok {
		return val.GetStringValue()
	}
	return ""
}
