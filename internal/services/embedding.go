package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gorm.io/gorm"

	"tirefinder/pkg/models"
)

const shopCollectionName = "tirefinder_shops"

// basicAuth implements credentials.PerRPCCredentials for basic authentication
type basicAuth struct {
	username string
	password string
}

func (b *basicAuth) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{
		"authorization": "Bearer " + b.password,
	}, nil
}

func (b *basicAuth) RequireTransportSecurity() bool {
	return false
}

// EmbeddingService indexes shop descriptions in Qdrant for semantic search
type EmbeddingService struct {
	openaiClient *openai.Client
	qdrantClient qdrant.CollectionsClient
	conn         *grpc.ClientConn
}

// ShopSearchResult is one hit from a semantic shop search
type ShopSearchResult struct {
	ShopID string  `json:"shop_id"`
	Score  float32 `json:"score"`
	Text   string  `json:"text"`
}

// NewEmbeddingService creates a new embedding service backed by OpenAI and Qdrant
func NewEmbeddingService(openaiAPIKey string, qdrantURL string, qdrantPassword string) (*EmbeddingService, error) {
	openaiClient := openai.NewClient(openaiAPIKey)

	var dialOpts []grpc.DialOption

	if qdrantPassword != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(&basicAuth{
			username: "qdrant",
			password: qdrantPassword,
		}))
	}

	dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))

	conn, err := grpc.Dial(qdrantURL, dialOpts...)
	if err != nil {
		// gRPC default port is 6334, REST deployments often only expose 6333
		if strings.Contains(qdrantURL, ":6334") {
			fallbackURL := strings.Replace(qdrantURL, ":6334", ":6333", 1)
			log.Warn().Str("url", qdrantURL).Str("fallback", fallbackURL).Msg("Qdrant connection failed, trying fallback")
			conn, err = grpc.Dial(fallbackURL, dialOpts...)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to connect to Qdrant: %v", err)
		}
	}

	qdrantClient := qdrant.NewCollectionsClient(conn)

	service := &EmbeddingService{
		openaiClient: openaiClient,
		qdrantClient: qdrantClient,
		conn:         conn,
	}

	log.Info().Str("url", qdrantURL).Msg("embedding service initialized")

	return service, nil
}

func (s *EmbeddingService) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// CheckQdrantHealth verifies the Qdrant connection is working
func (s *EmbeddingService) CheckQdrantHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.qdrantClient.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("Qdrant connection failed: %v", err)
	}

	return nil
}

func (s *EmbeddingService) GenerateEmbedding(text string) ([]float32, error) {
	ctx := context.Background()

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3, // text-embedding-3-small
	}

	resp, err := s.openaiClient.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %v", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding generated")
	}

	return resp.Data[0].Embedding, nil
}

// UpsertShopEmbedding (re)indexes one shop. Unchanged content is skipped
// using the stored content hash, and the hash is persisted after indexing.
func (s *EmbeddingService) UpsertShopEmbedding(db *gorm.DB, shop *models.Shop) error {
	ctx := context.Background()

	text := shop.GetSearchText()
	hash := s.calculateContentHash(text)
	if shop.EmbeddingHash == hash {
		return nil
	}

	if err := s.ensureShopCollection(); err != nil {
		return fmt.Errorf("failed to ensure shop collection: %v", err)
	}

	embedding, err := s.GenerateEmbedding(text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %v", err)
	}

	metadata := shop.GetMetadata()
	metadata["shop_id"] = shop.ID.String()
	metadata["text"] = text
	metadata["indexed_at"] = time.Now().Unix()

	payload := s.createPayload(metadata)

	pointsClient := qdrant.NewPointsClient(s.conn)
	_, err = pointsClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: shopCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id: &qdrant.PointId{
					PointIdOptions: &qdrant.PointId_Uuid{
						Uuid: shop.ID.String(),
					},
				},
				Vectors: &qdrant.Vectors{
					VectorsOptions: &qdrant.Vectors_Vector{
						Vector: &qdrant.Vector{
							Data: embedding,
						},
					},
				},
				Payload: payload,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to store embedding in Qdrant: %v", err)
	}

	if err := db.Model(&models.Shop{}).Where("id = ?", shop.ID).Update("embedding_hash", hash).Error; err != nil {
		log.Warn().Err(err).Str("shop_id", shop.ID.String()).Msg("failed to persist embedding hash")
	}

	return nil
}

// SearchShops runs a semantic search over indexed shops
func (s *EmbeddingService) SearchShops(query string, limit uint64) ([]*ShopSearchResult, error) {
	ctx := context.Background()

	queryEmbedding, err := s.GenerateEmbedding(query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %v", err)
	}

	pointsClient := qdrant.NewPointsClient(s.conn)
	searchResp, err := pointsClient.Search(ctx, &qdrant.SearchPoints{
		CollectionName: shopCollectionName,
		Vector:         queryEmbedding,
		Limit:          limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search in Qdrant: %v", err)
	}

	results := make([]*ShopSearchResult, 0, len(searchResp.Result))
	for _, point := range searchResp.Result {
		result := &ShopSearchResult{
			Score: point.Score,
		}

		if payload := point.Payload; payload != nil {
			if shopID, ok := payload["shop_id"]; ok {
				if shopIDStr, ok := shopID.Kind.(*qdrant.Value_StringValue); ok {
					result.ShopID = shopIDStr.StringValue
				}
			}
			if text, ok := payload["text"]; ok {
				if textStr, ok := text.Kind.(*qdrant.Value_StringValue); ok {
					result.Text = textStr.StringValue
				}
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// DeleteShopEmbedding removes a shop vector from the index
func (s *EmbeddingService) DeleteShopEmbedding(shopID string) error {
	ctx := context.Background()

	pointsClient := qdrant.NewPointsClient(s.conn)
	_, err := pointsClient.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: shopCollectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{
						{
							PointIdOptions: &qdrant.PointId_Uuid{
								Uuid: shopID,
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete embedding from Qdrant: %v", err)
	}

	return nil
}

func (s *EmbeddingService) ensureShopCollection() error {
	ctx := context.Background()

	_, err := s.qdrantClient.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: shopCollectionName,
	})
	if err == nil {
		return nil
	}

	_, err = s.qdrantClient.Create(ctx, &qdrant.CreateCollection{
		CollectionName: shopCollectionName,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     1536, // OpenAI embedding dimension
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", shopCollectionName, err)
	}

	log.Info().Str("collection", shopCollectionName).Msg("created Qdrant collection")
	return nil
}

func (s *EmbeddingService) createPayload(metadata map[string]interface{}) map[string]*qdrant.Value {
	payload := make(map[string]*qdrant.Value)

	for key, value := range metadata {
		switch v := value.(type) {
		case string:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
		case int:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
		case int64:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
		case float64:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
		case bool:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
		default:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", v)}}
		}
	}

	return payload
}

func (s *EmbeddingService) calculateContentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])[:16]
}
