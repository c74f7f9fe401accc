package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/therapist-discovery/backend/pkg/config"
	"github.com/zatekoja/therapist-discovery/backend/pkg/retry"
)

// DefaultCollection is used when no collection name is configured
const DefaultCollection = "therapists"

// Client represents a Typesense client
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a new Typesense client and waits for the server with
// exponential backoff
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Typesense connection failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	log.Info().Str("url", cfg.URL).Str("collection", collection).Msg("connected to Typesense")
	return &Client{client: client, collection: collection}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Collection returns the therapist collection name
func (c *Client) Collection() string {
	return c.collection
}

// InitSchema ensures the therapist collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == c.collection {
			log.Debug().Str("collection", c.collection).Msg("Typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, TherapistSchema(c.collection)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", c.collection).Msg("created Typesense collection")
	return nil
}

// TherapistSchema describes the indexed therapist profile document
func TherapistSchema(name string) *api.CollectionSchema {
	facetList := func(field string) api.Field {
		return api.Field{Name: field, Type: "string[]", Facet: pointer.True(), Optional: pointer.True()}
	}
	optional := func(field, typ string) api.Field {
		return api.Field{Name: field, Type: typ, Optional: pointer.True()}
	}

	return &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "slug", Type: "string"},
			{Name: "display_name", Type: "string"},
			facetList("specialties"),
			facetList("languages"),
			facetList("accepted_insurance"),
			optional("modalities", "string[]"),
			{Name: "online", Type: "bool", Facet: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			optional("postal_code", "string"),
			optional("location", "geopoint"),
			optional("price_min", "int32"),
			optional("price_max", "int32"),
			optional("estimated_wait_weeks", "int32"),
			optional("gender", "string"),
			optional("years_experience", "int32"),
			optional("communication_style", "string"),
			{Name: "listed", Type: "bool"},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("updated_at"),
	}
}
