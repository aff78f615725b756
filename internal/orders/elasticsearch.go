package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"ticket-bot/internal/models"
)

// ElasticsearchSink indexes orders for search, keyed by order id.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchSink indexes orders into index, using the order id as the
// document id.
func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Record(ctx context.Context, o models.Order) error {
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", o.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: o.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index order %s: %w", o.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index order %s: %s", o.ID, res.String())
	}
	return nil
}
