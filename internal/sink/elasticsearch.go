package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/amishk599/ghboard/internal/model"
)

var _ model.Sink = (*ElasticsearchSink)(nil)

// ElasticsearchConfig addresses a cluster and the index records go to.
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
	Transport http.RoundTripper // nil uses the client default
}

// ElasticsearchSink indexes each record as a document with id "company:id",
// so re-runs overwrite instead of duplicating.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchSink creates the client and checks the cluster answers.
func NewElasticsearchSink(ctx context.Context, cfg ElasticsearchConfig) (*ElasticsearchSink, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchSink{client: client, index: cfg.Index}, nil
}

// Emit indexes a single record.
func (s *ElasticsearchSink) Emit(ctx context.Context, rec model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.Key(), err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.Key(),
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index request for %s: %w", rec.Key(), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error for %s: %s", rec.Key(), res.Status())
	}
	return nil
}
