package audit

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticSink indexes audit events into an Elasticsearch index.
type ElasticSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticSink(scheme, host string, port int, user, password, index string, verifyCerts bool, maxRetries int) (*ElasticSink, error) {
	addr := fmt.Sprintf("%s://%s:%d", scheme, host, port)

	cfg := elasticsearch.Config{
		Addresses:  []string{addr},
		MaxRetries: maxRetries,
	}
	if user != "" {
		cfg.Username = user
		cfg.Password = password
	}
	if !verifyCerts {
		cfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 - user explicitly disabled cert verification
			},
		}
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	if index == "" {
		index = "reagent-tool-audit"
	}
	return &ElasticSink{client: client, index: index}, nil
}

func (s *ElasticSink) Index(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index audit event: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index audit event: %s", res.Status())
	}
	return nil
}

// TestConnection pings the cluster for health checks.
func (s *ElasticSink) TestConnection(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}
