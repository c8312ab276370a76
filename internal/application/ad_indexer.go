package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/domain/entity"
)

// AdIndexer mirrors committed ad state into Elasticsearch for search. Every
// method is nil-safe and non-fatal: indexing runs on the commit hook path and
// must never disturb an already-committed mutation.
type AdIndexer struct {
	ES        *elasticsearch.Client
	IndexName string
	Logger    *logrus.Logger
}

func NewAdIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *AdIndexer {
	return &AdIndexer{ES: es, IndexName: index, Logger: logger}
}

func (ix *AdIndexer) enabled() bool {
	return ix != nil && ix.ES != nil && ix.IndexName != ""
}

func (ix *AdIndexer) warn(err error, adID, msg string) {
	if ix != nil && ix.Logger != nil {
		ix.Logger.WithError(err).WithField("ad_id", adID).Warn(msg)
	}
}

// Index upserts the ad document.
func (ix *AdIndexer) Index(ctx context.Context, ad *entity.Ad) {
	if !ix.enabled() {
		return
	}
	doc := map[string]any{
		"id":          ad.ID,
		"owner_id":    ad.OwnerID,
		"title":       ad.Title,
		"price":       ad.Price,
		"description": ad.Description,
		"created_at":  ad.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  ad.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: ix.IndexName, DocumentID: ad.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		ix.warn(err, ad.ID, "es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		ix.warn(nil, ad.ID, "es index response error: "+res.Status())
	}
}

// Remove deletes the ad document after the ad row is gone.
func (ix *AdIndexer) Remove(ctx context.Context, adID string) {
	if !ix.enabled() {
		return
	}
	req := esapi.DeleteRequest{Index: ix.IndexName, DocumentID: adID}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		ix.warn(err, adID, "es delete failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
}

// Search runs a multi_match over title and description.
func (ix *AdIndexer) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !ix.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(c),
		ix.ES.Search.WithIndex(ix.IndexName),
		ix.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
