// Package search keeps the product search index in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
)

const (
	defaultSize = 10
	maxSize     = 50
	esTimeout   = 3 * time.Second
)

type ProductIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{ES: es, IndexName: index}
}

// productMapping keeps ids and categories exact and the prose fields analyzed.
const productMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "store_id":    {"type": "keyword"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "price":       {"type": "double"},
      "stock":       {"type": "integer"},
      "image_urls":  {"type": "keyword", "index": false},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// Ensure creates the index with the product mapping if it does not exist yet.
func (p *ProductIndex) Ensure(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()
	res, err := esapi.IndicesExistsRequest{Index: []string{p.IndexName}}.Do(c, p.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("es exists %s: %s", p.IndexName, res.Status())
	}

	res, err = esapi.IndicesCreateRequest{Index: p.IndexName, Body: strings.NewReader(productMapping)}.Do(c, p.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// a concurrent creator wins with 400 resource_already_exists_exception
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("es create %s: %s", p.IndexName, res.Status())
	}
	return nil
}

func (p *ProductIndex) Index(ctx context.Context, prod *entity.Product) error {
	doc := map[string]any{
		"id":          prod.ID,
		"store_id":    prod.StoreID,
		"name":        prod.Name,
		"description": prod.Description,
		"category":    prod.Category,
		"price":       prod.Price,
		"stock":       prod.Stock,
		"image_urls":  prod.ImageURLs,
		"created_at":  prod.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  prod.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: p.IndexName, DocumentID: prod.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()
	res, err := req.Do(c, p.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", prod.ID, res.Status())
	}
	return nil
}

// Remove deletes documents by id; ids that are not indexed are ignored.
func (p *ProductIndex) Remove(ctx context.Context, ids ...string) error {
	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()
	for _, id := range ids {
		req := esapi.DeleteRequest{Index: p.IndexName, DocumentID: id}
		res, err := req.Do(c, p.ES)
		if err != nil {
			return err
		}
		_ = res.Body.Close()
		if res.IsError() && res.StatusCode != http.StatusNotFound {
			return fmt.Errorf("es delete %s: %s", id, res.Status())
		}
	}
	return nil
}

// Search runs a multi_match over name, category and description.
func (p *ProductIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^3", "category^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()

	res, err := p.ES.Search(p.ES.Search.WithContext(c), p.ES.Search.WithIndex(p.IndexName), p.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

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
