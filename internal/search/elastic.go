package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/oggyb/nameless/internal/config"
)

// Elastic is the Elasticsearch-backed Index.
type Elastic struct {
	client *elasticsearch.Client
}

// NewElastic builds a client for cfg.Search. No request is sent until first use.
func NewElastic(cfg *config.Config) (*Elastic, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Search.Addresses,
		Username:  cfg.Search.Username,
		Password:  cfg.Search.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Elastic{client: client}, nil
}

func (e *Elastic) Upsert(ctx context.Context, collection, id string, doc Document) error {
	res, err := e.client.Index(collection, esutil.NewJSONReader(doc),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(id),
	)
	return drain("index", res, err)
}

func (e *Elastic) DeleteByMatch(ctx context.Context, collection, field string, value any) error {
	body := map[string]any{"query": matchQuery(field, value)}
	res, err := e.client.DeleteByQuery([]string{collection}, esutil.NewJSONReader(body),
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithConflicts("proceed"),
	)
	return drain("delete_by_query", res, err)
}

func (e *Elastic) UpdateByMatch(ctx context.Context, collection, field string, value any, set Document) error {
	if len(set) == 0 {
		return nil
	}
	body := map[string]any{
		"query": matchQuery(field, value),
		"script": map[string]any{
			"source": assignScript(set),
			"lang":   "painless",
			"params": set,
		},
	}
	res, err := e.client.UpdateByQuery([]string{collection},
		e.client.UpdateByQuery.WithContext(ctx),
		e.client.UpdateByQuery.WithBody(esutil.NewJSONReader(body)),
		e.client.UpdateByQuery.WithConflicts("proceed"),
	)
	return drain("update_by_query", res, err)
}

func (e *Elastic) Search(ctx context.Context, collection, field, query string, limit int) ([]string, error) {
	body := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				field: map[string]any{"query": query, "fuzziness": "AUTO"},
			},
		},
		"_source": false,
	}
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(collection),
		e.client.Search.WithBody(esutil.NewJSONReader(body)),
		e.client.Search.WithSize(limit),
	)
	if err := check("search", res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (e *Elastic) EnsureCollections(ctx context.Context) error {
	names := make([]string, 0, len(collectionSettings))
	for name := range collectionSettings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res, err := e.client.Indices.Exists([]string{name}, e.client.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("exists %s: %w", name, err)
		}
		res.Body.Close()
		if res.StatusCode == http.StatusOK {
			continue
		}

		res, err = e.client.Indices.Create(name,
			e.client.Indices.Create.WithContext(ctx),
			e.client.Indices.Create.WithBody(esutil.NewJSONReader(collectionSettings[name])),
		)
		if err := drain("create "+name, res, err); err != nil {
			return err
		}
	}
	return nil
}

// matchQuery matches keyword ids exactly and analyzed text as a phrase.
func matchQuery(field string, value any) map[string]any {
	if field == FieldID {
		return map[string]any{"term": map[string]any{field: value}}
	}
	return map[string]any{"match_phrase": map[string]any{field: value}}
}

func assignScript(set Document) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "ctx._source['%s'] = params['%s'];", k, k)
	}
	return b.String()
}

// check turns transport errors and error responses into Go errors. On a
// non-error response the body is left open for the caller.
func check(op string, res *esapi.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.IsError() {
		defer res.Body.Close()
		return fmt.Errorf("%s: %s", op, res.String())
	}
	return nil
}

// drain is check for calls whose response body is not needed.
func drain(op string, res *esapi.Response, err error) error {
	if err := check(op, res, err); err != nil {
		return err
	}
	return res.Body.Close()
}
