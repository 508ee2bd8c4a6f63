package search

// analysis is shared by every collection: standard tokens, lowercased, then
// edge n-grams so prefixes match while the user is still typing.
var analysis = map[string]any{
	"analyzer": map[string]any{
		"custom_analyzer": map[string]any{
			"type":      "custom",
			"tokenizer": "standard",
			"filter":    []string{"lowercase", "custom_edge_ngram"},
		},
	},
	"filter": map[string]any{
		"custom_edge_ngram": map[string]any{
			"type":     "edge_ngram",
			"min_gram": 2,
			"max_gram": 10,
		},
	},
}

func textField() map[string]any {
	return map[string]any{"type": "text", "analyzer": "custom_analyzer", "search_analyzer": "standard"}
}

// collectionSettings is the create-index body per collection.
var collectionSettings = map[string]map[string]any{
	Users: {
		"settings": map[string]any{"analysis": analysis},
		"mappings": map[string]any{
			"properties": map[string]any{
				FieldID:       map[string]any{"type": "keyword"},
				FieldUsername: textField(),
			},
		},
	},
	Posts: {
		"settings": map[string]any{"analysis": analysis},
		"mappings": map[string]any{
			"properties": map[string]any{
				FieldID:    map[string]any{"type": "keyword"},
				FieldTitle: textField(),
			},
		},
	},
}
