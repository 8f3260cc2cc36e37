package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
)

// handleAnalyzer indexes a whole handle as one lowercase token, so "Jane_Doe2"
// matches the term "jane_doe2" and the prefix "jane".
const handleAnalyzer = "handle"

// buildIndexMapping maps user documents. Names and bios use the standard
// analyzer without stemming; stemmed names match badly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	//nolint:errcheck // only fails on unknown component names, which are constants here
	_ = indexMapping.AddCustomAnalyzer(handleAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})

	doc := bleve.NewDocumentMapping()

	username := bleve.NewTextFieldMapping()
	username.Analyzer = handleAnalyzer
	username.Store = true
	doc.AddFieldMappingsAt("username", username)

	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true
	name.IncludeTermVectors = true
	doc.AddFieldMappingsAt("name", name)

	bio := bleve.NewTextFieldMapping()
	bio.Analyzer = standard.Name
	bio.Store = false
	doc.AddFieldMappingsAt("bio", bio)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("id", id)

	indexMapping.DefaultMapping = doc
	return indexMapping
}
