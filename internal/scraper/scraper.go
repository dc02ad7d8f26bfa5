// Package scraper extracts recipes from the JSON-LD structured data of web pages.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrNoStructuredData means the page has no application/ld+json script
	ErrNoStructuredData = errors.New("no JSON-LD script found")
	// ErrMalformedData means the JSON-LD script is not valid JSON
	ErrMalformedData = errors.New("malformed JSON-LD data")
	// ErrNoRecipe means the JSON-LD data has no Recipe entry
	ErrNoRecipe = errors.New("no Recipe entry in JSON-LD data")
)

// Recipe is a scraped recipe record
type Recipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	URL          string   `json:"url"`
}

// Scraper fetches pages with a shared HTTP client
type Scraper struct {
	client *http.Client
}

// New creates a scraper. A nil client means http.DefaultClient.
func New(client *http.Client) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	return &Scraper{client: client}
}

// Scrape fetches pageURL once and returns its recipe, or nil when the page
// cannot be fetched or carries no recipe. Fetch failures are logged.
func Scrape(ctx context.Context, pageURL string) *Recipe {
	return New(nil).Scrape(ctx, pageURL)
}

// Scrape fetches pageURL once and returns its recipe, or nil
func (s *Scraper) Scrape(ctx context.Context, pageURL string) *Recipe {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		log.Printf("[Scraper] Error fetching %s: %v", pageURL, err)
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Scraper] Error fetching %s: %v", pageURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[Scraper] Error fetching %s: unexpected status %s", pageURL, resp.Status)
		return nil
	}

	recipe, err := Extract(resp.Body, pageURL)
	if err != nil {
		return nil
	}
	return recipe
}

// Extract reads the first application/ld+json script of an HTML document
// and returns the first entry typed Recipe, looking in @graph when present.
func Extract(r io.Reader, pageURL string) (*Recipe, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	script, ok := findJSONLD(doc)
	if !ok {
		return nil, ErrNoStructuredData
	}

	var data interface{}
	if err := json.Unmarshal([]byte(script), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	for _, item := range entries(data) {
		if !isRecipe(item["@type"]) {
			continue
		}
		return &Recipe{
			Name:         stringValue(item["name"]),
			Ingredients:  stringList(item["recipeIngredient"]),
			Instructions: instructionTexts(item["recipeInstructions"]),
			URL:          pageURL,
		}, nil
	}
	return nil, ErrNoRecipe
}

// findJSONLD returns the text of the first JSON-LD script in document order
func findJSONLD(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Script {
		for _, attr := range n.Attr {
			if attr.Key == "type" && strings.EqualFold(strings.TrimSpace(attr.Val), "application/ld+json") {
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
					}
				}
				return b.String(), true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text, ok := findJSONLD(c); ok {
			return text, true
		}
	}
	return "", false
}

// entries lists the candidate objects: the @graph array, a top-level array,
// or the top-level object itself
func entries(data interface{}) []map[string]interface{} {
	var items []interface{}
	switch v := data.(type) {
	case map[string]interface{}:
		if graph, ok := v["@graph"].([]interface{}); ok {
			items = graph
		} else {
			items = []interface{}{v}
		}
	case []interface{}:
		items = v
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func isRecipe(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []interface{}:
		for _, s := range v {
			if s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func stringList(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// instructionTexts flattens HowToStep objects, HowToSection groups and
// plain strings into step texts
func instructionTexts(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case map[string]interface{}:
		if list, ok := val["itemListElement"]; ok {
			return instructionTexts(list)
		}
		if text, ok := val["text"].(string); ok {
			return []string{text}
		}
	case []interface{}:
		var out []string
		for _, item := range val {
			out = append(out, instructionTexts(item)...)
		}
		return out
	}
	return nil
}
