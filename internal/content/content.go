// Package content holds the static copy and the plan catalog shown on the
// marketing and pricing pages.
package content

import (
	_ "embed"
	"fmt"

	"github.com/ErlanBelekov/quote-web/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var raw []byte

type Page struct {
	Title      string   `yaml:"title"`
	Paragraphs []string `yaml:"paragraphs"`
}

type Post struct {
	Slug       string   `yaml:"slug"`
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Summary    string   `yaml:"summary"`
	Paragraphs []string `yaml:"paragraphs"`
}

type Catalog struct {
	Plans []domain.Plan   `yaml:"plans"`
	Pages map[string]Page `yaml:"pages"`
	Posts []Post          `yaml:"posts"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(raw)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	seen := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		if p.PriceID == "" {
			return nil, fmt.Errorf("plan %q has no price_id", p.ID)
		}
		if seen[p.PriceID] {
			return nil, fmt.Errorf("duplicate price_id %q", p.PriceID)
		}
		seen[p.PriceID] = true
	}
	return &c, nil
}

// PlanByPriceID reports whether priceID is one we sell.
func (c *Catalog) PlanByPriceID(priceID string) (domain.Plan, bool) {
	for _, p := range c.Plans {
		if p.PriceID == priceID {
			return p, true
		}
	}
	return domain.Plan{}, false
}

// DefaultPlan is the featured plan, or the first one.
func (c *Catalog) DefaultPlan() (domain.Plan, bool) {
	for _, p := range c.Plans {
		if p.Featured {
			return p, true
		}
	}
	if len(c.Plans) == 0 {
		return domain.Plan{}, false
	}
	return c.Plans[0], true
}

func (c *Catalog) Page(slug string) (Page, bool) {
	p, ok := c.Pages[slug]
	return p, ok
}

func (c *Catalog) Post(slug string) (Post, bool) {
	for _, p := range c.Posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return Post{}, false
}
