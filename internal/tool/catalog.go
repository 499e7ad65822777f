package tool

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/toolforgehq/toolforge/internal/tier"
)

// Status describes the release state of a tool.
type Status string

const (
	StatusLive       Status = "live"
	StatusBeta       Status = "beta"
	StatusComingSoon Status = "coming_soon"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusLive, StatusBeta, StatusComingSoon:
		return true
	}
	return false
}

// Tool is a static catalog entry for a gated feature. Tools are not persisted
// per-user; catalog changes are a deploy-time content change.
type Tool struct {
	Slug         string    `yaml:"slug"`
	Name         string    `yaml:"name"`
	Description  string    `yaml:"description"`
	Category     string    `yaml:"category"`
	Status       Status    `yaml:"status"`
	RequiredTier tier.Tier `yaml:"required_tier"`
}

// Catalog is the immutable set of offered tools, loaded once at startup.
// There is no mutation API at runtime.
type Catalog struct {
	tools  []Tool
	bySlug map[string]Tool
}

// NewCatalog builds a catalog from the given tools. Slugs must be unique and
// every tool must reference a known tier and status.
func NewCatalog(tools []Tool) (*Catalog, error) {
	bySlug := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if t.Slug == "" {
			return nil, fmt.Errorf("%w: tool with empty slug", ErrInvalidCatalog)
		}
		if _, dup := bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidCatalog, t.Slug)
		}
		if !t.Status.IsValid() {
			return nil, fmt.Errorf("%w: tool %q has unknown status %q", ErrInvalidCatalog, t.Slug, t.Status)
		}
		if !t.RequiredTier.IsValid() {
			return nil, fmt.Errorf("%w: tool %q requires unknown tier %q", ErrInvalidCatalog, t.Slug, t.RequiredTier)
		}
		bySlug[t.Slug] = t
	}

	ordered := make([]Tool, len(tools))
	copy(ordered, tools)

	return &Catalog{tools: ordered, bySlug: bySlug}, nil
}

// LoadCatalog reads tools from a YAML file and validates them.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var doc struct {
		Tools []Tool `yaml:"tools"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	return NewCatalog(doc.Tools)
}

// BySlug returns the tool with the given slug.
func (c *Catalog) BySlug(slug string) (Tool, error) {
	t, ok := c.bySlug[slug]
	if !ok {
		return Tool{}, ErrToolNotFound
	}
	return t, nil
}

// List returns all tools, optionally filtered by status. A zero-value status
// returns the full catalog in declaration order.
func (c *Catalog) List(status Status) []Tool {
	out := make([]Tool, 0, len(c.tools))
	for _, t := range c.tools {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out
}
