// Package catalog holds the learning resource catalog and its storage.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ResourceType is the kind of learning material.
type ResourceType string

// Resource types.
const (
	TypeCourse        ResourceType = "course"
	TypeTutorial      ResourceType = "tutorial"
	TypeDocumentation ResourceType = "documentation"
	TypeVideo         ResourceType = "video"
	TypeBook          ResourceType = "book"
	TypeArticle       ResourceType = "article"
	TypeProject       ResourceType = "project"
)

// ValidTypes lists every accepted resource type.
var ValidTypes = []ResourceType{
	TypeCourse, TypeTutorial, TypeDocumentation, TypeVideo, TypeBook, TypeArticle, TypeProject,
}

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Resource is a shared, read-only catalog entry. Its URL is its identity.
type Resource struct {
	Title           string       `json:"title"`
	URL             string       `json:"url"`
	Type            ResourceType `json:"type"`
	Source          string       `json:"source"`
	Topic           string       `json:"topic,omitempty"`
	Description     string       `json:"description,omitempty"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
}

// Validation errors.
var (
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyURL         = errors.New("url is required")
	ErrInvalidURL       = errors.New("url must be absolute http(s)")
	ErrInvalidType      = errors.New("invalid resource type")
	ErrNegativeDuration = errors.New("duration must not be negative")
	ErrDuplicateURL     = errors.New("duplicate resource url")
)

// Validate checks a resource's fields.
func (r *Resource) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(r.URL) == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, r.URL)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, r.Type)
	}
	if r.DurationMinutes < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// Text is the combined text embedded for similarity search.
func (r *Resource) Text() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{r.Title, r.Description, r.Topic} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ". ")
}

// Scored is a resource with its similarity to the query that retrieved it.
type Scored struct {
	Resource
	Similarity float32 `json:"similarity"`
}

// CheckUnique returns ErrDuplicateURL if two resources share a URL.
func CheckUnique(resources []Resource) error {
	seen := make(map[string]bool, len(resources))
	for _, r := range resources {
		if seen[r.URL] {
			return fmt.Errorf("%w: %s", ErrDuplicateURL, r.URL)
		}
		seen[r.URL] = true
	}
	return nil
}

// IndexByURL maps each resource URL to its position.
func IndexByURL(resources []Resource) map[string]int {
	m := make(map[string]int, len(resources))
	for i, r := range resources {
		m[r.URL] = i
	}
	return m
}
