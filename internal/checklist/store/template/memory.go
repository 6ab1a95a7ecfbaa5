// Package template persists immutable checklist templates.
package template

import (
	"context"
	"slices"
	"sync"

	"duediligence/internal/checklist/models"
	"duediligence/pkg/platform/sentinel"
)

type key struct {
	checklistType string
	version       int
}

// InMemory is a map-backed template store for development and tests.
type InMemory struct {
	mu        sync.RWMutex
	templates map[key]*models.Template
}

func NewInMemory() *InMemory {
	return &InMemory{templates: make(map[key]*models.Template)}
}

// Create stores t. A duplicate (type, version) returns sentinel.ErrAlreadyUsed.
func (s *InMemory) Create(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{t.ChecklistType, t.VersionNumber}
	if _, exists := s.templates[k]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.templates[k] = cloneTemplate(t)
	return nil
}

func (s *InMemory) Find(_ context.Context, checklistType string, versionNumber int) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[key{checklistType, versionNumber}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneTemplate(t), nil
}

// Latest returns the highest published version of checklistType.
func (s *InMemory) Latest(_ context.Context, checklistType string) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Template
	for k, t := range s.templates {
		if k.checklistType == checklistType && (latest == nil || t.VersionNumber > latest.VersionNumber) {
			latest = t
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return cloneTemplate(latest), nil
}

func cloneTemplate(t *models.Template) *models.Template {
	c := *t
	c.Sections = make([]models.Section, len(t.Sections))
	for i, sec := range t.Sections {
		sec.Items = slices.Clone(sec.Items)
		c.Sections[i] = sec
	}
	return &c
}
