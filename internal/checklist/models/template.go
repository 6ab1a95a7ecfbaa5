package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	dErrors "duediligence/pkg/domain-errors"
)

// Template is an immutable, versioned checklist definition identified by
// (ChecklistType, VersionNumber). A new version is a new Template.
type Template struct {
	ChecklistType string    `json:"checklistType" yaml:"checklistType"`
	VersionNumber int       `json:"versionNumber" yaml:"versionNumber"`
	Sections      []Section `json:"sections" yaml:"sections"`
	PublishedAt   time.Time `json:"publishedAt" yaml:"-"`
}

type Section struct {
	Title    string         `json:"title" yaml:"title"`
	Guidance string         `json:"guidance" yaml:"guidance"`
	Items    []TemplateItem `json:"items" yaml:"items"`
}

// TemplateItem carries a stable ID so renamed titles do not orphan history.
type TemplateItem struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Guidance string `json:"guidance" yaml:"guidance"`
}

// ValidateKey checks a (type, version) lookup key.
func ValidateKey(checklistType string, versionNumber int) error {
	if strings.TrimSpace(checklistType) == "" {
		return dErrors.New(dErrors.CodeValidation, "checklist type is required")
	}
	if versionNumber < 1 {
		return dErrors.New(dErrors.CodeValidation, "version number must be at least 1")
	}
	return nil
}

// Normalize trims titles and derives missing item IDs from the section and
// item titles.
func (t *Template) Normalize() {
	t.ChecklistType = strings.TrimSpace(t.ChecklistType)
	for si := range t.Sections {
		sec := &t.Sections[si]
		sec.Title = strings.TrimSpace(sec.Title)
		for ii := range sec.Items {
			item := &sec.Items[ii]
			item.Title = strings.TrimSpace(item.Title)
			item.ID = strings.TrimSpace(item.ID)
			if item.ID == "" {
				item.ID = Slug(sec.Title) + "." + Slug(item.Title)
			}
		}
	}
}

// Validate reports every structural problem at once in the error details.
func (t *Template) Validate() error {
	if err := ValidateKey(t.ChecklistType, t.VersionNumber); err != nil {
		return err
	}

	var details []string
	if len(t.Sections) == 0 {
		details = append(details, "template must have at least one section")
	}
	sectionTitles := make(map[string]struct{}, len(t.Sections))
	itemIDs := make(map[string]string)
	for si, sec := range t.Sections {
		if sec.Title == "" {
			details = append(details, fmt.Sprintf("sections[%d]: title is required", si))
		} else if _, dup := sectionTitles[sec.Title]; dup {
			details = append(details, fmt.Sprintf("sections[%d]: duplicate section title %q", si, sec.Title))
		}
		sectionTitles[sec.Title] = struct{}{}

		if len(sec.Items) == 0 {
			details = append(details, fmt.Sprintf("sections[%d]: section must have at least one item", si))
		}
		itemTitles := make(map[string]struct{}, len(sec.Items))
		for ii, item := range sec.Items {
			where := fmt.Sprintf("sections[%d].items[%d]", si, ii)
			if item.Title == "" {
				details = append(details, where+": title is required")
			} else if _, dup := itemTitles[item.Title]; dup {
				details = append(details, fmt.Sprintf("%s: duplicate item title %q", where, item.Title))
			}
			itemTitles[item.Title] = struct{}{}

			if prev, dup := itemIDs[item.ID]; dup {
				details = append(details, fmt.Sprintf("%s: item id %q already used at %s", where, item.ID, prev))
			} else {
				itemIDs[item.ID] = where
			}
		}
	}

	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid checklist template", details)
	}
	return nil
}

// ItemCount returns the number of items across all sections.
func (t *Template) ItemCount() int {
	n := 0
	for _, sec := range t.Sections {
		n += len(sec.Items)
	}
	return n
}

// Slug lowercases s and collapses every run of non-alphanumerics into "-".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
