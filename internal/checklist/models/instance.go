package models

import (
	"slices"
	"time"

	id "duediligence/pkg/domain"
)

// Instance is the mutable per-onboarding copy of a Template. Revision starts
// at 1 and increases by one for every applied batch.
type Instance struct {
	ID            id.ChecklistID    `json:"id"`
	OnboardingID  id.OnboardingID   `json:"onboardingId"`
	ChecklistType string            `json:"checklistType"`
	VersionNumber int               `json:"versionNumber"`
	Revision      int64             `json:"revision"`
	Sections      []InstanceSection `json:"sections"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type InstanceSection struct {
	Title    string `json:"title"`
	Guidance string `json:"guidance"`
	Items    []Item `json:"items"`
}

// Item is one reviewable line. Notes are append-only.
type Item struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Guidance  string     `json:"guidance"`
	Status    ItemStatus `json:"status"`
	Notes     []Note     `json:"notes"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Note struct {
	Text      string    `json:"text"`
	AuthorID  id.UserID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewInstance seeds an instance from tmpl with every item NOT_STARTED.
func NewInstance(instanceID id.ChecklistID, onboardingID id.OnboardingID, tmpl *Template, now time.Time) *Instance {
	inst := &Instance{
		ID:            instanceID,
		OnboardingID:  onboardingID,
		ChecklistType: tmpl.ChecklistType,
		VersionNumber: tmpl.VersionNumber,
		Revision:      1,
		Sections:      make([]InstanceSection, len(tmpl.Sections)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for si, sec := range tmpl.Sections {
		items := make([]Item, len(sec.Items))
		for ii, ti := range sec.Items {
			items[ii] = Item{
				ID:        ti.ID,
				Title:     ti.Title,
				Guidance:  ti.Guidance,
				Status:    ItemStatusNotStarted,
				Notes:     []Note{},
				UpdatedAt: now,
			}
		}
		inst.Sections[si] = InstanceSection{Title: sec.Title, Guidance: sec.Guidance, Items: items}
	}
	return inst
}

// Item returns the item addressed by ref: by ID when set, otherwise by the
// (section title, item title) pair.
func (i *Instance) Item(ref ItemRef) (*Item, bool) {
	for si := range i.Sections {
		sec := &i.Sections[si]
		for ii := range sec.Items {
			item := &sec.Items[ii]
			if ref.ItemID != "" {
				if item.ID == ref.ItemID {
					return item, true
				}
				continue
			}
			if sec.Title == ref.SectionTitle && item.Title == ref.ItemTitle {
				return item, true
			}
		}
	}
	return nil, false
}

// IsReviewed reports whether every item is SATISFACTORY or ADVERSE.
func (i *Instance) IsReviewed() bool {
	return len(i.PendingItems()) == 0
}

// PendingItems lists the IDs of items still NOT_STARTED or IN_PROGRESS, in
// template order.
func (i *Instance) PendingItems() []string {
	var pending []string
	for _, sec := range i.Sections {
		for _, item := range sec.Items {
			if !item.Status.IsReviewed() {
				pending = append(pending, item.ID)
			}
		}
	}
	return pending
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (i *Instance) Clone() *Instance {
	c := *i
	c.Sections = make([]InstanceSection, len(i.Sections))
	for si, sec := range i.Sections {
		items := make([]Item, len(sec.Items))
		for ii, item := range sec.Items {
			item.Notes = slices.Clone(item.Notes)
			if item.Notes == nil {
				item.Notes = []Note{}
			}
			items[ii] = item
		}
		sec.Items = items
		c.Sections[si] = sec
	}
	return &c
}
