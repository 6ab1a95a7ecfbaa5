package models

import (
	"fmt"
	"strings"
	"time"

	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
)

// ItemRef addresses one item. ItemID wins when set; the title pair is the
// fallback for callers that predate stable IDs.
type ItemRef struct {
	ItemID       string
	SectionTitle string
	ItemTitle    string
}

func (r ItemRef) String() string {
	if r.ItemID != "" {
		return "itemId=" + r.ItemID
	}
	return fmt.Sprintf("sectionTitle=%q itemTitle=%q", r.SectionTitle, r.ItemTitle)
}

type NoteInput struct {
	Text   string
	UserID string
}

// ItemUpdate is one element of a batch. A nil Status leaves the status alone.
type ItemUpdate struct {
	Ref    ItemRef
	Status *string
	Notes  []NoteInput
}

// Batch is an ordered list of updates. When Revision is set it must match the
// stored revision.
type Batch struct {
	Revision *int64
	Updates  []ItemUpdate
}

// ItemChange is the net effect of a batch on one item.
type ItemChange struct {
	ItemID string
	// Status is the final status when the batch set one.
	Status *ItemStatus
	Notes  []Note
}

// ChangeSet is the validated, merged form of a batch.
type ChangeSet struct {
	Changes   []ItemChange
	Revision  int64
	UpdatedAt time.Time
}

// NotesAdded counts the notes appended across all items.
func (c *ChangeSet) NotesAdded() int {
	n := 0
	for _, ch := range c.Changes {
		n += len(ch.Notes)
	}
	return n
}

// StatusesChanged counts the items whose status the batch sets.
func (c *ChangeSet) StatusesChanged() int {
	n := 0
	for _, ch := range c.Changes {
		if ch.Status != nil {
			n++
		}
	}
	return n
}

// Plan validates batch against the instance and merges it into a ChangeSet
// without mutating anything. Every malformed or unmatched element is reported
// in the error details and nothing is planned. Within the batch later statuses
// for the same item override earlier ones; notes concatenate in order.
// Notes without a user ID are attributed to actor.
func (i *Instance) Plan(batch Batch, actor id.UserID, now time.Time) (*ChangeSet, error) {
	if batch.Revision != nil && *batch.Revision != i.Revision {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("stale revision %d, current revision is %d", *batch.Revision, i.Revision))
	}
	if len(batch.Updates) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "updates must not be empty")
	}

	var details []string
	index := make(map[string]int)
	var changes []ItemChange

	for n, u := range batch.Updates {
		item, ok := i.Item(u.Ref)
		if !ok {
			details = append(details, fmt.Sprintf("updates[%d]: no item matches %s", n, u.Ref))
			continue
		}

		var status *ItemStatus
		if u.Status != nil {
			s, err := ParseItemStatus(*u.Status)
			if err != nil {
				details = append(details, fmt.Sprintf("updates[%d]: invalid status %q", n, *u.Status))
				continue
			}
			status = &s
		}

		notes := make([]Note, 0, len(u.Notes))
		valid := true
		for k, in := range u.Notes {
			text := strings.TrimSpace(in.Text)
			if text == "" {
				details = append(details, fmt.Sprintf("updates[%d].notes[%d]: text is required", n, k))
				valid = false
				continue
			}
			author := actor
			if strings.TrimSpace(in.UserID) != "" {
				parsed, err := id.ParseUserID(in.UserID)
				if err != nil {
					details = append(details, fmt.Sprintf("updates[%d].notes[%d]: invalid userId", n, k))
					valid = false
					continue
				}
				author = parsed
			}
			if author.IsEmpty() {
				details = append(details, fmt.Sprintf("updates[%d].notes[%d]: userId is required", n, k))
				valid = false
				continue
			}
			notes = append(notes, Note{Text: text, AuthorID: author, CreatedAt: now})
		}
		if !valid {
			continue
		}

		pos, seen := index[item.ID]
		if !seen {
			pos = len(changes)
			index[item.ID] = pos
			changes = append(changes, ItemChange{ItemID: item.ID})
		}
		if status != nil {
			changes[pos].Status = status
		}
		changes[pos].Notes = append(changes[pos].Notes, notes...)
	}

	if len(details) > 0 {
		return nil, dErrors.WithDetails(dErrors.CodeValidation, "checklist update rejected", details)
	}
	return &ChangeSet{Changes: changes, Revision: i.Revision + 1, UpdatedAt: now}, nil
}

// Apply mutates the instance with a ChangeSet produced by Plan.
func (i *Instance) Apply(cs *ChangeSet) {
	for _, ch := range cs.Changes {
		item, ok := i.Item(ItemRef{ItemID: ch.ItemID})
		if !ok {
			continue
		}
		if ch.Status != nil {
			item.Status = *ch.Status
		}
		item.Notes = append(item.Notes, ch.Notes...)
		item.UpdatedAt = cs.UpdatedAt
	}
	i.Revision = cs.Revision
	i.UpdatedAt = cs.UpdatedAt
}
