package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"duediligence/internal/checklist/models"
	dErrors "duediligence/pkg/domain-errors"
)

// PublishTemplateRequest is the admin payload for a new template version.
type PublishTemplateRequest struct {
	ChecklistType string           `json:"checklistType"`
	VersionNumber int              `json:"versionNumber"`
	Sections      []SectionRequest `json:"sections"`
}

type SectionRequest struct {
	Title    string        `json:"title"`
	Guidance string        `json:"guidance"`
	Items    []ItemRequest `json:"items"`
}

type ItemRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Guidance string `json:"guidance"`
}

func (r *PublishTemplateRequest) Validate() error {
	r.ChecklistType = strings.TrimSpace(r.ChecklistType)
	if err := models.ValidateKey(r.ChecklistType, r.VersionNumber); err != nil {
		return err
	}
	if len(r.Sections) == 0 {
		return dErrors.New(dErrors.CodeValidation, "sections are required")
	}
	return nil
}

func (r *PublishTemplateRequest) ToModel() *models.Template {
	t := &models.Template{
		ChecklistType: r.ChecklistType,
		VersionNumber: r.VersionNumber,
		Sections:      make([]models.Section, len(r.Sections)),
	}
	for i, sec := range r.Sections {
		items := make([]models.TemplateItem, len(sec.Items))
		for j, it := range sec.Items {
			items[j] = models.TemplateItem{ID: it.ID, Title: it.Title, Guidance: it.Guidance}
		}
		t.Sections[i] = models.Section{Title: sec.Title, Guidance: sec.Guidance, Items: items}
	}
	return t
}

type NoteRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userId"`
}

// UpdateItemRequest addresses an item by itemId, or by the title pair when
// itemId is empty.
type UpdateItemRequest struct {
	ItemID       string        `json:"itemId"`
	SectionTitle string        `json:"sectionTitle"`
	ItemTitle    string        `json:"itemTitle"`
	Status       *string       `json:"status"`
	Notes        []NoteRequest `json:"notes"`
}

// UpdateChecklistRequest accepts either {revision?, updates} or a bare array
// of updates.
type UpdateChecklistRequest struct {
	Revision *int64              `json:"revision"`
	Updates  []UpdateItemRequest `json:"updates"`
}

func (r *UpdateChecklistRequest) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		r.Revision = nil
		return json.Unmarshal(b, &r.Updates)
	}
	type plain UpdateChecklistRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = UpdateChecklistRequest(p)
	return nil
}

func (r *UpdateChecklistRequest) Validate() error {
	if len(r.Updates) == 0 {
		return dErrors.New(dErrors.CodeValidation, "updates must not be empty")
	}
	var details []string
	for i, u := range r.Updates {
		if strings.TrimSpace(u.ItemID) == "" && (u.SectionTitle == "" || u.ItemTitle == "") {
			details = append(details, fmt.Sprintf("updates[%d]: itemId or sectionTitle and itemTitle are required", i))
		}
	}
	if len(details) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "checklist update rejected", details)
	}
	return nil
}

func (r *UpdateChecklistRequest) ToBatch() models.Batch {
	batch := models.Batch{Revision: r.Revision, Updates: make([]models.ItemUpdate, len(r.Updates))}
	for i, u := range r.Updates {
		notes := make([]models.NoteInput, len(u.Notes))
		for j, n := range u.Notes {
			notes[j] = models.NoteInput{Text: n.Text, UserID: n.UserID}
		}
		batch.Updates[i] = models.ItemUpdate{
			Ref: models.ItemRef{
				ItemID:       strings.TrimSpace(u.ItemID),
				SectionTitle: u.SectionTitle,
				ItemTitle:    u.ItemTitle,
			},
			Status: u.Status,
			Notes:  notes,
		}
	}
	return batch
}
