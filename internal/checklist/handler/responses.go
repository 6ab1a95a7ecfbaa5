package handler

import (
	"time"

	"duediligence/internal/checklist/models"
)

type InstanceResponse struct {
	ID            string            `json:"id"`
	OnboardingID  string            `json:"onboardingId"`
	ChecklistType string            `json:"checklistType"`
	VersionNumber int               `json:"versionNumber"`
	Revision      int64             `json:"revision"`
	Sections      []SectionResponse `json:"sections"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type SectionResponse struct {
	Title    string         `json:"title"`
	Guidance string         `json:"guidance"`
	Items    []ItemResponse `json:"items"`
}

type ItemResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Guidance  string         `json:"guidance"`
	Status    string         `json:"status"`
	Notes     []NoteResponse `json:"notes"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type NoteResponse struct {
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toInstanceResponse(inst *models.Instance) InstanceResponse {
	resp := InstanceResponse{
		ID:            inst.ID.String(),
		OnboardingID:  inst.OnboardingID.String(),
		ChecklistType: inst.ChecklistType,
		VersionNumber: inst.VersionNumber,
		Revision:      inst.Revision,
		Sections:      make([]SectionResponse, len(inst.Sections)),
		CreatedAt:     inst.CreatedAt,
		UpdatedAt:     inst.UpdatedAt,
	}
	for i, sec := range inst.Sections {
		items := make([]ItemResponse, len(sec.Items))
		for j, it := range sec.Items {
			notes := make([]NoteResponse, len(it.Notes))
			for k, n := range it.Notes {
				notes[k] = NoteResponse{Text: n.Text, UserID: n.AuthorID.String(), CreatedAt: n.CreatedAt}
			}
			items[j] = ItemResponse{
				ID:        it.ID,
				Title:     it.Title,
				Guidance:  it.Guidance,
				Status:    it.Status.String(),
				Notes:     notes,
				UpdatedAt: it.UpdatedAt,
			}
		}
		resp.Sections[i] = SectionResponse{Title: sec.Title, Guidance: sec.Guidance, Items: items}
	}
	return resp
}
