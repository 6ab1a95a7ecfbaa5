package models

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func kycTemplate() *Template {
	t := &Template{
		ChecklistType: "KYC",
		VersionNumber: 1,
		Sections: []Section{
			{Title: "Identity", Guidance: "Confirm who they are", Items: []TemplateItem{
				{Title: "Proof of ID", Guidance: "Passport or national ID"},
				{Title: "Proof of Address"},
			}},
			{Title: "Sanctions", Items: []TemplateItem{
				{ID: "sanctions.screening", Title: "Screening"},
			}},
		},
	}
	t.Normalize()
	return t
}

func ptr[T any](v T) *T { return &v }

// =============================================================================
// Template
// =============================================================================

type TemplateSuite struct {
	suite.Suite
}

func TestTemplateSuite(t *testing.T) {
	suite.Run(t, new(TemplateSuite))
}

func (s *TemplateSuite) TestNormalizeDerivesItemIDs() {
	tmpl := kycTemplate()
	s.Equal("identity.proof-of-id", tmpl.Sections[0].Items[0].ID)
	s.Equal("identity.proof-of-address", tmpl.Sections[0].Items[1].ID)
	s.Equal("sanctions.screening", tmpl.Sections[1].Items[0].ID)
	s.Equal(3, tmpl.ItemCount())
	s.NoError(tmpl.Validate())
}

func (s *TemplateSuite) TestValidate() {
	s.Run("rejects empty type and bad version", func() {
		s.True(dErrors.HasCode(ValidateKey(" ", 1), dErrors.CodeValidation))
		s.True(dErrors.HasCode(ValidateKey("KYC", 0), dErrors.CodeValidation))
	})

	s.Run("collects every structural problem", func() {
		tmpl := &Template{
			ChecklistType: "KYC",
			VersionNumber: 2,
			Sections: []Section{
				{Title: "Identity", Items: []TemplateItem{{Title: "A"}, {Title: "A"}}},
				{Title: "Identity", Items: nil},
				{Title: "", Items: []TemplateItem{{ID: "identity.a", Title: "B"}}},
			},
		}
		tmpl.Normalize()
		err := tmpl.Validate()
		s.Require().Error(err)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeValidation, de.Code)
		s.GreaterOrEqual(len(de.Details), 4)
	})

	s.Run("rejects template without sections", func() {
		err := (&Template{ChecklistType: "KYC", VersionNumber: 1}).Validate()
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "proof-of-id", Slug("  Proof of ID! "))
	assert.Equal(t, "ubo-25", Slug("UBO >= 25%"))
	assert.Equal(t, "", Slug("***"))
}

func TestParseItemStatus(t *testing.T) {
	for _, v := range []string{"NOT_STARTED", "IN_PROGRESS", "SATISFACTORY", "ADVERSE"} {
		s, err := ParseItemStatus(v)
		require.NoError(t, err)
		assert.Equal(t, v, s.String())
	}
	for _, v := range []string{"", "satisfactory", "DONE", "ADVERSE "} {
		_, err := ParseItemStatus(v)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), v)
	}
}

// =============================================================================
// Instance planning
// =============================================================================

type InstanceSuite struct {
	suite.Suite
	inst *Instance
}

func TestInstanceSuite(t *testing.T) {
	suite.Run(t, new(InstanceSuite))
}

func (s *InstanceSuite) SetupTest() {
	s.inst = NewInstance(id.NewChecklistID(), id.NewOnboardingID(), kycTemplate(), now)
}

func (s *InstanceSuite) TestNewInstanceStartsNotStarted() {
	s.Equal(int64(1), s.inst.Revision)
	s.Equal([]string{"identity.proof-of-id", "identity.proof-of-address", "sanctions.screening"}, s.inst.PendingItems())
	s.False(s.inst.IsReviewed())
}

func (s *InstanceSuite) TestPlanAndApply() {
	s.Run("matches by title pair and by id", func() {
		cs, err := s.inst.Plan(Batch{Updates: []ItemUpdate{
			{Ref: ItemRef{SectionTitle: "Identity", ItemTitle: "Proof of ID"}, Status: ptr("SATISFACTORY"),
				Notes: []NoteInput{{Text: "verified passport", UserID: "u1"}}},
			{Ref: ItemRef{ItemID: "sanctions.screening"}, Status: ptr("IN_PROGRESS")},
		}}, "u9", now)
		s.Require().NoError(err)
		s.Equal(int64(2), cs.Revision)
		s.Equal(2, cs.StatusesChanged())
		s.Equal(1, cs.NotesAdded())

		s.inst.Apply(cs)
		item, ok := s.inst.Item(ItemRef{ItemID: "identity.proof-of-id"})
		s.Require().True(ok)
		s.Equal(ItemStatusSatisfactory, item.Status)
		s.Require().Len(item.Notes, 1)
		s.Equal(id.UserID("u1"), item.Notes[0].AuthorID)
		s.Equal(int64(2), s.inst.Revision)
	})

	s.Run("note author defaults to the caller", func() {
		cs, err := s.inst.Plan(Batch{Updates: []ItemUpdate{
			{Ref: ItemRef{ItemID: "identity.proof-of-address"}, Notes: []NoteInput{{Text: "utility bill"}}},
		}}, "reviewer-7", now)
		s.Require().NoError(err)
		s.Equal(id.UserID("reviewer-7"), cs.Changes[0].Notes[0].AuthorID)
		s.Nil(cs.Changes[0].Status)
	})
}

func (s *InstanceSuite) TestPlanRejections() {
	s.Run("empty batch", func() {
		_, err := s.inst.Plan(Batch{}, "u1", now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unmatched element rejects the whole batch with diagnostics", func() {
		_, err := s.inst.Plan(Batch{Updates: []ItemUpdate{
			{Ref: ItemRef{SectionTitle: "Identity", ItemTitle: "Proof of ID"}, Status: ptr("SATISFACTORY")},
			{Ref: ItemRef{SectionTitle: "Identity", ItemTitle: "Selfie"}, Status: ptr("SATISFACTORY")},
			{Ref: ItemRef{ItemID: "nope"}},
		}}, "u1", now)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeValidation, de.Code)
		s.Require().Len(de.Details, 2)
		s.Contains(de.Details[0], "updates[1]")
		s.Contains(de.Details[0], "Selfie")
		s.Contains(de.Details[1], "updates[2]")
	})

	s.Run("status outside the vocabulary", func() {
		_, err := s.inst.Plan(Batch{Updates: []ItemUpdate{
			{Ref: ItemRef{ItemID: "identity.proof-of-id"}, Status: ptr("APPROVED")},
		}}, "u1", now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("blank note text", func() {
		_, err := s.inst.Plan(Batch{Updates: []ItemUpdate{
			{Ref: ItemRef{ItemID: "identity.proof-of-id"}, Notes: []NoteInput{{Text: "  ", UserID: "u1"}}},
		}}, "u1", now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("note without any author", func() {
		_, err := s.inst.Plan(Batch{Updates: []ItemUpdate{
			{Ref: ItemRef{ItemID: "identity.proof-of-id"}, Notes: []NoteInput{{Text: "x"}}},
		}}, "", now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("stale revision conflicts", func() {
		_, err := s.inst.Plan(Batch{Revision: ptr(int64(7)), Updates: []ItemUpdate{
			{Ref: ItemRef{ItemID: "identity.proof-of-id"}, Status: ptr("ADVERSE")},
		}}, "u1", now)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("matching revision is accepted", func() {
		_, err := s.inst.Plan(Batch{Revision: ptr(int64(1)), Updates: []ItemUpdate{
			{Ref: ItemRef{ItemID: "identity.proof-of-id"}, Status: ptr("ADVERSE")},
		}}, "u1", now)
		s.NoError(err)
	})
}

func (s *InstanceSuite) TestCloneIsDeep() {
	c := s.inst.Clone()
	c.Sections[0].Items[0].Status = ItemStatusAdverse
	c.Sections[0].Items[0].Notes = append(c.Sections[0].Items[0].Notes, Note{Text: "x"})
	s.Equal(ItemStatusNotStarted, s.inst.Sections[0].Items[0].Status)
	s.Empty(s.inst.Sections[0].Items[0].Notes)
}

// =============================================================================
// Sequential batches equal one merged batch
// =============================================================================

var statuses = []string{"NOT_STARTED", "IN_PROGRESS", "SATISFACTORY", "ADVERSE"}

func randomBatch(r *rand.Rand, refs []ItemRef, n int) []ItemUpdate {
	updates := make([]ItemUpdate, n)
	for i := range updates {
		u := ItemUpdate{Ref: refs[r.IntN(len(refs))]}
		if r.IntN(3) > 0 {
			u.Status = ptr(statuses[r.IntN(len(statuses))])
		}
		for k := r.IntN(3); k > 0; k-- {
			u.Notes = append(u.Notes, NoteInput{Text: uuid.NewString(), UserID: "u" + string(rune('a'+r.IntN(3)))})
		}
		updates[i] = u
	}
	return updates
}

func apply(t *testing.T, inst *Instance, updates []ItemUpdate) {
	t.Helper()
	cs, err := inst.Plan(Batch{Updates: updates}, "actor", now)
	require.NoError(t, err)
	inst.Apply(cs)
}

func TestSequentialBatchesEqualMergedBatch(t *testing.T) {
	tmpl := kycTemplate()
	refs := []ItemRef{
		{ItemID: "identity.proof-of-id"},
		{SectionTitle: "Identity", ItemTitle: "Proof of ID"},
		{SectionTitle: "Identity", ItemTitle: "Proof of Address"},
		{ItemID: "sanctions.screening"},
	}
	r := rand.New(rand.NewPCG(42, 7))

	for round := 0; round < 200; round++ {
		b1 := randomBatch(r, refs, 1+r.IntN(5))
		b2 := randomBatch(r, refs, 1+r.IntN(5))

		seq := NewInstance(id.NewChecklistID(), id.NewOnboardingID(), tmpl, now)
		apply(t, seq, b1)
		apply(t, seq, b2)

		merged := NewInstance(id.NewChecklistID(), id.NewOnboardingID(), tmpl, now)
		apply(t, merged, append(append([]ItemUpdate{}, b1...), b2...))

		for si := range seq.Sections {
			for ii := range seq.Sections[si].Items {
				a, b := seq.Sections[si].Items[ii], merged.Sections[si].Items[ii]
				require.Equal(t, b.Status, a.Status, "round %d item %s", round, a.ID)
				require.Equal(t, b.Notes, a.Notes, "round %d item %s", round, a.ID)
			}
		}
	}
}
