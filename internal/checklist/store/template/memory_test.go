package template

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"duediligence/internal/checklist/models"
	"duediligence/pkg/platform/sentinel"
)

type TemplateStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestTemplateStoreSuite(t *testing.T) {
	suite.Run(t, new(TemplateStoreSuite))
}

func (s *TemplateStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newTemplate(checklistType string, version int) *models.Template {
	t := &models.Template{
		ChecklistType: checklistType,
		VersionNumber: version,
		Sections: []models.Section{
			{Title: "Identity", Items: []models.TemplateItem{{Title: "Proof of ID"}}},
		},
		PublishedAt: time.Now().UTC(),
	}
	t.Normalize()
	return t
}

func (s *TemplateStoreSuite) TestCreateAndFind() {
	s.Run("finds a stored template", func() {
		s.Require().NoError(s.store.Create(s.ctx, newTemplate("KYC", 1)))

		found, err := s.store.Find(s.ctx, "KYC", 1)
		s.Require().NoError(err)
		s.Equal("identity.proof-of-id", found.Sections[0].Items[0].ID)
	})

	s.Run("unknown pair is ErrNotFound", func() {
		_, err := s.store.Find(s.ctx, "KYC", 99)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate version is ErrAlreadyUsed", func() {
		err := s.store.Create(s.ctx, newTemplate("KYC", 1))
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("returned templates are copies", func() {
		found, err := s.store.Find(s.ctx, "KYC", 1)
		s.Require().NoError(err)
		found.Sections[0].Items[0].Title = "mutated"

		again, err := s.store.Find(s.ctx, "KYC", 1)
		s.Require().NoError(err)
		s.Equal("Proof of ID", again.Sections[0].Items[0].Title)
	})
}

func (s *TemplateStoreSuite) TestLatest() {
	s.Require().NoError(s.store.Create(s.ctx, newTemplate("KYB", 1)))
	s.Require().NoError(s.store.Create(s.ctx, newTemplate("KYB", 3)))
	s.Require().NoError(s.store.Create(s.ctx, newTemplate("KYB", 2)))
	s.Require().NoError(s.store.Create(s.ctx, newTemplate("AML", 9)))

	latest, err := s.store.Latest(s.ctx, "KYB")
	s.Require().NoError(err)
	s.Equal(3, latest.VersionNumber)

	_, err = s.store.Latest(s.ctx, "EDD")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
