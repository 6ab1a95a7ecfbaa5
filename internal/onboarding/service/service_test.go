package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	accountmodels "duediligence/internal/account/models"
	accountstore "duediligence/internal/account/store"
	checklistmodels "duediligence/internal/checklist/models"
	checklistservice "duediligence/internal/checklist/service"
	"duediligence/internal/checklist/store/instance"
	"duediligence/internal/checklist/store/template"
	"duediligence/internal/onboarding/models"
	"duediligence/internal/onboarding/store"
	id "duediligence/pkg/domain"
	dErrors "duediligence/pkg/domain-errors"
	"duediligence/pkg/pagination"
	"duediligence/pkg/platform/audit"
	"duediligence/pkg/platform/audit/publishers/compliance"
	auditmemory "duediligence/pkg/platform/audit/store/memory"
	txcontext "duediligence/pkg/platform/tx"
	"duediligence/pkg/requestcontext"
)

// ServiceSuite exercises onboarding against the in-memory stores and the real
// checklist service, sharing one transaction runner.
type ServiceSuite struct {
	suite.Suite
	reviewer   context.Context
	approver   context.Context
	store      *store.InMemory
	accounts   *accountstore.InMemory
	checklists *checklistservice.Service
	audit      *auditmemory.InMemoryStore
	svc        *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	s.reviewer = requestcontext.WithTime(
		requestcontext.WithPrincipal(context.Background(), "reviewer-1", []string{requestcontext.RoleReviewer}), now)
	s.approver = requestcontext.WithTime(
		requestcontext.WithPrincipal(context.Background(), "approver-1", []string{requestcontext.RoleApprover}), now.Add(time.Hour))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := txcontext.NewMemoryRunner()
	s.store = store.NewInMemory()
	s.accounts = accountstore.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	publisher := compliance.New(s.audit, compliance.WithLogger(logger))

	checklists, err := checklistservice.New(template.NewInMemory(), instance.NewInMemory(),
		checklistservice.WithLogger(logger),
		checklistservice.WithTxRunner(runner),
		checklistservice.WithReviewProgress(NewReviewTracker(s.store)),
		checklistservice.WithAuditPublisher(publisher),
	)
	s.Require().NoError(err)
	s.checklists = checklists

	svc, err := New(s.store, s.accounts, checklists,
		WithLogger(logger),
		WithTxRunner(runner),
		WithAuditPublisher(publisher),
	)
	s.Require().NoError(err)
	s.svc = svc

	_, err = s.checklists.PublishTemplate(s.reviewer, &checklistmodels.Template{
		ChecklistType: "KYC",
		VersionNumber: 1,
		Sections: []checklistmodels.Section{
			{Title: "Identity", Items: []checklistmodels.TemplateItem{{Title: "Proof of ID"}, {Title: "Proof of Address"}}},
		},
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) create(name string) *models.View {
	v, err := s.svc.Create(s.reviewer, CreateInput{
		RegistrationID:   id.RegistrationID(uuid.New()),
		CounterpartyName: name,
		ChecklistType:    "KYC",
	})
	s.Require().NoError(err)
	return v
}

func (s *ServiceSuite) review(v *models.View, statuses ...string) {
	refs := []string{"identity.proof-of-id", "identity.proof-of-address"}
	batch := checklistmodels.Batch{}
	for i, st := range statuses {
		batch.Updates = append(batch.Updates, checklistmodels.ItemUpdate{
			Ref:    checklistmodels.ItemRef{ItemID: refs[i]},
			Status: &st,
			Notes:  []checklistmodels.NoteInput{{Text: "reviewed"}},
		})
	}
	s.Require().NoError(s.checklists.ApplyUpdates(s.reviewer, v.ChecklistID, batch))
}

func (s *ServiceSuite) TestNewRequiresCollaborators() {
	_, err := New(nil, s.accounts, s.checklists)
	s.Error(err)
	_, err = New(s.store, nil, s.checklists)
	s.Error(err)
	_, err = New(s.store, s.accounts, nil)
	s.Error(err)
}

// =============================================================================
// Create
// =============================================================================

func (s *ServiceSuite) TestCreate() {
	s.Run("creates pending record with inactive account and fresh checklist", func() {
		v := s.create("Acme Ltd")
		s.Equal(models.StatusNew, v.Status)
		s.Equal(models.DecisionPending, v.Decision)
		s.Equal(accountmodels.StatusInactive.String(), v.AccountStatus)

		inst, err := s.checklists.GetInstance(s.reviewer, v.ChecklistID)
		s.Require().NoError(err)
		s.Equal(v.ID, inst.OnboardingID)
		s.Equal([]string{"identity.proof-of-id", "identity.proof-of-address"}, inst.PendingItems())
	})

	s.Run("duplicate registration conflicts", func() {
		reg := id.RegistrationID(uuid.New())
		in := CreateInput{RegistrationID: reg, CounterpartyName: "Acme", ChecklistType: "KYC"}
		_, err := s.svc.Create(s.reviewer, in)
		s.Require().NoError(err)
		_, err = s.svc.Create(s.reviewer, in)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown checklist type is not found", func() {
		_, err := s.svc.Create(s.reviewer, CreateInput{
			RegistrationID: id.RegistrationID(uuid.New()), CounterpartyName: "Acme", ChecklistType: "EDD",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing fields are rejected", func() {
		_, err := s.svc.Create(s.reviewer, CreateInput{CounterpartyName: "Acme", ChecklistType: "KYC"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.svc.Create(s.reviewer, CreateInput{RegistrationID: id.RegistrationID(uuid.New()), CounterpartyName: "  ", ChecklistType: "KYC"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestFirstBatchMarksReviewStarted() {
	v := s.create("Acme Ltd")
	s.review(v, "IN_PROGRESS")

	got, err := s.svc.Get(s.reviewer, v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, got.Status)
	s.Equal(models.DecisionPending, got.Decision)
}

// =============================================================================
// Decide
// =============================================================================

func (s *ServiceSuite) TestDecideRejections() {
	v := s.create("Acme Ltd")

	s.Run("reviewer cannot decide", func() {
		_, err := s.svc.Decide(s.reviewer, v.ID, "APPROVED", "ok")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid decision or empty notes", func() {
		for _, tc := range []struct{ decision, notes string }{
			{"PENDING", "ok"}, {"approved", "ok"}, {"", "ok"}, {"APPROVED", "   "},
		} {
			_, err := s.svc.Decide(s.approver, v.ID, tc.decision, tc.notes)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), tc.decision)
		}
	})

	s.Run("incomplete checklist lists pending items", func() {
		s.review(v, "SATISFACTORY", "IN_PROGRESS")
		_, err := s.svc.Decide(s.approver, v.ID, "APPROVED", "all good")
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodePreconditionFailed, de.Code)
		s.Equal([]string{"identity.proof-of-address"}, de.Details)

		got, err := s.svc.Get(s.reviewer, v.ID)
		s.Require().NoError(err)
		s.Equal(models.DecisionPending, got.Decision)
		s.Equal(accountmodels.StatusInactive.String(), got.AccountStatus)
	})

	s.Run("unknown onboarding is not found", func() {
		_, err := s.svc.Decide(s.approver, id.NewOnboardingID(), "APPROVED", "ok")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestApproveActivatesAccountOnce() {
	v := s.create("Acme Ltd")
	s.review(v, "SATISFACTORY", "ADVERSE")

	decided, err := s.svc.Decide(s.approver, v.ID, "APPROVED", "  adverse address accepted  ")
	s.Require().NoError(err)
	s.Equal(models.StatusComplete, decided.Status)
	s.Equal(models.DecisionApproved, decided.Decision)
	s.Equal("adverse address accepted", decided.DecisionNotes)
	s.Equal(id.UserID("approver-1"), decided.DecidedBy)
	s.Require().NotNil(decided.DecidedAt)
	s.Equal(accountmodels.StatusActive.String(), decided.AccountStatus)

	account, err := s.accounts.FindByID(context.Background(), v.AccountID)
	s.Require().NoError(err)
	s.True(account.IsActive())

	_, err = s.svc.Decide(s.approver, v.ID, "DECLINED", "changed my mind")
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))

	events, err := s.audit.ListBySubject(context.Background(), v.ID.String())
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventDecisionMade))
	s.Contains(actions, string(audit.EventAccountActivated))
}

func (s *ServiceSuite) TestChecklistClosesOnceDecided() {
	v := s.create("Acme Ltd")
	s.review(v, "SATISFACTORY", "SATISFACTORY")
	_, err := s.svc.Decide(s.approver, v.ID, "APPROVED", "all checks passed")
	s.Require().NoError(err)

	reopen := "IN_PROGRESS"
	err = s.checklists.ApplyUpdates(s.reviewer, v.ChecklistID, checklistmodels.Batch{
		Updates: []checklistmodels.ItemUpdate{{
			Ref:    checklistmodels.ItemRef{ItemID: "identity.proof-of-id"},
			Status: &reopen,
		}},
	})
	s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))

	inst, err := s.checklists.GetInstance(s.reviewer, v.ChecklistID)
	s.Require().NoError(err)
	s.True(inst.IsReviewed())
	s.Equal(int64(2), inst.Revision)
}

func (s *ServiceSuite) TestDecisionAndBatchRaceNeverApprovesUnreviewed() {
	for range 20 {
		v := s.create("Race " + uuid.NewString())
		s.review(v, "SATISFACTORY", "SATISFACTORY")

		reopen := "IN_PROGRESS"
		var (
			wg        sync.WaitGroup
			decideErr error
			updateErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, decideErr = s.svc.Decide(s.approver, v.ID, "APPROVED", "race")
		}()
		go func() {
			defer wg.Done()
			updateErr = s.checklists.ApplyUpdates(s.reviewer, v.ChecklistID, checklistmodels.Batch{
				Updates: []checklistmodels.ItemUpdate{{
					Ref:    checklistmodels.ItemRef{ItemID: "identity.proof-of-id"},
					Status: &reopen,
				}},
			})
		}()
		wg.Wait()

		inst, err := s.checklists.GetInstance(s.reviewer, v.ChecklistID)
		s.Require().NoError(err)
		if decideErr == nil {
			s.True(dErrors.HasCode(updateErr, dErrors.CodePreconditionFailed))
			s.True(inst.IsReviewed(), "approved onboarding must keep a reviewed checklist")
		} else {
			s.NoError(updateErr)
			s.True(dErrors.HasCode(decideErr, dErrors.CodePreconditionFailed))
			s.False(inst.IsReviewed())
		}
	}
}

func (s *ServiceSuite) TestDeclineKeepsAccountInactive() {
	v := s.create("Acme Ltd")
	s.review(v, "ADVERSE", "ADVERSE")

	decided, err := s.svc.Decide(s.approver, v.ID, "DECLINED", "sanctions hit")
	s.Require().NoError(err)
	s.Equal(models.StatusComplete, decided.Status)
	s.Equal(accountmodels.StatusInactive.String(), decided.AccountStatus)

	account, err := s.accounts.FindByID(context.Background(), v.AccountID)
	s.Require().NoError(err)
	s.False(account.IsActive())
}

func (s *ServiceSuite) TestConcurrentDecisionsExactlyOneWins() {
	v := s.create("Acme Ltd")
	s.review(v, "SATISFACTORY", "SATISFACTORY")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision := "APPROVED"
			if i%2 == 1 {
				decision = "DECLINED"
			}
			_, err := s.svc.Decide(s.approver, v.ID, decision, "concurrent")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if dErrors.HasCode(err, dErrors.CodePreconditionFailed) {
				rejected++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(attempts-1, rejected)
}

// =============================================================================
// List
// =============================================================================

func (s *ServiceSuite) TestListPagination() {
	for range 7 {
		s.create("Counterparty")
	}

	req := pagination.Default()
	req.Limit = 3
	page, err := s.svc.List(s.reviewer, req)
	s.Require().NoError(err)
	s.Len(page.Data, 3)
	s.Equal(3, page.Metadata.TotalPages)
	s.Equal(accountmodels.StatusInactive.String(), page.Data[0].AccountStatus)

	req.Page = page.Metadata.TotalPages + 5
	page, err = s.svc.List(s.reviewer, req)
	s.Require().NoError(err)
	s.NotNil(page.Data)
	s.Empty(page.Data)
	s.Equal(req.Page, page.Metadata.Page)
}
