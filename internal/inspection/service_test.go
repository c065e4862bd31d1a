package inspection_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/inspection"
	"github.com/safetrack/epp-inspection/internal/user"
)

type fakeRepo struct {
	inspections   map[string]*inspection.Inspection
	items         []inspection.Item
	createErr     error
	createItemErr error
	listAll       []*inspection.Inspection
	listAllErr    error
	completed     map[string]time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		inspections: map[string]*inspection.Inspection{},
		completed:   map[string]time.Time{},
	}
}

func (f *fakeRepo) Create(_ context.Context, insp *inspection.Inspection) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.inspections[insp.ID] = insp
	return nil
}

func (f *fakeRepo) CreateItems(_ context.Context, items []inspection.Item) error {
	if f.createItemErr != nil {
		return f.createItemErr
	}
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*inspection.Inspection, error) {
	insp, ok := f.inspections[id]
	if !ok {
		return nil, internal.ErrInspectionNotFound
	}
	return insp, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]*inspection.Inspection, error) {
	if f.listAllErr != nil {
		return nil, f.listAllErr
	}
	return f.listAll, nil
}

func (f *fakeRepo) ListByTechnician(_ context.Context, technicianID string) ([]*inspection.Inspection, error) {
	var out []*inspection.Inspection
	for _, insp := range f.inspections {
		if insp.TechnicianID == technicianID {
			out = append(out, insp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPendingForTechnician(_ context.Context, technicianID string) ([]*inspection.Inspection, error) {
	var out []*inspection.Inspection
	for _, insp := range f.inspections {
		if insp.TechnicianID == technicianID && insp.Status == inspection.StatusPending {
			out = append(out, insp)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkCompleted(_ context.Context, id string, completedAt time.Time) error {
	f.completed[id] = completedAt
	return nil
}

var _ = Describe("Inspection Service", func() {
	var (
		repo *fakeRepo
		svc  *inspection.Service
		ctx  context.Context
	)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	okReport := []inspection.ItemReportDTO{
		{EppID: "epp-1", Status: inspection.ItemStatusOK},
		{EppID: "epp-2", Status: inspection.ItemStatusMissing},
		{EppID: "epp-3", Status: inspection.ItemStatusNeedsReplacement},
	}

	BeforeEach(func() {
		repo = newFakeRepo()
		svc = inspection.NewService(repo, nil, discard)
		ctx = context.Background()
	})

	Describe("SubmitVoluntary", func() {
		It("records a completed inspection in one shot", func() {
			insp, err := svc.SubmitVoluntary(ctx, "tech-1", inspection.SubmitVoluntaryDTO{Items: okReport})

			Expect(err).NotTo(HaveOccurred())
			Expect(insp.Type).To(Equal(inspection.TypeVoluntary))
			Expect(insp.Status).To(Equal(inspection.StatusCompleted))
			Expect(insp.CompletedAt).NotTo(BeNil())
			Expect(insp.SupervisorID).To(BeNil())
			Expect(insp.Items).To(HaveLen(3))
			Expect(repo.items).To(HaveLen(3))
		})

		It("rejects an empty item list", func() {
			_, err := svc.SubmitVoluntary(ctx, "tech-1", inspection.SubmitVoluntaryDTO{})
			Expect(err).To(HaveOccurred())
			Expect(repo.inspections).To(BeEmpty())
		})

		It("rejects an unknown item status", func() {
			_, err := svc.SubmitVoluntary(ctx, "tech-1", inspection.SubmitVoluntaryDTO{
				Items: []inspection.ItemReportDTO{{EppID: "epp-1", Status: "fine"}},
			})
			Expect(err).To(HaveOccurred())
		})

		It("keeps the parent row when the item batch fails", func() {
			repo.createItemErr = errors.New("connection refused")

			_, err := svc.SubmitVoluntary(ctx, "tech-1", inspection.SubmitVoluntaryDTO{Items: okReport})

			Expect(err).To(HaveOccurred())
			Expect(repo.inspections).To(HaveLen(1))
		})
	})

	Describe("RequestAudit", func() {
		It("opens a pending audit tied to the supervisor", func() {
			insp, err := svc.RequestAudit(ctx, "sup-1", inspection.RequestAuditDTO{TechnicianID: "tech-1"})

			Expect(err).NotTo(HaveOccurred())
			Expect(insp.Type).To(Equal(inspection.TypeAudit))
			Expect(insp.Status).To(Equal(inspection.StatusPending))
			Expect(insp.CompletedAt).To(BeNil())
			Expect(insp.SupervisorID).NotTo(BeNil())
			Expect(*insp.SupervisorID).To(Equal("sup-1"))
		})

		It("requires a technician id", func() {
			_, err := svc.RequestAudit(ctx, "sup-1", inspection.RequestAuditDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CompleteAudit", func() {
		var pending *inspection.Inspection

		BeforeEach(func() {
			var err error
			pending, err = svc.RequestAudit(ctx, "sup-1", inspection.RequestAuditDTO{TechnicianID: "tech-1"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("closes the audit with the technician's verdicts", func() {
			insp, err := svc.CompleteAudit(ctx, pending.ID, "tech-1", inspection.CompleteAuditDTO{Items: okReport})

			Expect(err).NotTo(HaveOccurred())
			Expect(insp.Status).To(Equal(inspection.StatusCompleted))
			Expect(insp.CompletedAt).NotTo(BeNil())
			Expect(insp.Items).To(HaveLen(3))
			Expect(repo.completed).To(HaveKey(pending.ID))
		})

		It("rejects another technician's audit", func() {
			_, err := svc.CompleteAudit(ctx, pending.ID, "tech-2", inspection.CompleteAuditDTO{Items: okReport})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects an audit that is not pending", func() {
			_, err := svc.CompleteAudit(ctx, pending.ID, "tech-1", inspection.CompleteAuditDTO{Items: okReport})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.CompleteAudit(ctx, pending.ID, "tech-1", inspection.CompleteAuditDTO{Items: okReport})
			Expect(err).To(HaveOccurred())
		})

		It("reports a missing inspection", func() {
			_, err := svc.CompleteAudit(ctx, "ghost", "tech-1", inspection.CompleteAuditDTO{Items: okReport})
			Expect(err).To(MatchError(internal.ErrInspectionNotFound))
		})
	})

	Describe("ListAll filtering", func() {
		day := func(s string) time.Time {
			t, err := time.Parse("2006-01-02", s)
			Expect(err).NotTo(HaveOccurred())
			return t
		}

		BeforeEach(func() {
			repo.listAll = []*inspection.Inspection{
				{
					ID:        "i1",
					CreatedAt: day("2026-08-01"),
					Technician: &user.User{
						FullName: "María García",
						Email:    "maria@example.com",
					},
				},
				{
					ID:        "i2",
					CreatedAt: day("2026-08-15"),
					Technician: &user.User{
						FullName: "Juan Pérez",
						Email:    "juan@example.com",
					},
				},
			}
		})

		It("returns everything without filters", func() {
			out, err := svc.ListAll(ctx, inspection.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(2))
		})

		It("matches the technician name case-insensitively", func() {
			out, err := svc.ListAll(ctx, inspection.ListFilter{Query: "maría"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal("i1"))
		})

		It("matches the technician email", func() {
			out, err := svc.ListAll(ctx, inspection.ListFilter{Query: "JUAN@"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal("i2"))
		})

		It("matches the creation day prefix", func() {
			out, err := svc.ListAll(ctx, inspection.ListFilter{Date: "2026-08-15"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal("i2"))
		})

		It("drops inspections without a technician when a query is set", func() {
			repo.listAll = append(repo.listAll, &inspection.Inspection{ID: "i3", CreatedAt: day("2026-08-20")})

			out, err := svc.ListAll(ctx, inspection.ListFilter{Query: "garcía"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
		})
	})
})
