package inspection

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/storage"
)

// Repository is the store side of inspection access.
type Repository interface {
	Create(ctx context.Context, insp *Inspection) error
	CreateItems(ctx context.Context, items []Item) error
	GetByID(ctx context.Context, id string) (*Inspection, error)
	ListAll(ctx context.Context) ([]*Inspection, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]*Inspection, error)
	ListPendingForTechnician(ctx context.Context, technicianID string) ([]*Inspection, error)
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
}

type Service struct {
	repo    Repository
	objects storage.ObjectStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, objects storage.ObjectStore, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		objects: objects,
		logger:  logger,
		now:     time.Now,
	}
}

// SubmitVoluntary records a self-inspection. The record is born completed;
// there is no pending phase for voluntary checks.
func (s *Service) SubmitVoluntary(ctx context.Context, technicianID string, dto SubmitVoluntaryDTO) (*Inspection, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	insp := &Inspection{
		ID:           uuid.NewString(),
		TechnicianID: technicianID,
		Type:         TypeVoluntary,
		Status:       StatusCompleted,
		CreatedAt:    now,
		CompletedAt:  &now,
	}
	if err := s.repo.Create(ctx, insp); err != nil {
		s.logger.Error("failed to create voluntary inspection", "error", err, "technician_id", technicianID)
		return nil, internal.NewStoreError("could not record inspection", err)
	}

	items, err := s.insertItems(ctx, insp.ID, dto.Items, now)
	if err != nil {
		// The parent row stays; the item batch can be retried manually.
		s.logger.Error("inspection recorded but item batch failed",
			"error", err, "inspection_id", insp.ID)
		return nil, internal.NewStoreError("could not record inspection items", err)
	}
	insp.Items = items

	s.logger.Info("voluntary inspection recorded",
		"inspection_id", insp.ID, "technician_id", technicianID, "items", len(items))
	return insp, nil
}

// RequestAudit opens a pending audit for the technician on behalf of the
// requesting supervisor.
func (s *Service) RequestAudit(ctx context.Context, supervisorID string, dto RequestAuditDTO) (*Inspection, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	insp := &Inspection{
		ID:           uuid.NewString(),
		TechnicianID: dto.TechnicianID,
		SupervisorID: &supervisorID,
		Type:         TypeAudit,
		Status:       StatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, insp); err != nil {
		s.logger.Error("failed to request audit", "error", err,
			"technician_id", dto.TechnicianID, "supervisor_id", supervisorID)
		return nil, internal.NewStoreError("could not request audit", err)
	}

	s.logger.Info("audit requested",
		"inspection_id", insp.ID, "technician_id", dto.TechnicianID, "supervisor_id", supervisorID)
	return insp, nil
}

// CompleteAudit lets the owning technician close a pending audit with their
// verdicts. Completing someone else's audit, or one that is not pending, is
// rejected.
func (s *Service) CompleteAudit(ctx context.Context, inspectionID, technicianID string, dto CompleteAuditDTO) (*Inspection, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	insp, err := s.repo.GetByID(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	if insp.TechnicianID != technicianID {
		return nil, internal.NewForbiddenError("audit belongs to another technician", internal.ErrCodeForbidden)
	}
	if insp.Status != StatusPending {
		return nil, internal.NewConflictError("audit is not pending", internal.ErrCodeValidationFailed)
	}

	now := s.now()
	if err := s.repo.MarkCompleted(ctx, inspectionID, now); err != nil {
		s.logger.Error("failed to complete audit", "error", err, "inspection_id", inspectionID)
		return nil, internal.NewStoreError("could not complete audit", err)
	}

	items, err := s.insertItems(ctx, inspectionID, dto.Items, now)
	if err != nil {
		s.logger.Error("audit completed but item batch failed",
			"error", err, "inspection_id", inspectionID)
		return nil, internal.NewStoreError("could not record inspection items", err)
	}

	insp.Status = StatusCompleted
	insp.CompletedAt = &now
	insp.Items = items

	s.logger.Info("audit completed", "inspection_id", inspectionID, "items", len(items))
	return insp, nil
}

func (s *Service) insertItems(ctx context.Context, inspectionID string, reports []ItemReportDTO, at time.Time) ([]Item, error) {
	items := make([]Item, 0, len(reports))
	for _, r := range reports {
		items = append(items, Item{
			ID:           uuid.NewString(),
			InspectionID: inspectionID,
			EppID:        r.EppID,
			Status:       r.Status,
			PhotoURL:     r.PhotoURL,
			Observation:  r.Observation,
			CreatedAt:    at,
		})
	}
	if err := s.repo.CreateItems(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID loads one inspection with its items and technician.
func (s *Service) GetByID(ctx context.Context, id string) (*Inspection, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAll serves the supervisor history view, newest first. Name, email and
// date filters run in memory over the loaded page.
func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]*Inspection, error) {
	inspections, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list inspections", "error", err)
		return nil, internal.NewStoreError("could not list inspections", err)
	}
	return applyFilter(inspections, filter), nil
}

func applyFilter(inspections []*Inspection, filter ListFilter) []*Inspection {
	if filter.Query == "" && filter.Date == "" {
		return inspections
	}

	query := strings.ToLower(filter.Query)
	out := make([]*Inspection, 0, len(inspections))
	for _, insp := range inspections {
		if query != "" {
			if insp.Technician == nil {
				continue
			}
			name := strings.ToLower(insp.Technician.FullName)
			email := strings.ToLower(insp.Technician.Email)
			if !strings.Contains(name, query) && !strings.Contains(email, query) {
				continue
			}
		}
		if filter.Date != "" && !strings.HasPrefix(insp.CreatedAt.Format(time.RFC3339), filter.Date) {
			continue
		}
		out = append(out, insp)
	}
	return out
}

// ListForTechnician is the technician's own history.
func (s *Service) ListForTechnician(ctx context.Context, technicianID string) ([]*Inspection, error) {
	inspections, err := s.repo.ListByTechnician(ctx, technicianID)
	if err != nil {
		s.logger.Error("failed to list inspections", "error", err, "technician_id", technicianID)
		return nil, internal.NewStoreError("could not list inspections", err)
	}
	return inspections, nil
}

// PendingAudits returns the audits waiting on the technician.
func (s *Service) PendingAudits(ctx context.Context, technicianID string) ([]*Inspection, error) {
	inspections, err := s.repo.ListPendingForTechnician(ctx, technicianID)
	if err != nil {
		s.logger.Error("failed to list pending audits", "error", err, "technician_id", technicianID)
		return nil, internal.NewStoreError("could not list pending audits", err)
	}
	return inspections, nil
}

// KPI aggregates every recorded inspection into the compliance dashboard.
func (s *Service) KPI(ctx context.Context) (*KPIReport, error) {
	inspections, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load inspections for KPI", "error", err)
		return nil, internal.NewStoreError("could not compute KPIs", err)
	}
	return ComputeKPI(inspections), nil
}

// UploadPhoto stores one piece of photo evidence and returns its public URL
// for inclusion in a subsequent item report.
func (s *Service) UploadPhoto(ctx context.Context, eppID, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.objects == nil {
		return "", internal.NewUploadError("object storage is not configured", nil)
	}

	objectName := storage.InspectionPhotoName(eppID, filepath.Ext(fileName))
	if err := s.objects.Upload(ctx, objectName, reader, size, contentType); err != nil {
		s.logger.Error("photo upload failed", "error", err, "epp_id", eppID)
		return "", internal.NewUploadError("could not upload photo", err)
	}
	return s.objects.PublicURL(objectName), nil
}
