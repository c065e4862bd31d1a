package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/safetrack/epp-inspection/internal"
)

// Repository is the store side of the catalog.
type Repository interface {
	Create(ctx context.Context, item *EppItem) error
	GetByID(ctx context.Context, id string) (*EppItem, error)
	GetByName(ctx context.Context, name string) (*EppItem, error)
	ListActive(ctx context.Context) ([]*EppItem, error)
	ListAll(ctx context.Context) ([]*EppItem, error)
	Update(ctx context.Context, item *EppItem) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListActive returns the items technicians inspect against, ordered by
// category then name so checklists group naturally.
func (s *Service) ListActive(ctx context.Context) ([]*EppItem, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active catalog items", "error", err)
		return nil, internal.NewStoreError("could not list catalog", err)
	}
	return items, nil
}

// ListAll includes archived items for the admin management screen.
func (s *Service) ListAll(ctx context.Context) ([]*EppItem, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list catalog items", "error", err)
		return nil, internal.NewStoreError("could not list catalog", err)
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*EppItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, dto CreateItemDTO) (*EppItem, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	item := &EppItem{
		ID:         uuid.NewString(),
		Name:       dto.Name,
		Category:   dto.Category,
		IsCritical: dto.IsCritical,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if internal.IsUniqueViolation(err) {
			return nil, internal.NewConflictError("an item with that name already exists", internal.ErrCodeUniqueViolation)
		}
		s.logger.Error("failed to create catalog item", "error", err, "name", dto.Name)
		return nil, internal.NewStoreError("could not create catalog item", err)
	}

	s.logger.Info("catalog item created", "item_id", item.ID, "name", item.Name)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateItemDTO) (*EppItem, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = dto.Name
	item.Category = dto.Category
	item.IsCritical = dto.IsCritical

	if err := s.repo.Update(ctx, item); err != nil {
		if internal.IsUniqueViolation(err) {
			return nil, internal.NewConflictError("an item with that name already exists", internal.ErrCodeUniqueViolation)
		}
		s.logger.Error("failed to update catalog item", "error", err, "item_id", id)
		return nil, internal.NewStoreError("could not update catalog item", err)
	}
	return item, nil
}

// Archive hides an item from new inspections without touching history.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

// Unarchive puts an archived item back on the checklist.
func (s *Service) Unarchive(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		s.logger.Error("failed to toggle catalog item", "error", err, "item_id", id, "active", active)
		return internal.NewStoreError("could not update catalog item", err)
	}
	return nil
}

// Delete removes an item permanently. Items already referenced by recorded
// inspections cannot go; callers get ErrReferencedByHistory and should
// archive instead.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if internal.IsForeignKeyViolation(err) {
			return internal.ErrReferencedByHistory
		}
		s.logger.Error("failed to delete catalog item", "error", err, "item_id", id)
		return internal.NewStoreError("could not delete catalog item", err)
	}

	s.logger.Info("catalog item deleted", "item_id", id)
	return nil
}

// SeedItem is one baseline catalog entry installed on first boot.
type SeedItem struct {
	Name       string
	Category   string
	IsCritical bool
}

// DefaultSeed is the baseline protective-equipment set for electrical field
// crews.
func DefaultSeed() []SeedItem {
	return []SeedItem{
		{Name: "Casco de Seguridad", Category: "Cabeza", IsCritical: true},
		{Name: "Gafas de Protección", Category: "Ojos", IsCritical: true},
		{Name: "Guantes Dieléctricos", Category: "Manos", IsCritical: true},
		{Name: "Arnés de Seguridad", Category: "Altura", IsCritical: true},
		{Name: "Botas de Seguridad", Category: "Pies", IsCritical: false},
		{Name: "Chaleco Reflectante", Category: "Cuerpo", IsCritical: false},
	}
}

// Seed installs the given items, updating category and criticality in place
// for names that already exist so reseeding stays idempotent.
func (s *Service) Seed(ctx context.Context, seed []SeedItem) error {
	for _, entry := range seed {
		item := &EppItem{
			ID:         uuid.NewString(),
			Name:       entry.Name,
			Category:   entry.Category,
			IsCritical: entry.IsCritical,
			IsActive:   true,
		}
		err := s.repo.Create(ctx, item)
		if err == nil {
			continue
		}
		if !internal.IsUniqueViolation(err) {
			return internal.NewStoreError("could not seed catalog", err)
		}

		existing, getErr := s.repo.GetByName(ctx, entry.Name)
		if getErr != nil {
			return internal.NewStoreError("could not seed catalog", getErr)
		}
		existing.Category = entry.Category
		existing.IsCritical = entry.IsCritical
		if updErr := s.repo.Update(ctx, existing); updErr != nil {
			return internal.NewStoreError("could not seed catalog", updErr)
		}
	}

	s.logger.Info("catalog seeded", "items", len(seed))
	return nil
}
