package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/pkg/sanitize"
)

// BackupPrefix is where home content snapshots are stored.
const BackupPrefix = "backups/homes/"

const backupMaxBytes = 64 << 20

// HomeService manages home pages and their content backups.
type HomeService struct {
	repo  ports.HomeRepository
	blobs ports.BlobStore
	audit *AuditLog
	log   zerolog.Logger
	now   func() time.Time
}

func NewHomeService(repo ports.HomeRepository, blobs ports.BlobStore, audit *AuditLog, log zerolog.Logger) *HomeService {
	return &HomeService{repo: repo, blobs: blobs, audit: audit, log: log, now: time.Now}
}

// WithClock replaces the time source used to name backups.
func (s *HomeService) WithClock(now func() time.Time) *HomeService {
	s.now = now
	return s
}

func (s *HomeService) List(ctx context.Context) ([]domain.Home, error) {
	return s.repo.List(ctx)
}

func (s *HomeService) Get(ctx context.Context, id string) (*domain.Home, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *HomeService) Create(ctx context.Context, in ports.HomeInput) (*domain.Home, error) {
	v := &domain.ValidationError{}
	requireText(v, "homeName", in.Name)
	requireText(v, "homeLocation", in.Location)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	home := &domain.Home{ID: uuid.NewString()}
	if in.ID != nil {
		if id := sanitize.Text(*in.ID); id != "" {
			home.ID = id
		}
	}
	applyHome(home, in)

	if err := s.repo.Create(ctx, home); err != nil {
		s.audit.LogAction(ctx, actionCreate, "home", home.ID, nil, false)
		return nil, fmt.Errorf("create home: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "home", home.ID, changedFields(in), true)
	return home, nil
}

func (s *HomeService) Update(ctx context.Context, id string, in ports.HomeInput) (*domain.Home, error) {
	home, err := s.repo.Update(ctx, id, func(h *domain.Home) error {
		if in.Name != nil && sanitize.Text(*in.Name) == "" {
			return domain.NewValidationError("homeName", "must not be empty")
		}
		applyHome(h, in)
		return nil
	})
	if err != nil {
		s.audit.LogAction(ctx, actionUpdate, "home", id, nil, false)
		return nil, err
	}
	s.audit.LogAction(ctx, actionUpdate, "home", id, changedFields(in), true)
	return home, nil
}

func (s *HomeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.LogAction(ctx, actionDelete, "home", id, nil, false)
		return err
	}
	s.audit.LogAction(ctx, actionDelete, "home", id, nil, true)
	return nil
}

func applyHome(h *domain.Home, in ports.HomeInput) {
	setText(&h.Name, in.Name)
	setText(&h.Location, in.Location)
	setText(&h.AdminEmail, in.AdminEmail)
	setText(&h.Image, in.Image)
	setText(&h.Badge, in.Badge)
	setText(&h.Description, in.Description)
	setText(&h.HeroTitle, in.HeroTitle)
	setText(&h.HeroSubtitle, in.HeroSubtitle)
	setText(&h.HeroBgImage, in.HeroBgImage)
	setText(&h.HeroExpandedDesc, in.HeroExpandedDesc)
	setText(&h.CIWReportURL, in.CIWReportURL)
	setText(&h.NewsletterURL, in.NewsletterURL)
	setText(&h.StatsBedrooms, in.StatsBedrooms)
	setText(&h.StatsPremier, in.StatsPremier)
	setText(&h.ActivitiesIntro, in.ActivitiesIntro)
	setText(&h.ActivitiesModalDesc, in.ActivitiesModalDesc)
	setText(&h.FacilitiesIntro, in.FacilitiesIntro)
	setBool(&h.Featured, in.Featured)

	sections := h.Sections()
	for name, src := range map[string]*domain.Section{
		"bannerImages":            in.BannerImages,
		"teamMembers":             in.TeamMembers,
		"teamGalleryImages":       in.TeamGallery,
		"activities":              in.Activities,
		"activityImages":          in.ActivityImages,
		"facilitiesList":          in.FacilitiesList,
		"detailedFacilities":      in.DetailedFacilities,
		"facilitiesGalleryImages": in.FacilitiesGallery,
	} {
		if src != nil {
			*sections[name] = *src
		}
	}
}

// Backup writes every home's content to blob storage as one JSON document.
func (s *HomeService) Backup(ctx context.Context) (*domain.HomeBackup, error) {
	homes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup homes: %w", err)
	}

	body, err := json.MarshalIndent(homes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("backup homes: %w", err)
	}

	now := s.now().UTC()
	key := BackupPrefix + "homes_backup_" + now.Format("20060102_150405") + ".json"
	if _, err := s.blobs.Put(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		s.audit.LogAction(ctx, actionBackup, "home", key, nil, false)
		return nil, fmt.Errorf("store backup: %w", err)
	}

	s.audit.LogAction(ctx, actionBackup, "home", key, map[string]any{"homes": len(homes)}, true)
	s.log.Info().Str("key", key).Int("homes", len(homes)).Msg("home backup stored")
	return &domain.HomeBackup{Key: key, CreatedAt: now, Size: int64(len(body))}, nil
}

// ListBackups returns stored backups, newest first.
func (s *HomeService) ListBackups(ctx context.Context) ([]domain.HomeBackup, error) {
	objs, err := s.blobs.List(ctx, BackupPrefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	out := make([]domain.HomeBackup, 0, len(objs))
	for _, o := range objs {
		if !strings.HasSuffix(o.Key, ".json") {
			continue
		}
		out = append(out, domain.HomeBackup{Key: o.Key, CreatedAt: o.LastModified, Size: o.Size})
	}
	slices.SortFunc(out, func(a, b domain.HomeBackup) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// Restore copies list sections from a backup back into the live homes. A
// section is only replaced when the backup holds more items than the live
// copy, so a restore never shrinks content. With DryRun nothing is written.
func (s *HomeService) Restore(ctx context.Context, in ports.RestoreInput) (*domain.RestoreResult, error) {
	key, err := s.resolveBackup(ctx, in.Backup)
	if err != nil {
		return nil, err
	}
	backup, err := s.readBackup(ctx, key)
	if err != nil {
		return nil, err
	}

	result := &domain.RestoreResult{Backup: key, DryRun: in.DryRun, Sections: []domain.SectionRestore{}}
	for _, saved := range backup {
		if len(in.HomeIDs) > 0 && !slices.Contains(in.HomeIDs, saved.ID) {
			continue
		}

		current, err := s.repo.FindByID(ctx, saved.ID)
		if err != nil {
			if isNotFound(err) {
				result.Missing = append(result.Missing, saved.ID)
				continue
			}
			return nil, err
		}

		plan := restorePlan(current, &saved)
		if len(plan) == 0 {
			continue
		}
		result.Sections = append(result.Sections, plan...)
		if in.DryRun {
			continue
		}

		_, err = s.repo.Update(ctx, saved.ID, func(h *domain.Home) error {
			live, src := h.Sections(), saved.Sections()
			for _, p := range plan {
				*live[p.Section] = *src[p.Section]
			}
			return nil
		})
		if err != nil {
			s.audit.LogAction(ctx, actionRestore, "home", saved.ID, nil, false)
			return nil, fmt.Errorf("restore home %s: %w", saved.ID, err)
		}
		result.Homes++

		names := make([]string, 0, len(plan))
		for _, p := range plan {
			names = append(names, p.Section)
		}
		s.audit.LogAction(ctx, actionRestore, "home", saved.ID, map[string]any{"backup": key, "sections": names}, true)
	}

	s.log.Info().Str("backup", key).Bool("dry_run", in.DryRun).Int("homes", result.Homes).Int("sections", len(result.Sections)).Msg("home restore finished")
	return result, nil
}

// restorePlan lists the sections where saved holds more items than current.
func restorePlan(current, saved *domain.Home) []domain.SectionRestore {
	live, src := current.Sections(), saved.Sections()
	var plan []domain.SectionRestore
	for _, name := range domain.SectionNames {
		have, want := live[name].Len(), src[name].Len()
		if want > have {
			plan = append(plan, domain.SectionRestore{HomeID: current.ID, Section: name, Current: have, Restored: want})
		}
	}
	return plan
}

// resolveBackup accepts a bare filename, a full key or "latest".
func (s *HomeService) resolveBackup(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "latest" {
		backups, err := s.ListBackups(ctx)
		if err != nil {
			return "", err
		}
		if len(backups) == 0 {
			return "", domain.ErrBackupNotFound
		}
		return backups[0].Key, nil
	}
	if strings.Contains(name, "..") {
		return "", domain.NewValidationError("backup", "invalid backup name")
	}
	if !strings.HasPrefix(name, BackupPrefix) {
		name = BackupPrefix + path.Base(name)
	}
	return name, nil
}

func (s *HomeService) readBackup(ctx context.Context, key string) ([]domain.Home, error) {
	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrBackupNotFound
		}
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, backupMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var homes []domain.Home
	if err := json.Unmarshal(body, &homes); err != nil {
		return nil, domain.NewValidationError("backup", "backup is not a valid home snapshot")
	}
	return homes, nil
}
