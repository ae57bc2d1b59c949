package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/forensight/internal/application"
	"github.com/bryanwahyu/forensight/internal/domain/faults"
	"github.com/bryanwahyu/forensight/internal/domain/media"
)

const presignExpiry = 15 * time.Minute

// Service mengorkestrasi pipeline analisis: backfill katalog, hashing,
// verifikasi header, ekstraksi metadata, lalu heuristik forensik.
type Service struct {
	records media.Repository
	catalog media.Catalog
	files   media.FileStore
	prober  media.Prober
	tags    media.TagReader
	faults  faults.Repository
	clock   application.Clock
	log     *logrus.Logger
}

func NewService(
	records media.Repository,
	catalog media.Catalog,
	files media.FileStore,
	prober media.Prober,
	tags media.TagReader,
	faultRepo faults.Repository,
	clock application.Clock,
	log *logrus.Logger,
) *Service {
	return &Service{
		records: records,
		catalog: catalog,
		files:   files,
		prober:  prober,
		tags:    tags,
		faults:  faultRepo,
		clock:   clock,
		log:     log,
	}
}

// Process runs the whole pipeline for one work item. Validation failures
// and hashing failures abort with a FAILED record; every later step only
// degrades the record to PARTIAL and keeps going.
func (s *Service) Process(ctx context.Context, tenant string, item media.WorkItem) error {
	logger := s.log.WithFields(logrus.Fields{
		"tenant":   tenant,
		"file_md5": item.FileMD5,
	})

	// backfill identitas dari katalog sebelum validasi
	if entry, err := s.catalog.FindByFingerprint(ctx, item.FileMD5); err != nil {
		logger.WithError(err).Warn("catalog lookup failed, continuing with webhook payload")
	} else {
		item.Backfill(entry)
	}

	if item.OwnerID == "" || item.ProjectID == "" {
		err := fmt.Errorf("%w: owner=%q project=%q", media.ErrMissingIdentity, item.OwnerID, item.ProjectID)
		s.recordFailure(ctx, tenant, item, "validate", err)
		return err
	}

	existing, err := s.records.Find(ctx, tenant, item.OwnerID, item.FileMD5)
	if err != nil && !errors.Is(err, media.ErrNotFound) {
		return fmt.Errorf("checking existing record: %w", err)
	}
	if existing != nil {
		if !item.ForceReAnalysis {
			logger.Info("record already analyzed, skipping")
			return nil
		}
		if err := s.records.Delete(ctx, tenant, item.OwnerID, item.FileMD5); err != nil {
			return fmt.Errorf("deleting record for re-analysis: %w", err)
		}
		logger.Info("force re-analysis, previous record deleted")
	}

	rec := media.NewRecord(uuid.NewString(), tenant, item, s.clock.Now())
	partial := false

	// hashing wajib sukses; tanpa digest record tidak ada artinya
	if err := s.hashStep(ctx, item, rec); err != nil {
		rec.Status = media.StatusFailed
		rec.Note("hashing failed: " + err.Error())
		s.recordFailure(ctx, tenant, item, "hash", err)
		if saveErr := s.records.Save(ctx, rec); saveErr != nil {
			logger.WithError(saveErr).Error("saving failed record")
		}
		return fmt.Errorf("hashing %s: %w", item.FileMD5, err)
	}

	if err := s.headerStep(ctx, item, rec); err != nil {
		rec.Header.Integrity = media.IntegrityAnalysisFailed
		rec.Note("header analysis failed: " + err.Error())
		partial = true
	}

	if item.Kind == media.KindVideo {
		if err := s.videoStep(ctx, item, rec); err != nil {
			rec.Note("video extraction failed: " + err.Error())
			partial = true
		}
	} else {
		if err := s.imageStep(ctx, item, rec); err != nil {
			rec.Note("image extraction failed: " + err.Error())
			partial = true
		}
	}

	media.RunForensicChecks(rec, s.clock.Now())

	if partial {
		rec.Status = media.StatusPartial
	} else {
		rec.Status = media.StatusSuccess
	}

	if err := s.records.Save(ctx, rec); err != nil {
		s.recordFailure(ctx, tenant, item, "persist", err)
		return fmt.Errorf("saving record: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"status":     rec.Status,
		"risk_score": derefInt(rec.RiskScore),
		"indicators": len(rec.SuspiciousIndicators),
	}).Info("analysis stored")
	return nil
}

func (s *Service) hashStep(ctx context.Context, item media.WorkItem, rec *media.AnalysisRecord) error {
	rc, err := s.files.OpenStream(ctx, item.ObjectKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	hashes, err := media.ComputeHashes(rc)
	if err != nil {
		return err
	}
	if rec.FileMD5 == "" {
		rec.FileMD5 = hashes.MD5
	} else if rec.FileMD5 != hashes.MD5 {
		rec.Note(fmt.Sprintf("fingerprint mismatch: catalog says %s, content hashes to %s", rec.FileMD5, hashes.MD5))
	}
	rec.SHA1Hash = hashes.SHA1
	rec.SHA256Hash = hashes.SHA256
	return nil
}

func (s *Service) headerStep(ctx context.Context, item media.WorkItem, rec *media.AnalysisRecord) error {
	rc, err := s.files.OpenStream(ctx, item.ObjectKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	header := make([]byte, media.HeaderWindow)
	n, err := io.ReadFull(rc, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	rec.Header = media.AnalyzeHeader(header[:n], rec.FileName)
	return nil
}

func (s *Service) imageStep(ctx context.Context, item media.WorkItem, rec *media.AnalysisRecord) error {
	rc, err := s.files.OpenStream(ctx, item.ObjectKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	groups, raw, err := s.tags.Read(rc)
	if err != nil {
		return err
	}
	media.ApplyImageMetadata(rec, groups)
	rec.RawMetadata = raw
	return nil
}

func (s *Service) videoStep(ctx context.Context, item media.WorkItem, rec *media.AnalysisRecord) error {
	url, err := s.files.PresignedURL(ctx, item.ObjectKey, presignExpiry)
	if err != nil {
		return err
	}
	probe, err := s.prober.Probe(ctx, url)
	if err != nil {
		return err
	}
	media.ApplyVideoMetadata(rec, probe)

	contentType, ctErr := s.files.ContentType(ctx, item.ObjectKey)
	if ctErr != nil {
		rec.Note("content type lookup failed: " + ctErr.Error())
	}
	media.NormalizeVideoFormat(rec, contentType, probe.FormatName)
	rec.RawMetadata = media.BuildVideoRawMetadata(rec, probe.FormatName)
	return nil
}

// recordFailure writes a fault row and, for validation errors, a FAILED
// record so the read API can explain what happened.
func (s *Service) recordFailure(ctx context.Context, tenant string, item media.WorkItem, phase string, cause error) {
	f := &faults.Fault{
		TenantID:  tenant,
		FileMD5:   item.FileMD5,
		Phase:     phase,
		Message:   cause.Error(),
		CreatedAt: s.clock.Now(),
	}
	if err := s.faults.Save(ctx, f); err != nil {
		s.log.WithError(err).Error("saving fault entry")
	}

	if phase == "validate" {
		rec := media.NewRecord(uuid.NewString(), tenant, item, s.clock.Now())
		rec.Status = media.StatusFailed
		rec.Note("validation failed: " + cause.Error())
		if err := s.records.Save(ctx, rec); err != nil {
			s.log.WithError(err).Error("saving failed record")
		}
	}
}

// Report loads a record for the read API and repairs legacy rows whose
// structured fields were lost but whose raw dump survived.
func (s *Service) Report(ctx context.Context, tenant, fileMD5 string) (*media.Report, error) {
	rec, err := s.records.Get(ctx, tenant, fileMD5)
	if err != nil {
		return nil, err
	}
	if needsRepair(rec) && media.RepairFromRaw(rec) {
		media.RunForensicChecks(rec, s.clock.Now())
		if err := s.records.Save(ctx, rec); err != nil {
			s.log.WithError(err).Warn("persisting repaired record")
		}
	}
	return media.BuildReport(rec), nil
}

func needsRepair(rec *media.AnalysisRecord) bool {
	if rec.RawMetadata == "" {
		return false
	}
	return rec.FileFormat == "" || rec.MimeType == "" ||
		rec.ImageWidth == nil || rec.ImageHeight == nil
}

// Latest returns the newest reports for a tenant.
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*media.Report, error) {
	recs, err := s.records.Latest(ctx, tenant, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*media.Report, 0, len(recs))
	for _, rec := range recs {
		out = append(out, media.BuildReport(rec))
	}
	return out, nil
}

// Summary returns aggregate risk counts for a tenant.
func (s *Service) Summary(ctx context.Context, tenant string, days int) (*media.Summary, error) {
	return s.records.Summary(ctx, tenant, days)
}

// Faults lists stored failure entries for one file.
func (s *Service) Faults(ctx context.Context, tenant, fileMD5 string, limit int) ([]*faults.Fault, error) {
	return s.faults.ListByFile(ctx, tenant, fileMD5, limit)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
