package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/storage"
)

type eventIndex interface {
	Exists(ctx context.Context, id int64) (bool, error)
	IDs(ctx context.Context) (map[int64]struct{}, error)
}

type imageRows interface {
	ListForEvent(ctx context.Context, eventID int64) ([]model.EventImage, error)
	Create(ctx context.Context, img *model.EventImage) error
	MarkDeleted(ctx context.Context, eventID, imageID int64, at time.Time) (model.EventImage, error)
	Purge(ctx context.Context, imageID int64) error
	ListMarked(ctx context.Context, before time.Time) ([]model.EventImage, error)
	Filenames(ctx context.Context) (map[int64]map[string]struct{}, error)
}

type imageFiles interface {
	Save(eventID int64, originalName string, r io.Reader) (string, string, error)
	Remove(eventID int64, filename string) error
	RemoveEvent(eventID int64) error
	Files() ([]storage.StoredFile, error)
}

// SweepResult counts what one reconciliation pass cleaned up.
type SweepResult struct {
	PurgedRows   int
	RemovedFiles int
	RemovedDirs  int
}

// ImageService keeps event_images rows and files on disk in step.
//
// Deleting an image marks its row, removes the file and then purges the
// row. A crash in between leaves a marked row or an orphan file, both of
// which Sweep cleans up later.
type ImageService struct {
	events eventIndex
	rows   imageRows
	files  imageFiles
	grace  time.Duration
	log    *logrus.Entry
	now    func() time.Time
}

// NewImageService wires the service. Files without a row are only removed
// by Sweep once they are older than grace, so an upload in flight is never
// mistaken for an orphan.
func NewImageService(events eventIndex, rows imageRows, files imageFiles, grace time.Duration, log *logrus.Entry) *ImageService {
	return &ImageService{
		events: events,
		rows:   rows,
		files:  files,
		grace:  grace,
		log:    log.WithField(logging.FldComponent, "images"),
		now:    time.Now,
	}
}

// List returns the live images of an event. A missing event is ErrNotFound.
func (s *ImageService) List(ctx context.Context, eventID int64) ([]model.EventImage, error) {
	if err := s.EnsureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.rows.ListForEvent(ctx, eventID)
}

// Upload stores an image for the event and records it. The content is
// sniffed; anything that is not an image is rejected before it touches the
// disk.
func (s *ImageService) Upload(ctx context.Context, eventID int64, filename string, r io.Reader) (model.EventImage, error) {
	if err := s.EnsureEvent(ctx, eventID); err != nil {
		return model.EventImage{}, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return model.EventImage{}, errors.Wrap(err, "read upload")
	}
	if n == 0 {
		return model.EventImage{}, invalid("Image file is empty")
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return model.EventImage{}, invalid("File must be an image")
	}

	name, url, err := s.files.Save(eventID, filename, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return model.EventImage{}, err
	}
	img := model.EventImage{
		EventID:    eventID,
		Filename:   name,
		URL:        url,
		UploadedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := s.rows.Create(ctx, &img); err != nil {
		if rmErr := s.files.Remove(eventID, name); rmErr != nil {
			s.log.WithError(rmErr).WithField(logging.FldPath, name).Warn("remove file of failed upload")
		}
		if errors.Is(err, repository.ErrInvalidReference) {
			// the event was deleted while the file was written
			return model.EventImage{}, repository.ErrNotFound
		}
		return model.EventImage{}, err
	}
	s.log.WithFields(logrus.Fields{logging.FldEvent: eventID, logging.FldImage: img.ID}).Info("image uploaded")
	return img, nil
}

// Delete removes one image of the event. ErrNotFound when the image does
// not exist, belongs to another event or is already being deleted. Once the
// row is marked the call succeeds; later failures are left to Sweep.
func (s *ImageService) Delete(ctx context.Context, eventID, imageID int64) error {
	img, err := s.rows.MarkDeleted(ctx, eventID, imageID, s.now())
	if err != nil {
		return err
	}
	log := s.log.WithFields(logrus.Fields{logging.FldEvent: eventID, logging.FldImage: imageID})
	if err := s.files.Remove(eventID, img.Filename); err != nil {
		log.WithError(err).Warn("image file not removed, left for sweep")
		return nil
	}
	if err := s.rows.Purge(ctx, imageID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.WithError(err).Warn("image row not purged, left for sweep")
	}
	return nil
}

// RemoveEventFiles drops the upload directory of a deleted event.
func (s *ImageService) RemoveEventFiles(eventID int64) {
	if err := s.files.RemoveEvent(eventID); err != nil {
		s.log.WithError(err).WithField(logging.FldEvent, eventID).Warn("event upload dir not removed, left for sweep")
	}
}

// Sweep finishes interrupted deletes and removes files that have no row.
func (s *ImageService) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()

	marked, err := s.rows.ListMarked(ctx, now)
	if err != nil {
		return res, err
	}
	for _, img := range marked {
		if err := s.files.Remove(img.EventID, img.Filename); err != nil {
			s.log.WithError(err).WithField(logging.FldImage, img.ID).Warn("sweep: remove marked file")
			continue
		}
		if err := s.rows.Purge(ctx, img.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return res, err
		}
		res.PurgedRows++
	}

	files, err := s.files.Files()
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		return res, nil
	}
	events, err := s.events.IDs(ctx)
	if err != nil {
		return res, err
	}
	known, err := s.rows.Filenames(ctx)
	if err != nil {
		return res, err
	}

	cutoff := now.Add(-s.grace)
	// events that are gone but still have a file too young to remove
	busy := map[int64]bool{}
	gone := map[int64]bool{}
	for _, f := range files {
		_, eventAlive := events[f.EventID]
		if !eventAlive {
			gone[f.EventID] = true
		}
		if _, ok := known[f.EventID][f.Name]; ok && eventAlive {
			continue
		}
		if f.ModTime.After(cutoff) {
			busy[f.EventID] = true
			continue
		}
		if err := s.files.Remove(f.EventID, f.Name); err != nil {
			s.log.WithError(err).WithField(logging.FldPath, f.Name).Warn("sweep: remove orphan file")
			busy[f.EventID] = true
			continue
		}
		res.RemovedFiles++
	}
	for id := range gone {
		if busy[id] {
			continue
		}
		if err := s.files.RemoveEvent(id); err != nil {
			s.log.WithError(err).WithField(logging.FldEvent, id).Warn("sweep: remove event dir")
			continue
		}
		res.RemovedDirs++
	}
	return res, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *ImageService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			res, err := s.Sweep(ctx)
			if err != nil {
				s.log.WithError(err).Error("image sweep failed")
				continue
			}
			if res != (SweepResult{}) {
				s.log.WithFields(logrus.Fields{
					"purged_rows":   res.PurgedRows,
					"removed_files": res.RemovedFiles,
					"removed_dirs":  res.RemovedDirs,
				}).Info("image sweep")
			}
		}
	}
}

// EnsureEvent returns ErrNotFound unless the event exists.
func (s *ImageService) EnsureEvent(ctx context.Context, eventID int64) error {
	ok, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}
