package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/repositories/memory"
	"github.com/clubtoros/toros-backend/internal/storage"
)

var (
	testNow   = time.Date(2025, time.August, 1, 10, 30, 0, 0, time.UTC)
	testClock = func() time.Time { return testNow }
	errBoom   = errors.New("boom")
)

func date(y int, m time.Month, d int) models.Date {
	return models.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// faultyStore wraps the in-memory store and fails operations on chosen
// collections.
type faultyStore struct {
	*memory.DocumentStore
	failInsert map[string]error
	failUpdate map[string]error
	failFind   map[string]error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		DocumentStore: memory.NewDocumentStore(),
		failInsert:    map[string]error{},
		failUpdate:    map[string]error{},
		failFind:      map[string]error{},
	}
}

func (s *faultyStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	if err := s.failInsert[collection]; err != nil {
		return "", err
	}
	return s.DocumentStore.Insert(ctx, collection, doc)
}

func (s *faultyStore) Update(ctx context.Context, collection, id string, fields repositories.Fields) error {
	if err := s.failUpdate[collection]; err != nil {
		return err
	}
	return s.DocumentStore.Update(ctx, collection, id, fields)
}

func (s *faultyStore) Find(ctx context.Context, collection string, predicates []repositories.Predicate, out any) error {
	if err := s.failFind[collection]; err != nil {
		return err
	}
	return s.DocumentStore.Find(ctx, collection, predicates, out)
}

// fakeUploader records uploads and can fail on a destination prefix.
type fakeUploader struct {
	mu       sync.Mutex
	uploads  map[string]string
	deleted  []string
	failWith error
	failOn   string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string]string{}}
}

var _ storage.Uploader = (*fakeUploader)(nil)

func (u *fakeUploader) Upload(_ context.Context, data []byte, destination, mimeType string, onProgress storage.ProgressFunc) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failWith != nil && strings.Contains(destination, u.failOn) {
		return "", u.failWith
	}
	if onProgress != nil {
		onProgress(0.5)
		onProgress(1)
	}
	url := "https://files.test/" + destination
	u.uploads[url] = mimeType
	return url, nil
}

func (u *fakeUploader) Delete(_ context.Context, url string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, url)
	delete(u.uploads, url)
	return nil
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploads)
}

// fakeFiles is an in-memory staging area.
type fakeFiles struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: map[string][]byte{}}
}

func (f *fakeFiles) put(content string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := uuid.NewString()
	f.files[ref] = []byte(content)
	return ref
}

func (f *fakeFiles) Read(ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[ref]
	if !ok {
		return nil, fmt.Errorf("staged file %s not found", ref)
	}
	return data, nil
}

// completeDraft returns a new-player draft with every field filled in.
func completeDraft(files *fakeFiles) models.RegistrationDraft {
	d := models.NewDraft(testNow)
	d.FirstName = "Luis"
	d.PaternalSurname = "García"
	d.MaternalSurname = "López"
	d.Sex = models.SexMale
	d.BirthDate = date(2014, time.May, 3)
	d.BirthPlace = "Puebla"
	d.CURP = "GALL140503HPLRPS09"
	d.Address = "Calle 1"
	d.Phone = "2221234567"
	d.GuardianCell = "2227654321"
	d.GuardianEmail = "tutor@example.com"
	d.SchoolGrade = "5"
	d.SchoolName = "Primaria Benito Juárez"
	d.Allergies = "Ninguna"
	d.Conditions = "Ninguno"
	d.Weight = "40"
	d.EnrollmentType = models.EnrollmentNew
	d.Category = "Infantil"
	d.MemberNumber = "123456"
	d.Photo = models.Attachment{LocalRef: files.put("jpeg"), Name: "luis.jpg", MimeType: "image/jpeg"}
	for _, slot := range models.DocumentSlots {
		d.Documents = d.Documents.With(slot, models.Attachment{LocalRef: files.put(string(slot))})
	}
	return d
}
