package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"sim-talenta-gtk-api/models"
)

// fakeImportStore is an in-memory GtkImportStore and SekolahImportStore.
type fakeImportStore struct {
	mu sync.Mutex

	sekolah    []models.Sekolah
	findErr    error
	gtkNames   map[string]bool
	npsns      map[string]bool
	existsErr  error
	createErr  map[string]error
	lockErr    error
	lockCalls  []string
	released   int
	createdGtk []*models.Gtk
	users      []*models.User
	created    []*models.Sekolah
}

func newFakeImportStore(sekolah ...models.Sekolah) *fakeImportStore {
	return &fakeImportStore{
		sekolah:   sekolah,
		gtkNames:  map[string]bool{},
		npsns:     map[string]bool{},
		createErr: map[string]error{},
	}
}

func (s *fakeImportStore) AcquireImportLock(ctx context.Context, name string) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockCalls = append(s.lockCalls, name)
	if s.lockErr != nil {
		return nil, s.lockErr
	}
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.released++
		return nil
	}, nil
}

func (s *fakeImportStore) FindSekolahByName(ctx context.Context, query string) (*models.Sekolah, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.sekolah {
		if s.sekolah[i].Nama == query {
			return &s.sekolah[i], nil
		}
	}
	return nil, ErrSekolahNotFound
}

func (s *fakeImportStore) GtkNameExists(ctx context.Context, nama string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.gtkNames[nama], nil
}

func (s *fakeImportStore) CreateGtkWithUser(ctx context.Context, user *models.User, gtk *models.Gtk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.createErr[gtk.NamaLengkap]; err != nil {
		return err
	}
	s.gtkNames[gtk.NamaLengkap] = true
	s.users = append(s.users, user)
	s.createdGtk = append(s.createdGtk, gtk)
	return nil
}

func (s *fakeImportStore) SekolahNpsnExists(ctx context.Context, npsn string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.npsns[npsn], nil
}

func (s *fakeImportStore) CreateSekolah(ctx context.Context, sekolah *models.Sekolah) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.createErr[sekolah.Npsn]; err != nil {
		return err
	}
	s.npsns[sekolah.Npsn] = true
	s.created = append(s.created, sekolah)
	return nil
}

// fakeRunRecorder captures the bookkeeping calls of a run.
type fakeRunRecorder struct {
	startErr error
	starts   []ImportRunStart
	finished []*ImportRunResult
	errs     []error
}

func (r *fakeRunRecorder) Start(ctx context.Context, start ImportRunStart) (*models.ImportRun, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.starts = append(r.starts, start)
	return &models.ImportRun{ID: uint(len(r.starts)), Kind: start.Kind, Status: models.ImportStatusRunning}, nil
}

func (r *fakeRunRecorder) Finish(ctx context.Context, runID uint, result *ImportRunResult, runErr error, duration time.Duration) error {
	r.finished = append(r.finished, result)
	r.errs = append(r.errs, runErr)
	return nil
}

type fakeReporter struct {
	kinds   []string
	results []*ImportRunResult
}

func (r *fakeReporter) Report(ctx context.Context, kind string, input ImportInput, result *ImportRunResult) error {
	r.kinds = append(r.kinds, kind)
	r.results = append(r.results, result)
	return errors.New("smtp down")
}

// countStatus counts the non-terminal entries with the given status.
func countStatus(entries []ImportLogEntry, status ImportLogStatus) int {
	n := 0
	for _, e := range entries {
		if e.Step != DoneStep && e.Status == status {
			n++
		}
	}
	return n
}

func rowEntries(entries []ImportLogEntry) []ImportLogEntry {
	var out []ImportLogEntry
	for _, e := range entries {
		if len(e.Step) > 6 && e.Step[:6] == "Baris " {
			out = append(out, e)
		}
	}
	return out
}

func fixedClock(start time.Time) func() time.Time {
	return func() time.Time { return start }
}
