package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taqyim-dev/taqyim-api/internal/docstore"
	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
)

// UnknownName is the sentinel returned by the name-lookup helpers when the
// referenced record is absent. Lookups never fail outward.
const UnknownName = "غير معروف"

// CredentialCreator is the slice of the identity service the store needs
// for seeding and for admin user creation.
type CredentialCreator interface {
	CreateCredential(ctx context.Context, email, password string) (string, error)
}

// Store maintains an eventually-fresh in-memory mirror of the five remote
// collections. It is the sole writer of the snapshot: every mutation writes
// through to the remote store and then re-fetches everything, so the next
// read observes the write plus any concurrent external changes.
type Store struct {
	docs   docstore.Store
	flag   FlagStore
	creds  CredentialCreator
	logger *zap.Logger
	seed   SeedCatalog

	onRefresh func(time.Duration)

	mu    sync.RWMutex
	snap  Snapshot
	ready bool
}

// SetRefreshObserver installs a callback invoked with the duration of every
// successful refresh. Must be called before Initialize.
func (s *Store) SetRefreshObserver(fn func(time.Duration)) {
	s.onRefresh = fn
}

// New constructs a domain store. Initialize must be called before serving.
func New(docs docstore.Store, flag FlagStore, creds CredentialCreator, seed SeedCatalog, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{docs: docs, flag: flag, creds: creds, seed: seed, logger: logger}
}

// Initialize fetches all collections and, on a fresh environment, runs the
// seed procedure followed by a second refresh. Seeding requires both an
// absent local flag and an empty user collection; the empty-collection test
// is the correctness precondition, the flag only a shortcut.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	seeded, err := s.flag.Get(ctx)
	if err != nil {
		s.logger.Warn("seeded flag unavailable, falling back to collection probe", zap.Error(err))
		seeded = false
	}

	s.mu.RLock()
	usersEmpty := len(s.snap.Users) == 0
	s.mu.RUnlock()

	if !seeded && usersEmpty && s.seed.Enabled {
		s.logger.Info("user collection empty, running seed procedure")
		if err := s.runSeed(ctx); err != nil {
			return err
		}
		if err := s.Refresh(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	return nil
}

// Ready reports whether initialization has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Refresh fetches the five collections concurrently and swaps the snapshot
// only when every fetch succeeded, so a failed refresh never corrupts the
// current view.
func (s *Store) Refresh(ctx context.Context) error {
	var next Snapshot
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetchCollection(gctx, s.docs, s.logger, docstore.CollectionUsers, &next.Users) })
	g.Go(func() error { return fetchCollection(gctx, s.docs, s.logger, docstore.CollectionStudents, &next.Students) })
	g.Go(func() error { return fetchCollection(gctx, s.docs, s.logger, docstore.CollectionSubjects, &next.Subjects) })
	g.Go(func() error { return fetchCollection(gctx, s.docs, s.logger, docstore.CollectionClassrooms, &next.Classrooms) })
	g.Go(func() error { return fetchCollection(gctx, s.docs, s.logger, docstore.CollectionReports, &next.Reports) })
	if err := g.Wait(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch collections")
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	if s.onRefresh != nil {
		s.onRefresh(time.Since(start))
	}
	return nil
}

type identifiable interface {
	models.User | models.Student | models.Subject | models.Classroom | models.Report
}

func fetchCollection[T identifiable](ctx context.Context, docs docstore.Store, logger *zap.Logger, collection string, out *[]T) error {
	found, err := docs.List(ctx, collection)
	if err != nil {
		return err
	}
	items := make([]T, 0, len(found))
	for _, doc := range found {
		var item T
		if err := json.Unmarshal(doc.Data, &item); err != nil {
			logger.Warn("skipping malformed document",
				zap.String("collection", collection), zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		setID(&item, doc.ID)
		items = append(items, item)
	}
	*out = items
	return nil
}

func setID[T identifiable](item *T, id string) {
	switch v := any(item).(type) {
	case *models.User:
		v.ID = id
	case *models.Student:
		v.ID = id
	case *models.Subject:
		v.ID = id
	case *models.Classroom:
		v.ID = id
	case *models.Report:
		v.ID = id
	}
}

func marshalDoc(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// --- snapshot reads -------------------------------------------------------

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Users returns the user collection snapshot.
func (s *Store) Users() []models.User {
	return s.Snapshot().Users
}

// Students returns the student collection snapshot.
func (s *Store) Students() []models.Student {
	return s.Snapshot().Students
}

// Subjects returns the subject collection snapshot.
func (s *Store) Subjects() []models.Subject {
	return s.Snapshot().Subjects
}

// Classrooms returns the classroom collection snapshot.
func (s *Store) Classrooms() []models.Classroom {
	return s.Snapshot().Classrooms
}

// Reports returns the report log snapshot.
func (s *Store) Reports() []models.Report {
	return s.Snapshot().Reports
}

// UserByID returns the profile with the given ID, or nil.
func (s *Store) UserByID(id string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.snap.Users {
		if u.ID == id {
			copy := u
			return &copy
		}
	}
	return nil
}

// StudentByID returns the student with the given ID, or nil.
func (s *Store) StudentByID(id string) *models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.snap.Students {
		if st.ID == id {
			copy := st
			copy.TeacherIDs = append([]string(nil), st.TeacherIDs...)
			return &copy
		}
	}
	return nil
}

// SubjectByID returns the subject with the given ID, or nil.
func (s *Store) SubjectByID(id string) *models.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.snap.Subjects {
		if sub.ID == id {
			copy := sub
			return &copy
		}
	}
	return nil
}

// StudentsForTeacher returns the students whose teacher set contains the
// given teacher.
func (s *Store) StudentsForTeacher(teacherID string) []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Student
	for _, st := range s.snap.Students {
		if st.HasTeacher(teacherID) {
			st.TeacherIDs = append([]string(nil), st.TeacherIDs...)
			out = append(out, st)
		}
	}
	return out
}

// TeacherName resolves a teacher ID to a display name.
func (s *Store) TeacherName(id string) string {
	if u := s.UserByID(id); u != nil {
		return u.Name
	}
	return UnknownName
}

// SubjectName resolves a subject ID to a display name.
func (s *Store) SubjectName(id string) string {
	if sub := s.SubjectByID(id); sub != nil {
		return sub.Name
	}
	return UnknownName
}

// StudentName resolves a student ID to a display name.
func (s *Store) StudentName(id string) string {
	if st := s.StudentByID(id); st != nil {
		return st.Name
	}
	return UnknownName
}

// --- mutations ------------------------------------------------------------

// AddUserRequest captures fields for creating a user profile together with
// its login credential.
type AddUserRequest struct {
	Name      string          `json:"name" validate:"required"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6"`
	Role      models.UserRole `json:"role" validate:"required"`
	SubjectID string          `json:"subjectId"`
}

// AddUser creates an authentication credential and writes the profile
// record at the identity-assigned ID, then refreshes.
func (s *Store) AddUser(ctx context.Context, req AddUserRequest) (*models.User, error) {
	id, err := s.creds.CreateCredential(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{Name: req.Name, Email: req.Email, Role: req.Role, SubjectID: req.SubjectID}
	data, err := marshalDoc(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode user")
	}
	if err := s.docs.CreateWithID(ctx, docstore.CollectionUsers, id, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to create user")
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

// UpdateUser replaces a profile record, then refreshes.
func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	data, err := marshalDoc(models.User{Name: user.Name, Email: user.Email, Role: user.Role, SubjectID: user.SubjectID})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode user")
	}
	if err := s.docs.Update(ctx, docstore.CollectionUsers, user.ID, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to update user")
	}
	return s.Refresh(ctx)
}

// DeleteUser removes the profile record, then clears the deleted ID from
// every student's teacher set as a separate batched update. The two steps
// are not transactional: a crash in between leaves a dangling reference.
// The underlying authentication credential is never removed — credential
// deletion needs a trusted execution context this service does not have.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, docstore.CollectionUsers, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to delete user")
	}

	docs, err := s.docs.List(ctx, docstore.CollectionStudents)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to scan students for cleanup")
	}

	var writes []docstore.Write
	for _, doc := range docs {
		var st models.Student
		if err := json.Unmarshal(doc.Data, &st); err != nil {
			continue
		}
		if !st.HasTeacher(id) {
			continue
		}
		remaining := make([]string, 0, len(st.TeacherIDs))
		for _, tid := range st.TeacherIDs {
			if tid != id {
				remaining = append(remaining, tid)
			}
		}
		st.TeacherIDs = remaining
		st.ID = ""
		data, err := marshalDoc(st)
		if err != nil {
			continue
		}
		writes = append(writes, docstore.Write{Op: docstore.OpSet, Collection: docstore.CollectionStudents, ID: doc.ID, Data: data})
	}

	if len(writes) > 0 {
		if err := s.docs.Batch(ctx, writes); err != nil {
			return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to detach teacher from students")
		}
	}

	return s.Refresh(ctx)
}

// AddStudent creates a student record, then refreshes.
func (s *Store) AddStudent(ctx context.Context, student models.Student) (*models.Student, error) {
	student.ID = ""
	if student.TeacherIDs == nil {
		student.TeacherIDs = []string{}
	}
	data, err := marshalDoc(student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode student")
	}
	id, err := s.docs.Create(ctx, docstore.CollectionStudents, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to create student")
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	student.ID = id
	return &student, nil
}

// UpdateStudent replaces a student record, then refreshes.
func (s *Store) UpdateStudent(ctx context.Context, student models.Student) error {
	id := student.ID
	student.ID = ""
	data, err := marshalDoc(student)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode student")
	}
	if err := s.docs.Update(ctx, docstore.CollectionStudents, id, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to update student")
	}
	return s.Refresh(ctx)
}

// DeleteStudent removes a student record, then refreshes.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, docstore.CollectionStudents, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to delete student")
	}
	return s.Refresh(ctx)
}

// AddSubject creates a subject record, then refreshes.
func (s *Store) AddSubject(ctx context.Context, subject models.Subject) (*models.Subject, error) {
	subject.ID = ""
	data, err := marshalDoc(subject)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode subject")
	}
	id, err := s.docs.Create(ctx, docstore.CollectionSubjects, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to create subject")
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	subject.ID = id
	return &subject, nil
}

// UpdateSubject replaces a subject record, then refreshes.
func (s *Store) UpdateSubject(ctx context.Context, subject models.Subject) error {
	id := subject.ID
	subject.ID = ""
	data, err := marshalDoc(subject)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode subject")
	}
	if err := s.docs.Update(ctx, docstore.CollectionSubjects, id, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to update subject")
	}
	return s.Refresh(ctx)
}

// DeleteSubject removes a subject record, then refreshes.
func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, docstore.CollectionSubjects, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to delete subject")
	}
	return s.Refresh(ctx)
}

// AddClassroom creates a classroom record, then refreshes.
func (s *Store) AddClassroom(ctx context.Context, classroom models.Classroom) (*models.Classroom, error) {
	classroom.ID = ""
	if classroom.StudentIDs == nil {
		classroom.StudentIDs = []string{}
	}
	data, err := marshalDoc(classroom)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode classroom")
	}
	id, err := s.docs.Create(ctx, docstore.CollectionClassrooms, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to create classroom")
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	classroom.ID = id
	return &classroom, nil
}

// UpdateClassroom replaces a classroom record, then refreshes.
func (s *Store) UpdateClassroom(ctx context.Context, classroom models.Classroom) error {
	id := classroom.ID
	classroom.ID = ""
	data, err := marshalDoc(classroom)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode classroom")
	}
	if err := s.docs.Update(ctx, docstore.CollectionClassrooms, id, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to update classroom")
	}
	return s.Refresh(ctx)
}

// DeleteClassroom removes a classroom record, then refreshes.
func (s *Store) DeleteClassroom(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, docstore.CollectionClassrooms, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to delete classroom")
	}
	return s.Refresh(ctx)
}

// AddReport appends a report record. CreatedAt is stamped here; the record
// is never mutated or deleted afterwards.
func (s *Store) AddReport(ctx context.Context, report models.Report) (*models.Report, error) {
	report.ID = ""
	report.CreatedAt = time.Now().UTC()
	data, err := marshalDoc(report)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode report")
	}
	id, err := s.docs.Create(ctx, docstore.CollectionReports, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to create report")
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	report.ID = id
	return &report, nil
}
