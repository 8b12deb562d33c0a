package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taqyim-dev/taqyim-api/internal/docstore"
	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
)

// SeedCatalog carries the fixed demo data written into a fresh store plus
// the well-known password given to every seeded account.
type SeedCatalog struct {
	Enabled         bool
	DefaultPassword string
	Subjects        []seedSubject
	Users           []seedUser
	Students        []seedStudent
	Classrooms      []seedClassroom
}

type seedSubject struct {
	Key  string
	Name string
}

type seedUser struct {
	Name       string
	Email      string
	Role       models.UserRole
	SubjectKey string
	TeacherKey string
}

type seedStudent struct {
	Key            string
	Name           string
	Gender         models.Gender
	ParentWhatsapp string
	TeacherKeys    []string
}

type seedClassroom struct {
	Name        string
	StudentKeys []string
}

// DefaultSeedCatalog returns the fixed catalog: one admin, three teachers,
// three subjects, four students and two classrooms.
func DefaultSeedCatalog(enabled bool, defaultPassword string) SeedCatalog {
	return SeedCatalog{
		Enabled:         enabled,
		DefaultPassword: defaultPassword,
		Subjects: []seedSubject{
			{Key: "subj1", Name: "لغتي"},
			{Key: "subj2", Name: "الرياضيات"},
			{Key: "subj3", Name: "القرآن الكريم"},
		},
		Users: []seedUser{
			{Name: "المدير العام", Email: "admin@example.com", Role: models.RoleAdmin},
			{Name: "أ. خالد", Email: "teacher1@example.com", Role: models.RoleTeacher, SubjectKey: "subj1", TeacherKey: "teacher1"},
			{Name: "أ. فاطمة", Email: "teacher2@example.com", Role: models.RoleTeacher, SubjectKey: "subj2", TeacherKey: "teacher2"},
			{Name: "أ. علي", Email: "teacher3@example.com", Role: models.RoleTeacher, SubjectKey: "subj3", TeacherKey: "teacher3"},
		},
		Students: []seedStudent{
			{Key: "stud1", Name: "سارة", Gender: models.GenderFemale, ParentWhatsapp: "966501234567", TeacherKeys: []string{"teacher1", "teacher2"}},
			{Key: "stud2", Name: "أحمد", Gender: models.GenderMale, ParentWhatsapp: "966501234568", TeacherKeys: []string{"teacher1"}},
			{Key: "stud3", Name: "نورة", Gender: models.GenderFemale, ParentWhatsapp: "966501234569", TeacherKeys: []string{"teacher2", "teacher3"}},
			{Key: "stud4", Name: "محمد", Gender: models.GenderMale, ParentWhatsapp: "966501234570", TeacherKeys: []string{"teacher1", "teacher3"}},
		},
		Classrooms: []seedClassroom{
			{Name: "الصف الأول", StudentKeys: []string{"stud1", "stud2"}},
			{Name: "الصف الثاني", StudentKeys: []string{"stud3", "stud4"}},
		},
	}
}

// runSeed populates a fresh store. Credential and profile writes happen
// before the batch and are not rolled back if the batch later fails, so a
// failed seed can leave orphaned credentials behind; re-running is safe
// because duplicate credentials are swallowed.
func (s *Store) runSeed(ctx context.Context) error {
	var writes []docstore.Write

	// Subjects: assign IDs up front so teacher profiles can reference them.
	subjectMap := make(map[string]string, len(s.seed.Subjects))
	for _, sub := range s.seed.Subjects {
		id := uuid.NewString()
		subjectMap[sub.Key] = id
		data, err := marshalDoc(models.Subject{Name: sub.Name})
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode seed subject")
		}
		writes = append(writes, docstore.Write{Op: docstore.OpSet, Collection: docstore.CollectionSubjects, ID: id, Data: data})
	}

	// Users: credential first, profile at the identity-assigned ID. A
	// duplicate credential means this environment was seeded before; any
	// other failure skips just that user.
	teacherMap := make(map[string]string)
	for _, su := range s.seed.Users {
		credID, err := s.creds.CreateCredential(ctx, su.Email, s.seed.DefaultPassword)
		if err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrDuplicateCredential.Code {
				s.logger.Info("seed credential already exists, skipping", zap.String("email", su.Email))
				continue
			}
			s.logger.Error("failed to create seed credential, skipping user",
				zap.String("email", su.Email), zap.Error(err))
			continue
		}

		profile := models.User{Name: su.Name, Email: su.Email, Role: su.Role}
		if su.SubjectKey != "" {
			profile.SubjectID = subjectMap[su.SubjectKey]
		}
		data, err := marshalDoc(profile)
		if err != nil {
			s.logger.Error("failed to encode seed user, skipping", zap.String("email", su.Email), zap.Error(err))
			continue
		}
		if err := s.docs.CreateWithID(ctx, docstore.CollectionUsers, credID, data); err != nil {
			s.logger.Error("failed to write seed profile, skipping", zap.String("email", su.Email), zap.Error(err))
			continue
		}

		if su.TeacherKey != "" {
			teacherMap[su.TeacherKey] = credID
		}
	}

	// Students: remap teacher placeholders; teachers whose creation failed
	// are silently dropped from the list.
	studentMap := make(map[string]string, len(s.seed.Students))
	for _, st := range s.seed.Students {
		teacherIDs := make([]string, 0, len(st.TeacherKeys))
		for _, key := range st.TeacherKeys {
			if id, ok := teacherMap[key]; ok {
				teacherIDs = append(teacherIDs, id)
			}
		}
		id := uuid.NewString()
		studentMap[st.Key] = id
		data, err := marshalDoc(models.Student{Name: st.Name, Gender: st.Gender, ParentWhatsapp: st.ParentWhatsapp, TeacherIDs: teacherIDs})
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode seed student")
		}
		writes = append(writes, docstore.Write{Op: docstore.OpSet, Collection: docstore.CollectionStudents, ID: id, Data: data})
	}

	// Classrooms: remap student placeholders.
	for _, cls := range s.seed.Classrooms {
		studentIDs := make([]string, 0, len(cls.StudentKeys))
		for _, key := range cls.StudentKeys {
			if id, ok := studentMap[key]; ok {
				studentIDs = append(studentIDs, id)
			}
		}
		data, err := marshalDoc(models.Classroom{Name: cls.Name, StudentIDs: studentIDs})
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode seed classroom")
		}
		writes = append(writes, docstore.Write{Op: docstore.OpSet, Collection: docstore.CollectionClassrooms, ID: uuid.NewString(), Data: data})
	}

	// Subjects, students and classrooms land as one atomic batch. The
	// credential and profile writes above are already committed and stay
	// behind if this fails.
	if err := s.docs.Batch(ctx, writes); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "seed batch commit failed")
	}

	// The flag is recorded only after the batch commits.
	if err := s.flag.Set(ctx); err != nil {
		s.logger.Warn("failed to record seeded flag", zap.Error(err))
	}

	s.logger.Info("seed procedure complete",
		zap.Int("subjects", len(s.seed.Subjects)),
		zap.Int("users", len(teacherMap)+1),
		zap.Int("students", len(s.seed.Students)),
		zap.Int("classrooms", len(s.seed.Classrooms)))
	return nil
}
