// Package evaluation drives the per-student evaluation workflow: a teacher
// picks a level, generates a parent message, and dispatches it. Each visit
// is a small state machine; nothing survives closing the screen.
package evaluation

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	"github.com/taqyim-dev/taqyim-api/pkg/errors"
	"github.com/taqyim-dev/taqyim-api/pkg/genai"
)

// State names the workflow phases.
type State string

const (
	StateUnrated             State = "unrated"
	StateRatedPendingMessage State = "rated_pending_message"
	StateMessageGenerated    State = "message_generated"
	StateSent                State = "sent"
)

// Session is the workflow state for one teacher/student visit.
type Session struct {
	TeacherID   string            `json:"teacherId"`
	StudentID   string            `json:"studentId"`
	State       State             `json:"state"`
	Evaluation  models.Evaluation `json:"evaluation,omitempty"`
	Message     string            `json:"message,omitempty"`
	ReportID    string            `json:"reportId,omitempty"`
	WhatsappURL string            `json:"whatsappUrl,omitempty"`

	generating bool
}

type dataStore interface {
	StudentByID(id string) *models.Student
	SubjectByID(id string) *models.Subject
	AddReport(ctx context.Context, report models.Report) (*models.Report, error)
}

// Manager owns the live workflow sessions, keyed by teacher and student.
type Manager struct {
	store  dataStore
	gen    genai.Generator
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs a workflow manager.
func NewManager(store dataStore, gen genai.Generator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, gen: gen, logger: logger, sessions: make(map[string]*Session)}
}

func sessionKey(teacherID, studentID string) string {
	return teacherID + "/" + studentID
}

// resolve checks the visit preconditions: the student exists, is assigned
// to the teacher, and the teacher has a subject on record.
func (m *Manager) resolve(teacher models.User, studentID string) (*models.Student, *models.Subject, error) {
	student := m.store.StudentByID(studentID)
	if student == nil {
		return nil, nil, errors.Clone(errors.ErrNotFound, "student not found")
	}
	if !student.HasTeacher(teacher.ID) {
		return nil, nil, errors.Clone(errors.ErrForbidden, "student is not assigned to you")
	}
	subject := m.store.SubjectByID(teacher.SubjectID)
	if subject == nil {
		return nil, nil, errors.Clone(errors.ErrNotFound, "subject not found")
	}
	return student, subject, nil
}

// Open starts (or restarts) a visit. Revisiting always resets to Unrated.
func (m *Manager) Open(teacher models.User, studentID string) (Session, error) {
	if _, _, err := m.resolve(teacher, studentID); err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	session := &Session{TeacherID: teacher.ID, StudentID: studentID, State: StateUnrated}
	m.sessions[sessionKey(teacher.ID, studentID)] = session
	return *session, nil
}

// Get returns the current session, or a fresh Unrated view if none exists.
func (m *Manager) Get(teacher models.User, studentID string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[sessionKey(teacher.ID, studentID)]; ok {
		return *session
	}
	return Session{TeacherID: teacher.ID, StudentID: studentID, State: StateUnrated}
}

// Rate records the chosen level. Re-picking before generation replaces the
// pending level; once a message exists the choice is locked.
func (m *Manager) Rate(teacher models.User, studentID string, level models.Evaluation) (Session, error) {
	if !level.Valid() {
		return Session{}, errors.Clone(errors.ErrValidation, "unknown evaluation level")
	}
	if _, _, err := m.resolve(teacher, studentID); err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(teacher.ID, studentID)
	session, ok := m.sessions[key]
	if !ok {
		session = &Session{TeacherID: teacher.ID, StudentID: studentID, State: StateUnrated}
		m.sessions[key] = session
	}

	switch session.State {
	case StateMessageGenerated, StateSent:
		return *session, errors.Clone(errors.ErrConflict, "a message was already generated for this evaluation")
	}
	if session.generating {
		return *session, errors.Clone(errors.ErrConflict, "message generation in progress")
	}

	session.Evaluation = level
	session.State = StateRatedPendingMessage
	return *session, nil
}

// Generate composes the prompt and calls the generative-text service. On
// failure the session drops back to RatedPendingMessage and the teacher can
// re-trigger; on success the returned text is stored verbatim.
func (m *Manager) Generate(ctx context.Context, teacher models.User, studentID string) (Session, error) {
	student, subject, err := m.resolve(teacher, studentID)
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	key := sessionKey(teacher.ID, studentID)
	session, ok := m.sessions[key]
	if !ok || session.State == StateUnrated {
		m.mu.Unlock()
		return Session{}, errors.Clone(errors.ErrConflict, "pick an evaluation level first")
	}
	if session.State == StateSent || session.State == StateMessageGenerated {
		snapshot := *session
		m.mu.Unlock()
		return snapshot, errors.Clone(errors.ErrConflict, "message already generated")
	}
	if session.generating {
		snapshot := *session
		m.mu.Unlock()
		return snapshot, errors.Clone(errors.ErrConflict, "message generation in progress")
	}
	session.generating = true
	level := session.Evaluation
	m.mu.Unlock()

	prompt := buildPrompt(*student, subject.Name, level, teacher.Name)
	text, genErr := m.gen.GenerateText(ctx, prompt)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The visit may have been reset or replaced while the call was
	// outstanding; resolving onto a gone session is a no-op.
	session, ok = m.sessions[key]
	if !ok || session.State != StateRatedPendingMessage || !session.generating {
		if session != nil {
			return *session, nil
		}
		return Session{TeacherID: teacher.ID, StudentID: studentID, State: StateUnrated}, nil
	}
	session.generating = false

	if genErr != nil {
		m.logger.Warn("message generation failed",
			zap.String("student_id", studentID), zap.Error(genErr))
		return *session, genErr
	}

	session.Message = text
	session.State = StateMessageGenerated
	return *session, nil
}

// Send appends the denormalized report and returns the session carrying the
// messaging deep link. Send is terminal: invoking it again is a safe no-op
// that returns the already-sent state.
func (m *Manager) Send(ctx context.Context, teacher models.User, studentID string) (Session, error) {
	student, subject, err := m.resolve(teacher, studentID)
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	key := sessionKey(teacher.ID, studentID)
	session, ok := m.sessions[key]
	if !ok || session.State == StateUnrated || session.State == StateRatedPendingMessage {
		m.mu.Unlock()
		return Session{}, errors.Clone(errors.ErrConflict, "generate a message before sending")
	}
	if session.State == StateSent {
		snapshot := *session
		m.mu.Unlock()
		return snapshot, nil
	}
	level := session.Evaluation
	message := session.Message
	m.mu.Unlock()

	// Names are denormalized at this instant, from the current snapshot.
	report, err := m.store.AddReport(ctx, models.Report{
		StudentID:      student.ID,
		StudentName:    student.Name,
		StudentGender:  student.Gender,
		ParentWhatsapp: student.ParentWhatsapp,
		TeacherID:      teacher.ID,
		TeacherName:    teacher.Name,
		SubjectName:    subject.Name,
		Evaluation:     level,
	})
	if err != nil {
		return m.Get(teacher, studentID), err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok = m.sessions[key]
	if !ok {
		session = &Session{TeacherID: teacher.ID, StudentID: studentID}
		m.sessions[key] = session
	}
	session.State = StateSent
	session.Evaluation = level
	session.Message = message
	session.ReportID = report.ID
	session.WhatsappURL = whatsappDeepLink(student.ParentWhatsapp, message)
	return *session, nil
}

// Close discards the visit state, mirroring navigation away.
func (m *Manager) Close(teacher models.User, studentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey(teacher.ID, studentID))
}
