package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqyim-dev/taqyim-api/internal/evaluation"
	"github.com/taqyim-dev/taqyim-api/internal/middleware"
	"github.com/taqyim-dev/taqyim-api/internal/models"
)

type fakeEvalStore struct {
	students map[string]models.Student
	subjects map[string]models.Subject
	reports  []models.Report
}

func (f *fakeEvalStore) StudentByID(id string) *models.Student {
	if st, ok := f.students[id]; ok {
		return &st
	}
	return nil
}

func (f *fakeEvalStore) SubjectByID(id string) *models.Subject {
	if sub, ok := f.subjects[id]; ok {
		return &sub
	}
	return nil
}

func (f *fakeEvalStore) AddReport(ctx context.Context, report models.Report) (*models.Report, error) {
	report.ID = fmt.Sprintf("report-%d", len(f.reports)+1)
	f.reports = append(f.reports, report)
	return &report, nil
}

type staticGenerator struct {
	text string
}

func (g staticGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.text, nil
}

var evalTeacher = models.User{ID: "t1", Name: "أ. خالد", Role: models.RoleTeacher, SubjectID: "subj1"}

func newEvalFixture() (*EvaluationHandler, *fakeEvalStore) {
	store := &fakeEvalStore{
		students: map[string]models.Student{
			"st1": {ID: "st1", Name: "سارة", Gender: models.GenderFemale, ParentWhatsapp: "966501234567", TeacherIDs: []string{"t1"}},
		},
		subjects: map[string]models.Subject{"subj1": {ID: "subj1", Name: "لغتي"}},
	}
	manager := evaluation.NewManager(store, staticGenerator{text: "رسالة تجريبية"}, nil)
	return NewEvaluationHandler(manager), store
}

func evalContext(t *testing.T, method, path string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "st1"}}
	teacher := evalTeacher
	c.Set(middleware.ContextUserKey, &teacher)
	return c, w
}

func TestEvaluationFullFlow(t *testing.T) {
	h, store := newEvalFixture()

	c, w := evalContext(t, http.MethodPost, "/evaluation", nil)
	h.Open(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = evalContext(t, http.MethodPut, "/evaluation/level", RateRequest{Evaluation: models.EvaluationExcellent})
	h.Rate(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = evalContext(t, http.MethodPost, "/evaluation/message", nil)
	h.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = evalContext(t, http.MethodPost, "/evaluation/send", nil)
	h.Send(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data evaluation.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, evaluation.StateSent, body.Data.State)
	assert.Contains(t, body.Data.WhatsappURL, "api.whatsapp.com/send")
	require.Len(t, store.reports, 1)
	assert.Equal(t, "سارة", store.reports[0].StudentName)
}

func TestEvaluationRateUnknownLevel(t *testing.T) {
	h, _ := newEvalFixture()

	c, w := evalContext(t, http.MethodPut, "/evaluation/level", RateRequest{Evaluation: "perfect"})
	h.Rate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluationSendBeforeGenerate(t *testing.T) {
	h, _ := newEvalFixture()

	c, w := evalContext(t, http.MethodPut, "/evaluation/level", RateRequest{Evaluation: models.EvaluationGood})
	h.Rate(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = evalContext(t, http.MethodPost, "/evaluation/send", nil)
	h.Send(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEvaluationRequiresIdentity(t *testing.T) {
	h, _ := newEvalFixture()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/evaluation", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "st1"}}

	h.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
