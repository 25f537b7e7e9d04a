package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/auth"
	"example.com/ai-travel-planner/internal/models"
	"example.com/ai-travel-planner/internal/notifications"
	"example.com/ai-travel-planner/internal/repository"
)

type structValidator struct {
	validate *validator.Validate
}

func (v structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type fakeGenerator struct {
	plan  models.TravelPlan
	err   error
	calls int
}

func (f *fakeGenerator) GeneratePlan(_ context.Context, _ models.UserInput) (models.TravelPlan, string, []byte, error) {
	f.calls++
	return f.plan, "prompt", []byte("raw"), f.err
}

type fakeLastPlans struct {
	plans   map[uuid.UUID]models.TravelPlan
	loadErr error
}

func newFakeLastPlans() *fakeLastPlans {
	return &fakeLastPlans{plans: make(map[uuid.UUID]models.TravelPlan)}
}

func (f *fakeLastPlans) Save(_ context.Context, sessionID uuid.UUID, plan models.TravelPlan) error {
	f.plans[sessionID] = plan
	return nil
}

func (f *fakeLastPlans) Load(_ context.Context, sessionID uuid.UUID) (models.TravelPlan, bool, error) {
	if f.loadErr != nil {
		return models.TravelPlan{}, false, f.loadErr
	}
	plan, ok := f.plans[sessionID]
	return plan, ok, nil
}

func (f *fakeLastPlans) Clear(_ context.Context, sessionID uuid.UUID) error {
	delete(f.plans, sessionID)
	return nil
}

type fakeHistory struct {
	stored []models.StoredPlan
}

func (f *fakeHistory) Create(_ context.Context, sessionID uuid.UUID, input models.UserInput, plan models.TravelPlan) (models.StoredPlan, error) {
	stored := models.StoredPlan{ID: uuid.New(), SessionID: sessionID, Input: input, Plan: plan, CreatedAt: time.Now().UTC()}
	f.stored = append(f.stored, stored)
	return stored, nil
}

func (f *fakeHistory) GetByID(_ context.Context, sessionID, planID uuid.UUID) (models.StoredPlan, error) {
	for _, stored := range f.stored {
		if stored.ID == planID && stored.SessionID == sessionID {
			return stored, nil
		}
	}
	return models.StoredPlan{}, repository.ErrNotFound
}

func (f *fakeHistory) ListBySession(_ context.Context, sessionID uuid.UUID, limit int) ([]models.StoredPlan, error) {
	out := make([]models.StoredPlan, 0)
	for _, stored := range f.stored {
		if stored.SessionID == sessionID && len(out) < limit {
			out = append(out, stored)
		}
	}
	return out, nil
}

type fakeGenerationLog struct {
	logs []repository.GenerationLog
}

func (f *fakeGenerationLog) LogRequest(_ context.Context, log repository.GenerationLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type planFixture struct {
	handler     *PlanHandler
	generator   *fakeGenerator
	lastPlans   *fakeLastPlans
	history     *fakeHistory
	generations *fakeGenerationLog
	hub         *notifications.Hub
	echo        *echo.Echo
}

func newPlanFixture() planFixture {
	f := planFixture{
		generator:   &fakeGenerator{plan: samplePlan()},
		lastPlans:   newFakeLastPlans(),
		history:     &fakeHistory{},
		generations: &fakeGenerationLog{},
		hub:         notifications.NewHub(),
		echo:        echo.New(),
	}
	f.echo.Validator = structValidator{validate: validator.New()}
	f.handler = NewPlanHandler(f.generator, f.lastPlans, f.history, f.generations, f.hub, "gemini", "test-model")
	return f
}

func (f planFixture) context(method, target, body string, sessionID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	c.Set(auth.ContextSessionIDKey, sessionID)
	return c, rec
}

func samplePlan() models.TravelPlan {
	return models.TravelPlan{
		Summary:         "Beach week",
		TravelOptions:   []models.TravelOption{},
		Accommodation:   models.Accommodation{Area: "Baga", Options: []models.StayOption{}},
		SuggestedPlaces: []string{},
		Itinerary: []models.DayItinerary{
			{Day: 1, Title: "Arrive", Activities: []string{"Check in", "Sunset, beach"}, EstimatedCost: 500},
			{Day: 2, Title: "Rest", Activities: []string{}, EstimatedCost: 0},
		},
		CostBreakdown: models.CostBreakdown{Travel: 3000, Stay: 2000, Food: 1000, Activities: 500, Total: 6500},
		LocalTips:     []models.LocalTip{},
	}
}

const validInput = `{"fromCity":" Delhi ","toCity":"Goa","tripType":"Friends","budget":20000,"duration":4,"interests":["Beaches","Local Culture"]}`

// TestGenerateSuccess проверяет сохранение плана, историю и событие.
func TestGenerateSuccess(t *testing.T) {
	f := newPlanFixture()
	sessionID := uuid.New()
	events, unsubscribe := f.hub.Subscribe(sessionID)
	defer unsubscribe()

	c, rec := f.context(http.MethodPost, "/api/v1/plans/generate", validInput, sessionID)
	if err := f.handler.Generate(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response GeneratedPlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.ID == nil || response.Plan.Summary != "Beach week" {
		t.Fatalf("unexpected response %+v", response)
	}

	if _, ok := f.lastPlans.plans[sessionID]; !ok {
		t.Fatal("expected last plan to be cached")
	}
	if len(f.history.stored) != 1 || f.history.stored[0].Input.FromCity != "Delhi" {
		t.Fatalf("expected trimmed input in history, got %+v", f.history.stored)
	}
	if len(f.generations.logs) != 1 || !f.generations.logs[0].Success {
		t.Fatalf("expected successful generation log, got %+v", f.generations.logs)
	}

	select {
	case event := <-events:
		if event.Type != eventPlanGenerated {
			t.Fatalf("expected %s event, got %s", eventPlanGenerated, event.Type)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be published")
	}
}

// TestGenerateFailureKinds проверяет ответ 502 с кодом ошибки и отсутствие частичного плана.
func TestGenerateFailureKinds(t *testing.T) {
	cases := map[error]string{
		ai.ErrEmptyResponse:                                   ai.KindEmptyResponse,
		fmt.Errorf("%w: unexpected end", ai.ErrMalformedJSON): ai.KindMalformedJSON,
		ai.ErrIncompleteItinerary:                             ai.KindIncompleteItinerary,
		errors.New("dial tcp: timeout"):                       ai.KindGenerationFailed,
	}

	for genErr, kind := range cases {
		f := newPlanFixture()
		f.generator.err = genErr
		sessionID := uuid.New()

		c, rec := f.context(http.MethodPost, "/api/v1/plans/generate", validInput, sessionID)
		if err := f.handler.Generate(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502 for %v, got %d", genErr, rec.Code)
		}

		var response ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if response.Kind != kind {
			t.Fatalf("expected kind %s, got %s", kind, response.Kind)
		}
		if len(f.lastPlans.plans) != 0 || len(f.history.stored) != 0 {
			t.Fatal("expected nothing to be stored on failure")
		}
		if len(f.generations.logs) != 1 || f.generations.logs[0].Success || f.generations.logs[0].ErrorMessage == nil {
			t.Fatalf("expected failed generation log, got %+v", f.generations.logs)
		}
	}
}

// TestGenerateValidation проверяет отказ без обращения к AI.
func TestGenerateValidation(t *testing.T) {
	payloads := []string{
		`{"fromCity":"","toCity":"Goa","tripType":"Solo","budget":1000,"duration":2}`,
		`{"fromCity":"Delhi","toCity":"Goa","tripType":"Pirates","budget":1000,"duration":2}`,
		`{"fromCity":"Delhi","toCity":"Goa","tripType":"Solo","budget":0,"duration":2}`,
		`{"fromCity":"Delhi","toCity":"Goa","tripType":"Solo","budget":1000,"duration":0}`,
		`{"fromCity":"Delhi","toCity":"Goa","tripType":"Solo","budget":1000,"duration":2,"interests":["Shopping"]}`,
		`{not json`,
	}

	for _, payload := range payloads {
		f := newPlanFixture()
		c, rec := f.context(http.MethodPost, "/api/v1/plans/generate", payload, uuid.New())
		if err := f.handler.Generate(c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", payload, rec.Code)
		}
		if f.generator.calls != 0 {
			t.Fatalf("expected generator not to be called for %s", payload)
		}
	}
}

// TestLastPlan проверяет чтение и очистку последнего плана.
func TestLastPlan(t *testing.T) {
	f := newPlanFixture()
	sessionID := uuid.New()

	c, rec := f.context(http.MethodGet, "/api/v1/plans/last", "", sessionID)
	_ = f.handler.Last(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without plan, got %d", rec.Code)
	}

	f.lastPlans.plans[sessionID] = samplePlan()
	c, rec = f.context(http.MethodGet, "/api/v1/plans/last", "", sessionID)
	_ = f.handler.Last(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = f.context(http.MethodDelete, "/api/v1/plans/last", "", sessionID)
	_ = f.handler.ClearLast(c)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, ok := f.lastPlans.plans[sessionID]; ok {
		t.Fatal("expected plan to be cleared")
	}
}

// TestLastPlanCacheError проверяет ответ при недоступном кэше.
func TestLastPlanCacheError(t *testing.T) {
	f := newPlanFixture()
	f.lastPlans.loadErr = errors.New("connection refused")

	c, rec := f.context(http.MethodGet, "/api/v1/plans/last", "", uuid.New())
	_ = f.handler.Last(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

// TestGetPlanScopedToSession проверяет, что чужой план не виден.
func TestGetPlanScopedToSession(t *testing.T) {
	f := newPlanFixture()
	owner := uuid.New()
	stored, _ := f.history.Create(context.Background(), owner, models.UserInput{FromCity: "Delhi", ToCity: "Goa"}, samplePlan())

	c, rec := f.context(http.MethodGet, "/api/v1/plans/"+stored.ID.String(), "", owner)
	c.SetParamNames("id")
	c.SetParamValues(stored.ID.String())
	_ = f.handler.Get(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", rec.Code)
	}

	c, rec = f.context(http.MethodGet, "/api/v1/plans/"+stored.ID.String(), "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(stored.ID.String())
	_ = f.handler.Get(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other session, got %d", rec.Code)
	}

	c, rec = f.context(http.MethodGet, "/api/v1/plans/bad", "", owner)
	c.SetParamNames("id")
	c.SetParamValues("bad")
	_ = f.handler.Get(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}

// TestListPlans проверяет краткую историю планов.
func TestListPlans(t *testing.T) {
	f := newPlanFixture()
	sessionID := uuid.New()
	_, _ = f.history.Create(context.Background(), sessionID, models.UserInput{FromCity: "Delhi", ToCity: "Goa", Duration: 4}, samplePlan())

	c, rec := f.context(http.MethodGet, "/api/v1/plans?limit=5", "", sessionID)
	_ = f.handler.List(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response []PlanSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response) != 1 || response[0].ToCity != "Goa" || response[0].Total != 6500 {
		t.Fatalf("unexpected summaries %+v", response)
	}
}

// TestParseLimit проверяет разбор лимита списка.
func TestParseLimit(t *testing.T) {
	if limit, err := parseLimit(""); err != nil || limit != defaultListLimit {
		t.Fatalf("expected default limit, got %d (%v)", limit, err)
	}
	if limit, err := parseLimit("500"); err != nil || limit != maxListLimit {
		t.Fatalf("expected capped limit, got %d (%v)", limit, err)
	}
	if _, err := parseLimit("-1"); err == nil {
		t.Fatal("expected error for negative limit")
	}
	if _, err := parseLimit("ten"); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
}

// TestWriteItineraryCSV проверяет строки по занятиям и экранирование.
func TestWriteItineraryCSV(t *testing.T) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeItineraryCSV(writer, samplePlan()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(records))
	}
	if records[2][2] != "Sunset, beach" || records[2][3] != "500" {
		t.Fatalf("unexpected row %v", records[2])
	}
	if records[3][0] != "2" || records[3][2] != "" {
		t.Fatalf("expected empty activity row for day without activities, got %v", records[3])
	}
}

// TestWriteCostsCSV проверяет выгрузку разбивки расходов.
func TestWriteCostsCSV(t *testing.T) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeCostsCSV(writer, samplePlan()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(buf.String(), "total,6500") {
		t.Fatalf("expected total row, got %s", buf.String())
	}
}
