package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examina/internal/auth"
	"github.com/abhisek/examina/internal/llm"
	"github.com/abhisek/examina/internal/payment"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/store"
	"github.com/abhisek/examina/internal/studyplan"
	"github.com/abhisek/examina/internal/tutor"
)

type stubGateway struct{}

func (stubGateway) CreateOrder(context.Context, int) (string, error) { return "order_test", nil }

type testEnv struct {
	srv   *Server
	store *store.Store
	auth  *auth.Authenticator
	mock  *llm.MockProvider
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	a, err := auth.NewAuthenticator("server-test-secret")
	require.NoError(t, err)
	token, err := a.Issue("user-1", "asha@example.com", time.Hour)
	require.NoError(t, err)

	mock := llm.NewMockProvider()
	srv := New(Deps{
		Store:    st,
		Bank:     questionbank.Default(),
		Auth:     auth.NewService(a, st.ProfileRepo(), st.TokenRepo()),
		Payments: payment.NewService(stubGateway{}, "rzp-secret", st.PaymentRepo(), st.ProfileRepo(), nil),
		Tutor:    mock,
	})
	return &testEnv{srv: srv, store: st, auth: a, mock: mock, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case []byte:
			buf.Write(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func sampleResult(testID string) *scoring.Result {
	qs := questionbank.Default().Filter(questionbank.English, "")[:4]
	answers := []int{qs[0].CorrectAnswer, qs[1].CorrectAnswer, qs[2].CorrectAnswer, scoring.NoAnswer}
	return scoring.Score(scoring.Attempt{
		TestID:       testID,
		Questions:    qs,
		Answers:      answers,
		QuestionTime: []int{10, 20, 30, 0},
		Elapsed:      60,
	}, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
}

func TestHealthNeedsNoAuth(t *testing.T) {
	e := newTestEnv(t)
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	e := newTestEnv(t)

	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tests", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	e.token = "garbage"
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/tests", nil).Code)
}

func TestQuestionsWithholdAnswers(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/api/tests/diagnostic/questions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, w.Body.String(), "correct_answer")
	assert.NotContains(t, w.Body.String(), "explanation")
	qs := decode(t, w)["questions"].([]any)
	assert.Len(t, qs, 15)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/tests/nope/questions", nil).Code)
}

func TestResultRoundTrip(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/results/english-practice", nil).Code)

	w := e.do(t, http.MethodPut, "/api/results/english-practice", sampleResult("english-practice"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/results/english-practice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 75, body["percent"])
	assert.EqualValues(t, 70, body["percentile"])

	w = e.do(t, http.MethodGet, "/api/performance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	perf := decode(t, w)
	assert.EqualValues(t, 3, perf["score"])
	assert.EqualValues(t, 1, perf["testsTaken"])

	w = e.do(t, http.MethodGet, "/api/tests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attempted":true`)
}

func TestPutResultRejectsInvalid(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/api/results/gk-practice", []byte(`{"score":1}`)).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPut, "/api/results/unknown", sampleResult("unknown")).Code)

	w := e.do(t, http.MethodPut, "/api/results/gk-practice", sampleResult("english-practice"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/results/gk-practice", nil).Code)
}

func TestDiagnosticAndPlan(t *testing.T) {
	e := newTestEnv(t)

	d := scoring.DiagnosticFrom(sampleResult("diagnostic"))
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/diagnostic", d).Code)
	w := e.do(t, http.MethodGet, "/api/diagnostic", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"strengths":["english"]`)

	e.mock.AddResponse(llm.MockJSON(studyplan.CoachNote{FocusTopics: []string{"Percentages"}, WeeklyGoal: "Two maths sets"}))
	w = e.do(t, http.MethodPost, "/api/diagnostic/generate-plan", map[string]any{
		"scores": map[string]any{
			"maths":   map[string]int{"score": 1, "total": 4},
			"english": map[string]int{"score": 4, "total": 4},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode(t, w)["plan"].(map[string]any)
	assert.Equal(t, []any{"maths"}, plan["weak_subjects"])
	assert.Equal(t, []any{"english"}, plan["strong_subjects"])
	assert.Contains(t, plan["recommendation"], "Focus extra time on maths.")
	assert.NotNil(t, plan["coach"])

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/diagnostic/generate-plan", []byte(`{}`)).Code)
}

func TestChat(t *testing.T) {
	e := newTestEnv(t)
	e.mock.AddResponse(llm.MockText("Use the SVO order."))

	w := e.do(t, http.MethodPost, "/api/chat", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "How do I spot errors?"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Use the SVO order.", body["message"])
	assert.EqualValues(t, tutor.FreeMessageLimit-1, body["remaining"])

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/chat", map[string]any{"messages": "hi"}).Code)

	w = e.do(t, http.MethodPost, "/api/chat", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "again"}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, tutor.ApologyMessage, decode(t, w)["message"])
}

func TestChatLimitReached(t *testing.T) {
	e := newTestEnv(t)
	kv := e.store.KV("user-1")
	today := tutor.Day(time.Now())
	require.NoError(t, kv.Put(context.Background(), "tutor-usage", []byte(`{"date":"`+today+`","count":5}`)))

	w := e.do(t, http.MethodPost, "/api/chat", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Zero(t, e.mock.CallCount())
}

func TestChatNotConfigured(t *testing.T) {
	e := newTestEnv(t)
	e.srv.deps.Tutor = nil
	w := e.do(t, http.MethodPost, "/api/chat", map[string]any{"messages": []any{}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPaymentFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/razorpay/create-order", map[string]int{"amount": 2900})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "order_test", decode(t, w)["orderId"])

	w = e.do(t, http.MethodPost, "/api/razorpay/verify", map[string]string{
		"razorpay_order_id":   "order_test",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "bad",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid signature", decode(t, w)["error"])

	w = e.do(t, http.MethodPost, "/api/razorpay/verify", map[string]string{
		"razorpay_order_id":   "order_test",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign("order_test", "pay_1", "rzp-secret"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["premium"])

	w = e.do(t, http.MethodPost, "/api/razorpay/verify", map[string]string{
		"razorpay_order_id":   "order_test",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign("order_test", "pay_1", "rzp-secret"),
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVerifyUnknownOrder(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/razorpay/verify", map[string]string{
		"razorpay_order_id":   "order_other",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign("order_other", "pay_1", "rzp-secret"),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileUpdateAndSignOut(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPut, "/api/profile", map[string]any{"name": "Asha", "subscription_status": "premium"})
	require.Equal(t, http.StatusOK, w.Code)
	p := decode(t, w)["profile"].(map[string]any)
	assert.Equal(t, "Asha", p["name"])
	assert.Equal(t, store.SubscriptionFree, p["subscription_status"])
	assert.EqualValues(t, 1, p["streak_count"])

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/auth/signout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/profile", nil).Code)
}

func TestFlashcards(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/flashcards?subject=gk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cards := decode(t, w)["flashcards"].([]any)
	require.NotEmpty(t, cards)
	for _, c := range cards {
		assert.Equal(t, "gk", c.(map[string]any)["subject"])
	}

	for range 4 {
		w = e.do(t, http.MethodPost, "/api/flashcards/fc-gk-1/know", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	body := decode(t, w)
	assert.EqualValues(t, 3, body["level"])
	assert.EqualValues(t, 1, body["mastered"])

	w = e.do(t, http.MethodPost, "/api/flashcards/fc-gk-1/reset", nil)
	assert.EqualValues(t, 0, decode(t, w)["level"])

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/flashcards/nope/know", nil).Code)
}
