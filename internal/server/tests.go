package server

import (
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/sampler"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/studyplan"
)

type testEntry struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Minutes       int                  `json:"minutes"`
	Subject       questionbank.Subject `json:"subject,omitempty"`
	QuestionCount int                  `json:"questionCount"`
	Mode          string               `json:"mode"`
	Attempted     bool                 `json:"attempted"`
	Score         int                  `json:"score,omitempty"`
	Total         int                  `json:"total,omitempty"`
}

// publicQuestion is a question with its answer and explanation withheld.
type publicQuestion struct {
	ID         string               `json:"id"`
	Subject    questionbank.Subject `json:"subject"`
	Topic      string               `json:"topic"`
	Text       string               `json:"question_text"`
	Options    []string             `json:"options"`
	Difficulty int                  `json:"difficulty"`
}

func (s *Server) results(c *gin.Context) *results.Store {
	return results.New(s.userKV(c), s.log)
}

func (s *Server) listTests(c *gin.Context) {
	rs := s.results(c)
	var out []testEntry
	for _, t := range catalog.All() {
		e := testEntry{
			ID:            t.ID,
			Title:         t.Title,
			Minutes:       t.Minutes,
			Subject:       t.Subject,
			QuestionCount: t.QuestionCount,
			Mode:          t.Mode.String(),
		}
		if t.ID == catalog.Diagnostic {
			if d, ok := rs.GetDiagnostic(c.Request.Context()); ok {
				e.Attempted, e.Score, e.Total = true, d.TotalScore, d.TotalQuestions
			}
		} else if r, ok := rs.Get(c.Request.Context(), t.ID); ok {
			e.Attempted, e.Score, e.Total = true, r.Score, r.Total
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, gin.H{"tests": out})
}

func (s *Server) testQuestions(c *gin.Context) {
	t, ok := catalog.Get(c.Param("testId"))
	if !ok {
		fail(c, http.StatusNotFound, "Unknown test")
		return
	}
	qs := sampler.ForTest(s.deps.Bank, t, sampler.NewEntropyRand())
	out := make([]publicQuestion, len(qs))
	for i, q := range qs {
		out[i] = publicQuestion{
			ID:         q.ID,
			Subject:    q.Subject,
			Topic:      q.Topic,
			Text:       q.Text,
			Options:    q.Options,
			Difficulty: q.Difficulty,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"test":      testEntry{ID: t.ID, Title: t.Title, Minutes: t.Minutes, Subject: t.Subject, QuestionCount: len(out), Mode: t.Mode.String()},
		"questions": out,
	})
}

func (s *Server) putResult(c *gin.Context) {
	testID := c.Param("testId")
	if _, ok := catalog.Get(testID); !ok {
		fail(c, http.StatusNotFound, "Unknown test")
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 4<<20))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	r, err := s.results(c).PutRaw(c.Request.Context(), testID, raw)
	if err != nil {
		s.log.Warn("reject result", zap.String("test_id", testID), zap.Error(err))
		fail(c, http.StatusBadRequest, "Invalid result")
		return
	}
	c.JSON(http.StatusOK, results.Summarize(r))
}

func (s *Server) getResult(c *gin.Context) {
	r, ok := s.results(c).Get(c.Request.Context(), c.Param("testId"))
	if !ok {
		fail(c, http.StatusNotFound, "No attempt yet")
		return
	}
	c.JSON(http.StatusOK, results.Summarize(r))
}

func (s *Server) performance(c *gin.Context) {
	c.JSON(http.StatusOK, s.results(c).Rollup(c.Request.Context()))
}

func (s *Server) putDiagnostic(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	d, err := results.DecodeDiagnostic(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid diagnostic result")
		return
	}
	if err := s.results(c).PutDiagnostic(c.Request.Context(), d); err != nil {
		s.log.Error("store diagnostic", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to store diagnostic")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getDiagnostic(c *gin.Context) {
	d, ok := s.results(c).GetDiagnostic(c.Request.Context())
	if !ok {
		fail(c, http.StatusNotFound, "No diagnostic yet")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"diagnostic": d,
		"strengths":  d.Strengths(),
		"weaknesses": d.Weaknesses(),
	})
}

type planRequest struct {
	Scores map[string]scoring.SectionScore `json:"scores" binding:"required"`
}

// generatePlan personalizes the study plan. Subjects are reported in
// canonical order, followed by any others sorted by name.
func (s *Server) generatePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	var scores []studyplan.SubjectScore
	seen := map[string]bool{}
	for _, subj := range questionbank.AllSubjects {
		if sc, ok := req.Scores[string(subj)]; ok {
			scores = append(scores, studyplan.SubjectScore{Subject: string(subj), Score: sc.Score, Total: sc.Total})
			seen[string(subj)] = true
		}
	}
	for _, subj := range slices.Sorted(maps.Keys(req.Scores)) {
		if !seen[subj] {
			sc := req.Scores[subj]
			scores = append(scores, studyplan.SubjectScore{Subject: subj, Score: sc.Score, Total: sc.Total})
		}
	}

	ctx := c.Request.Context()
	plan, err := s.coach.Plan(ctx, scores, studyplan.DefaultTemplate())
	if err != nil {
		s.log.Warn("study coach unavailable", zap.Error(err))
	}
	if err := studyplan.NewProgress(s.userKV(c)).Save(ctx, plan); err != nil {
		s.log.Error("save plan", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
