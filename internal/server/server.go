// Package server exposes the exam-prep backend over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/auth"
	"github.com/abhisek/examina/internal/llm"
	"github.com/abhisek/examina/internal/logging"
	"github.com/abhisek/examina/internal/payment"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/store"
	"github.com/abhisek/examina/internal/studyplan"
)

// Deps are the collaborators the server needs. Payments and Tutor may be
// nil; their routes then answer 503.
type Deps struct {
	Store      *store.Store
	Bank       *questionbank.Bank
	Auth       *auth.Service
	Payments   *payment.Service
	Tutor      llm.Provider
	TutorLimit int
	Log        *zap.Logger
}

// Server holds the gin engine and its dependencies.
type Server struct {
	deps   Deps
	coach  *studyplan.Coach
	engine *gin.Engine
	log    *zap.Logger
	now    func() time.Time
}

// New builds the router.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	s := &Server{
		deps:  d,
		coach: studyplan.NewCoach(d.Tutor),
		log:   d.Log,
		now:   time.Now,
	}

	r := gin.New()
	r.Use(logging.GinLogger(d.Log), logging.GinRecovery(d.Log))
	r.GET("/health", s.health)

	api := r.Group("/api", s.requireAuth)
	{
		api.GET("/tests", s.listTests)
		api.GET("/tests/:testId/questions", s.testQuestions)

		api.PUT("/results/:testId", s.putResult)
		api.GET("/results/:testId", s.getResult)
		api.GET("/performance", s.performance)

		api.PUT("/diagnostic", s.putDiagnostic)
		api.GET("/diagnostic", s.getDiagnostic)
		api.POST("/diagnostic/generate-plan", s.generatePlan)

		api.POST("/chat", s.chat)

		api.POST("/razorpay/create-order", s.createOrder)
		api.POST("/razorpay/verify", s.verifyPayment)

		api.GET("/profile", s.getProfile)
		api.PUT("/profile", s.putProfile)
		api.POST("/auth/signout", s.signOut)

		api.GET("/flashcards", s.listFlashcards)
		api.POST("/flashcards/:id/know", s.knowFlashcard)
		api.POST("/flashcards/:id/reset", s.resetFlashcard)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail writes the error body used by every route.
func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
