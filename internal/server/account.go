package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/flashcards"
	"github.com/abhisek/examina/internal/payment"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/tutor"
)

type chatRequest struct {
	Messages []tutor.Message `json:"messages"`
}

// chat answers the last user message given the earlier ones.
func (s *Server) chat(c *gin.Context) {
	if s.deps.Tutor == nil {
		fail(c, http.StatusServiceUnavailable, "AI service is not configured. Please check your API key.")
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	last := req.Messages[len(req.Messages)-1]
	history := req.Messages[:len(req.Messages)-1]

	svc := tutor.NewService(s.deps.Tutor, tutor.NewUsageStore(s.userKV(c)), tutor.WithLimit(s.deps.TutorLimit))
	premium := currentProfile(c).IsPremium(s.now())

	reply, err := svc.Send(c.Request.Context(), history, last.Content, premium)
	switch {
	case errors.Is(err, tutor.ErrLimitReached):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
			"error":     "You have used all your free messages today. Upgrade for unlimited AI tutoring!",
			"remaining": 0,
		})
	case err != nil:
		s.log.Error("tutor reply failed", zap.String("user_id", currentUser(c).ID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to get response from AI tutor. Please try again.",
			"message":   reply.Message,
			"remaining": reply.Remaining,
		})
	default:
		c.JSON(http.StatusOK, reply)
	}
}

type orderRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) createOrder(c *gin.Context) {
	if s.deps.Payments == nil {
		fail(c, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}
	req := orderRequest{Amount: payment.PremiumPrice}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			fail(c, http.StatusBadRequest, "Invalid request format")
			return
		}
	}
	id, err := s.deps.Payments.CreateOrder(c.Request.Context(), currentUser(c).ID, req.Amount)
	if err != nil {
		s.log.Error("razorpay order error", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to create order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": id})
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

func (s *Server) verifyPayment(c *gin.Context) {
	if s.deps.Payments == nil {
		fail(c, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	profile, err := s.deps.Payments.Verify(c.Request.Context(), currentUser(c).ID, req.OrderID, req.PaymentID, req.Signature)
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		fail(c, http.StatusBadRequest, "Invalid signature")
		return
	case errors.Is(err, payment.ErrUnknownOrder):
		fail(c, http.StatusNotFound, "Order not found")
		return
	case errors.Is(err, payment.ErrAlreadyPaid):
		fail(c, http.StatusConflict, "Payment already verified")
		return
	case err != nil:
		s.log.Error("payment verification error", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Verification failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription_expires_at": profile.SubscriptionExpiresAt})
}

func (s *Server) getProfile(c *gin.Context) {
	p := currentProfile(c)
	c.JSON(http.StatusOK, gin.H{"profile": p, "premium": p.IsPremium(s.now())})
}

type profileUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	ExamType  *string `json:"exam_type"`
}

// putProfile updates the user-editable fields. Subscription and streak
// fields are server-owned and ignored.
func (s *Server) putProfile(c *gin.Context) {
	var req profileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	p := currentProfile(c)
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}
	if req.ExamType != nil && *req.ExamType != "" {
		p.ExamType = *req.ExamType
	}
	if err := s.deps.Auth.UpsertProfile(c.Request.Context(), p); err != nil {
		s.log.Error("update profile", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (s *Server) signOut(c *gin.Context) {
	if err := s.deps.Auth.SignOut(c.Request.Context(), c.GetString(ctxToken)); err != nil {
		s.log.Error("sign out", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type flashcardView struct {
	flashcards.Card
	Level int `json:"level"`
}

func (s *Server) listFlashcards(c *gin.Context) {
	m, err := flashcards.NewStore(s.userKV(c)).Load(c.Request.Context())
	if err != nil {
		s.log.Error("load mastery", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load flashcards")
		return
	}
	cards := flashcards.BySubject(flashcards.Deck(), questionbank.Subject(c.Query("subject")))
	out := make([]flashcardView, len(cards))
	for i, card := range cards {
		out[i] = flashcardView{Card: card, Level: m.Level(card.ID)}
	}
	c.JSON(http.StatusOK, gin.H{"flashcards": out, "mastered": m.Mastered()})
}

func (s *Server) knowFlashcard(c *gin.Context) {
	s.updateFlashcard(c, (*flashcards.Store).Know)
}

func (s *Server) resetFlashcard(c *gin.Context) {
	s.updateFlashcard(c, (*flashcards.Store).Reset)
}

func (s *Server) updateFlashcard(c *gin.Context, op func(*flashcards.Store, context.Context, string, time.Time) (flashcards.Mastery, error)) {
	id := c.Param("id")
	if _, ok := flashcards.Find(flashcards.Deck(), id); !ok {
		fail(c, http.StatusNotFound, "Unknown flashcard")
		return
	}
	m, err := op(flashcards.NewStore(s.userKV(c)), c.Request.Context(), id, s.now())
	if err != nil {
		s.log.Error("update mastery", zap.String("card", id), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to update flashcard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "level": m.Level(id), "mastered": m.Mastered()})
}
