package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/flashlytics/internal/analytics"
	"github.com/example/flashlytics/internal/export"
	"github.com/example/flashlytics/internal/logger"
	"github.com/example/flashlytics/pkg/models"
)

// AnalyticsHandler exposes each engine operation as a named read-only query.
// Authorization is the caller's concern; these routes trust the principal the
// upstream layer already enforced.
type AnalyticsHandler struct {
	log         *logger.Logger
	engine      *analytics.Engine
	callTimeout time.Duration
}

// NewAnalyticsHandler creates the handler.
func NewAnalyticsHandler(log *logger.Logger, engine *analytics.Engine, callTimeout time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:         log.With("handler", "AnalyticsHandler"),
		engine:      engine,
		callTimeout: callTimeout,
	}
}

// Register mounts all analytics routes under the given group.
func (h *AnalyticsHandler) Register(api *gin.RouterGroup) {
	api.GET("/users/:userID/profile", h.getProfile)
	api.GET("/users/:userID/velocity", h.getVelocity)
	api.GET("/users/:userID/daily-summary", h.getDailySummary)
	api.GET("/users/:userID/struggling-cards", h.getStrugglingCards)
	api.GET("/users/:userID/struggling-cards/by-deck", h.getStrugglingCardsByDeck)
	api.GET("/users/:userID/patterns/interference", h.getInterference)
	api.GET("/users/:userID/patterns/prerequisite-gaps", h.getPrerequisiteGaps)
	api.GET("/users/:userID/patterns/fatigue", h.getFatigue)
	api.GET("/users/:userID/patterns/time-of-day", h.getTimeOfDay)
	api.GET("/users/:userID/report.xlsx", h.getReport)
	api.GET("/cards/:cardID/difficulty", h.getCardDifficulty)
	api.GET("/decks/:deckID/hardest-cards", h.getHardestCards)
	api.GET("/sessions/:sessionID/health", h.getSessionHealth)
	api.GET("/sessions/:sessionID/live-health", h.getLiveSessionHealth)
}

func (h *AnalyticsHandler) deadline(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.callTimeout)
}

func (h *AnalyticsHandler) getProfile(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	profile, err := h.engine.UserLearningProfile(ctx, userID)
	if err != nil {
		h.log.Error("profile failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, profile)
}

func (h *AnalyticsHandler) getVelocity(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	history, err := h.engine.UserVelocityHistory(ctx, userID, queryInt(c, "weeks"))
	if err != nil {
		h.log.Error("velocity failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, history)
}

func (h *AnalyticsHandler) getDailySummary(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	summary, err := h.engine.DailySummary(ctx, userID, queryInt(c, "days"))
	if err != nil {
		h.log.Error("daily summary failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, summary)
}

func (h *AnalyticsHandler) getStrugglingCards(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	cards, err := h.engine.StrugglingCards(ctx, userID, queryFloat(c, "threshold"), queryInt(c, "limit"))
	if err != nil {
		h.log.Error("struggling cards failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, cards)
}

func (h *AnalyticsHandler) getStrugglingCardsByDeck(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	decks, err := h.engine.StrugglingCardsByDeck(ctx, userID)
	if err != nil {
		h.log.Error("struggling by deck failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, decks)
}

func (h *AnalyticsHandler) getInterference(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	pairs, err := h.engine.InterferencePairs(ctx, userID, queryOptionalID(c, "deckId"))
	if err != nil {
		h.log.Error("interference failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, pairs)
}

func (h *AnalyticsHandler) getPrerequisiteGaps(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	report, err := h.engine.PrerequisiteGaps(ctx, userID, queryOptionalID(c, "deckId"))
	if err != nil {
		h.log.Error("prerequisite gaps failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, report)
}

func (h *AnalyticsHandler) getFatigue(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	result, err := h.engine.FatigueAnalysis(ctx, userID)
	if err != nil {
		h.log.Error("fatigue failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, result)
}

func (h *AnalyticsHandler) getTimeOfDay(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	effects, err := h.engine.TimeOfDayEffects(ctx, userID)
	if err != nil {
		h.log.Error("time of day failed", "user_id", userID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, effects)
}

func (h *AnalyticsHandler) getCardDifficulty(c *gin.Context) {
	cardID, ok := pathID(c, "cardID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	metric, err := h.engine.CardDifficulty(ctx, cardID, queryOptionalID(c, "compareUserId"))
	if err != nil {
		h.log.Error("card difficulty failed", "card_id", cardID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, metric)
}

func (h *AnalyticsHandler) getHardestCards(c *gin.Context) {
	deckID, ok := pathID(c, "deckID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	ranked, err := h.engine.DeckHardestCards(ctx, deckID, queryInt(c, "limit"))
	if err != nil {
		h.log.Error("hardest cards failed", "deck_id", deckID, "error", err)
		respondCondition(c, err)
		return
	}
	respondOK(c, ranked)
}

func (h *AnalyticsHandler) getSessionHealth(c *gin.Context) {
	h.sessionHealth(c, h.engine.SessionHealth)
}

func (h *AnalyticsHandler) getLiveSessionHealth(c *gin.Context) {
	h.sessionHealth(c, h.engine.LiveSessionHealth)
}

func (h *AnalyticsHandler) sessionHealth(c *gin.Context, op func(context.Context, string) (*models.SessionHealthSnapshot, error)) {
	sessionID := c.Param("sessionID")
	ctx, cancel := h.deadline(c)
	defer cancel()

	snapshot, err := op(ctx, sessionID)
	if err != nil {
		h.log.Error("session health failed", "session_id", sessionID, "error", err)
		respondCondition(c, err)
		return
	}
	// A nil snapshot is "too few reviews": an empty 200, not an error.
	respondOK(c, snapshot)
}

func (h *AnalyticsHandler) getReport(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	ctx, cancel := h.deadline(c)
	defer cancel()

	summary, err := h.engine.DailySummary(ctx, userID, 0)
	if err != nil {
		respondCondition(c, err)
		return
	}
	struggling, err := h.engine.StrugglingCards(ctx, userID, 0, 0)
	if err != nil {
		respondCondition(c, err)
		return
	}
	// The hardest-cards section is per deck; without a deckId the sheet is
	// emitted header-only.
	var hardest []models.HardestCard
	if deckID := queryOptionalID(c, "deckId"); deckID != nil {
		hardest, err = h.engine.DeckHardestCards(ctx, *deckID, 0)
		if err != nil {
			respondCondition(c, err)
			return
		}
	}

	workbook, err := export.BuildWorkbook(summary, struggling, hardest)
	if err != nil {
		h.log.Error("report build failed", "user_id", userID, "error", err)
		respondError(c, http.StatusInternalServerError, "report_failed", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="learning-report.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.log.Error("report write failed", "user_id", userID, "error", err)
	}
}

// pathID parses a numeric path parameter, answering 400 itself on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return 0, false
	}
	return id, true
}

// queryInt reads a bounded numeric query parameter. Missing or malformed
// input yields zero, which the engine clamps to the documented default.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func queryFloat(c *gin.Context, name string) float64 {
	raw := c.Query(name)
	if raw == "" {
		return -1 // engine treats negatives as "use the default"
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return -1
	}
	return v
}

func queryOptionalID(c *gin.Context, name string) *int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}
