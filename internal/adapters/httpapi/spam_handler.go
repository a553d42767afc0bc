package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/textproc"
	"github.com/mlefebvre/spamguard/internal/validate"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	previewLength  = 60
)

type spamHandler struct {
	service *core.SpamService
	store   core.Store
	logger  *zap.Logger
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type historyEntry struct {
	ID         int64      `json:"id"`
	Text       string     `json:"text"`
	FullText   string     `json:"full_text"`
	IsSpam     bool       `json:"isSpam"`
	Confidence float64    `json:"confidence"`
	Indicators []string   `json:"indicators"`
	Flags      core.Flags `json:"flags"`
	Method     string     `json:"method"`
	AnalyzedAt string     `json:"analyzed_at"`
}

func (h *spamHandler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request body required")
		return
	}
	if err := validate.Text(req.Text); err != nil {
		badRequest(c, err.Error())
		return
	}

	result := h.service.Analyze(req.Text)

	analysis := &core.Analysis{
		UserID:     currentUserID(c),
		Text:       req.Text,
		IsSpam:     result.IsSpam,
		Confidence: result.Confidence,
		Indicators: result.Indicators,
		Flags:      result.Flags,
		Method:     result.Method,
		AnalyzedAt: result.AnalyzedAt,
	}
	if err := h.store.SaveAnalysis(c.Request.Context(), analysis); err != nil {
		h.logger.Error("Failed to save analysis", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         analysis.ID,
		"isSpam":     result.IsSpam,
		"confidence": result.Confidence,
		"indicators": result.Indicators,
		"flags":      result.Flags,
		"method":     result.Method,
		"level":      core.SpamLevel(result.Confidence),
	})
}

func (h *spamHandler) history(c *gin.Context) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(c, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	analyses, total, err := h.store.ListAnalyses(c.Request.Context(), currentUserID(c), page, perPage)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		internalError(c)
		return
	}

	entries := make([]historyEntry, 0, len(analyses))
	for _, a := range analyses {
		entries = append(entries, toEntry(a))
	}

	pages := (total + int64(perPage) - 1) / int64(perPage)
	c.JSON(http.StatusOK, gin.H{
		"history": entries,
		"pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"total":    total,
			"pages":    pages,
			"has_next": int64(page) < pages,
			"has_prev": page > 1,
		},
	})
}

func (h *spamHandler) getAnalysis(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid analysis id")
		return
	}
	analysis, err := h.store.GetAnalysis(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			notFound(c, "analysis not found")
			return
		}
		h.logger.Error("Failed to get analysis", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": toEntry(analysis)})
}

func (h *spamHandler) deleteAnalysis(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid analysis id")
		return
	}
	err = h.store.DeleteAnalysis(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			notFound(c, "analysis not found")
			return
		}
		h.logger.Error("Failed to delete analysis", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "analysis deleted"})
}

func (h *spamHandler) clearHistory(c *gin.Context) {
	if err := h.store.ClearAnalyses(c.Request.Context(), currentUserID(c)); err != nil {
		h.logger.Error("Failed to clear history", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "history cleared"})
}

func (h *spamHandler) stats(c *gin.Context) {
	since := time.Now().Add(-24 * time.Hour)
	stats, err := h.store.Stats(c.Request.Context(), currentUserID(c), since)
	if err != nil {
		h.logger.Error("Failed to compute stats", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func toEntry(a *core.Analysis) historyEntry {
	return historyEntry{
		ID:         a.ID,
		Text:       textproc.Truncate(a.Text, previewLength),
		FullText:   a.Text,
		IsSpam:     a.IsSpam,
		Confidence: a.Confidence,
		Indicators: a.Indicators,
		Flags:      a.Flags,
		Method:     a.Method,
		AnalyzedAt: a.AnalyzedAt.Format(time.RFC3339),
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
