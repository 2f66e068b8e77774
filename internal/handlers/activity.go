package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List my activity
// @Description  Audit entries of the logged-in user. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day.
// @Tags         activity
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range"    example(2025-08-31)
// @Param        type  query   string  false  "Activity type"   Enums(SESSION,SIGN_UP,SIGN_IN,SIGN_OUT,CHAT,IMAGE,TRANSLATE,SPEAK,RISK,ERROR)
// @Success      200   {object}  map[string]interface{}  "count, activity"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/activity [get]
// @Security     BearerAuth
func (h *Handler) getActivity(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from    time.Time
		to      time.Time
		actType = strings.ToUpper(strings.TrimSpace(c.Query("type")))
		err     error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	sess, err := h.services.Session(ctx, sessionID(c))
	if err != nil {
		h.writeError(c, "activity_session_failed", err)
		return
	}
	if !sess.Authenticated {
		h.writeError(c, "activity_list_denied", service.ErrNotAuthenticated)
		return
	}

	entries, err := h.services.ActivityLog.List(ctx, service.LogFilter{
		From:     from,
		To:       to,
		Type:     actType,
		Username: sess.Username,
	})
	if err != nil {
		h.writeError(c, "activity_list_failed", err, "from", from, "to", to, "type", actType)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(entries),
		"activity": entries,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
