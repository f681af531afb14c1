package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thyrotrack-server/internal/domain"
	"github.com/thyrotrack-server/internal/editor"
	"github.com/thyrotrack-server/internal/views"
)

// respondValidationError maps an editor failure to an HTTP response. Only
// *domain.ValidationError values are expected here; anything else is a bug
// and surfaces as a 500.
func (s *Server) respondValidationError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  domain.ErrValidation,
			"error": verr,
		})
		return
	}
	s.log.WithError(err).Error("Unexpected editor failure")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// persistenceWarning extracts a user-facing warning from a store mutation
// error. The mutation itself has been applied in memory.
func persistenceWarning(err error) string {
	if err == nil {
		return ""
	}
	return "the change was applied but could not be persisted; it may not survive a restart"
}

// handleListRecords returns the chronological timeline, optionally
// restricted to milestones via ?filter=milestones.
func (s *Server) handleListRecords(c *gin.Context) {
	filter := views.FilterAll
	if c.Query("filter") == string(views.FilterMilestones) {
		filter = views.FilterMilestones
	}

	records := s.viewCache.Timeline(s.store.Revision(), s.store.Records(), filter)
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// handleSaveRecord validates a draft record and upserts it.
func (s *Server) handleSaveRecord(c *gin.Context) {
	var draft domain.MedicalRecord
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.saveRecord(c, draft)
}

// handleUpdateRecord is the edit path; the URL ID wins over any body ID.
func (s *Server) handleUpdateRecord(c *gin.Context) {
	var draft domain.MedicalRecord
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	draft.ID = c.Param("id")
	if _, ok := s.store.Record(draft.ID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	s.saveRecord(c, draft)
}

func (s *Server) saveRecord(c *gin.Context, draft domain.MedicalRecord) {
	record, err := editor.FinalizeRecord(draft)
	if err != nil {
		s.respondValidationError(c, err)
		return
	}

	persistErr := s.store.Upsert(c.Request.Context(), record)
	resp := gin.H{"record": record}
	if warning := persistenceWarning(persistErr); warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// handleDeleteRecord removes a record. Deleting an unknown ID still succeeds.
func (s *Server) handleDeleteRecord(c *gin.Context) {
	persistErr := s.store.Delete(c.Request.Context(), c.Param("id"))
	if warning := persistenceWarning(persistErr); warning != "" {
		c.JSON(http.StatusOK, gin.H{"warning": warning})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleStats returns the quick-stats banner numbers.
func (s *Server) handleStats(c *gin.Context) {
	records := s.store.Records()

	resp := gin.H{
		"recordCount": len(records),
		"majorEvents": views.MajorEventCount(records),
	}
	if value, unit, ok := views.LatestValueForMarker(records, "Thyroglobulin"); ok {
		resp["latestThyroglobulin"] = gin.H{"value": value, "unit": unit}
	} else {
		resp["latestThyroglobulin"] = nil
	}
	c.JSON(http.StatusOK, resp)
}

// handleMarkers returns the distinct markers seen in any blood test.
func (s *Server) handleMarkers(c *gin.Context) {
	markers := s.viewCache.Markers(s.store.Revision(), s.store.Records())
	c.JSON(http.StatusOK, gin.H{"markers": markers})
}

// handleLabTable returns the pivot table. ?markers=a,b selects columns;
// without it every discovered marker becomes a column.
func (s *Server) handleLabTable(c *gin.Context) {
	records := s.store.Records()
	revision := s.store.Revision()

	var selected []string
	if raw := c.Query("markers"); raw != "" {
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				selected = append(selected, m)
			}
		}
	}
	if len(selected) == 0 {
		selected = s.viewCache.Markers(revision, records)
	}

	rows := s.viewCache.PivotTable(revision, records, selected)
	c.JSON(http.StatusOK, gin.H{"markers": selected, "rows": rows})
}

// handleLabSeries returns a marker's chronological time series.
func (s *Server) handleLabSeries(c *gin.Context) {
	marker := c.Param("marker")
	points := s.viewCache.MarkerTimeSeries(s.store.Revision(), s.store.Records(), marker)
	c.JSON(http.StatusOK, gin.H{"marker": marker, "points": points})
}

// handleGetProfile returns the patient profile.
func (s *Server) handleGetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profile": s.store.Profile()})
}

// handleSetProfile validates and replaces the profile.
func (s *Server) handleSetProfile(c *gin.Context) {
	var draft domain.PatientProfile
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := editor.FinalizeProfile(draft, s.store.Profile(), time.Now())
	if err != nil {
		s.respondValidationError(c, err)
		return
	}

	persistErr := s.store.SetProfile(c.Request.Context(), profile)
	resp := gin.H{"profile": profile}
	if warning := persistenceWarning(persistErr); warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// handleGenerateSummary starts an asynchronous summary generation over the
// current record snapshot. A request already in flight yields 409.
func (s *Server) handleGenerateSummary(c *gin.Context) {
	if err := s.summaries.Start(s.store.Records()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, s.summaries.Status())
}

// handleSummaryStatus returns the summary state snapshot.
func (s *Server) handleSummaryStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.summaries.Status())
}

// handleResetSummary discards a completed summary so it can be regenerated.
func (s *Server) handleResetSummary(c *gin.Context) {
	s.summaries.Reset()
	c.JSON(http.StatusOK, s.summaries.Status())
}

// parseLabReportRequest is the extraction entry point's payload.
type parseLabReportRequest struct {
	Text string `json:"text"`
}

// handleParseLabReport extracts structured lab results from raw report text.
// A malformed AI response yields an empty result list, not an error.
func (s *Server) handleParseLabReport(c *gin.Context) {
	var req parseLabReportRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	results, err := s.summaries.ParseLabReport(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":  domain.ErrSummary,
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
