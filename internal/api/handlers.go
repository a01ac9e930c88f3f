package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/grouppulse/core"
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// errBadRequest marks request parameter problems.
var errBadRequest = errors.New("bad request")

// badRequest wraps err so statusFor maps it to 400.
func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, schema.ErrInvalidMetric):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrUnknownGroup):
		return http.StatusNotFound
	case errors.Is(err, schema.ErrConfigurationOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, errorBody{Error: err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	_, version := s.cfg.Thresholds.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"thresholds_version": version,
		"time":               time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListGroups(c *gin.Context) {
	groups, err := core.GetGroupsResults(c.Request.Context(), s.cfg, s.mgr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (s *Server) handleReports(c *gin.Context) {
	cfg := s.cfg.Clone()
	if err := contract.RevalidateReports(cfg,
		c.Query("group"), c.Query("granularity"), c.Query("start"), c.Query("end"),
	); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	if raw := c.Query("rank"); raw != "" {
		rank, err := strconv.ParseBool(raw)
		if err != nil {
			s.fail(c, badRequest(fmt.Errorf("invalid rank %q", raw)))
			return
		}
		cfg.RankByScore = rank
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.fail(c, badRequest(fmt.Errorf("invalid limit %q", raw)))
			return
		}
		cfg.Limit = limit
	}

	rows, err := core.GetPeriodReportsResults(core.WithSuppressHeader(c.Request.Context()), cfg, s.mgr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleReportByID(c *gin.Context) {
	s.groupReport(c, "", "", c.Param("id"))
}

func (s *Server) handleGroupReport(c *gin.Context) {
	date := c.Param("date")
	if date == "latest" {
		date = ""
	}
	s.groupReport(c, c.Param("group"), date, "")
}

func (s *Server) groupReport(c *gin.Context, group, date, id string) {
	cfg := s.cfg.Clone()
	if err := contract.RevalidateReportTarget(cfg, group, date, id); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	view, err := core.GetGroupReportResult(core.WithSuppressHeader(c.Request.Context()), cfg, s.mgr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleTrend(c *gin.Context) {
	cfg := s.cfg.Clone()
	lookback := 0
	if raw := c.Query("lookback"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.fail(c, badRequest(fmt.Errorf("invalid lookback %q", raw)))
			return
		}
		lookback = n
	}
	if err := contract.RevalidateTrend(cfg, c.Param("group"), c.Query("end"), c.Query("metric"), lookback); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	result, err := core.GetTrendResults(core.WithSuppressHeader(c.Request.Context()), cfg, s.mgr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleScore(c *gin.Context) {
	var rec schema.DailyRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		s.fail(c, badRequest(fmt.Errorf("invalid record: %w", err)))
		return
	}
	if rec.GroupID == "" {
		rec.GroupID = "adhoc"
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}
	rec.Date = schema.NormalizeDate(rec.Date)
	if rec.Metrics.TotalHours == 0 {
		rec.Metrics.TotalHours = 24
	}

	view, err := core.ScoreRecord(s.cfg, rec)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// thresholdsBody is the GET and PUT shape of /thresholds.
type thresholdsBody struct {
	Version    int64                  `json:"version"`
	Thresholds schema.ScoreThresholds `json:"thresholds"`
}

func (s *Server) handleGetThresholds(c *gin.Context) {
	th, version := s.cfg.Thresholds.Snapshot()
	c.JSON(http.StatusOK, thresholdsBody{Version: version, Thresholds: th})
}

// handlePutThresholds applies a partial update: omitted fields keep their current value.
func (s *Server) handlePutThresholds(c *gin.Context) {
	next, _ := s.cfg.Thresholds.Snapshot()
	if err := decodeOnto(c.Request.Body, &next); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	version, err := s.cfg.Thresholds.Update(next)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("Thresholds updated", "version", version)
	c.JSON(http.StatusOK, thresholdsBody{Version: version, Thresholds: next})
}

// scoringBody is the GET and PUT shape of /scoring-config.
type scoringBody struct {
	Version int64                     `json:"version"`
	Scoring schema.GroupScoringConfig `json:"scoring"`
}

func (s *Server) handleGetScoringConfig(c *gin.Context) {
	sc, version := s.cfg.Scoring.Snapshot()
	c.JSON(http.StatusOK, scoringBody{Version: version, Scoring: sc})
}

func (s *Server) handlePutScoringConfig(c *gin.Context) {
	next, _ := s.cfg.Scoring.Snapshot()
	if err := decodeOnto(c.Request.Body, &next); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	version, err := s.cfg.Scoring.Update(next)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("Scoring config updated", "version", version, "mode", next.Mode)
	c.JSON(http.StatusOK, scoringBody{Version: version, Scoring: next})
}

// decodeOnto decodes a JSON object over dst, rejecting unknown fields.
func decodeOnto(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	return nil
}
