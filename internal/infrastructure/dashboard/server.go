// Package dashboard serves a small JSON API over the latest run: the ranked
// matches, the raw collection, run status and the written reports. Scores
// come straight from the pipeline; the dashboard never re-scores.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"tenderscan/internal/domain"
	"tenderscan/internal/status"
	"tenderscan/internal/usecase"
)

// Server owns the HTTP surface and the guarded copy of the last results.
type Server struct {
	pipeline   *usecase.Pipeline
	profile    domain.Profile
	reportsDir string
	log        *slog.Logger

	mu      sync.RWMutex
	matched []domain.Tender
	all     []domain.Tender
}

func NewServer(pipeline *usecase.Pipeline, profile domain.Profile, reportsDir string, log *slog.Logger) *Server {
	return &Server{
		pipeline:   pipeline,
		profile:    profile,
		reportsDir: reportsDir,
		log:        log,
	}
}

// SetResults publishes a finished run's result sets to the API.
func (s *Server) SetResults(matched, all []domain.Tender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matched = matched
	s.all = all
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)
	router.GET("/api/tenders", s.listMatched)
	router.GET("/api/all-tenders", s.listAll)
	router.GET("/api/status", s.runStatus)
	router.GET("/api/reports", s.listReports)
	router.GET("/reports/:filename", s.downloadReport)
	router.POST("/run-scraper", s.triggerRun)

	return router
}

// Run serves the API until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// tenderView is the wire shape of one tender, with the derived days-left
// field the UI sorts its urgency column on.
type tenderView struct {
	TenderID        string   `json:"tender_id"`
	Title           string   `json:"title"`
	Portal          string   `json:"portal"`
	Department      string   `json:"department"`
	Location        string   `json:"location"`
	Budget          string   `json:"budget"`
	Published       string   `json:"published"`
	Deadline        string   `json:"deadline"`
	DaysLeft        *int     `json:"days_left"`
	MatchScore      int      `json:"match_score"`
	MatchedKeywords []string `json:"matched_keywords"`
	BudgetInRange   *bool    `json:"budget_in_range"`
	LocationMatch   bool     `json:"location_match"`
	URL             string   `json:"url"`
}

func toViews(tenders []domain.Tender, now time.Time) []tenderView {
	views := make([]tenderView, 0, len(tenders))
	for _, t := range tenders {
		v := tenderView{
			TenderID:        t.TenderID,
			Title:           t.Title,
			Portal:          t.Portal,
			Department:      t.Department,
			Location:        t.Location,
			Budget:          t.DisplayBudget(),
			Published:       t.DisplayPublished(),
			Deadline:        t.DisplayDeadline(),
			MatchScore:      t.MatchScore,
			MatchedKeywords: t.MatchedKeywords,
			BudgetInRange:   t.BudgetInRange,
			LocationMatch:   t.LocationMatch,
			URL:             t.URL,
		}
		if t.Deadline != nil {
			days := int(t.Deadline.Sub(now).Hours() / 24)
			v.DaysLeft = &days
		}
		views = append(views, v)
	}
	return views
}

func (s *Server) listMatched(c *gin.Context) {
	s.mu.RLock()
	matched := s.matched
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"tenders": toViews(matched, time.Now()), "count": len(matched)})
}

func (s *Server) listAll(c *gin.Context) {
	s.mu.RLock()
	all := s.all
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"tenders": toViews(all, time.Now()), "count": len(all)})
}

func (s *Server) runStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipeline.Tracker().Snapshot())
}

func (s *Server) listReports(c *gin.Context) {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"reports": []string{}})
		return
	}
	var reports []string
	for _, e := range entries {
		if !e.IsDir() && validReportName(e.Name()) {
			reports = append(reports, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(reports))) // newest date first
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) downloadReport(c *gin.Context) {
	name := c.Param("filename")
	if !validReportName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
		return
	}
	path := filepath.Join(s.reportsDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.FileAttachment(path, name)
}

// validReportName allows only workbook names the exporter itself produces.
func validReportName(name string) bool {
	return strings.HasPrefix(name, "tenders_") &&
		strings.HasSuffix(name, ".xlsx") &&
		!strings.ContainsAny(name, "/\\")
}

func (s *Server) triggerRun(c *gin.Context) {
	// Probe the slot synchronously so the caller gets the conflict, then
	// release and let the background run claim it for real.
	if s.pipeline.Tracker().Snapshot().State == status.StateRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "a scrape run is already in progress"})
		return
	}

	go func() {
		matched, all, err := s.pipeline.Run(context.Background(), s.profile, usecase.RunOptions{})
		if err != nil {
			if !errors.Is(err, status.ErrRunning) && s.log != nil {
				s.log.Error("triggered run failed", "error", err)
			}
			return
		}
		s.SetResults(matched, all)
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}
