package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/drpaneas/ghwrap/internal/ghstats"
	"github.com/drpaneas/ghwrap/internal/render"
)

// githubFounded is the earliest year a wrap can be requested for.
const githubFounded = 2008

var validUsername = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?$`)

// Stats is the aggregation interface the server consumes.
type Stats interface {
	YearlyStats(ctx context.Context, username string, year int) (*ghstats.StatsSnapshot, error)
}

// Server exposes wrap snapshots over HTTP, as JSON and as an SVG card.
type Server struct {
	stats Stats
	now   func() time.Time
}

// New returns a Server backed by the given stats service.
func New(stats Stats) *Server {
	return &Server{stats: stats, now: time.Now}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/wrap/{username}/{year}", s.handleWrapJSON)
	mux.HandleFunc("GET /card/{username}/{year}", s.handleWrapCard)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleWrapJSON(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.computeWrap(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		slog.Error("encoding snapshot", "error", err)
	}
}

func (s *Server) handleWrapCard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.computeWrap(w, r)
	if !ok {
		return
	}
	card, err := render.Card(snap)
	if err != nil {
		slog.Error("rendering card", "user", snap.Profile.Login, "error", err)
		writeError(w, http.StatusInternalServerError, "could not render card")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", `inline; filename="ghwrap.svg"`)
	if _, err := w.Write(card); err != nil {
		slog.Error("writing card", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// computeWrap validates the request, runs the aggregation, and maps
// error kinds to status codes. A degraded run is not an error: it comes
// back as a full snapshot with zeroed fields and renders normally.
func (s *Server) computeWrap(w http.ResponseWriter, r *http.Request) (*ghstats.StatsSnapshot, bool) {
	username := r.PathValue("username")
	if !validUsername.MatchString(username) {
		writeError(w, http.StatusBadRequest, "invalid username")
		return nil, false
	}
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < githubFounded || year > s.now().Year() {
		writeError(w, http.StatusBadRequest, "invalid year")
		return nil, false
	}

	snap, err := s.stats.YearlyStats(r.Context(), username, year)
	if err != nil {
		switch {
		case errors.Is(err, ghstats.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			slog.Error("aggregation failed", "user", username, "year", year, "error", err)
			writeError(w, http.StatusBadGateway, "github api unavailable")
		}
		return nil, false
	}
	return snap, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
