package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drpaneas/ghwrap/internal/ghstats"
)

type stubStats struct {
	snap *ghstats.StatsSnapshot
	err  error

	gotUsername string
	gotYear     int
}

func (s *stubStats) YearlyStats(_ context.Context, username string, year int) (*ghstats.StatsSnapshot, error) {
	s.gotUsername = username
	s.gotYear = year
	return s.snap, s.err
}

func testSnapshot() *ghstats.StatsSnapshot {
	return &ghstats.StatsSnapshot{
		Profile:         ghstats.Profile{Login: "octocat", Name: "The Octocat"},
		Year:            2024,
		TotalCommits:    42,
		TopLanguage:     "Go",
		MostActiveMonth: "June",
		Timing:          ghstats.TimingStats{MostActiveWeekday: "Monday", PeakCodingHour: 14},
	}
}

func newTestServer(stats Stats) *httptest.Server {
	s := New(stats)
	s.now = func() time.Time { return time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC) }
	return httptest.NewServer(s.Handler())
}

func TestWrapJSON(t *testing.T) {
	stub := &stubStats{snap: testSnapshot()}
	srv := newTestServer(stub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/wrap/octocat/2024")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if stub.gotUsername != "octocat" || stub.gotYear != 2024 {
		t.Errorf("service called with (%q, %d)", stub.gotUsername, stub.gotYear)
	}

	var snap ghstats.StatsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.TotalCommits != 42 || snap.Profile.Login != "octocat" {
		t.Errorf("decoded snapshot = %+v", snap)
	}
}

func TestWrapCard(t *testing.T) {
	stub := &stubStats{snap: testSnapshot()}
	srv := newTestServer(stub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/card/octocat/2024")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestWrapErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{"unknown user", "/api/wrap/ghost/2024", ghstats.ErrNotFound, http.StatusNotFound},
		{"upstream down", "/api/wrap/octocat/2024", ghstats.ErrUpstream, http.StatusBadGateway},
		{"network failure", "/api/wrap/octocat/2024", ghstats.ErrNetwork, http.StatusBadGateway},
		{"year before github", "/api/wrap/octocat/2001", nil, http.StatusBadRequest},
		{"year in the future", "/api/wrap/octocat/2031", nil, http.StatusBadRequest},
		{"year not a number", "/api/wrap/octocat/soon", nil, http.StatusBadRequest},
		{"invalid username", "/api/wrap/-bad-/2024", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubStats{snap: testSnapshot(), err: tt.err}
			srv := newTestServer(stub)
			defer srv.Close()

			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["error"] == "" {
				t.Error("error body missing error field")
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubStats{snap: testSnapshot()})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		{"octocat", true},
		{"a", true},
		{"dash-in-middle", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{strings.Repeat("a", 39), true},
		{strings.Repeat("a", 40), false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			if got := validUsername.MatchString(tt.username); got != tt.want {
				t.Errorf("validUsername(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}
