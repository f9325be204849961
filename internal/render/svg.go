package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"text/template"

	"github.com/drpaneas/ghwrap/internal/ghstats"
	"github.com/drpaneas/ghwrap/internal/textutil"
)

const (
	cardWidth  = 800
	cardHeight = 420

	maxCardLanguages = 5
	maxCardRepos     = 3
)

//go:embed templates/wrapcard.svg.tmpl
var wrapcardTemplate string

var wrapcardTmpl = template.Must(
	template.New("wrapcard").
		Funcs(template.FuncMap{
			"mul": func(a, b int) int { return a * b },
			"add": func(a, b int) int { return a + b },
		}).
		Parse(wrapcardTemplate),
)

type languageLine struct {
	Name  string
	Count int
}

type repoLine struct {
	Name  string
	Stars int
}

type wrapcardViewModel struct {
	Width  int
	Height int

	Title    string
	Subtitle string
	Year     int

	TotalCommits  int
	CurrentStreak int
	LongestStreak int
	TotalStars    int
	TotalForks    int
	ActiveDays    int

	TopLanguage string
	Languages   []languageLine
	TopRepos    []repoLine

	MostActiveMonth   string
	MostActiveWeekday string
	PeakHour          string

	TotalPRs     int
	ReviewsGiven int
}

// Card renders the snapshot as a shareable SVG wrap card.
func Card(snap *ghstats.StatsSnapshot) ([]byte, error) {
	vm := wrapcardViewModel{
		Width:  cardWidth,
		Height: cardHeight,

		Title:    esc(textutil.Ellipsize(snap.Profile.DisplayName(), 40)),
		Subtitle: esc(textutil.Ellipsize(snap.Profile.Bio, 80)),
		Year:     snap.Year,

		TotalCommits:  snap.TotalCommits,
		CurrentStreak: snap.CurrentStreak,
		LongestStreak: snap.LongestStreak,
		TotalStars:    snap.TotalStars,
		TotalForks:    snap.TotalForks,
		ActiveDays:    snap.ActiveDays,

		TopLanguage: esc(snap.TopLanguage),

		MostActiveMonth:   snap.MostActiveMonth,
		MostActiveWeekday: snap.Timing.MostActiveWeekday,
		PeakHour:          fmt.Sprintf("%02d:00", snap.Timing.PeakCodingHour),

		TotalPRs:     snap.Collaboration.TotalPRs,
		ReviewsGiven: snap.Collaboration.ReviewsGiven,
	}
	for _, lang := range snap.TopLanguages(maxCardLanguages) {
		vm.Languages = append(vm.Languages, languageLine{
			Name:  esc(lang.Name),
			Count: lang.Count,
		})
	}
	for _, repo := range snap.TopRepos(maxCardRepos) {
		vm.TopRepos = append(vm.TopRepos, repoLine{
			Name:  esc(textutil.Ellipsize(repo.Name, 30)),
			Stars: repo.Stars,
		})
	}

	var buf bytes.Buffer
	if err := wrapcardTmpl.Execute(&buf, vm); err != nil {
		return nil, fmt.Errorf("rendering wrap card: %w", err)
	}
	return buf.Bytes(), nil
}

// esc escapes text destined for SVG markup. The template is text/template
// (html/template would mangle SVG attributes), so escaping happens here.
func esc(s string) string {
	return html.EscapeString(s)
}
