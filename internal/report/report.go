// Package report renders statistics and receipts into downloadable documents.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/myshop/myshop-manager/internal/currency"
	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/report.gohtml
var templatesFS embed.FS

var periodTitles = map[entity.PeriodKind]string{
	entity.PeriodDay:   "Daily",
	entity.PeriodWeek:  "Weekly",
	entity.PeriodMonth: "Monthly",
	entity.PeriodYear:  "Yearly",
}

var periodNames = map[entity.PeriodKind]string{
	entity.PeriodDay:   "Today",
	entity.PeriodWeek:  "This Week",
	entity.PeriodMonth: "This Month",
	entity.PeriodYear:  "This Year",
}

// Renderer formats statistics for people in a given locale.
type Renderer struct {
	shopName string
	tag      language.Tag
	loc      *time.Location
	tmpl     *template.Template
}

func New(shopName string, tag language.Tag, loc *time.Location) (*Renderer, error) {
	r := &Renderer{
		shopName: shopName,
		tag:      tag,
		loc:      loc,
	}
	tmpl, err := template.New("report.gohtml").Funcs(template.FuncMap{
		"money":   r.Money,
		"percent": r.Percent,
		"inc":     func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/report.gohtml")
	if err != nil {
		return nil, fmt.Errorf("can't parse report template: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Money formats an amount in the shop currency.
func (r *Renderer) Money(d decimal.Decimal) string {
	return currency.Format(r.tag, d, currency.Default)
}

// Percent formats a ratio already multiplied by 100 with one decimal.
func (r *Renderer) Percent(d decimal.Decimal) string {
	return message.NewPrinter(r.tag).Sprintf("%.1f", d.InexactFloat64()) + "%"
}

type reportData struct {
	Title     string
	Subtitle  string
	ShopName  string
	Region    string
	From      string
	To        string
	Generated string
	Stats     *entity.Statistics
}

// Filename is the attachment name of a report generated at now.
func Filename(kind entity.PeriodKind, now time.Time) string {
	return fmt.Sprintf("Analytics-%s-%s.html", kind, now.Format("2006-01-02"))
}

// HTML writes a self-contained report of st.
func (r *Renderer) HTML(w io.Writer, st *entity.Statistics, generated time.Time) error {
	subtitle := st.Label
	if subtitle == "" {
		subtitle = periodNames[st.Period]
	}
	const layout = "02 Jan 2006 15:04"
	data := reportData{
		Title:     periodTitles[st.Period],
		Subtitle:  subtitle,
		ShopName:  r.shopName,
		Region:    st.Region,
		From:      st.Range.From.In(r.loc).Format(layout),
		To:        st.Range.To.In(r.loc).Format(layout),
		Generated: generated.In(r.loc).Format(layout),
		Stats:     st,
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("can't render report: %w", err)
	}
	return nil
}
