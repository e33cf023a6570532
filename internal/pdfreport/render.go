package pdfreport

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/reports"
)

const (
	DefaultTitle       = "Service Reports"
	DefaultAttribution = "Generated by ROG Pool Service"
)

// Photo grid geometry, right-aligned inside the container.
const (
	cellSize = 27.0
	cellGap  = 2.0
	gridW    = 2*cellSize + cellGap
	gridX    = margin + bodyW - gridW - 2
	textW    = bodyW - gridW - 8
	leftColW = 78.0
)

// Document is a finished export.
type Document struct {
	Filename      string
	Data          []byte
	Pages         int
	Layout        [][]string // report ids per page, in placement order
	SkippedImages int
}

type Generator struct {
	log         zerolog.Logger
	attribution string
	now         func() time.Time
	money       *message.Printer
	compress    bool
}

func NewGenerator(log zerolog.Logger, attribution string) *Generator {
	if strings.TrimSpace(attribution) == "" {
		attribution = DefaultAttribution
	}
	return &Generator{
		log:         log,
		attribution: attribution,
		now:         time.Now,
		money:       message.NewPrinter(language.AmericanEnglish),
		compress:    true,
	}
}

// Generate selects from reports with p and renders the result. It returns
// ErrNoReports when nothing matches; no partial document is ever returned.
func (g *Generator) Generate(ctx context.Context, reports []models.ServiceReport, p Params) (*Document, error) {
	set := Select(reports, p)
	if len(set) == 0 {
		return nil, ErrNoReports
	}
	if p.Title == "" {
		p.Title = DefaultTitle
	}

	refs := make([]reportPhotos, len(set))
	for i, r := range set {
		refs[i] = reportPhotos{id: r.ID, photos: r.Photos}
	}
	thumbs, skipped, err := prepareThumbs(ctx, g.log, refs)
	if err != nil {
		return nil, fmt.Errorf("prepare photos: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(g.compress)
	pdf.SetTitle(p.Title, true)
	pdf.SetCreator(g.attribution, true)
	pdf.SetCreationDate(g.now())

	rd := &renderer{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		gen:    g,
		params: p,
		thumbs: thumbs,
		total:  len(set),
	}

	var (
		pg     pager
		layout [][]string
	)
	for i, r := range set {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		y, fresh := pg.next()
		if fresh {
			pdf.AddPage()
			if pg.pages == 1 {
				rd.banner()
			} else {
				rd.slimHeader()
			}
			layout = append(layout, nil)
		}
		rd.container(i, r, y)
		layout[len(layout)-1] = append(layout[len(layout)-1], r.ID)
	}
	rd.footers()

	if pdf.Err() {
		return nil, fmt.Errorf("render pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	g.log.Info().Int("reports", len(set)).Int("pages", len(layout)).Int("skipped_images", skipped).Msg("pdf export generated")
	return &Document{
		Filename:      Filename(p.Start.In(p.loc()), p.End.In(p.loc())),
		Data:          buf.Bytes(),
		Pages:         len(layout),
		Layout:        layout,
		SkippedImages: skipped,
	}, nil
}

// FormatMoney renders v as US dollars with thousands separators.
func (g *Generator) FormatMoney(v float64) string {
	if v < 0 {
		return "-$" + g.money.Sprintf("%.2f", -v)
	}
	return "$" + g.money.Sprintf("%.2f", v)
}

type renderer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	gen    *Generator
	params Params
	thumbs map[photoRef]*thumb
	total  int
}

func (rd *renderer) banner() {
	pdf, p := rd.pdf, rd.params
	pdf.SetFillColor(14, 116, 144)
	pdf.Rect(margin, margin, bodyW, bannerH, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(margin+4, margin+4)
	pdf.CellFormat(bodyW-8, 8, rd.text(p.Title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(margin+4, margin+14)
	period := fmt.Sprintf("Period: %s - %s", p.Start.In(p.loc()).Format("01/02/2006"), p.End.In(p.loc()).Format("01/02/2006"))
	pdf.CellFormat(bodyW/2, 6, period, "", 0, "L", false, 0, "")
	pdf.CellFormat(bodyW/2-8, 6, fmt.Sprintf("Total reports: %d", rd.total), "", 0, "R", false, 0, "")
}

func (rd *renderer) slimHeader() {
	pdf := rd.pdf
	pdf.SetTextColor(90, 90, 90)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(bodyW, slimHeaderH-2, rd.text(rd.params.Title+" (continued)"), "", 0, "L", false, 0, "")
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(margin, margin+slimHeaderH, margin+bodyW, margin+slimHeaderH)
}

func (rd *renderer) container(idx int, r models.ServiceReport, y float64) {
	pdf := rd.pdf
	x := margin

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, y, bodyW, containerH, "D")

	// title band
	cr, cg, cb := priorityColor(r.Priority)
	pdf.SetFillColor(cr, cg, cb)
	pdf.Rect(x, y, bodyW, 8, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x+2, y+1)
	pdf.CellFormat(bodyW-40, 6, rd.text(fmt.Sprintf("#%d  %s", idx+1, r.ClientName)), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(36, 6, rd.text(string(r.Priority)), "", 0, "R", false, 0, "")

	// fields
	pdf.SetTextColor(33, 37, 41)
	pdf.SetFont("Helvetica", "", 8)
	left := []string{
		"Date: " + r.EffectiveDate().In(rd.params.loc()).Format("01/02/2006"),
		"Address: " + r.ClientAddress,
		"Employee: " + r.EmployeeName,
	}
	for i, s := range left {
		pdf.SetXY(x+2, y+11+float64(i)*5)
		pdf.CellFormat(leftColW, 5, rd.line(s, leftColW), "", 0, "L", false, 0, "")
	}
	if r.HasFinancials() {
		right := []string{
			"Total: " + rd.gen.FormatMoney(deref(r.TotalCost)),
			"Parts: " + rd.gen.FormatMoney(deref(r.PartsCost)),
			"Gross profit: " + rd.gen.FormatMoney(reports.ComputeGrossProfit(r.TotalCost, r.PartsCost)),
		}
		colW := textW - leftColW - 2
		for i, s := range right {
			pdf.SetXY(x+4+leftColW, y+11+float64(i)*5)
			pdf.CellFormat(colW, 5, rd.text(s), "", 0, "L", false, 0, "")
		}
	}

	// description, clipped to two lines
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(x+2, y+28)
	pdf.CellFormat(textW, 4, "Description", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	lines := pdf.SplitText(latin1(r.Description), textW)
	for i := 0; i < len(lines) && i < descLines; i++ {
		pdf.SetXY(x+2, y+32.5+float64(i)*4.5)
		pdf.CellFormat(textW, 4.5, rd.tr(lines[i]), "", 0, "L", false, 0, "")
	}

	// notes
	noteY := y + 44
	if s := strings.TrimSpace(r.AdminNotes); s != "" {
		pdf.SetXY(x+2, noteY)
		pdf.CellFormat(textW, 5, rd.line("Admin: "+s, textW), "", 0, "L", false, 0, "")
	}
	if s := strings.TrimSpace(r.EmployeeNotes); s != "" {
		pdf.SetXY(x+2, noteY+5)
		pdf.CellFormat(textW, 5, rd.line("Employee: "+s, textW), "", 0, "L", false, 0, "")
	}

	rd.photos(idx, r, y)
}

func (rd *renderer) photos(idx int, r models.ServiceReport, y float64) {
	if len(r.Photos) == 0 {
		return
	}
	pdf := rd.pdf
	for slot := 0; slot < len(r.Photos) && slot < maxGridPhotos; slot++ {
		cx := gridX + float64(slot%2)*(cellSize+cellGap)
		cy := y + 10 + float64(slot/2)*(cellSize+cellGap)

		t := rd.thumbs[photoRef{report: idx, slot: slot}]
		if t != nil {
			name := fmt.Sprintf("r%d-p%d", idx, slot)
			opt := fpdf.ImageOptions{ImageType: "JPG"}
			pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(t.data))
			w, h := fit(float64(t.w), float64(t.h), cellSize)
			pdf.ImageOptions(name, cx+(cellSize-w)/2, cy+(cellSize-h)/2, w, h, false, opt, 0, "")
		} else {
			pdf.SetFillColor(233, 236, 239)
			pdf.Rect(cx, cy, cellSize, cellSize, "F")
		}

		pdf.SetFillColor(33, 37, 41)
		pdf.Circle(cx+3, cy+3, 2.5, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 6)
		pdf.SetXY(cx+0.5, cy+1)
		pdf.CellFormat(5, 4, fmt.Sprintf("%d", slot+1), "", 0, "C", false, 0, "")
	}
	if extra := len(r.Photos) - maxGridPhotos; extra > 0 {
		pdf.SetTextColor(90, 90, 90)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetXY(gridX, y+70)
		pdf.CellFormat(gridW, 3, fmt.Sprintf("+%d more", extra), "", 0, "R", false, 0, "")
	}
}

func (rd *renderer) footers() {
	pdf := rd.pdf
	n := pdf.PageCount()
	for i := 1; i <= n; i++ {
		pdf.SetPage(i)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetXY(margin, footerY)
		pdf.CellFormat(bodyW/2, 5, rd.text(rd.gen.attribution), "", 0, "L", false, 0, "")
		pdf.CellFormat(bodyW/2, 5, fmt.Sprintf("Page %d of %d", i, n), "", 0, "R", false, 0, "")
	}
}

// text converts s for the core fonts.
func (rd *renderer) text(s string) string { return rd.tr(latin1(s)) }

// line returns the first wrapped line of s at width w.
func (rd *renderer) line(s string, w float64) string {
	lines := rd.pdf.SplitText(latin1(s), w)
	if len(lines) == 0 {
		return ""
	}
	return rd.tr(lines[0])
}

var punct = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "-", "…", "...", "€", "EUR",
)

// latin1 maps s onto the runes the core fonts can measure; anything outside
// Latin-1 becomes '?'.
func latin1(s string) string {
	s = punct.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(' ')
		case r < 0x20 || (r >= 0x7f && r < 0xa0):
			continue
		case r > 0xff:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fit(w, h, box float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return box, box
	}
	if w >= h {
		return box, box * h / w
	}
	return box * w / h, box
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
