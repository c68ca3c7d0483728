package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator writes report files; handlers serve the returned path.
type Generator interface {
	GenerateScoreReport(data ScoreReport) (string, error)
	GenerateDashboardReport(data DashboardReport) (string, error)
}

// DocumentGenerator renders reports with gofpdf into RootDir.
type DocumentGenerator struct {
	RootDir  string // e.g. "./files/reports"
	FontPath string // TTF with Cyrillic/Devanagari coverage; empty means Helvetica
	fontName string
}

type ScoreReport struct {
	GeneratedAt time.Time
	Viewer      string
	Headers     []string
	Rows        [][]string
	Filename    string
}

// KV is one labelled figure in a summary block.
type KV struct {
	Key   string
	Value string
}

type DashboardReport struct {
	Mode        string
	GeneratedAt time.Time
	Viewer      string
	Summary     []KV
	StaffHeader []string
	Staff       [][]string
	Filename    string
}

func NewDocumentGenerator(rootDir, fontPath string) *DocumentGenerator {
	g := &DocumentGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
	if fontPath == "" {
		g.fontName = "Helvetica"
	}
	return g
}

func (g *DocumentGenerator) GenerateScoreReport(data ScoreReport) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("score_%s.pdf", data.GeneratedAt.Format("20060102_150405"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := g.newDoc("L", "Score Sheet")
	pdf.AddPage()

	g.title(pdf, "Score Sheet", data.GeneratedAt, data.Viewer)
	g.table(pdf, data.Headers, data.Rows, 277)
	g.footer(pdf)

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

func (g *DocumentGenerator) GenerateDashboardReport(data DashboardReport) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("dashboard_%s_%s.pdf", data.Mode, data.GeneratedAt.Format("20060102_150405"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := g.newDoc("P", "Project Dashboard")
	pdf.AddPage()

	g.title(pdf, fmt.Sprintf("Project Dashboard (%s)", data.Mode), data.GeneratedAt, data.Viewer)

	g.sectionTitle(pdf, "Summary")
	for _, kv := range data.Summary {
		g.kvLine(pdf, kv.Key, kv.Value)
	}
	pdf.Ln(2)
	g.hr(pdf, 190)

	if len(data.Staff) > 0 {
		g.sectionTitle(pdf, "Staff")
		g.table(pdf, data.StaffHeader, data.Staff, 170)
	}
	g.footer(pdf)

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func (g *DocumentGenerator) newDoc(orientation, title string) *gofpdf.Fpdf {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("sheetdesk", false)
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	}
	return pdf
}

// translator maps UTF-8 to cp1252 for the core font; UTF-8 fonts need nothing.
func (g *DocumentGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *DocumentGenerator) title(pdf *gofpdf.Fpdf, title string, at time.Time, viewer string) {
	tr := g.translator(pdf)
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	sub := "Generated " + at.Format("02/01/2006 15:04")
	if viewer != "" {
		sub += " for " + viewer
	}
	pdf.CellFormat(0, 6, tr(sub), "", 1, "C", false, 0, "")
	pdf.Ln(3)
}

func (g *DocumentGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, g.translator(pdf)(s), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *DocumentGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	tr := g.translator(pdf)
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(55, 6, tr(key+":"), "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(val), "", 1, "L", false, 0, "")
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf, width float64) {
	left, _, _, _ := pdf.GetMargins()
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(left, y, left+width, y)
	pdf.SetY(y + 2)
}

// table spreads width evenly over the columns and repeats the header on
// every page.
func (g *DocumentGenerator) table(pdf *gofpdf.Fpdf, headers []string, rows [][]string, width float64) {
	if len(headers) == 0 {
		return
	}
	tr := g.translator(pdf)
	colW := width / float64(len(headers))
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	header := func() {
		pdf.SetFont(g.fontName, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range headers {
			pdf.CellFormat(colW, 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(g.fontName, "", 9)
	}

	header()
	for _, r := range rows {
		if pdf.GetY()+6 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for i := range headers {
			v := ""
			if i < len(r) {
				v = r[i]
			}
			pdf.CellFormat(colW, 6, tr(truncate(v, int(colW/1.8))), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (g *DocumentGenerator) footer(pdf *gofpdf.Fpdf) {
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

func (g *DocumentGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	return filepath.Join(g.RootDir, filepath.Base(filename)), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
