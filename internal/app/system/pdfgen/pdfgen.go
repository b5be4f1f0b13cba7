// internal/app/system/pdfgen/pdfgen.go
package pdfgen

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"
)

// Kind selects the document layout.
type Kind string

const (
	KindSynthesis     Kind = "synthesis"
	KindAttestation   Kind = "attestation"
	KindSessionReport Kind = "session_report"
)

// ErrDataMismatch is returned when data is not the type Kind expects.
var ErrDataMismatch = errors.New("pdfgen: data does not match kind")

// Renderer turns report data into PDF bytes.
type Renderer interface {
	Render(kind Kind, data any) ([]byte, error)
}

// BilanInfo is the header shared by bilan-level documents.
type BilanInfo struct {
	ID              int64
	BeneficiaryName string
	ConsultantName  string
	StartDate       time.Time
	EndDate         *time.Time
	Status          string
}

// SkillLine is one evaluated skill.
type SkillLine struct {
	Name  string
	Level int
}

// RecommendationLine is one recommendation.
type RecommendationLine struct {
	Title       string
	Description string
}

// SynthesisData feeds KindSynthesis.
type SynthesisData struct {
	BilanInfo
	Skills          []SkillLine
	Recommendations []RecommendationLine
	ActionPlan      string
	Content         string // generated synthesis text, optional
}

// AttestationData feeds KindAttestation.
type AttestationData struct {
	BilanInfo
	TotalHours       float64
	OrganizationName string
}

// SessionReportData feeds KindSessionReport.
type SessionReportData struct {
	SessionNumber   int
	BilanID         int64
	BeneficiaryName string
	ConsultantName  string
	Date            time.Time
	DurationMinutes int
	Notes           string
	NextSteps       string
}

var licenseOnce sync.Once

// SetLicense registers a metered unidoc key once per process. An empty key
// leaves the library unlicensed.
func SetLicense(key string) error {
	var err error
	if key == "" {
		return nil
	}
	licenseOnce.Do(func() {
		err = license.SetMeteredKey(key)
	})
	return err
}

// Unipdf renders A4 documents with the standard Helvetica fonts.
type Unipdf struct {
	now func() time.Time
	loc *time.Location
}

// New returns a renderer that prints dates in Europe/Paris when available.
func New() *Unipdf {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		loc = time.UTC
	}
	return &Unipdf{now: time.Now, loc: loc}
}

// Render builds the document for kind.
func (u *Unipdf) Render(kind Kind, data any) ([]byte, error) {
	d, err := u.newDoc()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindSynthesis:
		v, ok := data.(SynthesisData)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDataMismatch, kind)
		}
		d.synthesis(v)
	case KindAttestation:
		v, ok := data.(AttestationData)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDataMismatch, kind)
		}
		d.attestation(v)
	case KindSessionReport:
		v, ok := data.(SessionReportData)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDataMismatch, kind)
		}
		d.sessionReport(v)
	default:
		return nil, fmt.Errorf("pdfgen: unknown kind %q", kind)
	}
	return d.bytes()
}

type doc struct {
	c                   *creator.Creator
	regular, bold, ital *model.PdfFont
	now                 time.Time
	loc                 *time.Location
	err                 error
}

func (u *Unipdf) newDoc() (*doc, error) {
	regular, err := model.NewStandard14Font(model.HelveticaName)
	if err != nil {
		return nil, fmt.Errorf("pdfgen: font: %w", err)
	}
	bold, err := model.NewStandard14Font(model.HelveticaBoldName)
	if err != nil {
		return nil, fmt.Errorf("pdfgen: font: %w", err)
	}
	ital, err := model.NewStandard14Font(model.HelveticaObliqueName)
	if err != nil {
		return nil, fmt.Errorf("pdfgen: font: %w", err)
	}

	c := creator.New()
	c.SetPageSize(creator.PageSizeA4)
	c.SetPageMargins(50, 50, 50, 50)
	c.NewPage()
	return &doc{c: c, regular: regular, bold: bold, ital: ital, now: u.now().In(u.loc), loc: u.loc}, nil
}

func (d *doc) text(s string, font *model.PdfFont, size float64, align creator.TextAlignment, indent, after float64) {
	if d.err != nil {
		return
	}
	p := d.c.NewParagraph(s)
	p.SetFont(font)
	p.SetFontSize(size)
	p.SetTextAlignment(align)
	p.SetEnableWrap(true)
	p.SetMargins(indent, 0, 0, after)
	d.err = d.c.Draw(p)
}

func (d *doc) title(s string) {
	d.text(s, d.bold, 24, creator.TextAlignmentCenter, 0, 20)
}

func (d *doc) heading(s string) {
	d.text(s, d.bold, 16, creator.TextAlignmentLeft, 0, 10)
}

func (d *doc) line(s string) {
	d.text(s, d.regular, 12, creator.TextAlignmentLeft, 0, 2)
}

func (d *doc) para(s string) {
	d.text(s, d.regular, 12, creator.TextAlignmentJustify, 0, 14)
}

func (d *doc) date(t time.Time) string {
	return t.In(d.loc).Format("02/01/2006")
}

func (d *doc) footer() {
	d.text(fmt.Sprintf("Document généré le %s à %s", d.now.Format("02/01/2006"), d.now.Format("15:04:05")),
		d.ital, 10, creator.TextAlignmentCenter, 0, 0)
}

func (d *doc) header(b BilanInfo) {
	d.line("Bénéficiaire : " + b.BeneficiaryName)
	d.line("Consultant : " + b.ConsultantName)
	d.line("Date de début : " + d.date(b.StartDate))
	if b.EndDate != nil {
		d.line("Date de fin : " + d.date(*b.EndDate))
	}
	d.text("Statut : "+b.Status, d.regular, 12, creator.TextAlignmentLeft, 0, 24)
}

func (d *doc) synthesis(v SynthesisData) {
	d.title("Synthèse de Bilan de Compétences")
	d.header(v.BilanInfo)

	d.heading("Compétences évaluées")
	if len(v.Skills) == 0 {
		d.para("Aucune compétence évaluée.")
	}
	for _, s := range v.Skills {
		d.text(fmt.Sprintf("• %s : %d/5", s.Name, s.Level), d.regular, 12, creator.TextAlignmentLeft, 20, 2)
	}
	d.line("")

	d.heading("Recommandations")
	if len(v.Recommendations) == 0 {
		d.para("Aucune recommandation.")
	}
	for i, r := range v.Recommendations {
		d.text(fmt.Sprintf("%d. %s", i+1, r.Title), d.bold, 12, creator.TextAlignmentLeft, 20, 2)
		d.text(r.Description, d.regular, 12, creator.TextAlignmentLeft, 40, 10)
	}

	d.heading("Plan d'action")
	d.para(orDefault(v.ActionPlan, "Aucun plan d'action défini."))

	if strings.TrimSpace(v.Content) != "" {
		d.heading("Synthèse")
		for _, block := range strings.Split(v.Content, "\n\n") {
			if s := strings.TrimSpace(block); s != "" {
				d.para(s)
			}
		}
	}
	d.footer()
}

func (d *doc) attestation(v AttestationData) {
	d.title("Attestation de Bilan de Compétences")
	d.line("")
	d.para(fmt.Sprintf("Je soussigné(e), %s, consultant(e) en bilan de compétences,", v.ConsultantName))
	d.para(fmt.Sprintf("Atteste que %s a suivi un bilan de compétences au sein de %s.", v.BeneficiaryName, v.OrganizationName))

	period := "du " + d.date(v.StartDate)
	if v.EndDate != nil {
		period += " au " + d.date(*v.EndDate)
	}
	d.para(fmt.Sprintf("Ce bilan s'est déroulé %s, pour une durée totale de %s heures.", period, formatHours(v.TotalHours)))
	d.para("Le bilan de compétences a été réalisé conformément aux dispositions des articles L. 6313-1 et suivants du Code du travail.")

	d.text("Fait le "+d.now.Format("02/01/2006"), d.regular, 12, creator.TextAlignmentRight, 0, 10)
	d.text("Le consultant,", d.regular, 12, creator.TextAlignmentRight, 0, 24)
	d.text(v.ConsultantName, d.regular, 12, creator.TextAlignmentRight, 0, 48)
	d.footer()
}

func (d *doc) sessionReport(v SessionReportData) {
	d.title(fmt.Sprintf("Compte-rendu de séance #%d", v.SessionNumber))
	d.line(fmt.Sprintf("Bilan n° %d", v.BilanID))
	d.line("Bénéficiaire : " + v.BeneficiaryName)
	d.line("Consultant : " + v.ConsultantName)
	d.line("Date : " + d.date(v.Date))
	d.text(fmt.Sprintf("Durée : %d minutes", v.DurationMinutes), d.regular, 12, creator.TextAlignmentLeft, 0, 24)

	d.heading("Notes de séance")
	d.para(orDefault(v.Notes, "Aucune note disponible"))
	d.heading("Prochaines étapes")
	d.para(orDefault(v.NextSteps, "Continuer l'évaluation des compétences et préparer la prochaine session de travail."))
	d.footer()
}

func (d *doc) bytes() ([]byte, error) {
	if d.err != nil {
		return nil, fmt.Errorf("pdfgen: draw: %w", d.err)
	}
	var buf bytes.Buffer
	if err := d.c.Write(&buf); err != nil {
		return nil, fmt.Errorf("pdfgen: write: %w", err)
	}
	return buf.Bytes(), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// formatHours prints whole hours without decimals and halves as "1,5".
func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return fmt.Sprintf("%d", int64(h))
	}
	return strings.Replace(fmt.Sprintf("%.1f", h), ".", ",", 1)
}

// Func adapts a function to Renderer.
type Func func(kind Kind, data any) ([]byte, error)

// Render calls f.
func (f Func) Render(kind Kind, data any) ([]byte, error) { return f(kind, data) }
