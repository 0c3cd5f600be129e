// Package reports exports a rendered dashboard view as a PDF document.
package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/seclens/seclens/internal/dashboard"
)

type pdfReport struct {
	pdf *gofpdf.Fpdf
}

func newPDFReport(title string) *pdfReport {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)

	r := &pdfReport{pdf: pdf}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 15, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("January 2, 2006 3:04 PM")), "", 1, "C", false, 0, "")

	pdf.Ln(10)
	return r
}

func (r *pdfReport) addSection(title string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(33, 37, 41)
	r.pdf.SetFillColor(240, 240, 240)
	r.pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	r.pdf.Ln(3)
}

func (r *pdfReport) addKeyValue(key, value string) {
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(108, 117, 125)
	r.pdf.CellFormat(60, 7, key+":", "", 0, "L", false, 0, "")

	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetTextColor(33, 37, 41)
	r.pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

func (r *pdfReport) addParagraph(text string) {
	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(108, 117, 125)
	r.pdf.MultiCell(0, 6, text, "", "L", false)
	r.pdf.Ln(3)
}

func (r *pdfReport) addTable(headers []string, rows [][]string) {
	pageWidth := 180.0 // A4 width minus margins
	colWidth := pageWidth / float64(len(headers))

	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.SetFillColor(52, 58, 64)
	r.pdf.SetTextColor(255, 255, 255)
	for _, h := range headers {
		r.pdf.CellFormat(colWidth, 8, h, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(33, 37, 41)
	fill := false
	for _, row := range rows {
		if fill {
			r.pdf.SetFillColor(248, 249, 250)
		} else {
			r.pdf.SetFillColor(255, 255, 255)
		}
		for _, cell := range row {
			if len(cell) > 25 {
				cell = cell[:22] + "..."
			}
			r.pdf.CellFormat(colWidth, 7, cell, "1", 0, "L", true, 0, "")
		}
		r.pdf.Ln(-1)
		fill = !fill
	}

	r.pdf.Ln(5)
}

// WritePDF renders the hierarchical scan view into w: the summary block
// first, then one section per asset in view order with its CIA sub-scores
// and risk table.
func WritePDF(w io.Writer, view *dashboard.View) error {
	r := newPDFReport("Scan Report: " + view.Summary.DomainName)

	r.addSection("Scan Overview")
	r.addKeyValue("Scan ID", view.Summary.ScanID)
	r.addKeyValue("Status", view.Summary.Status)
	r.addKeyValue("Requested", view.Summary.RequestedAt)
	r.addKeyValue("Aggregate Risk Score", view.Summary.TotalRiskScore)
	r.addKeyValue("Discovered Assets", fmt.Sprintf("%d", view.Summary.AssetCount))
	r.pdf.Ln(5)

	if len(view.Assets) == 0 {
		r.addParagraph("No assets have been discovered for this scan yet.")
	}

	for _, asset := range view.Assets {
		r.addSection(fmt.Sprintf("%s (%s)", asset.Value, asset.AssetType))
		r.addKeyValue("Asset ID", asset.ID)
		r.addKeyValue("SCA Score", fmt.Sprintf("%s (%s)", asset.SCAScore, asset.SCATier))
		r.addKeyValue("Confidentiality", asset.SCAConf)
		r.addKeyValue("Integrity", asset.SCAInteg)
		r.addKeyValue("Availability", asset.SCAAvail)
		r.pdf.Ln(3)

		if len(asset.Risks) == 0 {
			r.addParagraph("No risks found for this asset.")
			continue
		}

		rows := make([][]string, 0, len(asset.Risks))
		for _, risk := range asset.Risks {
			rows = append(rows, []string{risk.CVEID, risk.CVSSScore, risk.RiskScore, string(risk.Tier)})
		}
		r.addTable([]string{"CVE", "CVSS", "Risk (NR)", "Tier"}, rows)
	}

	if err := r.pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
