package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"leadboard/internal/models"
)

// Generator is what the transition engine calls when a lead reaches PI.
type Generator interface {
	GenerateProforma(lead *models.Lead) (string, error)
}

// DocumentGenerator writes proforma invoices under RootDir.
type DocumentGenerator struct {
	RootDir     string // storage root, e.g. "./files"
	CompanyName string // issuing company shown in the header
}

func NewDocumentGenerator(rootDir, companyName string) *DocumentGenerator {
	if companyName == "" {
		companyName = "Lead Board"
	}
	return &DocumentGenerator{RootDir: filepath.Clean(rootDir), CompanyName: companyName}
}

// GenerateProforma renders the lead's order items into a proforma invoice
// and returns the path of the written file.
func (g *DocumentGenerator) GenerateProforma(lead *models.Lead) (string, error) {
	target, err := g.ensureTarget(fmt.Sprintf("proforma_%s.pdf", lead.ID))
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Proforma Invoice %s", lead.ID), false)
	pdf.SetAuthor(g.CompanyName, false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "PROFORMA INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, g.CompanyName, "", 1, "C", false, 0, "")
	g.hr(pdf)

	client, company := "-", "-"
	if lead.AccountMaster != nil {
		client = lead.AccountMaster.ClientName
		company = lead.AccountMaster.CompanyName
	}
	g.kvLine(pdf, "Reference", lead.ID)
	g.kvLine(pdf, "Company", company)
	g.kvLine(pdf, "Client", client)
	g.kvLine(pdf, "Date", lead.LeadDate.Format("02.01.2006"))
	if !lead.DeliveryDate.IsZero() {
		g.kvLine(pdf, "Delivery by", lead.DeliveryDate.Format("02.01.2006"))
	}
	pdf.Ln(2)
	g.hr(pdf)

	// Item table
	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{10, 55, 35, 15, 25, 15, 25}
	heads := []string{"#", "Model", "Customization", "Qty", "Rate", "GST%", "Total"}
	for i, h := range heads {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	grand := decimal.Zero
	for i, it := range lead.Items {
		total := it.Total
		if total.IsZero() {
			total = it.ComputeTotal()
		}
		grand = grand.Add(total)
		cells := []string{
			fmt.Sprintf("%d", i+1),
			it.ModelSuggestion,
			it.CustomizationType,
			fmt.Sprintf("%d", it.Qty),
			it.Rate.StringFixed(2),
			it.GST.StringFixed(1),
			total.StringFixed(2),
		}
		aligns := []string{"C", "L", "L", "C", "R", "R", "R"}
		for j, cell := range cells {
			pdf.CellFormat(widths[j], 7, cell, "1", 0, aligns[j], false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(155, 7, "Grand Total (INR)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, grand.StringFixed(2), "1", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5,
		"This proforma invoice is issued for order confirmation purposes and is not a demand for payment.",
		"", "L", false)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if err := pdf.OutputFileAndClose(target); err != nil {
		return "", err
	}
	return target, nil
}

func (g *DocumentGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // never write outside RootDir
	return filepath.Join(g.RootDir, filename), nil
}

func (g *DocumentGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y, 195, y)
	pdf.SetY(y + 2)
}
