package certificate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// RenderInput carries everything the renderer needs for one artifact.
type RenderInput struct {
	ParticipantName string
	RoomTitle       string
	CertificateNo   string
	IssuedDate      string
}

// Renderer produces the completion artifact for one member and returns the
// path of the written file.
type Renderer interface {
	Render(ctx context.Context, input *RenderInput) (string, error)
}

// PDFRenderer renders A4 participation certificates into a directory.
type PDFRenderer struct {
	dir string
}

// NewPDFRenderer creates a PDF renderer writing into dir, creating it if
// needed.
func NewPDFRenderer(dir string) (*PDFRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create certificate directory: %w", err)
	}
	return &PDFRenderer{dir: dir}, nil
}

// Render writes the certificate PDF and returns its path. The file name is
// the stable convention certificate_<number>.pdf that the public fetch
// endpoint resolves.
func (p *PDFRenderer) Render(_ context.Context, input *RenderInput) (string, error) {
	filePath := filepath.Join(p.dir, ArtifactFileName(input.CertificateNo))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	w, h := pdf.GetPageSize()

	// Dark background with an accent frame.
	pdf.SetFillColor(0x0F, 0x12, 0x21)
	pdf.Rect(0, 0, w, h, "F")
	pdf.SetDrawColor(0x00, 0xE0, 0xA4)
	pdf.SetLineWidth(2)
	pdf.Rect(7, 7, w-14, h-14, "D")

	pdf.SetY(50)
	pdf.SetTextColor(0x00, 0xE0, 0xA4)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(0, 14, "CampusLink - Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.Ln(18)
	pdf.SetTextColor(0xFF, 0xFF, 0xFF)
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 9, "This is to certify that", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 11, input.ParticipantName, "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 9, fmt.Sprintf("took part in the project %q", input.RoomTitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 9, "Issued on "+input.IssuedDate, "", 1, "C", false, 0, "")

	pdf.Ln(16)
	pdf.SetTextColor(0x7A, 0xEA, 0xD0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Certificate number: "+input.CertificateNo, "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("write certificate pdf: %w", err)
	}
	return filePath, nil
}

// ArtifactFileName is the stable file-name convention certificates are
// retrieved by.
func ArtifactFileName(certificateNo string) string {
	return "certificate_" + certificateNo + ".pdf"
}
