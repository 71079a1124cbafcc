package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// IDCard carries the printable fields for one member card. The front face
// shows the identity fields; the contact fields go on the back.
type IDCard struct {
	Name          string
	PRN           string
	LibraryNumber string
	Course        string
	Gender        string
	BloodGroup    string
	DateOfBirth   string
	Mobile        string
	Address       string
	PhotoURL      string
}

// PhotoLoader resolves a photo URL into image bytes plus the gofpdf image
// type ("JPG" or "PNG"). Errors are tolerated; the card falls back to a
// placeholder box.
type PhotoLoader interface {
	Load(url string) (data []byte, imageType string, err error)
}

// IDCardExporter lays out front and back card faces on A4 sheets, four
// members per page, front on the left and back on the right of each row.
type IDCardExporter struct {
	photos      PhotoLoader
	institution string
	portalURL   string
}

// NewIDCardExporter constructs the card renderer. The portal URL is what
// the back-face QR code encodes.
func NewIDCardExporter(photos PhotoLoader, institution, portalURL string) *IDCardExporter {
	if institution == "" {
		institution = "BHARATI VIDYAPEETH DECCAN COLLEGE"
	}
	return &IDCardExporter{photos: photos, institution: institution, portalURL: portalURL}
}

const (
	cardPageMargin = 10.0
	cardWidth      = (210 - 3*cardPageMargin) / 2
	cardHeight     = (297 - 5*cardPageMargin) / 4
	cardsPerPage   = 4
	photoWidth     = 25.0
	photoHeight    = 30.0
	frontHeaderH   = 18.0
	backHeaderH    = 14.0
	qrSize         = 22.0
)

// Render produces the PDF bytes for the given members.
func (e *IDCardExporter) Render(cards []IDCard) ([]byte, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("no members to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, card := range cards {
		slot := i % cardsPerPage
		if slot == 0 {
			pdf.AddPage()
		}
		y := cardPageMargin + float64(slot)*(cardHeight+cardPageMargin)
		frontX := cardPageMargin
		backX := cardPageMargin*2 + cardWidth

		e.drawFront(pdf, frontX, y, i, card)
		e.drawBack(pdf, backX, y, i, card)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render id cards: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *IDCardExporter) drawFront(pdf *gofpdf.Fpdf, x, y float64, idx int, card IDCard) {
	pdf.SetDrawColor(30, 60, 120)
	pdf.SetLineWidth(0.4)
	pdf.Rect(x, y, cardWidth, cardHeight, "D")

	pdf.SetFillColor(30, 60, 120)
	pdf.Rect(x, y, cardWidth, frontHeaderH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 8)
	pdf.SetXY(x+2, y+2.5)
	pdf.CellFormat(cardWidth-4, 4, e.institution, "", 0, "C", false, 0, "")
	pdf.SetFont("Arial", "", 6)
	pdf.SetXY(x+2, y+7)
	pdf.CellFormat(cardWidth-4, 3.5, "DEPARTMENT OF LIBRARY SERVICES", "", 0, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 7)
	pdf.SetXY(x+2, y+12)
	pdf.CellFormat(cardWidth-4, 4, "LIBRARY IDENTITY CARD", "", 0, "C", false, 0, "")

	photoX := x + 3
	photoY := y + frontHeaderH + 3
	e.drawPhoto(pdf, photoX, photoY, idx, card.PhotoURL)

	pdf.SetTextColor(0, 0, 0)
	textX := photoX + photoWidth + 4
	textW := cardWidth - (textX - x) - 3
	lineY := photoY

	pdf.SetFont("Arial", "B", 8)
	pdf.SetXY(textX, lineY)
	pdf.CellFormat(textW, 4, card.Name, "", 0, "L", false, 0, "")
	lineY += 5.5

	pdf.SetFont("Arial", "", 6.5)
	fields := []struct{ label, value string }{
		{"PRN", card.PRN},
		{"Course", card.Course},
		{"Gender", card.Gender},
		{"Blood Group", card.BloodGroup},
	}
	for _, f := range fields {
		pdf.SetXY(textX, lineY)
		pdf.SetFont("Arial", "B", 6.5)
		pdf.CellFormat(17, 3.4, f.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 6.5)
		pdf.CellFormat(textW-17, 3.4, f.value, "", 0, "L", false, 0, "")
		lineY += 3.8
	}

	pdf.SetFillColor(30, 60, 120)
	pdf.Rect(x+3, y+cardHeight-7, cardWidth-6, 5, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 6.5)
	pdf.SetXY(x+3, y+cardHeight-6)
	pdf.CellFormat(cardWidth-6, 3, "LIB ID: "+card.LibraryNumber, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (e *IDCardExporter) drawBack(pdf *gofpdf.Fpdf, x, y float64, idx int, card IDCard) {
	pdf.SetDrawColor(30, 60, 120)
	pdf.SetLineWidth(0.4)
	pdf.Rect(x, y, cardWidth, cardHeight, "D")

	pdf.SetFillColor(30, 60, 120)
	pdf.Rect(x, y, cardWidth, backHeaderH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 7.5)
	pdf.SetXY(x+2, y+5)
	pdf.CellFormat(cardWidth-4, 4, "LIBRARY CARD - BACK", "", 0, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	detailW := cardWidth - qrSize - 12
	lineY := y + backHeaderH + 3
	fields := []struct{ label, value string }{
		{"Blood Group", card.BloodGroup},
		{"Mobile", card.Mobile},
		{"DOB", card.DateOfBirth},
	}
	for _, f := range fields {
		pdf.SetXY(x+3, lineY)
		pdf.SetFont("Arial", "B", 6.5)
		pdf.CellFormat(17, 3.4, f.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 6.5)
		pdf.CellFormat(detailW-17, 3.4, f.value, "", 0, "L", false, 0, "")
		lineY += 4
	}

	pdf.SetFont("Arial", "B", 6.5)
	pdf.SetXY(x+3, lineY+1)
	pdf.CellFormat(detailW, 3.4, "Address:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 6)
	pdf.SetXY(x+3, lineY+5)
	pdf.MultiCell(detailW, 3.2, card.Address, "", "L", false)

	qrX := x + cardWidth - qrSize - 4
	qrY := y + cardHeight - qrSize - 8
	e.drawQR(pdf, qrX, qrY, idx)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetFont("Arial", "", 5)
	pdf.SetXY(qrX, qrY+qrSize+1)
	pdf.CellFormat(qrSize, 3, "Scan for Portal", "", 0, "C", false, 0, "")

	pdf.SetXY(x+3, y+cardHeight-4)
	pdf.CellFormat(cardWidth-6, 3, "Valid only with student ID verification", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (e *IDCardExporter) drawPhoto(pdf *gofpdf.Fpdf, x, y float64, idx int, photoURL string) {
	if e.photos != nil && photoURL != "" {
		if data, imageType, err := e.photos.Load(photoURL); err == nil && len(data) > 0 {
			name := fmt.Sprintf("member-photo-%d", idx)
			opts := gofpdf.ImageOptions{ImageType: imageType}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
			if pdf.Ok() {
				pdf.ImageOptions(name, x, y, photoWidth, photoHeight, false, opts, 0, "")
				pdf.Rect(x, y, photoWidth, photoHeight, "D")
				return
			}
			// A corrupt image poisons the whole document; reset and
			// fall through to the placeholder.
			pdf.ClearError()
		}
	}

	pdf.SetFillColor(235, 235, 235)
	pdf.Rect(x, y, photoWidth, photoHeight, "FD")
	pdf.SetTextColor(120, 120, 120)
	pdf.SetFont("Arial", "", 5)
	pdf.SetXY(x, y+photoHeight/2-3)
	pdf.CellFormat(photoWidth, 3, "STUDENT", "", 0, "C", false, 0, "")
	pdf.SetXY(x, y+photoHeight/2)
	pdf.CellFormat(photoWidth, 3, "PHOTO", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (e *IDCardExporter) drawQR(pdf *gofpdf.Fpdf, x, y float64, idx int) {
	png, err := qrcode.Encode(e.portalURL, qrcode.Medium, 256)
	if err == nil {
		name := fmt.Sprintf("portal-qr-%d", idx)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		if pdf.Ok() {
			pdf.ImageOptions(name, x, y, qrSize, qrSize, false, opts, 0, "")
			return
		}
		pdf.ClearError()
	}

	pdf.SetFillColor(220, 220, 220)
	pdf.Rect(x, y, qrSize, qrSize, "F")
	pdf.SetFont("Arial", "B", 7)
	pdf.SetXY(x, y+qrSize/2-2)
	pdf.CellFormat(qrSize, 4, "QR", "", 0, "C", false, 0, "")
}
