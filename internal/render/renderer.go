// Package render draws certificate records onto a fixed 1200×675 surface and
// encodes the result as a lossless PNG. The layout is deterministic: the same
// record always produces the same pixels.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	customerrors "github.com/sicfor/sicfor/internal/errors"
	"github.com/sicfor/sicfor/internal/models"
)

// Fixed layout geometry. The surface is landscape 16:9 with a colored band
// across the top, a centered recipient block, a wrapped note column and a
// footer row.
const (
	CanvasWidth  = 1200
	CanvasHeight = 675

	bandHeight = 110

	// NoteMaxWidth constrains each wrapped note line.
	NoteMaxWidth = 880
	// NoteLineHeight is the fixed vertical advance per wrapped line.
	NoteLineHeight = 34

	marginX = 48
	centerX = CanvasWidth / 2

	titleBaselineY  = 66
	issuerBaselineY = 94
	labelY          = 232
	nameY           = 294
	noteStartY      = 372
	footerY         = 628

	scanBoxSize  = 96
	scanBoxCells = 8
	scanBoxX     = CanvasWidth - marginX - scanBoxSize
	scanBoxY     = footerY - scanBoxSize - 36
)

// Band gradient endpoints, left to right.
var (
	bandLeftColor  = color.RGBA{R: 0x1E, G: 0x3A, B: 0x8A, A: 0xFF}
	bandRightColor = color.RGBA{R: 0x0E, G: 0xA5, B: 0xE9, A: 0xFF}
)

// Renderer holds the parsed font faces so they are built once and reused for
// every render. Faces come from the embedded Go fonts, so rendering needs no
// files from the environment and stays reproducible.
type Renderer struct {
	titleFace  font.Face
	issuerFace font.Face
	labelFace  font.Face
	nameFace   font.Face
	noteFace   font.Face
	footerFace font.Face
}

// NewRenderer parses the embedded fonts and prepares the fixed set of faces.
func NewRenderer() (*Renderer, error) {
	mkFace := func(ttf []byte, size float64) (font.Face, error) {
		parsed, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font: %w", err)
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build font face: %w", err)
		}
		return face, nil
	}

	r := &Renderer{}
	for _, f := range []struct {
		target *font.Face
		ttf    []byte
		size   float64
	}{
		{&r.titleFace, gobold.TTF, 42},
		{&r.issuerFace, goregular.TTF, 17},
		{&r.labelFace, goregular.TTF, 21},
		{&r.nameFace, gobold.TTF, 52},
		{&r.noteFace, goregular.TTF, 22},
		{&r.footerFace, goregular.TTF, 19},
	} {
		face, err := mkFace(f.ttf, f.size)
		if err != nil {
			return nil, err
		}
		*f.target = face
	}
	return r, nil
}

// Render draws the full certificate layout for the record onto a fresh
// surface and returns it.
func (r *Renderer) Render(record *models.Certificate) *gg.Context {
	dc := gg.NewContext(CanvasWidth, CanvasHeight)

	// 1. White background over the whole surface.
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// 2. Horizontal gradient band across the top.
	grad := gg.NewLinearGradient(0, 0, CanvasWidth, 0)
	grad.AddColorStop(0, bandLeftColor)
	grad.AddColorStop(1, bandRightColor)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, CanvasWidth, bandHeight)
	dc.Fill()

	// 3. Title, large and left-aligned inside the band.
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(r.titleFace)
	dc.DrawString(record.Title, marginX, titleBaselineY)

	// 4. Issuer line in small text below the title.
	dc.SetFontFace(r.issuerFace)
	dc.DrawString("issued by "+record.Issuer, marginX, issuerBaselineY)

	// 5. Centered recipient block.
	dc.SetRGB(0.42, 0.45, 0.50)
	dc.SetFontFace(r.labelFace)
	dc.DrawStringAnchored("Awarded to", centerX, labelY, 0.5, 0.5)

	dc.SetRGB(0.07, 0.09, 0.15)
	dc.SetFontFace(r.nameFace)
	dc.DrawStringAnchored(record.Name, centerX, nameY, 0.5, 0.5)

	// 6. Note body, word-wrapped into a centered fixed-width column.
	dc.SetRGB(0.25, 0.28, 0.35)
	dc.SetFontFace(r.noteFace)
	measure := func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}
	y := float64(noteStartY)
	for _, line := range WrapWords(measure, record.Note, NoteMaxWidth) {
		dc.DrawStringAnchored(line, centerX, y, 0.5, 0.5)
		y += NoteLineHeight
	}

	// 7. Footer: date on the left, verification code on the right.
	dc.SetRGB(0.35, 0.38, 0.44)
	dc.SetFontFace(r.footerFace)
	dc.DrawStringAnchored(FormatDate(record.Date), marginX, footerY, 0, 0.5)
	dc.DrawStringAnchored(record.VerificationCode, CanvasWidth-marginX, footerY, 1, 0.5)

	// 8. Decorative mock scan box in the bottom-right corner.
	drawScanBox(dc, record.VerificationCode)

	return dc
}

// EncodePNG writes the surface content as a lossless PNG.
func (r *Renderer) EncodePNG(dc *gg.Context, w io.Writer) error {
	return dc.EncodePNG(w)
}

// ExportPNG renders the record and returns the encoded PNG bytes.
func (r *Renderer) ExportPNG(record *models.Certificate) ([]byte, error) {
	dc := r.Render(record)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, customerrors.ErrRenderFailed{CertificateID: record.ID, Reason: err.Error()}
	}
	return buf.Bytes(), nil
}

// WrapWords breaks text into lines that never exceed maxWidth under the given
// measure function. Words accumulate into a candidate line; when appending
// the next word would push the line past maxWidth and the line already holds
// at least one word, the line is emitted and the word starts a new one. Words
// are never split, so a single word wider than the column still occupies its
// own (overwide) line. The trailing partial line is always emitted.
func WrapWords(measure func(string) float64, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if measure(candidate) > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
		} else {
			line = candidate
		}
	}
	lines = append(lines, line)
	return lines
}

// FormatDate renders an ISO 8601 date for the footer. Anything that does not
// parse is drawn verbatim.
func FormatDate(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("January 2, 2006")
}

// ImageFileName returns the download name for a rendered record.
func ImageFileName(record *models.Certificate) string {
	return fmt.Sprintf("certificate-%s.png", record.ID)
}

// drawScanBox paints the stylized checkerboard box in the bottom-right. The
// cell pattern derives from the verification code bytes so the same record
// always renders identically, but it is purely decorative: nothing encoded,
// nothing scannable.
func drawScanBox(dc *gg.Context, code string) {
	// Box frame on white.
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(scanBoxX, scanBoxY, scanBoxSize, scanBoxSize)
	dc.Fill()
	dc.SetRGB(0.07, 0.09, 0.15)
	dc.SetLineWidth(2)
	dc.DrawRectangle(scanBoxX, scanBoxY, scanBoxSize, scanBoxSize)
	dc.Stroke()

	if code == "" {
		code = "SICFOR"
	}

	cell := float64(scanBoxSize) / scanBoxCells
	for row := 0; row < scanBoxCells; row++ {
		for col := 0; col < scanBoxCells; col++ {
			idx := row*scanBoxCells + col
			b := code[idx%len(code)]
			if (int(b)+row+col)%2 != 0 {
				continue
			}
			dc.DrawRectangle(scanBoxX+float64(col)*cell, scanBoxY+float64(row)*cell, cell, cell)
			dc.Fill()
		}
	}
}
