// Package slip renders the printable confirmation of a reservation.
package slip

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/erazemk/labshaker/internal/model"
)

const (
	qrName    = "qr"
	photoName = "photo"
)

// Render builds a one-page A4 PDF for r on device d. The QR code encodes the
// reservation ID. photo, if not nil, is a JPEG printed beside the header.
func Render(r model.Reservation, d model.Device, photo []byte) ([]byte, error) {
	qr, err := qrcode.Encode("labshaker:reservation:"+r.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Reservation "+r.ID, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Comprovante de reserva"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Reserva", r.ID},
		{"Status", r.Status.Label()},
		{"Shaker", fmt.Sprintf("%s (%s %s)", d.Name, d.Brand, d.Model)},
		{"Período", r.StartDate.String() + " a " + r.EndDate.String()},
		{"Frascos", fmt.Sprintf("%d x %s", r.QuantityFlasks, r.FlaskVolume.Label())},
		{"Microrganismo", r.Microorganism.Label()},
		{"Temperatura", strconv.FormatFloat(r.TemperatureC, 'f', -1, 64) + " °C"},
		{"Rotação", fmt.Sprintf("%d rpm", r.RPM)},
		{"Projeto", r.Project.Label()},
		{"Solicitante", fmt.Sprintf("%s <%s>", r.RequesterName, r.RequesterEmail)},
	}
	if r.Notes != "" {
		rows = append(rows, [2]string{"Observações", r.Notes})
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(40, 8, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, tr(row[1]), "", 1, "L", false, 0, "")
	}

	png := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrName, png, bytes.NewReader(qr))
	pdf.ImageOptions(qrName, 150, 20, 40, 40, false, png, 0, "")

	if photo != nil {
		jpg := gofpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader(photoName, jpg, bytes.NewReader(photo))
		pdf.ImageOptions(photoName, 150, 65, 40, 0, false, jpg, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name of the slip for r.
func Filename(r model.Reservation) string {
	return "reserva-" + r.ID + ".pdf"
}
