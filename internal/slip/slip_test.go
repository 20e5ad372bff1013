package slip

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/erazemk/labshaker/internal/model"
)

func testReservation() model.Reservation {
	return model.Reservation{
		ID:             "0b6f4f4e-2f0c-4b8e-a8f4-5d1e0c3f8a11",
		DeviceID:       "2",
		StartDate:      model.MustParseDate("2024-03-01"),
		EndDate:        model.MustParseDate("2024-03-05"),
		QuantityFlasks: 6,
		Microorganism:  model.MicroorganismFungi,
		FlaskVolume:    model.FlaskVolume500,
		TemperatureC:   28.5,
		RPM:            180,
		Project:        model.ProjectPostgrad,
		RequesterName:  "João Araújo",
		RequesterEmail: "joao@example.com",
		Notes:          "Meio BDA",
		Status:         model.StatusScheduled,
		CreatedAt:      time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	d := model.Device{ID: "2", Name: "Shaker Incubadora 02", Brand: "Thermo", Model: "MaxQ 6000", CapacityFlasks: 12, Active: true}

	out, err := Render(testReservation(), d, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output is not a PDF: %q", out[:min(8, len(out))])
	}
}

func TestRenderWithPhoto(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		for y := 0; y < 24; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var photo bytes.Buffer
	jpeg.Encode(&photo, img, nil)

	withPhoto, err := Render(testReservation(), model.Device{ID: "2", Name: "Shaker"}, photo.Bytes())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	without, _ := Render(testReservation(), model.Device{ID: "2", Name: "Shaker"}, nil)
	if len(withPhoto) <= len(without) {
		t.Errorf("photo not embedded: %d <= %d bytes", len(withPhoto), len(without))
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(model.Reservation{ID: "abc"}); got != "reserva-abc.pdf" {
		t.Errorf("Filename = %s", got)
	}
}
