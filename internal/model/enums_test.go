package model

import "testing"

func TestEnumLabelsAreSeparateFromTags(t *testing.T) {
	if MicroorganismFungi.Label() != "Fungos" {
		t.Errorf("unexpected label %q", MicroorganismFungi.Label())
	}
	if ProjectPostgrad.Label() != "Pós-graduação" {
		t.Errorf("unexpected label %q", ProjectPostgrad.Label())
	}
	if StatusCancelled.Label() != "Cancelado" {
		t.Errorf("unexpected label %q", StatusCancelled.Label())
	}
	if FlaskVolume500.Label() != "500 mL" {
		t.Errorf("unexpected label %q", FlaskVolume500.Label())
	}

	// Labels are not accepted as stored values.
	if Microorganism("Fungos").Valid() {
		t.Error("display label must not validate as a tag")
	}
	if Project("EMBRAPII").Valid() {
		t.Error("display label must not validate as a tag")
	}
}

func TestEnumValidity(t *testing.T) {
	for _, m := range Microorganisms() {
		if !m.Valid() {
			t.Errorf("expected %q to be valid", m)
		}
	}
	for _, p := range Projects() {
		if !p.Valid() {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if FlaskVolume(750).Valid() {
		t.Error("expected 750 mL to be invalid")
	}
	if ReservationStatus("pending").Valid() {
		t.Error("expected pending to be invalid")
	}
}

func TestEnumOptions(t *testing.T) {
	opts := EnumOptions()
	if len(opts["microorganism"]) != 5 {
		t.Errorf("expected 5 microorganisms, got %d", len(opts["microorganism"]))
	}
	if len(opts["project"]) != 5 {
		t.Errorf("expected 5 projects, got %d", len(opts["project"]))
	}
	if len(opts["flask_volume_ml"]) != 3 || opts["flask_volume_ml"][2].Value != "1000" {
		t.Errorf("unexpected flask volumes %v", opts["flask_volume_ml"])
	}
	if len(opts["status"]) != 3 {
		t.Errorf("expected 3 statuses, got %d", len(opts["status"]))
	}
}
