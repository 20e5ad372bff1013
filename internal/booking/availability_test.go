package booking

import (
	"strings"
	"testing"

	"github.com/erazemk/labshaker/internal/model"
)

var date = model.MustParseDate

func scheduled(id, deviceID, start, end string) model.Reservation {
	return model.Reservation{
		ID:             id,
		DeviceID:       deviceID,
		StartDate:      date(start),
		EndDate:        date(end),
		QuantityFlasks: 4,
		Status:         model.StatusScheduled,
	}
}

func TestCheck(t *testing.T) {
	devices := []model.Device{
		{ID: "D", Name: "D", CapacityFlasks: 10, Active: true},
		{ID: "E", Name: "E", CapacityFlasks: 10, Active: false},
		{ID: "F", Name: "F", CapacityFlasks: 5, Active: true},
	}
	reservations := []model.Reservation{
		scheduled("r1", "D", "2024-03-01", "2024-03-05"),
	}

	tests := []struct {
		name string
		req  Request
		code Code
	}{
		{"boundary day overlaps", Request{DeviceID: "D", Start: date("2024-03-05"), End: date("2024-03-06"), Quantity: 1}, CodeOverlap},
		{"day after is free", Request{DeviceID: "D", Start: date("2024-03-06"), End: date("2024-03-10"), Quantity: 1}, CodeAvailable},
		{"day before start overlaps", Request{DeviceID: "D", Start: date("2024-02-20"), End: date("2024-03-01"), Quantity: 1}, CodeOverlap},
		{"enclosing range overlaps", Request{DeviceID: "D", Start: date("2024-02-01"), End: date("2024-04-01"), Quantity: 1}, CodeOverlap},
		{"inactive device", Request{DeviceID: "E", Start: date("2030-01-01"), End: date("2030-01-01"), Quantity: 1}, CodeDeviceInactive},
		{"over capacity", Request{DeviceID: "F", Start: date("2024-03-01"), End: date("2024-03-02"), Quantity: 8}, CodeOverCapacity},
		{"at capacity", Request{DeviceID: "F", Start: date("2024-03-01"), End: date("2024-03-02"), Quantity: 5}, CodeAvailable},
		{"unknown device", Request{DeviceID: "X", Start: date("2024-03-01"), End: date("2024-03-02"), Quantity: 1}, CodeDeviceNotFound},
		{"other device not affected", Request{DeviceID: "F", Start: date("2024-03-03"), End: date("2024-03-03"), Quantity: 1}, CodeAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(devices, reservations, tt.req)
			if got.Code != tt.code {
				t.Fatalf("Check() code = %s, want %s (reason %q)", got.Code, tt.code, got.Reason)
			}
			if got.Available != (tt.code == CodeAvailable) {
				t.Errorf("Check() available = %v for code %s", got.Available, got.Code)
			}
			if got.Available && got.Reason != "" {
				t.Errorf("available result carries reason %q", got.Reason)
			}
			if !got.Available && got.Reason == "" {
				t.Error("rejection without reason")
			}
		})
	}
}

func TestCheckReasons(t *testing.T) {
	devices := []model.Device{
		{ID: "D", CapacityFlasks: 10, Active: true},
		{ID: "E", CapacityFlasks: 10, Active: false},
		{ID: "F", CapacityFlasks: 5, Active: true},
	}
	reservations := []model.Reservation{scheduled("r1", "D", "2024-03-01", "2024-03-05")}

	got := Check(devices, reservations, Request{DeviceID: "X", Start: date("2024-03-01"), End: date("2024-03-01"), Quantity: 1})
	if got.Reason != "device not found" {
		t.Errorf("not found reason = %q", got.Reason)
	}

	got = Check(devices, reservations, Request{DeviceID: "E", Start: date("2024-03-01"), End: date("2024-03-01"), Quantity: 1})
	if got.Reason != "device unavailable (maintenance/out of service)" {
		t.Errorf("inactive reason = %q", got.Reason)
	}

	got = Check(devices, reservations, Request{DeviceID: "D", Start: date("2024-03-04"), End: date("2024-03-08"), Quantity: 1})
	if !strings.Contains(got.Reason, "2024-03-01") || !strings.Contains(got.Reason, "2024-03-05") {
		t.Errorf("overlap reason %q does not cite the conflicting dates", got.Reason)
	}
	if got.Conflict == nil || got.Conflict.ID != "r1" {
		t.Errorf("conflict = %+v, want r1", got.Conflict)
	}

	got = Check(devices, reservations, Request{DeviceID: "F", Start: date("2024-03-01"), End: date("2024-03-01"), Quantity: 6})
	if !strings.Contains(got.Reason, "5") {
		t.Errorf("capacity reason %q does not cite the capacity", got.Reason)
	}
}

func TestCheckInactiveBeforeOverlap(t *testing.T) {
	devices := []model.Device{{ID: "E", CapacityFlasks: 10, Active: false}}
	reservations := []model.Reservation{scheduled("r1", "E", "2024-03-01", "2024-03-05")}

	got := Check(devices, reservations, Request{DeviceID: "E", Start: date("2024-03-02"), End: date("2024-03-03"), Quantity: 50})
	if got.Code != CodeDeviceInactive {
		t.Fatalf("code = %s, want %s", got.Code, CodeDeviceInactive)
	}
}

func TestCheckExcludesSelf(t *testing.T) {
	devices := []model.Device{{ID: "D", CapacityFlasks: 10, Active: true}}
	reservations := []model.Reservation{scheduled("r1", "D", "2024-03-01", "2024-03-05")}
	req := Request{DeviceID: "D", Start: date("2024-03-02"), End: date("2024-03-07"), Quantity: 2}

	if got := Check(devices, reservations, req); got.Available {
		t.Fatal("expected overlap without exclusion")
	}
	req.ExcludeReservationID = "r1"
	if got := Check(devices, reservations, req); !got.Available {
		t.Fatalf("expected exclusion to allow self overlap, got %q", got.Reason)
	}
}

func TestCheckIgnoresFinishedReservations(t *testing.T) {
	devices := []model.Device{{ID: "D", CapacityFlasks: 10, Active: true}}
	cancelled := scheduled("r1", "D", "2024-03-01", "2024-03-05")
	cancelled.Status = model.StatusCancelled
	completed := scheduled("r2", "D", "2024-03-01", "2024-03-05")
	completed.Status = model.StatusCompleted

	got := Check(devices, []model.Reservation{cancelled, completed},
		Request{DeviceID: "D", Start: date("2024-03-01"), End: date("2024-03-05"), Quantity: 10})
	if !got.Available {
		t.Fatalf("finished reservations blocked the device: %q", got.Reason)
	}
}

// Capacity bounds a single request. Two requests that each fit are still
// refused when they share a day, and a request is not refused because other
// reservations would push a sum over capacity.
func TestCheckCapacityIsNotPooled(t *testing.T) {
	devices := []model.Device{{ID: "D", CapacityFlasks: 10, Active: true}}
	small := scheduled("r1", "D", "2024-03-01", "2024-03-01")
	small.QuantityFlasks = 1

	got := Check(devices, []model.Reservation{small},
		Request{DeviceID: "D", Start: date("2024-03-01"), End: date("2024-03-01"), Quantity: 1})
	if got.Code != CodeOverlap {
		t.Fatalf("code = %s, want %s even though 1+1 fits capacity", got.Code, CodeOverlap)
	}

	big := scheduled("r2", "D", "2024-03-01", "2024-03-01")
	big.QuantityFlasks = 10
	got = Check(devices, []model.Reservation{big},
		Request{DeviceID: "D", Start: date("2024-03-02"), End: date("2024-03-02"), Quantity: 10})
	if !got.Available {
		t.Fatalf("full-capacity request on a free day refused: %q", got.Reason)
	}
}
