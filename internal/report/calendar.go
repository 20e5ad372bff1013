package report

import "github.com/erazemk/labshaker/internal/model"

// CalendarEntry is one reservation shown on a calendar day.
type CalendarEntry struct {
	ReservationID string                  `json:"reservation_id"`
	DeviceID      string                  `json:"device_id"`
	DeviceName    string                  `json:"device_name"`
	Project       model.Project           `json:"project"`
	Status        model.ReservationStatus `json:"status"`
}

// CalendarDay lists the reservations covering one day.
type CalendarDay struct {
	Date    model.Date      `json:"date"`
	Entries []CalendarEntry `json:"entries"`
}

// Calendar lists, for every day of p, the reservations covering it.
// Cancelled reservations are included so the calendar can show them struck
// through.
func Calendar(devices []model.Device, reservations []model.Reservation, p Period) []CalendarDay {
	names := make(map[string]string, len(devices))
	for _, d := range devices {
		names[d.ID] = d.Name
	}

	days := make([]CalendarDay, 0, p.Days())
	for day := p.Start; !day.After(p.End); day = day.AddDays(1) {
		cd := CalendarDay{Date: day, Entries: []CalendarEntry{}}
		for _, r := range reservations {
			if !r.Covers(day) {
				continue
			}
			cd.Entries = append(cd.Entries, CalendarEntry{
				ReservationID: r.ID,
				DeviceID:      r.DeviceID,
				DeviceName:    names[r.DeviceID],
				Project:       r.Project,
				Status:        r.Status,
			})
		}
		days = append(days, cd)
	}
	return days
}
