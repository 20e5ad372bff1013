// Package report aggregates reservations over a period for the dashboard.
// Cancelled reservations never count, except in the calendar where they are
// listed with their status.
package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/labshaker/internal/model"
)

// Period is an inclusive range of days.
type Period struct {
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
}

// MonthPeriod returns the period covering the whole month.
func MonthPeriod(year int, month time.Month) Period {
	start := model.NewDate(year, month, 1)
	return Period{Start: start, End: start.AddDays(model.DaysInMonth(year, month) - 1)}
}

// Days returns the number of days in p.
func (p Period) Days() int {
	return p.Start.DaysUntil(p.End) + 1
}

// Contains reports whether r is active at some point in p.
func (p Period) Contains(r model.Reservation) bool {
	return r.Overlaps(p.Start, p.End)
}

// Filter selects the reservations a report covers. Empty DeviceID or Project
// match everything.
type Filter struct {
	Period   Period
	DeviceID string
	Project  model.Project
}

func (f Filter) match(r model.Reservation) bool {
	if r.Status == model.StatusCancelled || !f.Period.Contains(r) {
		return false
	}
	if f.DeviceID != "" && r.DeviceID != f.DeviceID {
		return false
	}
	if f.Project != "" && r.Project != f.Project {
		return false
	}
	return true
}

// Select returns the reservations f matches, in input order.
func Select(reservations []model.Reservation, f Filter) []model.Reservation {
	var out []model.Reservation
	for _, r := range reservations {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// DayCount is the number of reservations occupying one day.
type DayCount struct {
	Date         model.Date `json:"date"`
	Reservations int        `json:"reservations"`
}

// DeviceCount is the number of reservations on one device.
type DeviceCount struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

// TagCount is the number of reservations carrying one enumeration tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Utilization is the share of the period's days a device was booked.
type Utilization struct {
	DeviceID   string          `json:"device_id"`
	Name       string          `json:"name"`
	BookedDays int             `json:"booked_days"`
	Percent    decimal.Decimal `json:"percent"`
}

// Report is the monthly dashboard for one filter.
type Report struct {
	Period         Period        `json:"period"`
	Daily          []DayCount    `json:"daily"`
	Devices        []DeviceCount `json:"devices"`
	TopDevices     []DeviceCount `json:"top_devices"`
	Projects       []TagCount    `json:"projects"`
	Microorganisms []TagCount    `json:"microorganisms"`
	TotalFlasks    int           `json:"total_flasks"`
	Reservations   int           `json:"reservations"`
	Utilization    []Utilization `json:"utilization"`
}

// Build aggregates the reservations f selects.
func Build(devices []model.Device, reservations []model.Reservation, f Filter) Report {
	selected := Select(reservations, f)

	rep := Report{
		Period:         f.Period,
		Daily:          Daily(selected, f.Period),
		Devices:        DeviceRanking(devices, selected),
		Projects:       ProjectDistribution(selected),
		Microorganisms: MicroorganismDistribution(selected),
		TotalFlasks:    TotalFlasks(selected),
		Reservations:   len(selected),
	}
	rep.TopDevices = rep.Devices[:min(3, len(rep.Devices))]

	for _, d := range devices {
		if f.DeviceID != "" && d.ID != f.DeviceID {
			continue
		}
		rep.Utilization = append(rep.Utilization, deviceUtilization(d, selected, f.Period))
	}
	return rep
}

// Daily counts, for every day of p, the reservations covering that day.
func Daily(reservations []model.Reservation, p Period) []DayCount {
	days := make([]DayCount, 0, p.Days())
	for day := p.Start; !day.After(p.End); day = day.AddDays(1) {
		n := 0
		for _, r := range reservations {
			if r.Covers(day) {
				n++
			}
		}
		days = append(days, DayCount{Date: day, Reservations: n})
	}
	return days
}

// DeviceRanking counts reservations per device, most used first. Devices
// without reservations are left out and ties keep device order.
func DeviceRanking(devices []model.Device, reservations []model.Reservation) []DeviceCount {
	counts := make(map[string]int)
	for _, r := range reservations {
		counts[r.DeviceID]++
	}

	ranking := []DeviceCount{}
	for _, d := range devices {
		if n := counts[d.ID]; n > 0 {
			ranking = append(ranking, DeviceCount{DeviceID: d.ID, Name: d.Name, Count: n})
		}
	}
	slices.SortStableFunc(ranking, func(a, b DeviceCount) int {
		return b.Count - a.Count
	})
	return ranking
}

// ProjectDistribution counts reservations per project category.
func ProjectDistribution(reservations []model.Reservation) []TagCount {
	counts := make(map[model.Project]int)
	for _, r := range reservations {
		counts[r.Project]++
	}
	out := []TagCount{}
	for _, p := range model.Projects() {
		if n := counts[p]; n > 0 {
			out = append(out, TagCount{Tag: string(p), Label: p.Label(), Count: n})
		}
	}
	return out
}

// MicroorganismDistribution counts reservations per microorganism category.
func MicroorganismDistribution(reservations []model.Reservation) []TagCount {
	counts := make(map[model.Microorganism]int)
	for _, r := range reservations {
		counts[r.Microorganism]++
	}
	out := []TagCount{}
	for _, m := range model.Microorganisms() {
		if n := counts[m]; n > 0 {
			out = append(out, TagCount{Tag: string(m), Label: m.Label(), Count: n})
		}
	}
	return out
}

// TotalFlasks sums the flask quantities.
func TotalFlasks(reservations []model.Reservation) int {
	total := 0
	for _, r := range reservations {
		total += r.QuantityFlasks
	}
	return total
}

var hundred = decimal.NewFromInt(100)

func deviceUtilization(d model.Device, reservations []model.Reservation, p Period) Utilization {
	booked := 0
	for day := p.Start; !day.After(p.End); day = day.AddDays(1) {
		for _, r := range reservations {
			if r.DeviceID == d.ID && r.Covers(day) {
				booked++
				break
			}
		}
	}

	percent := decimal.Zero
	if days := p.Days(); days > 0 {
		percent = decimal.NewFromInt(int64(booked)).Mul(hundred).
			Div(decimal.NewFromInt(int64(days))).Round(1)
	}
	return Utilization{DeviceID: d.ID, Name: d.Name, BookedDays: booked, Percent: percent}
}
