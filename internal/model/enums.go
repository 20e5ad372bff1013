package model

import (
	"fmt"
	"strconv"
)

// Stored values are stable lowercase tags. Display labels come from the
// tables below and are never compared against.

// Microorganism is the category of organism grown during a reservation.
type Microorganism string

const (
	MicroorganismBacteria      Microorganism = "bacteria"
	MicroorganismFungi         Microorganism = "fungi"
	MicroorganismActinomycetes Microorganism = "actinomycetes"
	MicroorganismYeast         Microorganism = "yeast"
	MicroorganismOther         Microorganism = "other"
)

var microorganismLabels = map[Microorganism]string{
	MicroorganismBacteria:      "Bactérias",
	MicroorganismFungi:         "Fungos",
	MicroorganismActinomycetes: "Actinomicetos",
	MicroorganismYeast:         "Leveduras",
	MicroorganismOther:         "Outro",
}

// Microorganisms lists every microorganism category in display order.
func Microorganisms() []Microorganism {
	return []Microorganism{
		MicroorganismBacteria,
		MicroorganismFungi,
		MicroorganismActinomycetes,
		MicroorganismYeast,
		MicroorganismOther,
	}
}

// Valid reports whether m is a known category.
func (m Microorganism) Valid() bool {
	_, ok := microorganismLabels[m]
	return ok
}

// Label returns the display name of m.
func (m Microorganism) Label() string {
	if l, ok := microorganismLabels[m]; ok {
		return l
	}
	return string(m)
}

// FlaskVolume is the nominal flask size in millilitres.
type FlaskVolume int

const (
	FlaskVolume250  FlaskVolume = 250
	FlaskVolume500  FlaskVolume = 500
	FlaskVolume1000 FlaskVolume = 1000
)

// FlaskVolumes lists the supported flask sizes in ascending order.
func FlaskVolumes() []FlaskVolume {
	return []FlaskVolume{FlaskVolume250, FlaskVolume500, FlaskVolume1000}
}

// Valid reports whether v is a supported flask size.
func (v FlaskVolume) Valid() bool {
	switch v {
	case FlaskVolume250, FlaskVolume500, FlaskVolume1000:
		return true
	}
	return false
}

// Label returns v formatted with its unit.
func (v FlaskVolume) Label() string {
	return fmt.Sprintf("%d mL", int(v))
}

// Project is the funding or programme a reservation is billed to.
type Project string

const (
	ProjectEmbrapii Project = "embrapii"
	ProjectPostgrad Project = "postgrad"
	ProjectINCT     Project = "inct"
	ProjectBasic    Project = "basic"
	ProjectInternal Project = "internal"
)

var projectLabels = map[Project]string{
	ProjectEmbrapii: "EMBRAPII",
	ProjectPostgrad: "Pós-graduação",
	ProjectINCT:     "INCT",
	ProjectBasic:    "Basic",
	ProjectInternal: "Projeto interno",
}

// Projects lists every project category in display order.
func Projects() []Project {
	return []Project{ProjectEmbrapii, ProjectPostgrad, ProjectINCT, ProjectBasic, ProjectInternal}
}

// Valid reports whether p is a known project.
func (p Project) Valid() bool {
	_, ok := projectLabels[p]
	return ok
}

// Label returns the display name of p.
func (p Project) Label() string {
	if l, ok := projectLabels[p]; ok {
		return l
	}
	return string(p)
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

// Reservation statuses.
const (
	StatusScheduled ReservationStatus = "scheduled"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

var statusLabels = map[ReservationStatus]string{
	StatusScheduled: "Agendado",
	StatusCompleted: "Concluído",
	StatusCancelled: "Cancelado",
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display name of s.
func (s ReservationStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// EnumOption pairs a stored tag with its display label.
type EnumOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// EnumOptions returns every enumeration with its display labels, keyed by
// enumeration name. Front-ends use it to render selects.
func EnumOptions() map[string][]EnumOption {
	opts := map[string][]EnumOption{}
	for _, m := range Microorganisms() {
		opts["microorganism"] = append(opts["microorganism"], EnumOption{Value: string(m), Label: m.Label()})
	}
	for _, v := range FlaskVolumes() {
		opts["flask_volume_ml"] = append(opts["flask_volume_ml"], EnumOption{Value: strconv.Itoa(int(v)), Label: v.Label()})
	}
	for _, p := range Projects() {
		opts["project"] = append(opts["project"], EnumOption{Value: string(p), Label: p.Label()})
	}
	for _, s := range []ReservationStatus{StatusScheduled, StatusCompleted, StatusCancelled} {
		opts["status"] = append(opts["status"], EnumOption{Value: string(s), Label: s.Label()})
	}
	return opts
}
