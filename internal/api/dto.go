package api

import (
	"github.com/starford/scalesmith/internal/chart"
	"github.com/starford/scalesmith/internal/chord"
	"github.com/starford/scalesmith/internal/scale"
	"github.com/starford/scalesmith/internal/scaleservice"
)

// PutFamilyRequest is the request body for creating or replacing a family.
type PutFamilyRequest struct {
	Intervals []int    `json:"intervals" example:"2,2,3,2,3" validate:"required"`
	Modes     []string `json:"modes" example:"Major Pentatonic,Suspended" validate:"required"`
}

// IdentifyRequest is the request body for scale identification.
type IdentifyRequest struct {
	Notes []string `json:"notes" example:"C,D,E,G,A" validate:"required"`
}

// FamilyDetail is a stored scale family (aliased from the domain layer).
type FamilyDetail = scaleservice.FamilyDetail

// FamilyListResponse wraps family listings.
type FamilyListResponse struct {
	Families []FamilyDetail `json:"families" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []FamilyDetail `json:"results" validate:"required"`
}

// ChartResponse is an annotated scale (aliased from the domain layer).
type ChartResponse = chart.Chart

// DegreeResponse is one annotated degree (aliased from the domain layer).
type DegreeResponse = chart.Degree

// IdentifyResponse is the outcome of scale identification.
type IdentifyResponse = scale.Identification

// CatalogResponse lists the chord catalog at one level.
type CatalogResponse struct {
	Level     chord.Level                 `json:"level" validate:"required"`
	Symbology chord.Symbology             `json:"symbology" validate:"required"`
	Legend    []string                    `json:"legend"`
	Entries   []scaleservice.CatalogEntry `json:"entries" validate:"required"`
}

// ResetResponse reports the result of a defaults reset.
type ResetResponse struct {
	Mode     string `json:"mode" example:"restore" validate:"required"`
	Families int    `json:"families" example:"9" validate:"required"`
}
