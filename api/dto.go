package api

import (
	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/ranges"
	"github.com/tidepool-org/labreport/results"
	"github.com/tidepool-org/labreport/visits"
)

type ParseRangeRequest struct {
	Text string `json:"text"`
}

type ParseRangeResponse struct {
	Text  string        `json:"text"`
	Range *ranges.Range `json:"range"`
}

// VisitRequest carries snapshot records in any of the stored record shapes.
type VisitRequest struct {
	VisitId   string           `json:"visitId,omitempty"`
	Gender    string           `json:"gender,omitempty"`
	Mode      string           `json:"mode,omitempty"`
	Snapshots []map[string]any `json:"snapshots"`
}

type Classification struct {
	TestId string             `json:"testId"`
	Value  string             `json:"value"`
	Result results.Evaluation `json:"result"`
}

type ClassificationsResponse struct {
	Snapshots       []results.Snapshot `json:"snapshots"`
	Classifications []Classification   `json:"classifications"`
	Warnings        []visits.Warning   `json:"warnings,omitempty"`
}

type DocumentResponse struct {
	Id       string              `json:"id"`
	VisitId  string              `json:"visitId,omitempty"`
	Mode     documents.Mode      `json:"mode"`
	Sections []documents.Section `json:"sections"`
	Total    float64             `json:"total"`
	Warnings []visits.Warning    `json:"warnings,omitempty"`
}

func NewDocumentResponse(id string, visitId string, document visits.Document) DocumentResponse {
	return DocumentResponse{
		Id:       id,
		VisitId:  visitId,
		Mode:     document.Mode,
		Sections: document.Sections,
		Total:    document.Total,
		Warnings: document.Warnings,
	}
}
