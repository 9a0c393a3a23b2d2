package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tidepool-org/labreport/errors"
)

// Classify evaluates calculated tests and classifies every snapshot of the
// request. The response includes the range each status was derived from.
func (h *Handler) Classify(ec echo.Context) error {
	dto := VisitRequest{}
	if err := ec.Bind(&dto); err != nil {
		return fmt.Errorf("%w: %w", errors.BadRequest, err)
	}

	visit, err := h.decodeVisit(dto)
	if err != nil {
		return err
	}

	classified, warnings := h.processor.Classify(visit)
	classifications := make([]Classification, 0, len(classified))
	for _, s := range classified {
		classifications = append(classifications, Classification{
			TestId: s.TestId,
			Value:  s.Value,
			Result: h.classifier.Evaluate(s, visit.Gender),
		})
	}

	return ec.JSON(http.StatusOK, ClassificationsResponse{
		Snapshots:       classified,
		Classifications: classifications,
		Warnings:        warnings,
	})
}
