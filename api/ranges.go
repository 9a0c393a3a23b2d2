package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tidepool-org/labreport/errors"
)

func (h *Handler) ParseRange(ec echo.Context) error {
	dto := ParseRangeRequest{}
	if err := ec.Bind(&dto); err != nil {
		return fmt.Errorf("%w: %w", errors.BadRequest, err)
	}

	return ec.JSON(http.StatusOK, ParseRangeResponse{
		Text:  dto.Text,
		Range: h.parser.Parse(dto.Text),
	})
}
