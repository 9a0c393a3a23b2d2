package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tidepool-org/labreport/errors"
	"github.com/tidepool-org/labreport/render"
	"github.com/tidepool-org/labreport/visits"
)

const XlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ComposeDocument(ec echo.Context) error {
	visit, document, err := h.compose(ec)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDocumentResponse(uuid.NewString(), visit.Id, document))
}

func (h *Handler) RenderDocument(ec echo.Context) error {
	_, document, err := h.compose(ec)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if err := render.NewWorkbook(document).Write(buf); err != nil {
		h.logger.Errorw("unable to render document", "mode", document.Mode, "error", err)
		return fmt.Errorf("%w: unable to render document", errors.InternalServerError)
	}

	id := uuid.NewString()
	ec.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", id+".xlsx"))
	return ec.Blob(http.StatusOK, XlsxContentType, buf.Bytes())
}

func (h *Handler) compose(ec echo.Context) (visits.Visit, visits.Document, error) {
	ctx := ec.Request().Context()

	dto := VisitRequest{}
	if err := ec.Bind(&dto); err != nil {
		return visits.Visit{}, visits.Document{}, fmt.Errorf("%w: %w", errors.BadRequest, err)
	}

	mode, err := parseMode(dto.Mode)
	if err != nil {
		return visits.Visit{}, visits.Document{}, err
	}

	visit, err := h.decodeVisit(dto)
	if err != nil {
		return visits.Visit{}, visits.Document{}, err
	}

	c, err := h.getCatalog(ctx)
	if err != nil {
		return visits.Visit{}, visits.Document{}, err
	}

	document, err := h.processor.Process(visit, c, mode)
	if err != nil {
		return visits.Visit{}, visits.Document{}, fmt.Errorf("%w: %w", errors.BadRequest, err)
	}

	return visit, document, nil
}
