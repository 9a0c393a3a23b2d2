package api

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/errors"
	"github.com/tidepool-org/labreport/ranges"
	"github.com/tidepool-org/labreport/results"
	"github.com/tidepool-org/labreport/visits"
)

type Handler struct {
	catalog    catalog.Provider
	classifier *results.Classifier
	parser     ranges.Parser
	processor  *visits.Processor
	logger     *zap.SugaredLogger
}

type Params struct {
	fx.In

	Catalog    catalog.Provider
	Classifier *results.Classifier
	Parser     ranges.Parser
	Processor  *visits.Processor
	Logger     *zap.SugaredLogger
}

func NewHandler(p Params) *Handler {
	return &Handler{
		catalog:    p.Catalog,
		classifier: p.Classifier,
		parser:     p.Parser,
		processor:  p.Processor,
		logger:     p.Logger,
	}
}

func (h *Handler) getCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c, err := h.catalog.Get(ctx)
	if err != nil {
		h.logger.Errorw("unable to get catalog", "error", err)
		return nil, fmt.Errorf("%w: unable to get catalog", errors.ServiceUnavailable)
	}
	return c, nil
}

func (h *Handler) decodeVisit(dto VisitRequest) (visits.Visit, error) {
	snapshots, err := results.DecodeSnapshots(dto.Snapshots)
	if err != nil {
		return visits.Visit{}, fmt.Errorf("%w: %w", errors.BadRequest, err)
	}

	return visits.Visit{
		Id:        dto.VisitId,
		Gender:    dto.Gender,
		Snapshots: snapshots,
	}, nil
}

func parseMode(text string) (documents.Mode, error) {
	mode, err := documents.ParseMode(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.BadRequest, err)
	}
	return mode, nil
}
