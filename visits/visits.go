package visits

import (
	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/formulas"
	"github.com/tidepool-org/labreport/profiles"
	"github.com/tidepool-org/labreport/results"
	"go.uber.org/zap"
)

// Visit is what the result entry collaborator hands over: the snapshots attached
// to a visit and the patient's gender as free text.
type Visit struct {
	Id        string             `json:"id,omitempty"`
	Gender    string             `json:"gender,omitempty"`
	Snapshots []results.Snapshot `json:"snapshots"`
}

type Warning struct {
	TestId  string `json:"testId"`
	Message string `json:"message"`
}

type Document struct {
	Mode     documents.Mode      `json:"mode"`
	Sections []documents.Section `json:"sections"`
	// Total is the invoice total of the visit, also for modes without an
	// invoice section.
	Total    float64   `json:"total"`
	Warnings []Warning `json:"warnings,omitempty"`
}

type Processor struct {
	logger      *zap.SugaredLogger
	evaluator   *formulas.Evaluator
	classifier  *results.Classifier
	grouper     *profiles.Grouper
	composer    *documents.Composer
	profilesCfg *profiles.Config
}

func NewProcessor(logger *zap.SugaredLogger, evaluator *formulas.Evaluator, classifier *results.Classifier, grouper *profiles.Grouper, composer *documents.Composer, profilesCfg *profiles.Config) *Processor {
	return &Processor{
		logger:      logger,
		evaluator:   evaluator,
		classifier:  classifier,
		grouper:     grouper,
		composer:    composer,
		profilesCfg: profilesCfg,
	}
}

// Classify evaluates calculated tests and classifies every snapshot of the visit.
func (p *Processor) Classify(visit Visit) ([]results.Snapshot, []Warning) {
	logger := p.logger.With("visitId", visit.Id)

	evaluated, issues := p.evaluator.Evaluate(visit.Snapshots)
	warnings := make([]Warning, 0, len(issues))
	for _, issue := range issues {
		logger.Warnw("unable to evaluate calculated test", "testId", issue.TestId, "error", issue.Err)
		warnings = append(warnings, Warning{TestId: issue.TestId, Message: issue.Err.Error()})
	}

	return p.classifier.ClassifyAll(evaluated, visit.Gender), warnings
}

// Group classifies the visit and partitions it by profile.
func (p *Processor) Group(visit Visit, c *catalog.Catalog) (profiles.Groups, *profiles.Catalog, []Warning) {
	logger := p.logger.With("visitId", visit.Id)

	classified, warnings := p.Classify(visit)
	profileCatalog := profiles.NewCatalog(c, p.profilesCfg)
	groups := p.grouper.Group(classified, profileCatalog)
	for _, group := range groups {
		if group.Resolution != profiles.ResolutionDirect {
			logger.Debugw("assigned tests without a profile",
				"key", group.Key,
				"resolution", group.Resolution,
				"tests", group.TestIds(),
			)
		}
	}

	return groups, profileCatalog, warnings
}

// Process runs the whole pipeline for a visit and composes the requested document.
func (p *Processor) Process(visit Visit, c *catalog.Catalog, mode documents.Mode) (Document, error) {
	groups, profileCatalog, warnings := p.Group(visit, c)

	sections, err := p.composer.Compose(groups, profileCatalog, mode)
	if err != nil {
		return Document{}, err
	}

	document := Document{
		Mode:     mode,
		Sections: sections,
		Total:    p.composer.Invoice(groups, profileCatalog).Invoice.Total,
		Warnings: warnings,
	}
	if len(document.Warnings) == 0 {
		document.Warnings = nil
	}

	p.logger.Debugw("composed document",
		"visitId", visit.Id,
		"mode", mode,
		"sections", len(sections),
		"total", document.Total,
	)
	return document, nil
}
