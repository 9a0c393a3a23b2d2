package documents

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidepool-org/labreport/profiles"
	"github.com/tidepool-org/labreport/results"
)

var ErrUnknownMode = errors.New("unknown document mode")

type Mode string

const (
	ModePerProfileReports        Mode = "per-profile-reports"
	ModeCombinedInvoice          Mode = "combined-invoice"
	ModeCombinedReportAndInvoice Mode = "combined-report-and-invoice"
)

var Modes = []Mode{ModePerProfileReports, ModeCombinedInvoice, ModeCombinedReportAndInvoice}

func ParseMode(text string) (Mode, error) {
	mode := Mode(strings.TrimSpace(text))
	switch mode {
	case ModePerProfileReports, ModeCombinedInvoice, ModeCombinedReportAndInvoice:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, text)
	}
}

type Kind string

const (
	KindReport  Kind = "report"
	KindInvoice Kind = "invoice"
)

const InvoiceTitle = "Invoice"

type LineItem struct {
	Key        string              `json:"key"`
	Label      string              `json:"label"`
	Resolution profiles.Resolution `json:"resolution"`
	Matched    bool                `json:"matched"`
	Tests      int                 `json:"tests"`
	Price      float64             `json:"price"`
}

type Invoice struct {
	LineItems []LineItem `json:"lineItems"`
	// Total is the sum of the line item prices and is the authoritative amount.
	Total float64 `json:"total"`
}

// Section is a declarative part of a document. Report sections carry the
// classified snapshots of one group, the invoice section carries line items.
// A renderer starts every section on a new page or sheet.
type Section struct {
	Kind       Kind                `json:"kind"`
	Key        string              `json:"key,omitempty"`
	Title      string              `json:"title"`
	Resolution profiles.Resolution `json:"resolution,omitempty"`
	Snapshots  []results.Snapshot  `json:"snapshots,omitempty"`
	Invoice    *Invoice            `json:"invoice,omitempty"`
}

type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Compose builds the sections of a document. Groups without snapshots are
// skipped. The only error is ErrUnknownMode.
func (c *Composer) Compose(groups profiles.Groups, catalog *profiles.Catalog, mode Mode) ([]Section, error) {
	switch mode {
	case ModePerProfileReports:
		return c.Reports(groups, catalog), nil
	case ModeCombinedInvoice:
		return []Section{c.Invoice(groups, catalog)}, nil
	case ModeCombinedReportAndInvoice:
		sections := []Section{c.Invoice(groups, catalog)}
		return append(sections, c.Reports(groups, catalog)...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (c *Composer) Reports(groups profiles.Groups, catalog *profiles.Catalog) []Section {
	sections := make([]Section, 0, len(groups))
	for _, group := range groups {
		if len(group.Snapshots) == 0 {
			continue
		}
		sections = append(sections, Section{
			Kind:       KindReport,
			Key:        group.Key,
			Title:      catalog.Resolve(group).Label,
			Resolution: group.Resolution,
			Snapshots:  group.Snapshots,
		})
	}
	return sections
}

// Invoice returns the single invoice section, with one line item per non-empty
// group. The section is present even when there is nothing to bill.
func (c *Composer) Invoice(groups profiles.Groups, catalog *profiles.Catalog) Section {
	invoice := &Invoice{LineItems: make([]LineItem, 0, len(groups))}
	for _, group := range groups {
		if len(group.Snapshots) == 0 {
			continue
		}
		resolved := catalog.Resolve(group)
		invoice.LineItems = append(invoice.LineItems, LineItem{
			Key:        group.Key,
			Label:      resolved.Label,
			Resolution: group.Resolution,
			Matched:    resolved.Matched,
			Tests:      len(group.Snapshots),
			Price:      resolved.Price,
		})
		invoice.Total += resolved.Price
	}

	return Section{
		Kind:    KindInvoice,
		Title:   InvoiceTitle,
		Invoice: invoice,
	}
}
