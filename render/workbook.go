package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/structs"
	"github.com/tealeg/xlsx/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/results"
	"github.com/tidepool-org/labreport/visits"
)

const (
	SheetNameMaxLength = 31
	TotalLabel         = "Total"
	tagName            = "xlsx"
)

var (
	printer          = message.NewPrinter(language.English)
	sheetNameCleaner = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")
)

type lineItemRow struct {
	Package string `xlsx:"Package"`
	Tests   string `xlsx:"Tests"`
	Price   string `xlsx:"Price"`
}

type resultRow struct {
	Test      string `xlsx:"Test"`
	Result    string `xlsx:"Result"`
	Unit      string `xlsx:"Unit"`
	Reference string `xlsx:"Reference"`
	Status    string `xlsx:"Status"`
}

// Workbook renders a composed document with one sheet per section, in section
// order.
type Workbook struct {
	document visits.Document
	names    mapset.Set[string]
	fold     cases.Caser
}

func NewWorkbook(document visits.Document) *Workbook {
	return &Workbook{document: document}
}

func (w *Workbook) Generate() (*xlsx.File, error) {
	w.names = mapset.NewThreadUnsafeSet[string]()
	w.fold = cases.Fold()
	file := xlsx.NewFile()

	for _, section := range w.document.Sections {
		var err error
		switch section.Kind {
		case documents.KindInvoice:
			err = w.addInvoiceSheet(file, section)
		default:
			err = w.addReportSheet(file, section)
		}
		if err != nil {
			return nil, err
		}
	}

	return file, nil
}

// Write renders the document and writes the xlsx bytes to out.
func (w *Workbook) Write(out io.Writer) error {
	file, err := w.Generate()
	if err != nil {
		return err
	}
	return file.Write(out)
}

func (w *Workbook) addInvoiceSheet(file *xlsx.File, section documents.Section) error {
	sh, err := file.AddSheet(w.sheetName(section.Title))
	if err != nil {
		return fmt.Errorf("unable to add invoice sheet: %w", err)
	}

	sh.AddRow().AddCell().SetValue(section.Title)
	sh.AddRow()

	rows := make([]any, 0)
	total := 0.0
	if section.Invoice != nil {
		for _, item := range section.Invoice.LineItems {
			rows = append(rows, lineItemRow{
				Package: item.Label,
				Tests:   strconv.Itoa(item.Tests),
				Price:   FormatPrice(item.Price),
			})
		}
		total = section.Invoice.Total
	}
	addTable(sh, lineItemRow{}, rows)

	sh.AddRow()
	currentRow := sh.AddRow()
	currentRow.AddCell().SetValue(TotalLabel)
	currentRow.AddCell()
	currentRow.AddCell().SetValue(FormatPrice(total))

	return nil
}

func (w *Workbook) addReportSheet(file *xlsx.File, section documents.Section) error {
	sh, err := file.AddSheet(w.sheetName(section.Title))
	if err != nil {
		return fmt.Errorf("unable to add report sheet %q: %w", section.Title, err)
	}

	sh.AddRow().AddCell().SetValue(section.Title)
	sh.AddRow()

	rows := make([]any, 0, len(section.Snapshots))
	for _, s := range section.Snapshots {
		rows = append(rows, resultRow{
			Test:      s.Name,
			Result:    s.Value,
			Unit:      s.Unit,
			Reference: Reference(s),
			Status:    string(s.Status),
		})
	}
	addTable(sh, resultRow{}, rows)

	return nil
}

// sheetName strips characters xlsx does not allow in sheet names, truncates the
// name and makes it unique within the workbook. Sheet names are compared without
// regard to case.
func (w *Workbook) sheetName(title string) string {
	name := strings.TrimSpace(sheetNameCleaner.Replace(title))
	if name == "" {
		name = "Sheet"
	}
	name = truncate(name, SheetNameMaxLength)

	candidate := name
	for n := 2; w.names.Contains(w.fold.String(candidate)); n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(name, SheetNameMaxLength-len(suffix)) + suffix
	}
	w.names.Add(w.fold.String(candidate))
	return candidate
}

func truncate(name string, length int) string {
	runes := []rune(name)
	if len(runes) <= length {
		return name
	}
	return strings.TrimSpace(string(runes[:length]))
}

func addTable(sh *xlsx.Sheet, header any, rows []any) {
	headerRow := sh.AddRow()
	for _, field := range structs.New(header).Fields() {
		headerRow.AddCell().SetValue(field.Tag(tagName))
	}

	for _, row := range rows {
		currentRow := sh.AddRow()
		for _, field := range structs.New(row).Fields() {
			currentRow.AddCell().SetValue(field.Value())
		}
	}
}

// Reference is the reference shown next to a result. Explicit bounds classify
// the result when present, so they are shown instead of the reference text.
func Reference(s results.Snapshot) string {
	if low, high, ok := s.ExplicitBounds(); ok {
		return fmt.Sprintf("%s - %s", formatNumber(low), formatNumber(high))
	}
	return strings.TrimSpace(s.RefText)
}

func FormatPrice(price float64) string {
	return printer.Sprint(number.Decimal(price, number.Scale(2)))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
