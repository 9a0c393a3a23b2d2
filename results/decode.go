package results

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/tidepool-org/labreport/catalog"
)

// recordAliases lists, for every snapshot field, the keys stored records have
// used for it over time. Earlier keys win. The "_snapshot" variants are the
// values captured when the test was attached to the visit.
var recordAliases = []struct {
	field   string
	aliases []string
}{
	{"testId", []string{"testId", "test_id", "id"}},
	{"name", []string{"name_snapshot", "name", "testName"}},
	{"category", []string{"category_snapshot", "category"}},
	{"inputType", []string{"inputType_snapshot", "inputType", "type"}},
	{"unit", []string{"unit_snapshot", "unit"}},
	{"refLow", []string{"refLow_snapshot", "refLow"}},
	{"refHigh", []string{"refHigh_snapshot", "refHigh"}},
	{"refText", []string{"bioReference_snapshot", "bioReference", "refText_snapshot", "refText"}},
	{"genderSpecific", []string{"genderSpecific_snapshot", "genderSpecific", "isGenderSpecific"}},
	{"maleRange", []string{"maleRange_snapshot", "maleRange"}},
	{"femaleRange", []string{"femaleRange_snapshot", "femaleRange"}},
	{"dropdownOptions", []string{"dropdownOptions_snapshot", "dropdownOptions", "options"}},
	{"formula", []string{"formula_snapshot", "formula"}},
	{"price", []string{"price_snapshot", "price"}},
	{"order", []string{"order"}},
	{"profileId", []string{"profileId", "profile"}},
	{"value", []string{"value", "result"}},
	{"status", []string{"status"}},
}

var numericFields = map[string]bool{
	"refLow":  true,
	"refHigh": true,
	"price":   true,
	"order":   true,
}

var inputTypeAliases = map[string]catalog.InputType{
	"number":            catalog.InputTypeNumber,
	"numeric":           catalog.InputTypeNumber,
	"text":              catalog.InputTypeText,
	"dropdown":          catalog.InputTypeDropdown,
	"select":            catalog.InputTypeDropdown,
	"microscopy-number": catalog.InputTypeMicroscopyNumber,
	"microscopy":        catalog.InputTypeMicroscopyNumber,
	"calculated":        catalog.InputTypeCalculated,
}

// DecodeSnapshot converts a stored snapshot record into a Snapshot. Field
// aliases are resolved here so the rest of the module only deals with the typed
// record. Values that cannot be interpreted are dropped rather than failing the
// record, except when the record has no test id.
func DecodeSnapshot(record map[string]any) (Snapshot, error) {
	normalized := make(map[string]any, len(recordAliases))
	for _, entry := range recordAliases {
		for _, alias := range entry.aliases {
			value, ok := record[alias]
			if !ok || isBlank(value) {
				continue
			}
			if value = normalizeField(entry.field, value); value != nil {
				normalized[entry.field] = value
				break
			}
		}
	}

	snapshot := Snapshot{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &snapshot,
	})
	if err != nil {
		return snapshot, err
	}
	if err := decoder.Decode(normalized); err != nil {
		return snapshot, fmt.Errorf("unable to decode snapshot: %w", err)
	}

	if strings.TrimSpace(snapshot.TestId) == "" {
		return snapshot, ErrMissingTestId
	}
	return snapshot, nil
}

func DecodeSnapshots(records []map[string]any) ([]Snapshot, error) {
	snapshots := make([]Snapshot, 0, len(records))
	for i, record := range records {
		snapshot, err := DecodeSnapshot(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func normalizeField(field string, value any) any {
	switch {
	case numericFields[field]:
		if f, ok := toFloat(value); ok {
			return f
		}
		return nil
	case field == "inputType":
		text := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(fmt.Sprint(value))), "_", "-")
		if inputType, ok := inputTypeAliases[text]; ok {
			return string(inputType)
		}
		return nil
	case field == "maleRange" || field == "femaleRange":
		return normalizeBounds(value)
	default:
		return value
	}
}

// normalizeBounds accepts {"low","high"}, {"min","max"} and two element lists.
func normalizeBounds(value any) any {
	var low, high any
	switch v := value.(type) {
	case map[string]any:
		low = firstPresent(v, "low", "min", "refLow")
		high = firstPresent(v, "high", "max", "refHigh")
	case []any:
		if len(v) != 2 {
			return nil
		}
		low, high = v[0], v[1]
	default:
		return nil
	}

	bounds := map[string]any{}
	if f, ok := toFloat(low); ok {
		bounds["low"] = f
	}
	if f, ok := toFloat(high); ok {
		bounds["high"] = f
	}
	if len(bounds) == 0 {
		return nil
	}
	return bounds
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, isFinite(v)
	case float32:
		return float64(v), isFinite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return parseValue(v)
	default:
		return 0, false
	}
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
