package schema

import (
	"strings"

	"github.com/topotab/topotab/pkg/errors"
)

// =============================================================================
// Header Detection
// =============================================================================

// FormatType grades how closely a header matches the connection-record shape.
type FormatType string

const (
	FormatStandard   FormatType = "network_topology_standard"
	FormatCompatible FormatType = "network_topology_compatible"
	FormatBasic      FormatType = "network_topology_basic"
	FormatUnknown    FormatType = "unknown"
)

// Confidence thresholds for grading a detected header.
const (
	confidenceHigh   = 0.9
	confidenceMedium = 0.7
	confidenceLow    = 0.5
)

// Detection is the result of classifying a table header without a template.
type Detection struct {
	Format     FormatType
	Confidence float64
	Schema     *Schema

	SourceColumns int
	TargetColumns int
	LinkColumns   int
}

// Detect classifies a table header into a schema and grades the match.
// It fails with SCHEMA_AMBIGUOUS when the header has no recognizable
// source/target device column pair, since rows could not be mapped to
// connections either way.
func Detect(header []string, cfg *Config) (*Detection, error) {
	if cfg == nil {
		cfg = Default()
	}
	if len(header) == 0 {
		return nil, errors.New(errors.ErrCodeSchemaAmbiguous, "empty table header")
	}

	s := FromHeader(header, cfg)

	det := &Detection{Schema: s}
	var srcDevice, dstDevice bool
	for _, col := range s.Columns {
		switch col.Role {
		case RoleSource:
			det.SourceColumns++
			if isDeviceNameField(col.Field) {
				srcDevice = true
			}
		case RoleTarget:
			det.TargetColumns++
			if isDeviceNameField(col.Field) {
				dstDevice = true
			}
		default:
			det.LinkColumns++
		}
	}

	det.Confidence = headerConfidence(det, len(header))
	det.Format = gradeFormat(det.Confidence)

	if !srcDevice || !dstDevice {
		return nil, errors.New(errors.ErrCodeSchemaAmbiguous,
			"header has no source/target device column pair (source device column: %v, target device column: %v)",
			srcDevice, dstDevice)
	}
	return det, nil
}

// isDeviceNameField reports whether a canonical field identifies a device.
func isDeviceNameField(field string) bool {
	if field == FieldDeviceName {
		return true
	}
	lower := strings.ToLower(field)
	return strings.Contains(lower, "name") || strings.Contains(lower, "名")
}

// headerConfidence scores a header: base score for having both sides, a
// symmetry bonus when the sides have similar column counts, and a coverage
// bonus for the share of columns recognized at all.
func headerConfidence(det *Detection, total int) float64 {
	src, dst := det.SourceColumns, det.TargetColumns

	var score float64
	switch {
	case src > 0 && dst > 0:
		score = 0.6
	case src > 0 || dst > 0:
		score = 0.3
	}

	if src > 0 && dst > 0 {
		larger := src
		if dst > larger {
			larger = dst
		}
		diff := src - dst
		if diff < 0 {
			diff = -diff
		}
		symmetry := 1.0 - float64(diff)/float64(larger)
		score += symmetry * 0.2
	}

	if total > 0 {
		coverage := float64(src+dst+det.LinkColumns) / float64(total)
		score += coverage * 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// gradeFormat buckets a confidence score into a format type.
func gradeFormat(confidence float64) FormatType {
	switch {
	case confidence >= confidenceHigh:
		return FormatStandard
	case confidence >= confidenceMedium:
		return FormatCompatible
	case confidence >= confidenceLow:
		return FormatBasic
	default:
		return FormatUnknown
	}
}
