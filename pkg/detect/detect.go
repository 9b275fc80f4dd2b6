// Package detect decides which way a conversion runs: diagram to table or
// table to diagram. The file extension decides when it is unambiguous; for
// anything else a small content sniff looks for draw.io XML markers.
package detect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/topotab/topotab/pkg/errors"
)

// Kind is the detected input flavor.
type Kind string

const (
	// KindDiagram is a draw.io document; conversion produces a table.
	KindDiagram Kind = "diagram"
	// KindTable is a connection-record table; conversion produces a diagram.
	KindTable Kind = "table"
)

// utf8BOM prefixes UTF-8-sig tables and must not confuse the XML sniff.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ByPath classifies an input by file extension alone. It fails with
// INVALID_FORMAT for extensions that could be either.
func ByPath(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".drawio", ".xml":
		return KindDiagram, nil
	case ".csv":
		return KindTable, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"cannot tell diagram from table by extension %q", filepath.Ext(path))
	}
}

// Sniff classifies an input from its leading bytes: draw.io documents start
// with an XML declaration or an mxfile element.
func Sniff(data []byte) Kind {
	head := bytes.TrimPrefix(data, utf8BOM)
	head = bytes.TrimLeft(head, " \t\r\n")
	if bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<mxfile")) ||
		bytes.Contains(firstKB(head), []byte("<mxfile")) {
		return KindDiagram
	}
	return KindTable
}

// Classify resolves the input kind from the path, falling back to content.
func Classify(path string, data []byte) Kind {
	if kind, err := ByPath(path); err == nil {
		return kind
	}
	return Sniff(data)
}

func firstKB(data []byte) []byte {
	if len(data) > 1024 {
		return data[:1024]
	}
	return data
}
