package tabular

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/topotab/topotab/pkg/errors"
)

// Artifact is one encoded output file: its suggested path and content bytes.
// Publishing (atomic write, directories) is the caller's concern.
type Artifact struct {
	Path     string
	Encoding Encoding
	Data     []byte
}

// Encode serializes the document into a single encoding.
func Encode(doc *Document, enc Encoding) ([]byte, error) {
	if enc == EncodingUniversal {
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "universal is not a single encoding; use EncodeAll")
	}
	if enc == EncodingAuto || enc == "" {
		enc = EncodingUTF8BOM
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(doc.Header); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write table header")
	}
	for i, row := range doc.Rows {
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write table row %d", i+1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "flush table")
	}

	return EncodeBytes(buf.Bytes(), enc)
}

// EncodeAll expands the requested encoding into one or two artifacts for the
// given output path. EncodingUniversal yields a UTF-8 BOM file at path plus a
// GBK sibling with a .gbk.csv suffix; their decoded contents are identical.
func EncodeAll(doc *Document, path string, enc Encoding) ([]Artifact, error) {
	if enc == EncodingAuto || enc == "" {
		enc = EncodingUTF8BOM
	}

	targets := []struct {
		path string
		enc  Encoding
	}{{path, enc}}
	if enc == EncodingUniversal {
		targets = []struct {
			path string
			enc  Encoding
		}{
			{path, EncodingUTF8BOM},
			{GBKSiblingPath(path), EncodingGBK},
		}
	}

	artifacts := make([]Artifact, 0, len(targets))
	for _, target := range targets {
		data, err := Encode(doc, target.enc)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Path: target.path, Encoding: target.enc, Data: data})
	}
	return artifacts, nil
}

// GBKSiblingPath derives the GBK companion path for a universal-mode output:
// topology.csv becomes topology.gbk.csv.
func GBKSiblingPath(path string) string {
	if strings.HasSuffix(path, ".csv") {
		return strings.TrimSuffix(path, ".csv") + ".gbk.csv"
	}
	return path + ".gbk.csv"
}
