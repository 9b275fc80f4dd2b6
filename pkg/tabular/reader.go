package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"

	"github.com/topotab/topotab/pkg/errors"
)

// Read loads a table from disk. enc may be a concrete encoding or
// EncodingAuto to sniff from content.
func Read(path string, enc Encoding) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "table file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "read table %s", path)
	}
	return ReadBytes(data, enc)
}

// ReadBytes parses table bytes into a document. The header row is required;
// rows shorter than the header are padded with "" and longer rows are kept
// whole by widening nothing (extra cells are dropped with the cell count
// normalized to the header).
func ReadBytes(data []byte, enc Encoding) (*Document, error) {
	detected := enc
	if detected == EncodingAuto || detected == EncodingUniversal || detected == "" {
		detected = DetectEncoding(data)
	}

	decoded, err := DecodeBytes(data, detected)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1 // rows are normalized below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeFormat, "table has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "parse table header")
	}

	doc := NewDocument(header)
	doc.SourceEncoding = detected
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "parse table row %d", doc.Len()+2)
		}
		doc.AppendRow(row)
	}
	return doc, nil
}
