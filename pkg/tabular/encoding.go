// Package tabular reads and writes connection tables as delimited text.
//
// The package deals in raw tables only: a header plus rows of cells, all
// strings. Mapping cells onto connection records is the job of pkg/records;
// here the concerns are CSV framing and text encodings (UTF-8 with or without
// BOM, and GBK for legacy Excel on Chinese Windows).
package tabular

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/topotab/topotab/pkg/errors"
)

// Encoding names a supported table text encoding.
type Encoding string

const (
	// EncodingUTF8 is plain UTF-8 without a byte order mark.
	EncodingUTF8 Encoding = "utf-8"
	// EncodingUTF8BOM is UTF-8 with a leading BOM, which Excel needs to
	// recognize the file as UTF-8.
	EncodingUTF8BOM Encoding = "utf-8-sig"
	// EncodingGBK is the legacy simplified-Chinese Windows encoding.
	EncodingGBK Encoding = "gbk"
	// EncodingUniversal writes both a UTF-8 BOM artifact and a GBK artifact.
	EncodingUniversal Encoding = "universal"
	// EncodingAuto detects the encoding from content on read.
	EncodingAuto Encoding = "auto"
)

// utf8BOM is the UTF-8 byte order mark.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseEncoding normalizes a user-supplied encoding name.
func ParseEncoding(name string) (Encoding, error) {
	if err := errors.ValidateEncodingName(name); err != nil {
		return "", err
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-8-sig":
		return EncodingUTF8BOM, nil
	case "gbk":
		return EncodingGBK, nil
	case "universal":
		return EncodingUniversal, nil
	default:
		return EncodingAuto, nil
	}
}

// DetectEncoding sniffs the encoding of raw table bytes. A BOM is decisive;
// otherwise valid UTF-8 is taken at face value and anything else is assumed
// to be GBK, which accepts all byte sequences.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8BOM
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingGBK
}

// DecodeBytes converts raw table bytes to UTF-8 according to enc.
// EncodingAuto and EncodingUniversal fall back to detection.
func DecodeBytes(data []byte, enc Encoding) ([]byte, error) {
	if enc == EncodingAuto || enc == EncodingUniversal || enc == "" {
		enc = DetectEncoding(data)
	}

	switch enc {
	case EncodingUTF8, EncodingUTF8BOM:
		out := bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(out) {
			return nil, errors.New(errors.ErrCodeInvalidEncoding, "content is not valid UTF-8")
		}
		return out, nil
	case EncodingGBK:
		out, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidEncoding, err, "decode GBK content")
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "cannot decode encoding %q", enc)
	}
}

// EncodeBytes converts UTF-8 content into the byte form of enc.
// EncodingUniversal is not a concrete byte encoding and is rejected here;
// callers expand it into its two member encodings first.
func EncodeBytes(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8:
		return data, nil
	case EncodingUTF8BOM:
		out := make([]byte, 0, len(utf8BOM)+len(data))
		out = append(out, utf8BOM...)
		return append(out, data...), nil
	case EncodingGBK:
		out, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidEncoding, err, "encode GBK content")
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "cannot encode to %q", enc)
	}
}
