package parsers

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeResult carries the decoded text and the encoding it was decoded with.
type DecodeResult struct {
	Encoding string
	Text     string
	Warnings []string
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// legacyEncodings is the fixed fallback priority list. Windows-1252 must come
// before ISO-8859-1: 8859-1 assigns every byte, so it can only be rejected by
// the C1 control-character check below.
var legacyEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"Windows-1252", charmap.Windows1252},
	{"ISO-8859-1", charmap.ISO8859_1},
}

// DetectAndDecode determines the text encoding of raw file bytes and decodes
// them. UTF-8 strict is attempted first, then the legacy single-byte
// fallbacks; when nothing decodes cleanly the input is forced to UTF-8 with
// lossy substitution and a warning. This never fails.
func DetectAndDecode(data []byte) *DecodeResult {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return &DecodeResult{Encoding: "UTF-8", Text: string(data)}
	}

	for _, candidate := range legacyEncodings {
		decoded, _, err := transform.Bytes(candidate.enc.NewDecoder(), data)
		if err != nil || !decodesCleanly(decoded) {
			continue
		}
		return &DecodeResult{Encoding: candidate.name, Text: string(decoded)}
	}

	// Force UTF-8, substituting invalid sequences.
	return &DecodeResult{
		Encoding: "UTF-8",
		Text:     string(bytes.ToValidUTF8(data, []byte("�"))),
		Warnings: []string{"File encoding could not be determined; decoded as UTF-8 with substitution"},
	}
}

// decodesCleanly rejects decodes that produced replacement characters or C1
// control characters, the tell-tale of picking the wrong single-byte charset.
func decodesCleanly(decoded []byte) bool {
	for _, r := range string(decoded) {
		if r == utf8.RuneError {
			return false
		}
		if r >= 0x80 && r <= 0x9f {
			return false
		}
	}
	return true
}
