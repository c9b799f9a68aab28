package qr

import (
	"bytes"
	"compress/gzip"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crediflow/los-backend/internal/pkg/logger"
)

func testDecoder(t *testing.T) Decoder {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return NewSecureQRDecoder(log)
}

// encodePayload builds a numeric secure QR payload: the 0xFF-delimited
// fields plus a trailer, gzipped and rendered as a base-10 integer.
func encodePayload(t *testing.T, fields []string, trailer []byte) string {
	t.Helper()

	var plain bytes.Buffer
	for _, field := range fields {
		plain.WriteString(field)
		plain.WriteByte(separatorByte)
	}
	plain.Write(trailer)

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(plain.Bytes()); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	return new(big.Int).SetBytes(compressed.Bytes()).String()
}

func demoFields() []string {
	return []string{
		"0",                  // email/mobile flag
		"123420240101000000", // reference id, aadhaar last 4 as prefix
		"Asha Patel",
		"01-01-1990",
		"F",
		"C/O Ramesh Patel",
		"Pune",
		"Near Temple",
		"12A",
		"Shivaji Nagar",
		"411005",
		"Shivaji Nagar PO",
		"Maharashtra",
		"MG Road",
		"Haveli",
		"Pune City",
	}
}

func TestDecodeDemographics(t *testing.T) {
	decoder := testDecoder(t)

	payload := encodePayload(t, demoFields(), []byte("sig"))
	record, err := decoder.Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, "Asha Patel", record.Name)
	assert.Equal(t, "01-01-1990", record.Dob)
	assert.Equal(t, "F", record.Gender)
	assert.Equal(t, "1234", record.AadhaarLast4)
	assert.Equal(t, "C/O Ramesh Patel", record.CareOf)
	assert.Equal(t, "12A", record.House)
	assert.Equal(t, "MG Road", record.Street)
	assert.Equal(t, "Haveli", record.SubDistrict)
	assert.Equal(t, "Pune", record.District)
	assert.Equal(t, "Maharashtra", record.State)
	assert.Equal(t, "411005", record.PinCode)
	assert.Equal(t, "Pune City", record.Vtc)
	assert.Equal(t, "Pune, Maharashtra, PIN-411005", record.Address)

	// The full id number never leaves the decoder.
	assert.NotContains(t, record.Address, "123420240101000000")
}

func TestDecodeTrimsSurroundingWhitespace(t *testing.T) {
	decoder := testDecoder(t)

	payload := encodePayload(t, demoFields(), []byte("sig"))
	record, err := decoder.Decode("  " + payload + "\n")
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", record.Name)
}

func TestDecodeSignatureBlock(t *testing.T) {
	decoder := testDecoder(t)

	// A trailer long enough for the fixed-position signature block.
	trailer := []byte(strings.Repeat("S", 400))
	payload := encodePayload(t, demoFields(), trailer)
	record, err := decoder.Decode(payload)
	require.NoError(t, err)

	assert.Len(t, record.Signature, 257)
	assert.Empty(t, record.EmailHash)
	assert.Empty(t, record.MobileHash)
}

func TestDecodeShortTrailerSkipsSignature(t *testing.T) {
	decoder := testDecoder(t)

	payload := encodePayload(t, demoFields(), []byte("sig"))
	record, err := decoder.Decode(payload)
	require.NoError(t, err)

	assert.Empty(t, record.Signature)
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	decoder := testDecoder(t)

	cases := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{"empty", "", CodeInvalidFormat},
		{"whitespace only", "   ", CodeInvalidFormat},
		{"not numeric", "abc123", CodeInvalidFormat},
		{"numeric but not gzip", "1234567890", CodeInvalidCompression},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decoder.Decode(tc.payload)
			var derr *DecodeError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tc.wantCode, derr.Code)
		})
	}
}

func TestDecodeRejectsIncompletePayload(t *testing.T) {
	decoder := testDecoder(t)

	payload := encodePayload(t, []string{"0", "1234", "Asha"}, []byte("sig"))
	_, err := decoder.Decode(payload)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, CodeInvalidFormat, derr.Code)
}
