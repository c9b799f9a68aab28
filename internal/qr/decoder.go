package qr

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// Decode error codes.
const (
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeInvalidCompression = "INVALID_COMPRESSION"
)

// DecodeError reports a QR payload the decoder could not interpret.
type DecodeError struct {
	Code    string
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DemographicRecord is the decoded, PII-minimized payload of a secure QR
// code. Only the last four digits of the id number are ever exposed.
type DemographicRecord struct {
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Dob          string `json:"dob"`
	AadhaarLast4 string `json:"aadhaarLast4"`

	CareOf      string `json:"careOf"`
	House       string `json:"house"`
	Landmark    string `json:"landmark"`
	Location    string `json:"location"`
	Street      string `json:"street"`
	SubDistrict string `json:"subDistrict"`
	District    string `json:"district"`
	State       string `json:"state"`
	PinCode     string `json:"pinCode"`
	PostOffice  string `json:"postOffice"`
	Vtc         string `json:"vtc"`

	Address string `json:"address"`

	EmailHash  string `json:"emailHash,omitempty"`
	MobileHash string `json:"mobileHash,omitempty"`
	Signature  string `json:"signature,omitempty"`
}

// Decoder turns a raw QR payload into demographic data. The payload
// format is opaque to the rest of the system; orchestration only ever
// sees the decoded record or a DecodeError.
type Decoder interface {
	Decode(payload string) (*DemographicRecord, error)
}

const separatorByte = 0xFF

// Field positions within the delimited payload.
const (
	idxEmailMobileFlag = 0
	idxReferenceID     = 1
	idxName            = 2
	idxDob             = 3
	idxGender          = 4
	idxCareOf          = 5
	idxDistrict        = 6
	idxLandmark        = 7
	idxHouse           = 8
	idxLocation        = 9
	idxPinCode         = 10
	idxPostOffice      = 11
	idxState           = 12
	idxStreet          = 13
	idxSubDistrict     = 14
	idxVtc             = 15

	fieldCount = idxVtc + 1

	maxDecompressedSize = 10 * 1024 * 1024
)

var numericPayload = regexp.MustCompile(`^[0-9]+$`)

// SecureQRDecoder decodes the numeric secure QR payload: a base-10
// big integer wrapping a gzip stream of 0xFF-delimited fields followed
// by optional contact hashes and a trailing signature block.
type SecureQRDecoder struct {
	log *logger.Logger
}

func NewSecureQRDecoder(baseLog *logger.Logger) Decoder {
	return &SecureQRDecoder{log: baseLog.With("component", "SecureQRDecoder")}
}

func (d *SecureQRDecoder) Decode(payload string) (*DemographicRecord, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, &DecodeError{Code: CodeInvalidFormat, Message: "QR payload is required"}
	}
	if !numericPayload.MatchString(payload) {
		return nil, &DecodeError{Code: CodeInvalidFormat, Message: "QR payload must be numeric"}
	}

	bigInt, ok := new(big.Int).SetString(payload, 10)
	if !ok {
		return nil, &DecodeError{Code: CodeInvalidFormat, Message: "QR payload is not a valid number"}
	}

	data, err := decompress(bigInt.Bytes())
	if err != nil {
		return nil, err
	}

	parts := splitFields(data)
	if len(parts) < fieldCount {
		return nil, &DecodeError{Code: CodeInvalidFormat, Message: "incomplete QR payload"}
	}

	fields := make([]string, len(parts))
	for i, part := range parts {
		fields[i] = decodeLatin1(part)
	}

	record := &DemographicRecord{
		Name:         fields[idxName],
		Dob:          fields[idxDob],
		Gender:       fields[idxGender],
		AadhaarLast4: last4(fields[idxReferenceID]),
		CareOf:       fields[idxCareOf],
		District:     fields[idxDistrict],
		Landmark:     fields[idxLandmark],
		House:        fields[idxHouse],
		Location:     fields[idxLocation],
		PinCode:      fields[idxPinCode],
		PostOffice:   fields[idxPostOffice],
		State:        fields[idxState],
		Street:       fields[idxStreet],
		SubDistrict:  fields[idxSubDistrict],
		Vtc:          fields[idxVtc],
	}
	record.Address = formatAddress(record)

	flag, err := strconv.Atoi(fields[idxEmailMobileFlag])
	if err != nil {
		d.log.Warn("email/mobile flag is not numeric", "flag", fields[idxEmailMobileFlag])
		flag = 0
	}
	d.extractContactsAndSignature(data, flag, record)

	d.log.Info("secure QR decoded", "fields", len(parts))
	return record, nil
}

func decompress(compressed []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &DecodeError{Code: CodeInvalidCompression, Message: "GZIP decompression failed", Err: err}
	}
	defer gz.Close()

	limited := io.LimitReader(gz, maxDecompressedSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, &DecodeError{Code: CodeInvalidCompression, Message: "GZIP decompression failed", Err: err}
	}
	if len(data) > maxDecompressedSize {
		return nil, &DecodeError{Code: CodeInvalidCompression, Message: "QR payload too large"}
	}
	return data, nil
}

func splitFields(data []byte) [][]byte {
	var parts [][]byte
	begin := 0
	for i, b := range data {
		if b != separatorByte {
			continue
		}
		if i != 0 && i != len(data)-1 {
			parts = append(parts, data[begin:i])
		}
		begin = i + 1
		if len(parts) == fieldCount {
			break
		}
	}
	return parts
}

// extractContactsAndSignature pulls the fixed-position trailing blocks:
// optional email/mobile sha hashes depending on the flag, then a 256-byte
// signature. The signature is carried through, not verified.
func (d *SecureQRDecoder) extractContactsAndSignature(data []byte, flag int, record *DemographicRecord) {
	n := len(data)
	if n < 323 {
		d.log.Warn("payload too short for contact/signature blocks", "length", n)
		return
	}
	switch flag {
	case 3: // email + mobile
		record.MobileHash = hexUpper(data[n-289 : n-256])
		record.EmailHash = hexUpper(data[n-322 : n-289])
	case 2: // mobile only
		record.MobileHash = hexUpper(data[n-289 : n-256])
	case 1: // email only
		record.EmailHash = hexUpper(data[n-289 : n-256])
	}
	record.Signature = decodeLatin1(data[n-257 : n])
}

func formatAddress(r *DemographicRecord) string {
	parts := make([]string, 0, 3)
	if r.District != "" {
		parts = append(parts, r.District)
	}
	if r.State != "" {
		parts = append(parts, r.State)
	}
	if r.PinCode != "" {
		parts = append(parts, "PIN-"+r.PinCode)
	}
	return strings.Join(parts, ", ")
}

func last4(referenceID string) string {
	if len(referenceID) < 4 {
		return referenceID
	}
	return referenceID[:4]
}

func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// decodeLatin1 maps each byte to the equivalent rune, matching the
// ISO-8859-1 encoding the payload uses.
func decodeLatin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
