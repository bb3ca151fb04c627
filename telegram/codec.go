package telegram

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// codecJSON is the JSON configuration used on the wire path.
var codecJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec exposes the wire JSON configuration so storage layers serialize
// values identically.
func Codec() jsoniter.API { return codecJSON }

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BODY BUILDER
// A Payload collects method parameters and encodes them as JSON, or as
// multipart/form-data whenever any input carries local file bytes. Uploaded
// files get a generated part name (photo_0, certificate_1, ...) and are
// referenced from their parameter as "attach://<name>".
// ══════════════════════════════════════════════════════════════════════════════

// Payload is an outbound request body under construction. Absent optionals
// are simply never set.
type Payload struct {
	fields []payloadField
	files  []payloadFile
}

type payloadField struct {
	key   string
	value any
}

type payloadFile struct {
	field string
	file  *InputFile
}

// NewPayload creates an empty request body.
func NewPayload() *Payload {
	return &Payload{}
}

// Set adds one parameter. Enumerations must be passed as their documented
// lowercase string names; structured values are serialized as JSON.
func (p *Payload) Set(key string, value any) *Payload {
	p.fields = append(p.fields, payloadField{key: key, value: value})
	return p
}

// SetFile adds a file parameter. file_id and URL references stay inline;
// local bytes switch the whole body to multipart.
func (p *Payload) SetFile(key string, f *InputFile) *Payload {
	if f != nil {
		p.files = append(p.files, payloadFile{field: key, file: f})
	}
	return p
}

// Len returns the number of parameters set.
func (p *Payload) Len() int {
	return len(p.fields) + len(p.files)
}

func (p *Payload) hasUploads() bool {
	for _, f := range p.files {
		if f.file.NeedsUpload() {
			return true
		}
	}
	return false
}

// Encode serializes the body and returns it with its Content-Type.
func (p *Payload) Encode() (io.Reader, string, error) {
	if p == nil {
		return bytes.NewReader(nil), "application/json", nil
	}
	if p.hasUploads() {
		return p.encodeMultipart()
	}
	return p.encodeJSON()
}

func (p *Payload) encodeJSON() (io.Reader, string, error) {
	m := make(map[string]any, len(p.fields)+len(p.files))
	for _, f := range p.fields {
		m[f.key] = f.value
	}
	for _, f := range p.files {
		m[f.field] = f.file.reference()
	}
	body, err := codecJSON.Marshal(m)
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(body), "application/json", nil
}

func (p *Payload) encodeMultipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary("botcore" + strings.ReplaceAll(uuid.NewString(), "-", "")); err != nil {
		return nil, "", fmt.Errorf("multipart boundary: %w", err)
	}

	for i, f := range p.files {
		if !f.file.NeedsUpload() {
			if err := w.WriteField(f.field, f.file.reference()); err != nil {
				return nil, "", fmt.Errorf("encode field %s: %w", f.field, err)
			}
			continue
		}
		name := fmt.Sprintf("%s_%d", f.field, i)
		part, err := w.CreateFormFile(name, f.file.Name())
		if err != nil {
			return nil, "", fmt.Errorf("attach %s: %w", name, err)
		}
		if _, err := part.Write(f.file.data); err != nil {
			return nil, "", fmt.Errorf("attach %s: %w", name, err)
		}
		if err := w.WriteField(f.field, "attach://"+name); err != nil {
			return nil, "", fmt.Errorf("encode field %s: %w", f.field, err)
		}
	}

	for _, f := range p.fields {
		text, err := formFieldValue(f.value)
		if err != nil {
			return nil, "", fmt.Errorf("encode field %s: %w", f.key, err)
		}
		if err := w.WriteField(f.key, text); err != nil {
			return nil, "", fmt.Errorf("encode field %s: %w", f.key, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// formFieldValue renders a parameter as a plain form field: primitives as
// text, everything structured as JSON.
func formFieldValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case ChatID:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case ParseMode:
		return string(t), nil
	default:
		b, err := codecJSON.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// ResponseParameters carries optional error context sent by the server.
type ResponseParameters struct {
	MigrateToChatID *int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      *int   `json:"retry_after,omitempty"`
}

type apiResponse struct {
	OK          *bool               `json:"ok"`
	Result      jsoniter.RawMessage `json:"result,omitempty"`
	Description *string             `json:"description,omitempty"`
	ErrorCode   *int                `json:"error_code,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// decodeEnvelope parses one response body into dest according to the
// envelope rules: an HTML-looking body means the server is down; a missing
// "ok" with a present "result" still counts as success; otherwise a
// rejection must carry both description and error_code.
func decodeEnvelope(raw []byte, dest any) error {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return ErrServerUnavailable
	}

	var env apiResponse
	if err := codecJSON.Unmarshal(raw, &env); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}

	succeeded := (env.OK != nil && *env.OK) || (env.OK == nil && len(env.Result) > 0)
	if succeeded {
		if dest == nil || len(env.Result) == 0 {
			return nil
		}
		if err := codecJSON.Unmarshal(env.Result, dest); err != nil {
			return &ParseError{Raw: raw, Err: err}
		}
		return nil
	}

	if env.Description == nil || env.ErrorCode == nil {
		return &ParseError{Raw: raw, Err: errors.New("error envelope missing description or error_code")}
	}
	re := &RequestError{Code: *env.ErrorCode, Description: *env.Description}
	if env.Parameters != nil {
		re.MigrateToChatID = env.Parameters.MigrateToChatID
		re.RetryAfter = env.Parameters.RetryAfter
	}
	return re
}
