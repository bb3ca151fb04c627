package telegram

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEnvelope_Success(t *testing.T) {
	raw := []byte(`{"ok": true, "result": {"id": 7, "is_bot": true, "first_name": "echo"}}`)

	var u User
	err := decodeEnvelope(raw, &u)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.True(t, u.IsBot)
}

func TestDecodeEnvelope_OKAbsentResultPresent(t *testing.T) {
	// Some gateway layers strip the ok flag; a present result still counts
	// as success.
	raw := []byte(`{"result": [1, 2, 3]}`)

	var nums []int
	err := decodeEnvelope(raw, &nums)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, nums)
}

func TestDecodeEnvelope_RequestError(t *testing.T) {
	raw := []byte(`{"ok": false, "error_code": 429, "description": "Too Many Requests: retry after 3", "parameters": {"retry_after": 3}}`)

	err := decodeEnvelope(raw, nil)
	re, ok := AsRequestError(err)
	assert.True(t, ok)
	assert.Equal(t, 429, re.Code)
	assert.Equal(t, "Too Many Requests: retry after 3", re.Description)
	if assert.NotNil(t, re.RetryAfter) {
		assert.Equal(t, 3, *re.RetryAfter)
	}

	after, ok := RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 3, after)
}

func TestDecodeEnvelope_MigrateToChatID(t *testing.T) {
	raw := []byte(`{"ok": false, "error_code": 400, "description": "Bad Request: group chat was upgraded", "parameters": {"migrate_to_chat_id": -100123}}`)

	err := decodeEnvelope(raw, nil)
	re, ok := AsRequestError(err)
	assert.True(t, ok)
	if assert.NotNil(t, re.MigrateToChatID) {
		assert.Equal(t, int64(-100123), *re.MigrateToChatID)
	}
}

func TestDecodeEnvelope_HTMLBody(t *testing.T) {
	raw := []byte("<html><body>502 Bad Gateway</body></html>")

	err := decodeEnvelope(raw, nil)
	assert.ErrorIs(t, err, ErrServerUnavailable)

	// Leading whitespace does not change the verdict.
	err = decodeEnvelope([]byte("\n  <html>"), nil)
	assert.ErrorIs(t, err, ErrServerUnavailable)
}

func TestDecodeEnvelope_MalformedJSON(t *testing.T) {
	err := decodeEnvelope([]byte(`{"ok": tru`), nil)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, []byte(`{"ok": tru`), pe.Raw)
}

func TestDecodeEnvelope_ErrorWithoutDescription(t *testing.T) {
	// A rejection must carry both description and error_code; anything less
	// is a parse failure, not a request error.
	err := decodeEnvelope([]byte(`{"ok": false, "error_code": 400}`), nil)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))

	err = decodeEnvelope([]byte(`{"ok": false, "description": "nope"}`), nil)
	assert.True(t, errors.As(err, &pe))
}

func TestPayload_EncodeJSON(t *testing.T) {
	p := NewPayload().
		Set("chat_id", ChatInt(42)).
		Set("text", "hi").
		Set("disable_notification", true)

	body, contentType, err := p.Encode()
	assert.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	raw, err := io.ReadAll(body)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, codecJSON.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(42), decoded["chat_id"])
	assert.Equal(t, "hi", decoded["text"])
	assert.Equal(t, true, decoded["disable_notification"])
}

func TestPayload_ChannelUsernameOnWire(t *testing.T) {
	p := NewPayload().Set("chat_id", ChatName("mychannel"))

	body, _, err := p.Encode()
	assert.NoError(t, err)
	raw, _ := io.ReadAll(body)
	assert.Contains(t, string(raw), `"@mychannel"`)
}

func TestPayload_FileReferenceStaysJSON(t *testing.T) {
	// file_id and URL references never force multipart.
	p := NewPayload().
		Set("chat_id", ChatInt(1)).
		SetFile("photo", FileID("abc123"))

	body, contentType, err := p.Encode()
	assert.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	raw, _ := io.ReadAll(body)
	assert.Contains(t, string(raw), `"photo":"abc123"`)
}

func TestPayload_EncodeMultipart(t *testing.T) {
	p := NewPayload().
		Set("chat_id", ChatInt(42)).
		Set("caption", "look").
		SetFile("photo", FileBytes("cat.jpg", []byte("jpegbytes")))

	body, contentType, err := p.Encode()
	assert.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	assert.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	assert.True(t, strings.HasPrefix(params["boundary"], "botcore"))

	reader := multipart.NewReader(body, params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	assert.NoError(t, err)
	defer form.RemoveAll()

	assert.Equal(t, []string{"42"}, form.Value["chat_id"])
	assert.Equal(t, []string{"look"}, form.Value["caption"])
	// The upload gets a generated part name and the parameter references it.
	assert.Equal(t, []string{"attach://photo_0"}, form.Value["photo"])

	files := form.File["photo_0"]
	if assert.Len(t, files, 1) {
		assert.Equal(t, "cat.jpg", files[0].Filename)
		f, err := files[0].Open()
		assert.NoError(t, err)
		content, _ := io.ReadAll(f)
		f.Close()
		assert.Equal(t, "jpegbytes", string(content))
	}
}

func TestPayload_NilEncodesEmpty(t *testing.T) {
	var p *Payload
	body, contentType, err := p.Encode()
	assert.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	raw, _ := io.ReadAll(body)
	assert.Empty(t, raw)
}
