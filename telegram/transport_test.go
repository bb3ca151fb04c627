package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	return client, srv
}

func TestClient_Call_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/botTOKEN/getMe", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		io.WriteString(w, `{"ok": true, "result": {"id": 99, "is_bot": true, "first_name": "echo", "username": "echobot"}}`)
	})
	defer srv.Close()

	var u User
	err := client.Call(context.Background(), "TOKEN", "getMe", nil, &u)
	require.NoError(t, err)
	assert.Equal(t, int64(99), u.ID)
	assert.Equal(t, "echobot", u.Username)
}

func TestClient_Call_RequestBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"text":"hi"`)
		assert.Contains(t, string(body), `"chat_id":42`)
		io.WriteString(w, `{"ok": true, "result": {"message_id": 1, "date": 0, "chat": {"id": 42, "type": "private"}}}`)
	})
	defer srv.Close()

	payload := NewPayload().Set("chat_id", ChatInt(42)).Set("text", "hi")
	var msg Message
	err := client.Call(context.Background(), "TOKEN", "sendMessage", payload, &msg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.MessageID)
}

func TestClient_Call_RequestError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"}`)
	})
	defer srv.Close()

	err := client.Call(context.Background(), "TOKEN", "sendMessage", NewPayload(), nil)
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, 400, re.Code)
	assert.Equal(t, "Bad Request: chat not found", re.Description)
}

func TestClient_Call_ServerUnavailable(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>502</html>")
	})
	defer srv.Close()

	err := client.Call(context.Background(), "TOKEN", "getMe", nil, nil)
	assert.ErrorIs(t, err, ErrServerUnavailable)
}

func TestClient_Call_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(ClientConfig{BaseURL: srv.URL})
	srv.Close()

	err := client.Call(context.Background(), "TOKEN", "getMe", nil, nil)
	var ne *NetworkError
	assert.True(t, errors.As(err, &ne))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(ErrServerUnavailable))
	assert.True(t, IsTransient(&NetworkError{Err: errors.New("refused")}))
	assert.True(t, IsTransient(&RequestError{Code: 429, Description: "flood"}))
	assert.True(t, IsTransient(&RequestError{Code: 502, Description: "bad gateway"}))
	assert.False(t, IsTransient(&RequestError{Code: 400, Description: "bad request"}))
	assert.False(t, IsTransient(&ParseError{Err: errors.New("bad json")}))
}

func TestResilientCaller_RetriesTransient(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, "<html>502</html>")
			return
		}
		io.WriteString(w, `{"ok": true, "result": true}`)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	rc := NewResilientCaller(client, ResilientConfig{})

	err := rc.Call(context.Background(), "TOKEN", "deleteWebhook", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestResilientCaller_NoRetryOnPermanent(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		io.WriteString(w, `{"ok": false, "error_code": 400, "description": "Bad Request"}`)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	rc := NewResilientCaller(client, ResilientConfig{})

	err := rc.Call(context.Background(), "TOKEN", "sendMessage", NewPayload(), nil)
	re, ok := AsRequestError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, re.Code)
	assert.Equal(t, 1, attempts)
}

func TestBot_CopyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"message_id":9000000000`)
		io.WriteString(w, `{"ok": true, "result": {"message_id": 9000000001}}`)
	}))
	defer srv.Close()

	bot := NewBot("TOKEN", NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: srv.Client()}))
	// Message ids are 64-bit on the wire; values past int32 must survive.
	id, err := bot.CopyMessage(context.Background(), ChatInt(1), ChatInt(2), 9000000000, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9000000001), id)
}

func TestBot_GetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"offset":5`)
		assert.Contains(t, string(body), `"timeout":30`)
		io.WriteString(w, `{"ok": true, "result": [
			{"update_id": 5, "message": {"message_id": 1, "date": 0, "chat": {"id": 1, "type": "private"}, "text": "a"}},
			{"update_id": 6, "message": {"message_id": 2, "date": 0, "chat": {"id": 1, "type": "private"}, "text": "b"}}
		]}`)
	}))
	defer srv.Close()

	bot := NewBot("TOKEN", NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: srv.Client()}))
	updates, err := bot.GetUpdates(context.Background(), GetUpdatesParams{Offset: 5, Timeout: 30})
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(6), updates[1].ID)
}
