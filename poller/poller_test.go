package poller

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/botcore/telegram"
)

type apiCall struct {
	method string
	body   string
}

// fakeCaller scripts API responses per method and records every call.
type fakeCaller struct {
	mu      sync.Mutex
	calls   []apiCall
	respond func(method string, nth int) (result string, err error)
}

func (f *fakeCaller) Call(ctx context.Context, token, method string, payload *telegram.Payload, dest any) error {
	body := ""
	if payload != nil {
		r, _, err := payload.Encode()
		if err != nil {
			return err
		}
		raw, _ := io.ReadAll(r)
		body = string(raw)
	}

	f.mu.Lock()
	nth := 0
	for _, c := range f.calls {
		if c.method == method {
			nth++
		}
	}
	f.calls = append(f.calls, apiCall{method: method, body: body})
	f.mu.Unlock()

	result, err := f.respond(method, nth)
	if err != nil {
		return err
	}
	if dest != nil && result != "" {
		return telegram.Codec().Unmarshal([]byte(result), dest)
	}
	return nil
}

func (f *fakeCaller) byMethod(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeCaller) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.method
	}
	return out
}

type fakeDispatcher struct {
	mu      sync.Mutex
	updates []int64
	errors  []error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, u *telegram.Update) {
	d.mu.Lock()
	d.updates = append(d.updates, u.ID)
	d.mu.Unlock()
}

func (d *fakeDispatcher) HandlePollingError(ctx context.Context, err error) {
	d.mu.Lock()
	d.errors = append(d.errors, err)
	d.mu.Unlock()
}

func TestPoller_OffsetAdvancesPastBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	caller := &fakeCaller{}
	caller.respond = func(method string, nth int) (string, error) {
		if method != "getUpdates" {
			return "true", nil
		}
		switch nth {
		case 0:
			return `[
				{"update_id": 5, "message": {"message_id": 1, "date": 0, "chat": {"id": 1, "type": "private"}, "text": "a"}},
				{"update_id": 6, "message": {"message_id": 2, "date": 0, "chat": {"id": 1, "type": "private"}, "text": "b"}}
			]`, nil
		default:
			cancel()
			return "[]", nil
		}
	}

	disp := &fakeDispatcher{}
	p := New(telegram.NewBot("TOKEN", caller), disp, Config{PollInterval: time.Millisecond})

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	fetches := caller.byMethod("getUpdates")
	require.GreaterOrEqual(t, len(fetches), 2)
	assert.NotContains(t, fetches[0].body, "offset")
	assert.Contains(t, fetches[1].body, `"offset":7`)

	assert.Equal(t, []int64{5, 6}, disp.updates)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Batches)
	assert.Equal(t, int64(2), stats.Updates)
	assert.Equal(t, int64(6), stats.LastUpdateID)
}

func TestPoller_OffsetUnchangedOnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cycleErr := &telegram.RequestError{Code: 500, Description: "Internal Server Error"}
	caller := &fakeCaller{}
	caller.respond = func(method string, nth int) (string, error) {
		if method != "getUpdates" {
			return "true", nil
		}
		if nth == 0 {
			return "", cycleErr
		}
		cancel()
		return "[]", nil
	}

	disp := &fakeDispatcher{}
	p := New(telegram.NewBot("TOKEN", caller), disp, Config{Offset: 3, PollInterval: time.Millisecond})

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	fetches := caller.byMethod("getUpdates")
	require.GreaterOrEqual(t, len(fetches), 2)
	assert.Contains(t, fetches[0].body, `"offset":3`)
	assert.Contains(t, fetches[1].body, `"offset":3`)

	require.Len(t, disp.errors, 1)
	assert.ErrorIs(t, disp.errors[0], cycleErr)
	assert.Equal(t, int64(1), p.Stats().CycleErrors)
}

func TestPoller_RetryAfterDelaysNextFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	after := 1
	flood := &telegram.RequestError{
		Code:        429,
		Description: "Too Many Requests",
		RetryAfter:  &after,
	}

	var times []time.Time
	caller := &fakeCaller{}
	caller.respond = func(method string, nth int) (string, error) {
		if method != "getUpdates" {
			return "true", nil
		}
		times = append(times, time.Now())
		if nth == 0 {
			return "", flood
		}
		cancel()
		return "[]", nil
	}

	disp := &fakeDispatcher{}
	p := New(telegram.NewBot("TOKEN", caller), disp, Config{PollInterval: time.Millisecond})

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.GreaterOrEqual(t, len(times), 2)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), time.Second)
}

func TestPoller_LastNStartsNegative(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	caller := &fakeCaller{}
	caller.respond = func(method string, nth int) (string, error) {
		if method == "getUpdates" {
			cancel()
			return "[]", nil
		}
		return "true", nil
	}

	p := New(telegram.NewBot("TOKEN", caller), &fakeDispatcher{}, Config{LastN: 2, PollInterval: time.Millisecond})
	_ = p.Run(ctx)

	fetches := caller.byMethod("getUpdates")
	require.NotEmpty(t, fetches)
	assert.Contains(t, fetches[0].body, `"offset":-2`)
}

func TestPoller_ExplicitOffsetWinsOverLastN(t *testing.T) {
	p := New(telegram.NewBot("TOKEN", &fakeCaller{}), &fakeDispatcher{}, Config{Offset: 9, LastN: 2})
	assert.Equal(t, int64(9), p.offset)
}

func TestPoller_SetupSequence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	caller := &fakeCaller{}
	caller.respond = func(method string, nth int) (string, error) {
		if method == "getUpdates" {
			cancel()
			return "[]", nil
		}
		return "true", nil
	}

	cfg := Config{
		DropPending:  true,
		PollInterval: time.Millisecond,
		Commands:     []telegram.BotCommand{{Command: "ping", Description: "liveness check"}},
	}
	p := New(telegram.NewBot("TOKEN", caller), &fakeDispatcher{}, cfg)
	_ = p.Run(ctx)

	methods := caller.methods()
	require.GreaterOrEqual(t, len(methods), 3)
	assert.Equal(t, "deleteWebhook", methods[0])
	assert.Equal(t, "setMyCommands", methods[1])
	assert.Equal(t, "getUpdates", methods[2])

	hooks := caller.byMethod("deleteWebhook")
	assert.Contains(t, hooks[0].body, `"drop_pending_updates":true`)
}

func TestPoller_SetupFailureIsFatal(t *testing.T) {
	boom := errors.New("unauthorized")
	caller := &fakeCaller{}
	caller.respond = func(method string, nth int) (string, error) {
		return "", boom
	}

	p := New(telegram.NewBot("TOKEN", caller), &fakeDispatcher{}, Config{})
	err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPoller_ConcurrentDispatchCompletesBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	caller := &fakeCaller{}
	caller.respond = func(method string, nth int) (string, error) {
		if method != "getUpdates" {
			return "true", nil
		}
		if nth == 0 {
			return `[
				{"update_id": 1}, {"update_id": 2}, {"update_id": 3}, {"update_id": 4}
			]`, nil
		}
		cancel()
		return "[]", nil
	}

	disp := &fakeDispatcher{}
	p := New(telegram.NewBot("TOKEN", caller), disp, Config{Concurrency: 2, PollInterval: time.Millisecond})
	_ = p.Run(ctx)

	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, disp.updates)
	assert.Equal(t, int64(4), p.Stats().LastUpdateID)
}

func TestConfig_Normalize(t *testing.T) {
	c := Config{Timeout: 30}
	c.normalize()
	assert.Equal(t, 25*time.Millisecond, c.PollInterval)
	assert.Equal(t, 90*time.Second, c.RequestTimeout)

	c = Config{Timeout: -5}
	c.normalize()
	assert.Equal(t, 60*time.Second, c.RequestTimeout)
}
