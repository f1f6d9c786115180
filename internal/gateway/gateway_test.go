package gateway

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"net/http"
	"testing"

	"discord-ecs-control/internal/dispatch"
	"discord-ecs-control/internal/models"
	"discord-ecs-control/internal/signature"
)

const testRole = "111111111111111111"

type countingSecret struct {
	value string
	err   error
	calls int
}

func (s *countingSecret) Value(context.Context) (string, error) {
	s.calls++
	return s.value, s.err
}

type recordingDispatcher struct {
	payloads []models.WorkerPayload
	err      error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, payload models.WorkerPayload) error {
	d.payloads = append(d.payloads, payload)
	return d.err
}

type fixture struct {
	gateway    *Gateway
	private    ed25519.PrivateKey
	publicKey  *countingSecret
	role       *countingSecret
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 7
	private := ed25519.NewKeyFromSeed(seed)

	f := &fixture{
		private:    private,
		publicKey:  &countingSecret{value: hex.EncodeToString(private.Public().(ed25519.PublicKey))},
		role:       &countingSecret{value: testRole},
		dispatcher: &recordingDispatcher{},
	}
	f.gateway = New(f.publicKey, f.role, f.dispatcher, nil)
	f.gateway.newRequestID = func() string { return "req-test" }
	return f
}

func (f *fixture) signed(body string) Request {
	ts := "1700000000"
	sig := ed25519.Sign(f.private, append([]byte(ts), body...))
	headers := http.Header{}
	// Lambda delivers lower-cased header names.
	headers["x-signature-ed25519"] = []string{hex.EncodeToString(sig)}
	headers["x-signature-timestamp"] = []string{ts}
	return Request{Headers: canonical(headers), Body: []byte(body)}
}

func canonical(in http.Header) http.Header {
	out := http.Header{}
	for k, vs := range in {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

func ephemeralContent(t *testing.T, resp Response) string {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, ok := resp.Body.(models.InteractionResponse)
	if !ok {
		t.Fatalf("body = %T, want InteractionResponse", resp.Body)
	}
	if body.Type != models.ResponseChannelMessage || body.Data == nil || body.Data.Flags != models.FlagEphemeral {
		t.Fatalf("response = %+v, want ephemeral channel message", body)
	}
	return body.Data.Content
}

func TestMissingHeadersFailClosed(t *testing.T) {
	f := newFixture(t)
	full := f.signed(`{"type":1}`)

	for _, drop := range []string{signature.HeaderSignature, signature.HeaderTimestamp} {
		t.Run(drop, func(t *testing.T) {
			req := Request{Headers: full.Headers.Clone(), Body: full.Body}
			req.Headers.Del(drop)

			resp := f.gateway.Handle(context.Background(), req)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
	if f.publicKey.calls != 0 {
		t.Errorf("public key fetched %d times before header check", f.publicKey.calls)
	}
}

func TestInvalidSignature(t *testing.T) {
	f := newFixture(t)
	req := f.signed(`{"type":2,"data":{"name":"start"}}`)
	req.Body = []byte(`{"type":2,"data":{"name":"stop"}}`)

	resp := f.gateway.Handle(context.Background(), req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if len(f.dispatcher.payloads) != 0 {
		t.Error("unauthenticated request dispatched")
	}
}

func TestPublicKeyUnavailable(t *testing.T) {
	f := newFixture(t)
	req := f.signed(`{"type":1}`)
	f.publicKey.err = errors.New("ssm down")

	if resp := f.gateway.Handle(context.Background(), req); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestInvalidJSON(t *testing.T) {
	f := newFixture(t)
	resp := f.gateway.Handle(context.Background(), f.signed(`{"type":`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPingSkipsAuthorization(t *testing.T) {
	f := newFixture(t)
	f.role.err = errors.New("role not configured")

	resp := f.gateway.Handle(context.Background(), f.signed(`{"type":1,"member":{"roles":[]},"data":{"name":"start"}}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := resp.Body.(models.InteractionResponse); body != models.Pong() {
		t.Errorf("body = %+v, want pong", body)
	}
	if f.role.calls != 0 {
		t.Error("ping looked up the allowed role")
	}
	if len(f.dispatcher.payloads) != 0 {
		t.Error("ping dispatched work")
	}
}

func TestPermissionDenied(t *testing.T) {
	bodies := map[string]string{
		"other role": `{"type":2,"member":{"roles":["222"]},"data":{"name":"start"}}`,
		"no roles":   `{"type":2,"member":{"roles":[]},"data":{"name":"start"}}`,
		"no member":  `{"type":2,"data":{"name":"stop"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			content := ephemeralContent(t, f.gateway.Handle(context.Background(), f.signed(body)))
			if content != MessagePermissionDenied {
				t.Errorf("content = %q", content)
			}
			if len(f.dispatcher.payloads) != 0 {
				t.Error("unauthorized caller reached dispatch")
			}
		})
	}
}

func TestAllowedRoleUnavailable(t *testing.T) {
	f := newFixture(t)
	f.role.err = errors.New("ssm down")

	resp := f.gateway.Handle(context.Background(), f.signed(`{"type":2,"member":{"roles":["`+testRole+`"]},"data":{"name":"start"}}`))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestUnsupportedCommand(t *testing.T) {
	f := newFixture(t)
	content := ephemeralContent(t, f.gateway.Handle(context.Background(),
		f.signed(`{"type":2,"member":{"roles":["`+testRole+`"]},"data":{"name":"restart"}}`)))
	if content != MessageUnsupportedCommand {
		t.Errorf("content = %q", content)
	}
	if len(f.dispatcher.payloads) != 0 {
		t.Error("unsupported command dispatched")
	}
}

func TestStartDispatchesRequestedSize(t *testing.T) {
	f := newFixture(t)
	body := `{"type":2,"member":{"roles":["999","` + testRole + `"]},"data":{"name":"start","options":[{"name":"size","value":"large"}]}}`

	content := ephemeralContent(t, f.gateway.Handle(context.Background(), f.signed(body)))
	if content != "start request accepted (size=large)" {
		t.Errorf("content = %q", content)
	}

	want := models.WorkerPayload{Async: true, RequestID: "req-test", Action: models.ActionStart, Size: "large"}
	if len(f.dispatcher.payloads) != 1 || f.dispatcher.payloads[0] != want {
		t.Errorf("payloads = %+v, want [%+v]", f.dispatcher.payloads, want)
	}
}

func TestStartDefaultsToSmall(t *testing.T) {
	bodies := map[string]string{
		"no options":   `{"type":2,"member":{"roles":["` + testRole + `"]},"data":{"name":"start"}}`,
		"other option": `{"type":2,"member":{"roles":["` + testRole + `"]},"data":{"name":"start","options":[{"name":"world","value":"x"}]}}`,
		"unknown size": `{"type":2,"member":{"roles":["` + testRole + `"]},"data":{"name":"start","options":[{"name":"size","value":"huge"}]}}`,
		"non-string":   `{"type":2,"member":{"roles":["` + testRole + `"]},"data":{"name":"start","options":[{"name":"size","value":3}]}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			content := ephemeralContent(t, f.gateway.Handle(context.Background(), f.signed(body)))
			if content != "start request accepted (size=small)" {
				t.Errorf("content = %q", content)
			}
			if f.dispatcher.payloads[0].Size != "small" {
				t.Errorf("size = %q, want small", f.dispatcher.payloads[0].Size)
			}
		})
	}
}

func TestStop(t *testing.T) {
	f := newFixture(t)
	content := ephemeralContent(t, f.gateway.Handle(context.Background(),
		f.signed(`{"type":2,"member":{"roles":["`+testRole+`"]},"data":{"name":"stop"}}`)))
	if content != MessageStopAccepted {
		t.Errorf("content = %q", content)
	}
	if f.dispatcher.payloads[0].Action != models.ActionStop {
		t.Errorf("action = %q", f.dispatcher.payloads[0].Action)
	}
}

func TestDispatchFailureStillAcknowledges(t *testing.T) {
	for _, err := range []error{errors.New("throttled"), dispatch.ErrFunctionNameUnset} {
		t.Run(err.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.dispatcher.err = err
			content := ephemeralContent(t, f.gateway.Handle(context.Background(),
				f.signed(`{"type":2,"member":{"roles":["`+testRole+`"]},"data":{"name":"stop"}}`)))
			if content != MessageInternalError {
				t.Errorf("content = %q", content)
			}
		})
	}
}
