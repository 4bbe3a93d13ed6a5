package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/query"
	"github.com/dxpool/hns-backend/internal/store/memstore"
)

func newTestServer(client *fakeClient, opts Options) *Server {
	st := memstore.New()
	e := query.New(client, st, model.NewPoolTable(nil), model.MainnetParams(), "main")
	return New(e, opts)
}

// TestBlockNotFound404 exercises spec.md §6.1 "/blocks/:height → Block;
// 404 if absent".
func TestBlockNotFound404(t *testing.T) {
	client := newFakeClient()
	client.tip = chainclient.Entry{Height: 10}
	s := newTestServer(client, Options{})

	req := httptest.NewRequest(http.MethodGet, "/blocks/5", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var env errorEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Error.Type != "not_found" {
		t.Fatalf("error type = %q, want not_found", env.Error.Type)
	}
}

// TestBlocksOffsetBeyondTipIsInput exercises spec.md §6.1 "offset ≤ tip".
func TestBlocksOffsetBeyondTipIsInput(t *testing.T) {
	client := newFakeClient()
	client.tip = chainclient.Entry{Height: 10}
	s := newTestServer(client, Options{})

	req := httptest.NewRequest(http.MethodGet, "/blocks?offset=999", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

// TestBlocksLimitOutOfBoundsIsInput exercises spec.md §7's "pagination
// bounds (limit > 50, offset beyond tip)" validation-failure pairing: a
// limit outside (0, 50] is rejected the same way an out-of-range offset is,
// rather than silently clamped.
func TestBlocksLimitOutOfBoundsIsInput(t *testing.T) {
	client := newFakeClient()
	client.tip = chainclient.Entry{Height: 10}
	s := newTestServer(client, Options{})

	for _, limit := range []string{"51", "0", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/blocks?limit="+limit, nil)
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: status = %d, want 400", limit, rr.Code)
		}
	}
}

// TestLoopbackSkipsAuth exercises spec.md §6.1 "disabled automatically for
// loopback hosts": a request with no credentials still succeeds when it
// arrives over loopback, even with an apiKey configured.
func TestLoopbackSkipsAuth(t *testing.T) {
	client := newFakeClient()
	client.tip = chainclient.Entry{Height: 10}
	s := newTestServer(client, Options{APIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
	}
}

// TestBasicAuthRequiredForNonLoopback exercises spec.md §6.1's Basic-auth
// requirement for non-loopback callers when apiKey is configured.
func TestBasicAuthRequiredForNonLoopback(t *testing.T) {
	client := newFakeClient()
	s := newTestServer(client, Options{APIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = "203.0.113.5:5555"
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/status", nil)
	req2.RemoteAddr = "203.0.113.5:5555"
	req2.SetBasicAuth("", "secret")
	rr2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr2, req2)

	if rr2.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid key, body=%s", rr2.Code, rr2.Body.String())
	}
}
