// Package httpapi implements the HTTP Surface (component F, SPEC_FULL.md
// §4.5): a read-only JSON API over the Query Engine, grounded on
// daglabs-btcd/apiserver/server/routes.go's handler-wrapping shape
// (makeHandler, sendJSONResponse, sendErr) and apiserver/utils/error.go's
// HandlerError type, generalized from an HTTP-status int into the
// apperr.Error taxonomy.
package httpapi

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dxpool/hns-backend/internal/apperr"
	"github.com/dxpool/hns-backend/internal/logs"
)

// handlerFunc is the per-route contract: given path/query params, produce a
// response value or an *apperr.Error.
type handlerFunc func(routeParams map[string]string, queryParams map[string][]string) (interface{}, *apperr.Error)

// errorEnvelope is the deterministic JSON error shape (spec.md §7
// "Clients see deterministic JSON error envelopes").
type errorEnvelope struct {
	Error struct {
		Type    apperr.Type `json:"type"`
		Code    string      `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func statusForType(t apperr.Type) int {
	switch t {
	case apperr.TypeInput:
		return http.StatusBadRequest
	case apperr.TypeNotFound:
		return http.StatusNotFound
	case apperr.TypeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) makeHandler(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routeParams := mux.Vars(r)
		response, aerr := h(routeParams, r.URL.Query())
		if aerr != nil {
			s.sendErr(w, aerr)
			return
		}
		sendJSONResponse(w, http.StatusOK, response)
	}
}

func (s *Server) sendErr(w http.ResponseWriter, aerr *apperr.Error) {
	s.log.Warnf("request error: %s", aerr.Error())
	env := errorEnvelope{}
	env.Error.Type = aerr.Type
	env.Error.Code = aerr.Code
	env.Error.Message = aerr.Message
	sendJSONResponse(w, statusForType(aerr.Type), env)
}

func sendJSONResponse(w http.ResponseWriter, status int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if response == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		panic(err)
	}
}

// isLoopback reports whether r arrived over a loopback connection (spec.md
// §6.1 "disabled automatically for loopback hosts").
func isLoopback(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// basicAuth wraps next with HTTP Basic auth, password = apiKey, skipped
// entirely when apiKey is empty or the request arrives over loopback
// (spec.md §6.1/§6.3).
func basicAuth(apiKey string, log *logs.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey == "" || isLoopback(r) {
			next.ServeHTTP(w, r)
			return
		}
		_, pass, ok := r.BasicAuth()
		if !ok || pass != apiKey {
			w.Header().Set("WWW-Authenticate", `Basic realm="hnsexplorerd"`)
			sendJSONResponse(w, http.StatusUnauthorized, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
