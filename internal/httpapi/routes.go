package httpapi

import (
	"context"
	"fmt"

	"github.com/gorilla/mux"

	"github.com/dxpool/hns-backend/internal/apperr"
)

const (
	defaultMempoolLimit = 25
	defaultTxLimit      = 25
	maxListLimit        = 50
)

// wrapErr normalizes an error returned by the Query Engine into the
// *apperr.Error the HTTP layer requires, in case a caller somewhere up the
// chain forgot to wrap a plain error (spec.md §7).
func wrapErr(err error) *apperr.Error {
	if err == nil {
		return nil
	}
	if ae, ok := apperr.As(err); ok {
		return ae
	}
	return apperr.Internal("internal_error", "unexpected error", err)
}

// validateLimit rejects a limit outside (0, max], the pagination-bounds
// validation failure spec.md §7 classifies alongside offset-beyond-tip.
func validateLimit(limit, max int) (int, *apperr.Error) {
	if limit <= 0 || limit > max {
		return 0, apperr.Input("bad_limit", fmt.Sprintf("limit must be between 1 and %d", max))
	}
	return limit, nil
}

// addRoutes registers every endpoint in spec.md §6.1 on router.
func (s *Server) addRoutes(router *mux.Router) {
	router.HandleFunc("/summary", s.makeHandler(s.handleSummary)).Methods("GET")
	router.HandleFunc("/status", s.makeHandler(s.handleStatus)).Methods("GET")
	router.HandleFunc("/mempool", s.makeHandler(s.handleMempool)).Methods("GET")
	router.HandleFunc("/blocks", s.makeHandler(s.handleBlocks)).Methods("GET")
	router.HandleFunc("/blocks/{height}", s.makeHandler(s.handleBlock)).Methods("GET")
	router.HandleFunc("/txs", s.makeHandler(s.handleTxs)).Methods("GET")
	router.HandleFunc("/txs/{hash}", s.makeHandler(s.handleTx)).Methods("GET")
	router.HandleFunc("/names", s.makeHandler(s.handleNames)).Methods("GET")
	router.HandleFunc("/names/{name}", s.makeHandler(s.handleName)).Methods("GET")
	router.HandleFunc("/names/{name}/history", s.makeHandler(s.handleNameHistory)).Methods("GET")
	router.HandleFunc("/addresses/{hash}", s.makeHandler(s.handleAddress)).Methods("GET")
	router.HandleFunc("/address/{hash}/mempool", s.makeHandler(s.handleAddressMempool)).Methods("GET")
	router.HandleFunc("/peers", s.makeHandler(s.handlePeers)).Methods("GET")
	router.HandleFunc("/search", s.makeHandler(s.handleSearch)).Methods("GET")
	router.HandleFunc("/charts/{type}", s.makeHandler(s.handleChart)).Methods("GET")
	router.HandleFunc("/pool/distribution", s.makeHandler(s.handlePoolDistribution)).Methods("GET")
	router.HandleFunc("/mapdata", s.makeHandler(s.handleMapData)).Methods("GET")
}

func (s *Server) handleSummary(_ map[string]string, _ map[string][]string) (interface{}, *apperr.Error) {
	v, err := s.engine.GetSummaryCounts(context.Background())
	return v, wrapErr(err)
}

func (s *Server) handleStatus(_ map[string]string, _ map[string][]string) (interface{}, *apperr.Error) {
	v, err := s.engine.GetStatus(context.Background())
	if v != nil {
		v.Key = s.apiKey != ""
	}
	return v, wrapErr(err)
}

func (s *Server) handleMempool(_ map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	offset, aerr := queryInt(qp, "offset", 0)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr := queryInt(qp, "limit", defaultMempoolLimit)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr = validateLimit(limit, maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	page, err := s.engine.GetMempoolPage(context.Background(), offset, limit)
	return page, wrapErr(err)
}

func (s *Server) handleBlocks(_ map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	offset, aerr := queryInt(qp, "offset", 0)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr := queryInt(qp, "limit", maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr = validateLimit(limit, maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	page, err := s.engine.GetBlocks(context.Background(), offset, limit)
	return page, wrapErr(err)
}

func (s *Server) handleBlock(rp map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	height, aerr := parseUintParam(rp, "height")
	if aerr != nil {
		return nil, aerr
	}
	details := queryString(qp, "details", "") == "true"
	v, err := s.engine.GetBlock(context.Background(), height, details)
	if aerr := wrapErr(err); aerr != nil {
		return nil, aerr
	}
	if v == nil {
		return nil, apperr.NotFound("block_not_found", "no such block")
	}
	return v, nil
}

func (s *Server) handleTxs(_ map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	offset, aerr := queryInt(qp, "offset", 0)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr := queryInt(qp, "limit", defaultTxLimit)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr = validateLimit(limit, maxListLimit)
	if aerr != nil {
		return nil, aerr
	}

	if heightStr := queryString(qp, "height", ""); heightStr != "" {
		height, aerr := queryInt(qp, "height", 0)
		if aerr != nil {
			return nil, aerr
		}
		page, err := s.engine.GetTransactionsByHeight(context.Background(), uint32(height), offset, limit)
		return page, wrapErr(err)
	}

	address := queryString(qp, "address", "")
	if address == "" {
		return nil, apperr.Input("missing_param", "height or address is required")
	}
	page, err := s.engine.GetTransactionsByAddress(context.Background(), address, offset, limit)
	return page, wrapErr(err)
}

func (s *Server) handleTx(rp map[string]string, _ map[string][]string) (interface{}, *apperr.Error) {
	hash, ok := rp["hash"]
	if !ok {
		return nil, apperr.Input("missing_param", "missing hash")
	}
	v, err := s.engine.GetTransaction(context.Background(), hash)
	if aerr := wrapErr(err); aerr != nil {
		return nil, aerr
	}
	if v == nil {
		return nil, apperr.NotFound("tx_not_found", "no such transaction")
	}
	return v, nil
}

func (s *Server) handleNames(_ map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	offset, aerr := queryInt(qp, "offset", 0)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr := queryInt(qp, "limit", maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr = validateLimit(limit, maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	typ := queryString(qp, "type", "")
	status := queryString(qp, "status", "")
	page, err := s.engine.GetNames(context.Background(), typ, status, offset, limit)
	return page, wrapErr(err)
}

func (s *Server) handleName(rp map[string]string, _ map[string][]string) (interface{}, *apperr.Error) {
	name, ok := rp["name"]
	if !ok {
		return nil, apperr.Input("missing_param", "missing name")
	}
	v, err := s.engine.GetName(context.Background(), name)
	if aerr := wrapErr(err); aerr != nil {
		return nil, aerr
	}
	if v == nil {
		return nil, apperr.NotFound("name_not_found", "no such name")
	}
	return v, nil
}

func (s *Server) handleNameHistory(rp map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	name, ok := rp["name"]
	if !ok {
		return nil, apperr.Input("missing_param", "missing name")
	}
	offset, aerr := queryInt(qp, "offset", 0)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr := queryInt(qp, "limit", maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr = validateLimit(limit, maxListLimit)
	if aerr != nil {
		return nil, aerr
	}

	ctx := context.Background()
	rec, err := s.engine.GetName(ctx, name)
	if aerr := wrapErr(err); aerr != nil {
		return nil, aerr
	}
	if rec == nil {
		return nil, apperr.NotFound("name_not_found", "no such name")
	}
	page, err := s.engine.GetNameHistory(ctx, rec.NameHash, offset, limit)
	return page, wrapErr(err)
}

func (s *Server) handleAddress(rp map[string]string, _ map[string][]string) (interface{}, *apperr.Error) {
	hash, ok := rp["hash"]
	if !ok {
		return nil, apperr.Input("missing_param", "missing hash")
	}
	v, err := s.engine.GetAddress(context.Background(), hash)
	if aerr := wrapErr(err); aerr != nil {
		return nil, aerr
	}
	if v == nil {
		return nil, apperr.NotFound("address_not_found", "no such address")
	}
	return v, nil
}

func (s *Server) handleAddressMempool(rp map[string]string, _ map[string][]string) (interface{}, *apperr.Error) {
	hash, ok := rp["hash"]
	if !ok {
		return nil, apperr.Input("missing_param", "missing hash")
	}
	v, err := s.engine.GetAddressMempool(context.Background(), hash)
	return v, wrapErr(err)
}

func (s *Server) handlePeers(_ map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	page, aerr := queryInt(qp, "page", 1)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr := queryInt(qp, "limit", maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	limit, aerr = validateLimit(limit, maxListLimit)
	if aerr != nil {
		return nil, aerr
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	v, err := s.engine.GetPeers(context.Background(), offset, limit)
	return v, wrapErr(err)
}

func (s *Server) handleSearch(_ map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	q := queryString(qp, "q", "")
	if q == "" {
		return []interface{}{}, nil
	}
	hits, err := s.engine.Search(context.Background(), q)
	return hits, wrapErr(err)
}

func (s *Server) handleChart(rp map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	typ, ok := rp["type"]
	if !ok {
		return nil, apperr.Input("missing_param", "missing type")
	}
	startTime, aerr := queryInt64(qp, "startTime", 0)
	if aerr != nil {
		return nil, aerr
	}
	endTime, aerr := queryInt64(qp, "endTime", 0)
	if aerr != nil {
		return nil, aerr
	}
	v, err := s.engine.GetSeries(context.Background(), typ, startTime, endTime)
	return v, wrapErr(err)
}

func (s *Server) handlePoolDistribution(_ map[string]string, qp map[string][]string) (interface{}, *apperr.Error) {
	startTime, aerr := queryInt64(qp, "startTime", 0)
	if aerr != nil {
		return nil, aerr
	}
	endTime, aerr := queryInt64(qp, "endTime", 0)
	if aerr != nil {
		return nil, aerr
	}
	v, err := s.engine.GetPoolDistribution(context.Background(), startTime, endTime)
	return v, wrapErr(err)
}

func (s *Server) handleMapData(_ map[string]string, _ map[string][]string) (interface{}, *apperr.Error) {
	v, err := s.engine.GetPeersLocation(context.Background())
	return v, wrapErr(err)
}
