package httpapi

import (
	"strconv"

	"github.com/dxpool/hns-backend/internal/apperr"
)

func queryInt(qp map[string][]string, key string, def int) (int, *apperr.Error) {
	vals := qp[key]
	if len(vals) == 0 {
		return def, nil
	}
	if len(vals) > 1 {
		return 0, apperr.Input("bad_param", "expected a single value for "+key)
	}
	v, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0, apperr.Input("bad_param", "couldn't parse "+key)
	}
	return v, nil
}

func queryInt64(qp map[string][]string, key string, def int64) (int64, *apperr.Error) {
	vals := qp[key]
	if len(vals) == 0 {
		return def, nil
	}
	if len(vals) > 1 {
		return 0, apperr.Input("bad_param", "expected a single value for "+key)
	}
	v, err := strconv.ParseInt(vals[0], 10, 64)
	if err != nil {
		return 0, apperr.Input("bad_param", "couldn't parse "+key)
	}
	return v, nil
}

func queryString(qp map[string][]string, key, def string) string {
	vals := qp[key]
	if len(vals) == 0 {
		return def
	}
	return vals[0]
}

func parseUintParam(routeParams map[string]string, key string) (uint32, *apperr.Error) {
	s, ok := routeParams[key]
	if !ok {
		return 0, apperr.Input("missing_param", "missing "+key)
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, apperr.Input("bad_param", "couldn't parse "+key)
	}
	return uint32(v), nil
}
