package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// CompanyIDFromClaims extracts the caller's tenant from token claims.
// Two claim names are accepted for backward compatibility, preferring the
// newer "tenantId" over "companyId". Returns 0 when absent or unparsable;
// 0 is the "no tenant" sentinel and must never widen a query to all tenants
// on a request path — repositories take the company id explicitly and only
// trusted startup code may pass 0.
func CompanyIDFromClaims(claims jwt.MapClaims) uint {
	if id, ok := parseCompanyID(claims["tenantId"]); ok {
		return id
	}
	if id, ok := parseCompanyID(claims["companyId"]); ok {
		return id
	}
	return 0
}

func parseCompanyID(v interface{}) (uint, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint(t), true
	case string:
		id, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	default:
		return 0, false
	}
}
