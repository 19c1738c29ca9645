package jsonrpc

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"driipnet/logx"
)

// JSON-RPC Method name constants
const (
	// Driip settlement challenge methods
	MethodChallengeStartFromTrade   = "challenge.startfromtrade"
	MethodChallengeStartFromPayment = "challenge.startfrompayment"
	MethodChallengeByOrder          = "challenge.byorder"
	MethodChallengeByTrade          = "challenge.bytrade"
	MethodChallengeByPayment        = "challenge.bypayment"
	MethodChallengeUnchallenge      = "challenge.unchallengeorderbytrade"
	MethodChallengePhase            = "challenge.phase"
	MethodChallengeStatus           = "challenge.status"
	MethodChallengeCounts           = "challenge.counts"

	// Null settlement challenge methods
	MethodNullChallengeStart        = "nullchallenge.start"
	MethodNullChallengeStartByProxy = "nullchallenge.startbyproxy"
	MethodNullChallengeByPayment    = "nullchallenge.bypayment"
	MethodNullChallengeProposal     = "nullchallenge.proposal"
)

func extractClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	logx.Debug("RPC", "RemoteAddr:", r.RemoteAddr)
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return "unknown"
}

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	methods := os.Getenv("CORS_ALLOWED_METHODS")
	headers := os.Getenv("CORS_ALLOWED_HEADERS")
	maxAgeStr := os.Getenv("CORS_MAX_AGE")

	var maxAge int
	if maxAgeStr != "" {
		if v, err := strconv.Atoi(maxAgeStr); err == nil {
			maxAge = v
		}
	}

	var allowedOrigins, allowedMethods, allowedHeaders []string
	if origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}
	if methods != "" {
		allowedMethods = splitAndTrim(methods)
	}
	if headers != "" {
		allowedHeaders = splitAndTrim(headers)
	}

	provided := len(allowedOrigins) > 0 || len(allowedMethods) > 0 || len(allowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}

	return CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         maxAge,
	}, true
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
