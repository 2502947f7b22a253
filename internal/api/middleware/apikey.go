package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/advisordesk/costbasis-backend/internal/api/response"
)

// timeTokenMaxAge bounds how long a generated time token stays valid.
const timeTokenMaxAge = 5 * time.Minute

// APIKeyMiddleware guards mutating endpoints with a shared API key plus a
// short-lived HMAC time token, so captured headers cannot be replayed later.
// The expected key is read from the INTERNAL_API_KEY environment variable.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedKey := os.Getenv("INTERNAL_API_KEY")
		if expectedKey == "" {
			response.RespondError(w, http.StatusInternalServerError, "authentication error", "Authentication not loaded")
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if !subtleCompare(apiKey, expectedKey) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		timeToken := r.Header.Get("X-Time-Token")
		if timeToken == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if !validateTimeToken(timeToken, expectedKey) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken creates a time token for the given API key: the current
// unix timestamp joined with an HMAC-SHA256 signature over it.
func GenerateTimeToken(key string) string {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	return fmt.Sprintf("%s.%s", timestamp, signTimestamp(timestamp, key))
}

// validateTimeToken checks the token's signature and rejects tokens older
// than timeTokenMaxAge or minted in the future.
func validateTimeToken(token, key string) bool {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return false
	}

	timestamp, signature := parts[0], parts[1]
	if !subtleCompare(signature, signTimestamp(timestamp, key)) {
		return false
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	age := time.Since(time.Unix(unix, 0))
	return age >= 0 && age <= timeTokenMaxAge
}

func signTimestamp(timestamp, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

func subtleCompare(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
