package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
)

// TimeTokenTTL is how long a time token generated by GenerateTimeToken is accepted.
const TimeTokenTTL = 5 * time.Minute

// APIKeyMiddleware guards mutating endpoints. A request must carry the key configured in
// INTERNAL_API_KEY as X-API-Key and a fresh time token, signed with that key, as X-Time-Token.
//
// The key is read on every request so it can be rotated without a restart.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := os.Getenv("INTERNAL_API_KEY")
		if apiKey == "" {
			response.RespondError(w, http.StatusInternalServerError, "authentication error", "Authentication not loaded")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		token := r.Header.Get("X-Time-Token")
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		key := timeTokenKey(apiKey)
		if fernet.VerifyAndDecrypt([]byte(token), TimeTokenTTL, []*fernet.Key{key}) == nil {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken returns a token accepted by APIKeyMiddleware for TimeTokenTTL.
func GenerateTimeToken(apiKey string) string {
	tok, err := fernet.EncryptAndSign([]byte(strconv.FormatInt(time.Now().Unix(), 10)), timeTokenKey(apiKey))
	if err != nil {
		// only fails when the system random source does
		return ""
	}
	return string(tok)
}

func timeTokenKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}
