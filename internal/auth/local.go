package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer mints HS256 tokens for offline deployments that have no
// external identity provider. The resolver accepts them like any other
// bearer token since it only reads the subject claim.
type TokenIssuer struct {
	hmac     []byte
	passHash []byte // bcrypt hash of the operator password
}

func NewTokenIssuer(secret, adminPassHash string) *TokenIssuer {
	return &TokenIssuer{hmac: []byte(secret), passHash: []byte(adminPassHash)}
}

func (ti *TokenIssuer) Issue(sub string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "auto-qcm-local",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(ti.hmac)
}

// POST /auth/dev_token  { "user_id": "...", "password": "..." }
func DevTokenHandler(ti *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string `json:"user_id"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "user_id required", http.StatusBadRequest)
			return
		}
		if len(ti.passHash) == 0 ||
			bcrypt.CompareHashAndPassword(ti.passHash, []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := ti.Issue(req.UserID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}
