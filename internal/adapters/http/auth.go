package httpadapter

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// Authenticator maps submitted credentials to a caller role. The core never
// re-derives identity: everything downstream trusts the role resolved here.
type Authenticator struct {
	users map[string]userRecord
}

type userRecord struct {
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// LoadUsersFile reads a YAML map of username -> {password, role}.
func LoadUsersFile(path string) (*Authenticator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var users map[string]userRecord
	if err := yaml.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("users file %s defines no users", path)
	}
	for name, rec := range users {
		if rec.Role == "" {
			return nil, fmt.Errorf("user %s has no role", name)
		}
	}
	return &Authenticator{users: users}, nil
}

func NewAuthenticator(users map[string]struct{ Password, Role string }) *Authenticator {
	converted := make(map[string]userRecord, len(users))
	for name, rec := range users {
		converted[name] = userRecord{Password: rec.Password, Role: rec.Role}
	}
	return &Authenticator{users: converted}
}

// Authenticate resolves credentials to a caller role. Failure yields no
// role; there is no fallback role.
func (a *Authenticator) Authenticate(username, password string) (string, bool) {
	rec, ok := a.users[username]
	if !ok {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(rec.Password), []byte(password)) != 1 {
		return "", false
	}
	return rec.Role, true
}

type callerRoleContextKey struct{}

func callerRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(callerRoleContextKey{}).(string)
	return role
}

// basicAuthMiddleware authenticates every request and stores the resolved
// caller role in the request context.
func basicAuthMiddleware(auth *Authenticator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="knowledge-assistant"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "credentials required"})
			return
		}
		role, ok := auth.Authenticate(username, password)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="knowledge-assistant"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect username or password"})
			return
		}
		ctx := context.WithValue(r.Context(), callerRoleContextKey{}, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
