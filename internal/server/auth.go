package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/domain"
	"taskboard/internal/identity"
	"taskboard/internal/service"
)

type authKey struct{}
type bodyBytesKey struct{}

// authState is what the middleware learned about the caller. Gates decide what to do
// with it, so public operations ignore bad credentials.
type authState struct {
	principal domain.Principal
	err       error
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func newAuthMiddleware(auth *service.AuthService, key identity.ServiceKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			authz := strings.TrimSpace(req.Header.Get("Authorization"))
			apiKey := strings.TrimSpace(req.Header.Get("X-Api-Key"))

			state := authState{err: domain.AuthenticationError{Reason: "No token provided"}}
			switch {
			case apiKey != "":
				if key.Enabled() && key.Match(apiKey) {
					state = authState{principal: domain.Principal{UserID: "service", Email: "service", Source: domain.SourceService}}
				} else {
					state.err = domain.AuthenticationError{Reason: "Invalid API key"}
				}
			case authz != "":
				token, ok := bearerToken(authz)
				if !ok {
					state.err = domain.AuthenticationError{Reason: "Invalid token"}
					break
				}
				u, err := auth.ResolveUser(req.Context(), token)
				if err != nil {
					state.err = err
					break
				}
				state = authState{principal: domain.Principal{UserID: u.ID, Email: u.Email, Source: domain.SourceToken}}
			}
			next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), authKey{}, state)))
		})
	}
}

// requireAuth returns the authenticated caller or a 401.
func requireAuth(ctx context.Context) (domain.Principal, huma.StatusError) {
	state, ok := ctx.Value(authKey{}).(authState)
	if !ok {
		return domain.Principal{}, newAPIError(http.StatusUnauthorized, "No token provided")
	}
	if state.err != nil {
		return domain.Principal{}, handleError(ctx, state.err)
	}
	return state.principal, nil
}

// requireAdmin checks authentication, then the caller's current role.
func requireAdmin(ctx context.Context, auth *service.AuthService) (domain.Principal, huma.StatusError) {
	p, authErr := requireAuth(ctx)
	if authErr != nil {
		return p, authErr
	}
	if err := auth.RequireAdmin(ctx, p); err != nil {
		return p, handleError(ctx, err)
	}
	return p, nil
}

// maxBodyBytes caps request bodies; task and employee payloads are small.
const maxBodyBytes = 1 << 20

// captureBody keeps the raw request body so handlers can tell an explicit null from an
// absent field.
func captureBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			msg := "Unable to read request body"
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				msg = fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(&apiError{Message: msg})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		ctx := context.WithValue(r.Context(), bodyBytesKey{}, data)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rawBodyMap(ctx context.Context) map[string]json.RawMessage {
	data, _ := ctx.Value(bodyBytesKey{}).([]byte)
	if len(data) == 0 {
		return map[string]json.RawMessage{}
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]json.RawMessage{}
	}
	return out
}

func hasField(ctx context.Context, name string) bool {
	_, ok := rawBodyMap(ctx)[name]
	return ok
}

func registerAuth(api huma.API, auth *service.AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Sign in with email and password",
		Tags:        []string{"auth"},
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body LoginResponse `json:"body"`
	}, error) {
		sess, err := auth.Login(ctx, service.LoginInput{Email: input.Body.Email, Password: input.Body.Password})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body LoginResponse `json:"body"`
		}{Body: LoginResponse{Success: true, AccessToken: sess.AccessToken, ExpiresAt: sess.ExpiresAt, User: sess.User}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Current account and employee profile",
		Tags:        []string{"auth"},
		Security:    security,
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body Envelope[service.Profile] `json:"body"`
	}, error) {
		p, authErr := requireAuth(ctx)
		if authErr != nil {
			return nil, authErr
		}
		profile, err := auth.Me(ctx, p)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body Envelope[service.Profile] `json:"body"`
		}{Body: ok(profile)}, nil
	})
}
