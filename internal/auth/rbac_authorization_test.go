package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/safetrack/epp-inspection/internal/auth"
)

type roleSourceStub struct {
	role auth.Role
	err  error
}

func (r *roleSourceStub) RoleForUser(context.Context, string) (auth.Role, error) {
	return r.role, r.err
}

type sessionServiceStub struct {
	claims      *auth.Claims
	validateErr error
	user        *auth.User
	sessionErr  error
}

func (s *sessionServiceStub) Authenticate(context.Context, auth.LoginDTO) (*auth.LoginResponse, error) {
	return nil, errors.New("not used")
}

func (s *sessionServiceStub) RefreshTokens(string) (auth.AuthTokens, error) {
	return auth.AuthTokens{}, errors.New("not used")
}

func (s *sessionServiceStub) ValidateAccessToken(string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}

func (s *sessionServiceStub) GetSessionUser(context.Context, string) (*auth.User, error) {
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	return s.user, nil
}

func (s *sessionServiceStub) ChangeOwnPassword(context.Context, string, string) error {
	return nil
}

var _ = Describe("RBAC Authorization", func() {
	var (
		roles *roleSourceStub
		rbac  *auth.RBACAuthorization
		next  http.Handler
	)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	request := func(u *auth.User) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if u != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), u))
		}
		return req
	}

	BeforeEach(func() {
		roles = &roleSourceStub{}
		rbac = auth.NewRBACAuthorization(roles, discard)
		next = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	It("rejects a request with no session user", func() {
		rec := httptest.NewRecorder()

		rbac.RequireAdmin()(next).ServeHTTP(rec, request(nil))

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a supervisor on an admin route", func() {
		roles.role = auth.RoleSupervisor
		rec := httptest.NewRecorder()

		rbac.RequireAdmin()(next).ServeHTTP(rec, request(&auth.User{ID: "u-1", Role: auth.RoleSupervisor}))

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("rejects a technician on an admin route", func() {
		roles.role = auth.RoleTechnician
		rec := httptest.NewRecorder()

		rbac.RequireAdmin()(next).ServeHTTP(rec, request(&auth.User{ID: "u-1", Role: auth.RoleTechnician}))

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("admits an admin on an admin route", func() {
		roles.role = auth.RoleAdmin
		rec := httptest.NewRecorder()

		rbac.RequireAdmin()(next).ServeHTTP(rec, request(&auth.User{ID: "u-1", Role: auth.RoleAdmin}))

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("admits an admin on supervisor routes", func() {
		roles.role = auth.RoleAdmin
		rec := httptest.NewRecorder()

		rbac.RequireSupervisor()(next).ServeHTTP(rec, request(&auth.User{ID: "u-1", Role: auth.RoleAdmin}))

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("rejects a supervisor on technician routes", func() {
		roles.role = auth.RoleSupervisor
		rec := httptest.NewRecorder()

		rbac.RequireTechnician()(next).ServeHTTP(rec, request(&auth.User{ID: "u-1", Role: auth.RoleSupervisor}))

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("authorizes on the stored role, not the session copy", func() {
		roles.role = auth.RoleTechnician
		rec := httptest.NewRecorder()

		rbac.RequireAdmin()(next).ServeHTTP(rec, request(&auth.User{ID: "u-1", Role: auth.RoleAdmin}))

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("fails closed when the role lookup errors", func() {
		roles.err = errors.New("connection refused")
		rec := httptest.NewRecorder()

		rbac.RequireAdmin()(next).ServeHTTP(rec, request(&auth.User{ID: "u-1", Role: auth.RoleAdmin}))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})

var _ = Describe("Auth Middleware", func() {
	var (
		svc     *sessionServiceStub
		handler *auth.Handler
	)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		svc = &sessionServiceStub{
			claims: &auth.Claims{UserID: "u-1"},
			user:   &auth.User{ID: "u-1", Email: "tech@example.com", Role: auth.RoleTechnician},
		}
		handler = auth.NewHandler(svc)
		handler.Logger = discard
	})

	serve := func(header string) (*httptest.ResponseRecorder, *auth.User) {
		var seen *auth.User
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = auth.UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.AuthMiddleware(next).ServeHTTP(rec, req)
		return rec, seen
	}

	It("rejects a request without a bearer token", func() {
		rec, _ := serve("")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects an invalid token", func() {
		svc.validateErr = errors.New("signature mismatch")

		rec, _ := serve("Bearer bad-token")

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a token whose user no longer exists", func() {
		svc.sessionErr = errors.New("record not found")

		rec, _ := serve("Bearer orphaned-token")

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("loads the stored profile into the request context", func() {
		rec, seen := serve("Bearer good-token")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(seen).NotTo(BeNil())
		Expect(seen.ID).To(Equal("u-1"))
		Expect(seen.Role).To(Equal(auth.RoleTechnician))
	})
})
