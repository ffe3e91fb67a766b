package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/internal/store"
	"github.com/opensangha/memberhub/pkg/blob"
	"github.com/opensangha/memberhub/pkg/httpx"
	"github.com/opensangha/memberhub/pkg/jwtx"
	"github.com/opensangha/memberhub/pkg/slogx"

	_ "github.com/opensangha/memberhub/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	blobs blob.Store

	AuthService       *service.AuthService
	InviteService     *service.InviteService
	UserService       *service.UserService
	MFAService        *service.MFAService
	UnitService       *service.UnitService
	MentorshipService *service.MentorshipService
	UploadService     *service.UploadService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	blobs blob.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		blobs:        blobs,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvitations()
	r.registerUsers()
	r.registerMFA()
	r.registerUnits()
	r.registerMentorships()
	r.registerUploads()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			MemberHub API
//	@version		0.1.0
//	@description	Membership backend for a small contemplative community: directory,
//	@description	magic-link invitations, bearer-token auth, units, mentorships and
//	@description	member file uploads.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential-bearing endpoints are the brute-force surface: strict by IP.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Token plumbing endpoints are chatty but cheap.
	r.Mux.Handle("POST /v1/auth/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InviteService: r.InviteService, AuthService: r.AuthService}

	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Landing info is public: the link lands in an unauthenticated browser.
	r.Mux.Handle("GET /v1/invitations/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleInfo),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Completion is a signup endpoint: strict by IP.
	r.Mux.Handle("POST /v1/invitations/complete",
		httpx.Chain(http.HandlerFunc(h.HandleComplete),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	authed := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /v1/users", authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/users/{id}", authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/me", authed(h.HandleMe, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/me", authed(h.HandleUpdateMe, httpx.ModerateLimit))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /v1/mfa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Code-verifying endpoints get the strict limit to slow TOTP guessing.
	r.Mux.Handle("POST /v1/mfa/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUnits() {
	h := &UnitsHandler{UnitService: r.UnitService}

	authed := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/units", authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/units", authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/units/{id}", authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/units/{id}/join", authed(h.HandleJoin, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/units/{id}/members/me", authed(h.HandleLeave, httpx.ModerateLimit))
}

func (r *Router) registerMentorships() {
	h := &MentorshipsHandler{MentorshipService: r.MentorshipService}

	authed := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/mentorships", authed(h.HandleStart, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/mentorships", authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/mentorships/{id}/end", authed(h.HandleEnd, httpx.ModerateLimit))
}

func (r *Router) registerUploads() {
	h := &UploadsHandler{UploadService: r.UploadService}

	authed := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/uploads", authed(h.HandleUpload, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/uploads", authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/uploads/{id}/url", authed(h.HandleLink, httpx.LenientLimit))

	// Downloads authenticate via the signed link itself, not a bearer token.
	files := &FilesHandler{Blobs: r.blobs}
	r.Mux.Handle("GET /v1/files/{key}",
		httpx.Chain(files,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
