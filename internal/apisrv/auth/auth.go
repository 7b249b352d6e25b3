package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/auth/jwt"
	"github.com/myshop/myshop-manager/internal/auth/pwhash"
	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/dto"
	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/myshop/myshop-manager/internal/middleware"
	"github.com/myshop/myshop-manager/internal/ratelimit"
)

type claimsKey struct{}

var errBadCredentials = fmt.Errorf("invalid email or password: %w", gerr.ErrUnauthorized)

// Server authenticates the super admin and sub-admins.
type Server struct {
	adminRepository dependency.Admin
	pwhash          *pwhash.PasswordHasher
	JwtAuth         *jwtauth.JWTAuth
	jwtTTL          time.Duration
	c               *Config
	masterHash      string
	limiter         *ratelimit.MultiKeyLimiter
}

// Config contains the configuration for the auth server. The super admin
// password is taken from MasterPasswordHash, or hashed from MasterPassword
// when no hash is configured.
type Config struct {
	JWTSecret          string `mapstructure:"jwtSecret"`
	AdminEmail         string `mapstructure:"adminEmail"`
	AdminName          string `mapstructure:"adminName"`
	MasterPassword     string `mapstructure:"masterPassword"`
	MasterPasswordHash string `mapstructure:"masterPasswordHash"`
	BcryptCost         int    `mapstructure:"bcryptCost"`
	JWTTTL             string `mapstructure:"jwtttl"`
}

// New creates a new auth server.
func New(c *Config, ar dependency.Admin, limiter *ratelimit.MultiKeyLimiter) (*Server, error) {
	if c.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	if c.AdminEmail == "" {
		return nil, fmt.Errorf("admin email is empty")
	}

	ph, err := pwhash.New(c.BcryptCost)
	if err != nil {
		return nil, err
	}

	hash := c.MasterPasswordHash
	if hash == "" {
		if c.MasterPassword == "" {
			return nil, fmt.Errorf("neither master password nor its hash is set")
		}
		if hash, err = ph.HashPassword(c.MasterPassword); err != nil {
			return nil, err
		}
	}

	ttl, err := time.ParseDuration(c.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("bad jwt ttl %q: %w", c.JWTTTL, err)
	}
	if limiter == nil {
		limiter = ratelimit.NewMultiKeyLimiter()
	}

	return &Server{
		adminRepository: ar,
		pwhash:          ph,
		JwtAuth:         jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		c:               c,
		jwtTTL:          ttl,
		masterHash:      hash,
		limiter:         limiter,
	}, nil
}

// HashPassword hashes a sub-admin password.
func (s *Server) HashPassword(password string) (string, error) {
	return s.pwhash.HashPassword(password)
}

// IsSuperAdminEmail reports whether email belongs to the super admin.
func (s *Server) IsSuperAdminEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), s.c.AdminEmail)
}

// Login issues a token for the super admin or a sub-admin.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.limiter.CheckLogin(middleware.GetClientIP(ctx)); err != nil {
		render.Render(w, r, response.ErrTooManyRequests(err))
		return
	}

	req := &dto.LoginRequest{}
	if err := response.Decode(r, req); err != nil {
		response.Error(w, r, "can't decode login request", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		response.Error(w, r, "", gerr.Validation("", "email and password are required"))
		return
	}

	resp, err := s.login(ctx, email, req.Password)
	if err != nil {
		if !errors.Is(err, gerr.ErrUnauthorized) {
			response.Error(w, r, "can't login", err)
			return
		}
		slog.Default().WarnContext(ctx, "failed login",
			slog.String("email", email),
			slog.String("ip", middleware.GetClientIP(ctx)),
		)
		render.Render(w, r, response.ErrUnauthorized(err))
		return
	}
	response.JSON(w, r, http.StatusOK, resp)
}

func (s *Server) login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	if s.IsSuperAdminEmail(email) {
		if err := s.pwhash.Validate(password, s.masterHash); err != nil {
			return nil, errBadCredentials
		}
		return s.issue(&jwt.Claims{Subject: email, Role: entity.RoleSuperAdmin}, s.c.AdminName)
	}

	sa, err := s.adminRepository.GetSubAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gerr.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("can't get sub-admin: %w", err)
	}
	if err := s.pwhash.Validate(password, sa.PasswordHash); err != nil {
		return nil, errBadCredentials
	}
	return s.issue(&jwt.Claims{
		Subject:     sa.Email,
		Role:        entity.RoleSubAdmin,
		SubAdminId:  sa.Id,
		Permissions: sa.Permissions.Granted(),
	}, sa.Name)
}

func (s *Server) issue(c *jwt.Claims, name string) (*dto.LoginResponse, error) {
	token, err := jwt.NewToken(s.JwtAuth, s.jwtTTL, c)
	if err != nil {
		return nil, fmt.Errorf("can't sign token: %w", err)
	}
	return &dto.LoginResponse{
		Token: token,
		Email: c.Subject,
		Role:  c.Role,
		Name:  name,
	}, nil
}

// WithAuth middleware checks if the user is authenticated. Sub-admin
// permissions are reloaded so revoked accounts lose access at once.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := jwtauth.TokenFromHeader(r)
		if token == "" {
			render.Render(w, r, response.ErrUnauthorized(fmt.Errorf("missing bearer token")))
			return
		}
		c, err := jwt.VerifyToken(s.JwtAuth, token)
		if err != nil {
			render.Render(w, r, response.ErrUnauthorized(fmt.Errorf("invalid token: %v", err)))
			return
		}

		if c.Role == entity.RoleSubAdmin {
			sa, err := s.adminRepository.GetSubAdminById(r.Context(), c.SubAdminId)
			if err != nil {
				if errors.Is(err, gerr.ErrNotFound) {
					render.Render(w, r, response.ErrUnauthorized(fmt.Errorf("account no longer exists")))
					return
				}
				response.Error(w, r, "can't get sub-admin", err)
				return
			}
			c.Permissions = sa.Permissions.Granted()
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), c)))
	})
}

// RequirePermission rejects sub-admins lacking perm.
func RequirePermission(perm entity.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFromContext(r.Context())
			if !ok {
				render.Render(w, r, response.ErrUnauthorized(gerr.ErrUnauthorized))
				return
			}
			if !c.Can(perm) {
				render.Render(w, r, response.ErrForbidden(fmt.Errorf("permission %s required: %w", perm, gerr.ErrForbidden)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuper rejects everyone but the super admin.
func RequireSuper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if !ok {
			render.Render(w, r, response.ErrUnauthorized(gerr.ErrUnauthorized))
			return
		}
		if c.Role != entity.RoleSuperAdmin {
			render.Render(w, r, response.ErrForbidden(fmt.Errorf("super admin only: %w", gerr.ErrForbidden)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithClaims(ctx context.Context, c *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return c, ok
}
