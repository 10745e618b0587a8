package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"inkwell/internal/auth/metrics"
	"inkwell/internal/auth/models"
	"inkwell/internal/auth/service/mocks"
	jwttoken "inkwell/internal/jwt_token"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/sentinel"
	"inkwell/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	users       *mocks.MockUserStore
	revocations *mocks.MockRevocationStore
	tokens      *mocks.MockTokenIssuer
	hasher      *mocks.MockPasswordHasher
	metrics     *metrics.Metrics
	service     *Service
	now         time.Time
	ctx         context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.revocations = mocks.NewMockRevocationStore(s.ctrl)
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.hasher = mocks.NewMockPasswordHasher(s.ctrl)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.service = New(s.users, s.revocations, s.tokens, s.hasher, WithMetrics(s.metrics))
	s.now = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) storedUser() *models.User {
	u, err := models.NewUser(id.NewUserID(), "ada@example.com", "Ada", "hash", s.now)
	s.Require().NoError(err)
	return u
}

func (s *ServiceSuite) TestRegister() {
	s.Run("creates user with normalized email", func() {
		s.hasher.EXPECT().Hash("correct horse").Return("bcrypt-hash", nil)
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) error {
				s.Equal("ada@example.com", u.Email)
				s.Equal("bcrypt-hash", u.PasswordHash)
				s.Equal(s.now, u.CreatedAt)
				return nil
			})

		user, err := s.service.Register(s.ctx, RegisterInput{
			Email:    "  Ada@Example.COM ",
			Password: "correct horse",
			Name:     "Ada",
		})
		s.Require().NoError(err)
		s.Equal("Ada", user.Name)
		s.False(user.ID.IsNil())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations))
	})

	s.Run("duplicate email is a conflict", func() {
		s.hasher.EXPECT().Hash(gomock.Any()).Return("bcrypt-hash", nil)
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := s.service.Register(s.ctx, RegisterInput{Email: "ada@example.com", Password: "correct horse"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("weak password is a validation error", func() {
		s.hasher.EXPECT().Hash("short").Return("", dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters"))

		_, err := s.service.Register(s.ctx, RegisterInput{Email: "ada@example.com", Password: "short"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid email is a validation error", func() {
		s.hasher.EXPECT().Hash(gomock.Any()).Return("bcrypt-hash", nil)

		_, err := s.service.Register(s.ctx, RegisterInput{Email: "not-an-email", Password: "correct horse"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestLogin() {
	s.Run("issues session on valid credentials", func() {
		u := s.storedUser()
		session := jwttoken.Session{Token: "tok", JTI: "jti", ExpiresAt: s.now.Add(time.Hour)}
		s.users.EXPECT().FindByEmail(gomock.Any(), "ada@example.com").Return(u, nil)
		s.hasher.EXPECT().Verify("secret-pass", "hash").Return(nil)
		s.tokens.EXPECT().IssueSession(u.ID, u.Email, s.now).Return(session, nil)

		res, err := s.service.Login(s.ctx, " ADA@example.com", "secret-pass")
		s.Require().NoError(err)
		s.Equal(session, res.Session)
		s.Equal(u.ID, res.User.ID)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Logins.WithLabelValues("success")))
	})

	s.Run("unknown email and wrong password share one error", func() {
		u := s.storedUser()
		s.users.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").Return(nil, sentinel.ErrNotFound)
		_, unknownErr := s.service.Login(s.ctx, "ghost@example.com", "whatever1")

		s.users.EXPECT().FindByEmail(gomock.Any(), "ada@example.com").Return(u, nil)
		s.hasher.EXPECT().Verify("wrong-pass", "hash").Return(dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		_, wrongErr := s.service.Login(s.ctx, "ada@example.com", "wrong-pass")

		s.True(dErrors.HasCode(unknownErr, dErrors.CodeUnauthorized))
		s.Equal(unknownErr.Error(), wrongErr.Error())
	})

	s.Run("store failure is internal", func() {
		s.users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
		_, err := s.service.Login(s.ctx, "ada@example.com", "secret-pass")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestLogout() {
	claims := func(exp time.Time) *jwttoken.SessionClaims {
		return &jwttoken.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   id.NewUserID().String(),
			ExpiresAt: jwt.NewNumericDate(exp),
		}}
	}

	s.Run("revokes for the remaining lifetime", func() {
		s.tokens.EXPECT().ValidateToken("tok").Return(claims(s.now.Add(2*time.Hour)), nil)
		s.revocations.EXPECT().RevokeToken(gomock.Any(), "jti-1", 2*time.Hour).Return(nil)

		s.Require().NoError(s.service.Logout(s.ctx, "tok"))
	})

	s.Run("invalid token is a no-op", func() {
		s.tokens.EXPECT().ValidateToken("garbage").Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		s.NoError(s.service.Logout(s.ctx, "garbage"))
	})

	s.Run("empty token is a no-op", func() {
		s.NoError(s.service.Logout(s.ctx, ""))
	})

	s.Run("denylist failure is internal", func() {
		s.tokens.EXPECT().ValidateToken("tok").Return(claims(s.now.Add(time.Hour)), nil)
		s.revocations.EXPECT().RevokeToken(gomock.Any(), "jti-1", time.Hour).Return(sentinel.ErrUnavailable)

		err := s.service.Logout(s.ctx, "tok")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestIsTokenRevoked() {
	s.revocations.EXPECT().IsRevoked(gomock.Any(), "jti-1").Return(true, nil)
	revoked, err := s.service.IsTokenRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *ServiceSuite) TestCurrentUser() {
	s.Run("missing user is not found", func() {
		userID := id.NewUserID()
		s.users.EXPECT().FindByID(gomock.Any(), userID).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.CurrentUser(s.ctx, userID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("nil id is unauthorized", func() {
		_, err := s.service.CurrentUser(s.ctx, id.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestUpdateProfile() {
	s.Run("applies provided fields", func() {
		u := s.storedUser()
		bio := "  writes about compilers "
		s.users.EXPECT().FindByID(gomock.Any(), u.ID).Return(u, nil)
		s.users.EXPECT().Update(gomock.Any(), u).Return(nil)

		later := s.now.Add(time.Hour)
		updated, err := s.service.UpdateProfile(requestcontext.WithTime(s.ctx, later), u.ID, models.ProfileUpdate{Bio: &bio})
		s.Require().NoError(err)
		s.Equal("writes about compilers", updated.Bio)
		s.Equal("Ada", updated.Name)
		s.Equal(later, updated.UpdatedAt)
	})

	s.Run("empty update is rejected", func() {
		_, err := s.service.UpdateProfile(s.ctx, id.NewUserID(), models.ProfileUpdate{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("overlong name is a validation error", func() {
		u := s.storedUser()
		long := strings.Repeat("x", models.MaxNameLength+1)
		s.users.EXPECT().FindByID(gomock.Any(), u.ID).Return(u, nil)

		_, err := s.service.UpdateProfile(s.ctx, u.ID, models.ProfileUpdate{Name: &long})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
