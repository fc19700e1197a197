package service

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"fitcoach/internal/model"
	"fitcoach/internal/model/auth"
	"fitcoach/internal/pkg/password"
)

type fakeAccountStore struct {
	byEmail   map[string]*auth.User
	byID      map[string]*auth.User
	emailErr  error
	created   []*auth.User
	lastLogin []string
}

func (f *fakeAccountStore) Create(_ context.Context, user *auth.User) error {
	f.created = append(f.created, user)
	return nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, errors.New("no such user")
	}
	return user, nil
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	return f.byEmail[email], nil
}

func (f *fakeAccountStore) UpdateLastLoginAt(_ context.Context, id string) error {
	f.lastLogin = append(f.lastLogin, id)
	return nil
}

type fakeRefreshStore struct {
	byToken map[string]*auth.RefreshToken
	created []*auth.RefreshToken
	deleted []string
}

func (f *fakeRefreshStore) Create(_ context.Context, token *auth.RefreshToken) error {
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshStore) FindByToken(_ context.Context, token string) (*auth.RefreshToken, error) {
	rt, ok := f.byToken[token]
	if !ok {
		return nil, errors.New("no such token")
	}
	return rt, nil
}

func (f *fakeRefreshStore) DeleteByToken(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeProfileCreator struct {
	created []*model.UserProfile
	err     error
}

func (f *fakeProfileCreator) Create(_ context.Context, profile *model.UserProfile) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, profile)
	return nil
}

type authFixture struct {
	accounts *fakeAccountStore
	tokens   *fakeRefreshStore
	profiles *fakeProfileCreator
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		accounts: &fakeAccountStore{byEmail: map[string]*auth.User{}, byID: map[string]*auth.User{}},
		tokens:   &fakeRefreshStore{byToken: map[string]*auth.RefreshToken{}},
		profiles: &fakeProfileCreator{},
	}
	f.svc = NewAuthService(f.accounts, f.tokens, f.profiles, "test-secret", time.Minute, time.Hour)
	return f
}

func (f *authFixture) seedUser(id, email, pwd string) *auth.User {
	hash, err := password.Hash(pwd)
	if err != nil {
		panic(err)
	}
	user := &auth.User{ID: id, Email: email, Name: "Member", Password: hash}
	f.accounts.byEmail[email] = user
	f.accounts.byID[id] = user
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	Convey("Register creates an account and its profile mirror", t, func() {
		Convey("a fresh email yields an account, a hashed password and a mirror", func() {
			f := newAuthFixture()

			res, err := f.svc.Register(ctx, "new@example.com", "s3cret", "Newcomer")

			So(err, ShouldBeNil)
			So(res.Email, ShouldEqual, "new@example.com")
			So(res.UserID, ShouldNotBeEmpty)

			So(f.accounts.created, ShouldHaveLength, 1)
			So(f.accounts.created[0].Password, ShouldNotEqual, "s3cret")
			So(password.Verify("s3cret", f.accounts.created[0].Password), ShouldBeTrue)

			So(f.profiles.created, ShouldHaveLength, 1)
			So(f.profiles.created[0].UserID, ShouldEqual, res.UserID)
		})

		Convey("a taken email is rejected before anything is written", func() {
			f := newAuthFixture()
			f.seedUser("u1", "taken@example.com", "whatever")

			_, err := f.svc.Register(ctx, "taken@example.com", "s3cret", "Imposter")

			So(errors.Is(err, ErrEmailTaken), ShouldBeTrue)
			So(f.accounts.created, ShouldBeEmpty)
		})

		Convey("an availability-check failure is not mistaken for a free email", func() {
			f := newAuthFixture()
			f.accounts.emailErr = errors.New("server selection timeout")

			_, err := f.svc.Register(ctx, "new@example.com", "s3cret", "Newcomer")

			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrEmailTaken), ShouldBeFalse)
			So(f.accounts.created, ShouldBeEmpty)
			So(f.profiles.created, ShouldBeEmpty)
		})

		Convey("a failed mirror write does not fail the registration", func() {
			f := newAuthFixture()
			f.profiles.err = errors.New("write conflict")

			res, err := f.svc.Register(ctx, "new@example.com", "s3cret", "Newcomer")

			So(err, ShouldBeNil)
			So(res.UserID, ShouldNotBeEmpty)
			So(f.accounts.created, ShouldHaveLength, 1)
		})
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	Convey("Login verifies credentials and issues a token pair", t, func() {
		Convey("valid credentials yield both tokens and a stored refresh token", func() {
			f := newAuthFixture()
			f.seedUser("u1", "coach@example.com", "s3cret")

			res, err := f.svc.Login(ctx, "coach@example.com", "s3cret")

			So(err, ShouldBeNil)
			So(res.AccessToken, ShouldNotBeEmpty)
			So(res.RefreshToken, ShouldNotBeEmpty)
			So(res.TokenType, ShouldEqual, "Bearer")
			So(res.ExpiresIn, ShouldEqual, 60)

			So(f.tokens.created, ShouldHaveLength, 1)
			So(f.tokens.created[0].UserID, ShouldEqual, "u1")
			So(f.accounts.lastLogin, ShouldResemble, []string{"u1"})
		})

		Convey("an unknown email is a distinct not-found", func() {
			f := newAuthFixture()

			_, err := f.svc.Login(ctx, "ghost@example.com", "s3cret")

			So(errors.Is(err, ErrUserNotFound), ShouldBeTrue)
		})

		Convey("a lookup failure is not mistaken for an unknown user", func() {
			f := newAuthFixture()
			f.accounts.emailErr = errors.New("server selection timeout")

			_, err := f.svc.Login(ctx, "coach@example.com", "s3cret")

			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrUserNotFound), ShouldBeFalse)
			So(errors.Is(err, ErrInvalidPassword), ShouldBeFalse)
		})

		Convey("a wrong password is rejected without issuing anything", func() {
			f := newAuthFixture()
			f.seedUser("u1", "coach@example.com", "s3cret")

			_, err := f.svc.Login(ctx, "coach@example.com", "wrong")

			So(errors.Is(err, ErrInvalidPassword), ShouldBeTrue)
			So(f.tokens.created, ShouldBeEmpty)
		})
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	Convey("Refresh exchanges a live refresh token for a new access token", t, func() {
		Convey("a live token yields a fresh access token", func() {
			f := newAuthFixture()
			f.seedUser("u1", "coach@example.com", "s3cret")
			f.tokens.byToken["rt-live"] = &auth.RefreshToken{
				ID:        "t1",
				UserID:    "u1",
				Token:     "rt-live",
				ExpiresAt: time.Now().Add(time.Hour),
			}

			res, err := f.svc.Refresh(ctx, "rt-live")

			So(err, ShouldBeNil)
			So(res.AccessToken, ShouldNotBeEmpty)
			So(res.TokenType, ShouldEqual, "Bearer")
		})

		Convey("an unknown token is invalid", func() {
			f := newAuthFixture()

			_, err := f.svc.Refresh(ctx, "rt-unknown")

			So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
		})

		Convey("an expired token is revoked and rejected", func() {
			f := newAuthFixture()
			f.tokens.byToken["rt-stale"] = &auth.RefreshToken{
				ID:        "t1",
				UserID:    "u1",
				Token:     "rt-stale",
				ExpiresAt: time.Now().Add(-time.Minute),
			}

			_, err := f.svc.Refresh(ctx, "rt-stale")

			So(errors.Is(err, ErrExpiredToken), ShouldBeTrue)
			So(f.tokens.deleted, ShouldResemble, []string{"rt-stale"})
		})
	})
}

func TestAuthService_Logout(t *testing.T) {
	Convey("Logout revokes the refresh token", t, func() {
		f := newAuthFixture()

		So(f.svc.Logout(context.Background(), "rt-live"), ShouldBeNil)
		So(f.tokens.deleted, ShouldResemble, []string{"rt-live"})
	})
}
