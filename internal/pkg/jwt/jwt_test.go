package jwt

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("JWT issues and validates access tokens", t, func() {
		j := NewJWT("test-secret", time.Hour)

		Convey("a freshly issued token round-trips its claims", func() {
			token, err := j.GenerateToken("u1", "user@example.com")
			So(err, ShouldBeNil)
			So(token, ShouldNotBeEmpty)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "u1")
			So(claims.Email, ShouldEqual, "user@example.com")
		})

		Convey("a token signed with another secret is rejected", func() {
			other := NewJWT("other-secret", time.Hour)
			token, err := other.GenerateToken("u1", "user@example.com")
			So(err, ShouldBeNil)

			_, err = j.ValidateToken(token)
			So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
		})

		Convey("an expired token is rejected distinctly", func() {
			expired := NewJWT("test-secret", -time.Minute)
			token, err := expired.GenerateToken("u1", "user@example.com")
			So(err, ShouldBeNil)

			_, err = j.ValidateToken(token)
			So(errors.Is(err, ErrExpiredToken), ShouldBeTrue)
		})

		Convey("garbage input is rejected", func() {
			_, err := j.ValidateToken("not-a-token")
			So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
		})
	})
}

func TestGenerateRefreshToken(t *testing.T) {
	Convey("refresh tokens are opaque and unique", t, func() {
		a := GenerateRefreshToken()
		b := GenerateRefreshToken()

		So(a, ShouldHaveLength, 64)
		So(b, ShouldHaveLength, 64)
		So(a, ShouldNotEqual, b)
	})
}
