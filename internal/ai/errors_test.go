package ai

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type statusErr struct {
	status int
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("upstream status %d", e.status)
}

func (e *statusErr) HTTPStatusCode() int {
	return e.status
}

func TestClassify(t *testing.T) {
	Convey("classify maps provider failures onto the typed sentinels", t, func() {
		Convey("nil passes through", func() {
			So(classify(nil), ShouldBeNil)
		})

		Convey("status 429 is a quota error", func() {
			err := classify(&statusErr{status: 429})
			So(errors.Is(err, ErrQuotaExceeded), ShouldBeTrue)
			So(errors.Is(err, ErrModelUnavailable), ShouldBeFalse)
		})

		Convey("5xx statuses are model errors", func() {
			for _, status := range []int{500, 502, 503} {
				err := classify(&statusErr{status: status})
				So(errors.Is(err, ErrModelUnavailable), ShouldBeTrue)
			}
		})

		Convey("other statuses pass through unchanged", func() {
			orig := &statusErr{status: 401}
			err := classify(orig)
			So(errors.Is(err, ErrQuotaExceeded), ShouldBeFalse)
			So(errors.Is(err, ErrModelUnavailable), ShouldBeFalse)
			So(err, ShouldEqual, orig)
		})

		Convey("a wrapped status error is still found", func() {
			wrapped := fmt.Errorf("call failed: %w", &statusErr{status: 429})
			So(errors.Is(classify(wrapped), ErrQuotaExceeded), ShouldBeTrue)
		})

		Convey("the message fallback catches SDKs without status accessors", func() {
			So(errors.Is(classify(errors.New("You exceeded your current quota")), ErrQuotaExceeded), ShouldBeTrue)
			So(errors.Is(classify(errors.New("Rate limit reached for requests")), ErrQuotaExceeded), ShouldBeTrue)
			So(errors.Is(classify(errors.New("The server is overloaded")), ErrModelUnavailable), ShouldBeTrue)
			So(errors.Is(classify(errors.New("Service Unavailable")), ErrModelUnavailable), ShouldBeTrue)
		})

		Convey("unrelated errors pass through unchanged", func() {
			orig := errors.New("context canceled")
			So(classify(orig), ShouldEqual, orig)
		})

		Convey("the original error stays visible through the sentinel", func() {
			orig := &statusErr{status: 503}
			err := classify(orig)
			var coder *statusErr
			So(errors.As(err, &coder), ShouldBeTrue)
			So(coder.status, ShouldEqual, 503)
		})
	})
}
