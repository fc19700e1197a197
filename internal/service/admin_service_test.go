package service

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"fitcoach/internal/model"
	"fitcoach/internal/model/auth"
)

type fakeIdentityStore struct {
	byEmail map[string]*auth.User
	findErr error
	delErr  error
	deleted []string
}

func (f *fakeIdentityStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byEmail[email], nil
}

func (f *fakeIdentityStore) Delete(_ context.Context, id string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeProfileStore struct {
	profiles []*model.UserProfile
	delErr   error
	deleted  []string
}

func (f *fakeProfileStore) List(_ context.Context) ([]*model.UserProfile, error) {
	return f.profiles, nil
}

func (f *fakeProfileStore) Delete(_ context.Context, userID string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeAdminStore struct {
	admins  map[string]bool
	markers []*model.AdminMarker
	deleted []string
}

func (f *fakeAdminStore) Exists(_ context.Context, userID string) (bool, error) {
	return f.admins[userID], nil
}

func (f *fakeAdminStore) Upsert(_ context.Context, marker *model.AdminMarker) error {
	f.markers = append(f.markers, marker)
	return nil
}

func (f *fakeAdminStore) Delete(_ context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeConvAdminStore struct {
	messages []model.Message
	delErr   error
	deleted  []string
	finds    int
}

func (f *fakeConvAdminStore) Find(_ context.Context, userID string) (*model.Conversation, error) {
	f.finds++
	return &model.Conversation{UserID: userID, Messages: f.messages}, nil
}

func (f *fakeConvAdminStore) Delete(_ context.Context, userID string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeStatsAdminStore struct {
	deleted []string
}

func (f *fakeStatsAdminStore) Delete(_ context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeTokenStore struct {
	deleted []string
}

func (f *fakeTokenStore) DeleteByUserID(_ context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeViewCache struct {
	values  map[string][]model.Message
	deleted []string
	sets    int
}

func (f *fakeViewCache) Get(_ context.Context, key string, dest any) error {
	msgs, ok := f.values[key]
	if !ok {
		return errors.New("cache miss")
	}
	*(dest.(*[]model.Message)) = msgs
	return nil
}

func (f *fakeViewCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.values == nil {
		f.values = map[string][]model.Message{}
	}
	f.values[key] = value.([]model.Message)
	f.sets++
	return nil
}

func (f *fakeViewCache) Delete(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

type adminFixture struct {
	identities *fakeIdentityStore
	profiles   *fakeProfileStore
	admins     *fakeAdminStore
	convs      *fakeConvAdminStore
	stats      *fakeStatsAdminStore
	tokens     *fakeTokenStore
	svc        *AdminService
}

func newAdminFixture(viewCache ViewCache) *adminFixture {
	f := &adminFixture{
		identities: &fakeIdentityStore{byEmail: map[string]*auth.User{}},
		profiles:   &fakeProfileStore{},
		admins:     &fakeAdminStore{admins: map[string]bool{}},
		convs:      &fakeConvAdminStore{},
		stats:      &fakeStatsAdminStore{},
		tokens:     &fakeTokenStore{},
	}
	f.svc = NewAdminService(f.identities, f.profiles, f.admins, f.convs, f.stats, f.tokens, viewCache)
	return f
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	Convey("DeleteUser runs the removal sequence", t, func() {
		Convey("a provisioned admin removes every trace of the user", func() {
			f := newAdminFixture(nil)
			f.admins.admins["admin1"] = true

			err := f.svc.DeleteUser(ctx, "admin1", "victim")

			So(err, ShouldBeNil)
			So(f.identities.deleted, ShouldResemble, []string{"victim"})
			So(f.profiles.deleted, ShouldResemble, []string{"victim"})
			So(f.convs.deleted, ShouldResemble, []string{"victim"})
			So(f.stats.deleted, ShouldResemble, []string{"victim"})
			So(f.tokens.deleted, ShouldResemble, []string{"victim"})
			So(f.admins.deleted, ShouldResemble, []string{"victim"})
		})

		Convey("deleting a user who is an admin removes their marker too", func() {
			f := newAdminFixture(nil)
			f.admins.admins["admin1"] = true
			f.admins.admins["admin2"] = true

			err := f.svc.DeleteUser(ctx, "admin1", "admin2")

			So(err, ShouldBeNil)
			So(f.admins.deleted, ShouldResemble, []string{"admin2"})
		})

		Convey("a caller without an admin marker is rejected and nothing is touched", func() {
			f := newAdminFixture(nil)

			err := f.svc.DeleteUser(ctx, "nobody", "victim")

			So(errors.Is(err, ErrUnauthorized), ShouldBeTrue)
			So(f.identities.deleted, ShouldBeEmpty)
			So(f.profiles.deleted, ShouldBeEmpty)
			So(f.convs.deleted, ShouldBeEmpty)
		})

		Convey("blank ids are rejected before the marker check", func() {
			f := newAdminFixture(nil)

			So(errors.Is(f.svc.DeleteUser(ctx, "", "victim"), ErrMissingFields), ShouldBeTrue)
			So(errors.Is(f.svc.DeleteUser(ctx, "admin1", ""), ErrMissingFields), ShouldBeTrue)
		})

		Convey("a mid-sequence failure reports the step and leaves later data in place", func() {
			f := newAdminFixture(nil)
			f.admins.admins["admin1"] = true
			f.convs.delErr = errors.New("write conflict")

			err := f.svc.DeleteUser(ctx, "admin1", "victim")

			var delErr *DeleteUserError
			So(errors.As(err, &delErr), ShouldBeTrue)
			So(delErr.Step, ShouldEqual, "conversation")

			// Earlier deletes are not rolled back.
			So(f.identities.deleted, ShouldResemble, []string{"victim"})
			So(f.profiles.deleted, ShouldResemble, []string{"victim"})
			// Later steps never ran.
			So(f.stats.deleted, ShouldBeEmpty)
			So(f.tokens.deleted, ShouldBeEmpty)
		})

		Convey("a successful removal drops the cached conversation view", func() {
			cacheFake := &fakeViewCache{}
			f := newAdminFixture(cacheFake)
			f.admins.admins["admin1"] = true

			err := f.svc.DeleteUser(ctx, "admin1", "victim")

			So(err, ShouldBeNil)
			So(cacheFake.deleted, ShouldResemble, []string{"conv:victim"})
		})
	})
}

func TestAdminService_GetConversation(t *testing.T) {
	ctx := context.Background()

	Convey("GetConversation serves the message history", t, func() {
		Convey("a user who never chatted yields an empty history", func() {
			f := newAdminFixture(nil)

			msgs, err := f.svc.GetConversation(ctx, "u1")

			So(err, ShouldBeNil)
			So(msgs, ShouldBeEmpty)
		})

		Convey("the second read comes from the cache", func() {
			cacheFake := &fakeViewCache{}
			f := newAdminFixture(cacheFake)
			f.convs.messages = []model.Message{{Role: model.RoleUser, Content: "안녕하세요"}}

			first, err := f.svc.GetConversation(ctx, "u1")
			So(err, ShouldBeNil)
			So(first, ShouldHaveLength, 1)

			second, err := f.svc.GetConversation(ctx, "u1")
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
			So(f.convs.finds, ShouldEqual, 1)
			So(cacheFake.sets, ShouldEqual, 1)
		})
	})
}

func TestAdminService_MakeAdmin(t *testing.T) {
	ctx := context.Background()

	Convey("MakeAdmin provisions markers by email", t, func() {
		Convey("an existing account gets a marker carrying its user id", func() {
			f := newAdminFixture(nil)
			f.identities.byEmail["coach@example.com"] = &auth.User{ID: "u42", Email: "coach@example.com"}

			marker, err := f.svc.MakeAdmin(ctx, "coach@example.com", "cli")

			So(err, ShouldBeNil)
			So(marker.UserID, ShouldEqual, "u42")
			So(marker.Role, ShouldEqual, "admin")
			So(marker.AddedBy, ShouldEqual, "cli")
			So(f.admins.markers, ShouldHaveLength, 1)
		})

		Convey("a lookup failure is not mistaken for an unknown email", func() {
			f := newAdminFixture(nil)
			f.identities.findErr = errors.New("server selection timeout")

			_, err := f.svc.MakeAdmin(ctx, "coach@example.com", "cli")

			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrAccountNotFound), ShouldBeFalse)
			So(f.admins.markers, ShouldBeEmpty)
		})

		Convey("an unknown email fails distinctly and writes nothing", func() {
			f := newAdminFixture(nil)

			_, err := f.svc.MakeAdmin(ctx, "ghost@example.com", "cli")

			So(errors.Is(err, ErrAccountNotFound), ShouldBeTrue)
			So(f.admins.markers, ShouldBeEmpty)
		})

		Convey("re-running for the same email just rewrites the marker", func() {
			f := newAdminFixture(nil)
			f.identities.byEmail["coach@example.com"] = &auth.User{ID: "u42", Email: "coach@example.com"}

			_, err := f.svc.MakeAdmin(ctx, "coach@example.com", "cli")
			So(err, ShouldBeNil)
			_, err = f.svc.MakeAdmin(ctx, "coach@example.com", "cli")
			So(err, ShouldBeNil)

			So(f.admins.markers, ShouldHaveLength, 2)
			So(f.admins.markers[1].UserID, ShouldEqual, "u42")
		})
	})
}
