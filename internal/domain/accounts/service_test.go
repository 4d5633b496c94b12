package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"petfy/internal/adapters/storage/memory"
	"petfy/internal/domain/session"
	"petfy/internal/ports/auth"
	"petfy/internal/ports/kv"
)

// -------------------------
// Fake auth API
// -------------------------

type fakeAPI struct {
	calls int

	resp auth.Response
	err  error

	current    auth.User
	currentErr error
	gotCreds   auth.Credentials
}

func (f *fakeAPI) Register(ctx context.Context, req auth.RegisterRequest) (auth.Response, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeAPI) Login(ctx context.Context, req auth.LoginRequest) (auth.Response, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (auth.User, error) {
	f.calls++
	f.gotCreds, _ = auth.CredentialsFrom(ctx)
	return f.current, f.currentErr
}

func (f *fakeAPI) ApplyWalker(ctx context.Context, app auth.WalkerApplication) (auth.Response, error) {
	f.calls++
	return f.resp, f.err
}

func newTestService(t *testing.T, api *fakeAPI) (*Service, *session.Manager, *session.Session) {
	t.Helper()

	m := session.NewManager(memory.NewStore(), nil)
	sess, err := m.Open(context.Background(), session.NewID())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return NewService(api, m, nil), m, sess
}

func okResponse(role string) auth.Response {
	return auth.Response{
		Success: true,
		Data:    &auth.User{Username: "ana", Email: "ana@mail.com", Role: role},
	}
}

// -------------------------
// Tests
// -------------------------

func TestRegister_LocalValidationSkipsNetwork(t *testing.T) {
	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"short username", RegisterInput{Username: "  ab ", Email: "ana@mail.com", Password: "x", ConfirmPassword: "x"}, "username"},
		{"long username", RegisterInput{Username: "abcdefghijklmnopqrstu", Email: "ana@mail.com", Password: "x", ConfirmPassword: "x"}, "username"},
		{"malformed email", RegisterInput{Username: "ana", Email: "ana.mail.com", Password: "x", ConfirmPassword: "x"}, "email"},
		{"short local part", RegisterInput{Username: "ana", Email: "an@mail.com", Password: "x", ConfirmPassword: "x"}, "email"},
		{"short domain", RegisterInput{Username: "ana", Email: "ana@ma.com", Password: "x", ConfirmPassword: "x"}, "email"},
		{"mismatched passwords", RegisterInput{Username: "ana", Email: "ana@mail.com", Password: "x", ConfirmPassword: "y"}, "confirmPassword"},
		{"empty password", RegisterInput{Username: "ana", Email: "ana@mail.com"}, "confirmPassword"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{resp: okResponse("")}
			svc, _, sess := newTestService(t, api)

			_, err := svc.Register(context.Background(), sess, tc.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var e *Error
			if !errors.As(err, &e) || e.Field != tc.field {
				t.Fatalf("expected field %q, got %+v", tc.field, e)
			}
			if api.calls != 0 {
				t.Fatalf("expected no network calls, got %d", api.calls)
			}
			if sess.LoggedIn() {
				t.Fatalf("expected no cached user")
			}
		})
	}
}

func TestRegister_SuccessCachesUserWithDefaultRole(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{resp: okResponse("")}
	svc, _, sess := newTestService(t, api)

	res, err := svc.Register(ctx, sess, RegisterInput{Username: " ana ", Email: "ana@mail.com", Password: "secret", ConfirmPassword: "secret"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Message != MsgRegistered {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if res.User.Role != auth.RoleCustomer || res.User.Password != "secret" {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	raw, err := sess.Store().Get(ctx, kv.KeyCurrentUser)
	if err != nil {
		t.Fatalf("currentUser not stored: %v", err)
	}
	var stored session.User
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if stored.Email != "ana@mail.com" {
		t.Fatalf("unexpected stored user: %+v", stored)
	}
}

func TestLogin_ServerMessages(t *testing.T) {
	ctx := context.Background()
	in := LoginInput{Email: "ana@mail.com", Password: "secret"}

	t.Run("rejected with message", func(t *testing.T) {
		svc, _, sess := newTestService(t, &fakeAPI{err: &auth.RejectedError{StatusCode: 401, Message: "Credenciales inválidas"}})
		_, err := svc.Login(ctx, sess, in)
		if !errors.Is(err, ErrRejected) || err.Error() != "Credenciales inválidas" {
			t.Fatalf("unexpected err: %v", err)
		}
	})

	t.Run("success false without message", func(t *testing.T) {
		svc, _, sess := newTestService(t, &fakeAPI{resp: auth.Response{Success: false}})
		_, err := svc.Login(ctx, sess, in)
		if !errors.Is(err, ErrRejected) || err.Error() != MsgLoginError {
			t.Fatalf("unexpected err: %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		svc, _, sess := newTestService(t, &fakeAPI{err: auth.ErrUnavailable})
		_, err := svc.Login(ctx, sess, in)
		if !errors.Is(err, ErrUnavailable) || err.Error() != MsgConnection {
			t.Fatalf("unexpected err: %v", err)
		}
		if sess.LoggedIn() {
			t.Fatalf("expected no cached user")
		}
	})

	t.Run("walker role kept", func(t *testing.T) {
		svc, _, sess := newTestService(t, &fakeAPI{resp: okResponse("walker")})
		if _, err := svc.Login(ctx, sess, in); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !svc.IsWalker(sess) {
			t.Fatalf("expected walker")
		}
	})
}

func TestLogin_InvalidEmailSkipsNetwork(t *testing.T) {
	api := &fakeAPI{resp: okResponse("")}
	svc, _, sess := newTestService(t, api)

	_, err := svc.Login(context.Background(), sess, LoginInput{Email: "nope", Password: "x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("expected no network calls")
	}
}

func TestLogout_KeepsUsers(t *testing.T) {
	ctx := context.Background()
	svc, m, sess := newTestService(t, &fakeAPI{resp: okResponse("")})

	if _, err := svc.Login(ctx, sess, LoginInput{Email: "ana@mail.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	_ = sess.Store().Set(ctx, kv.KeyWalkRequests, []byte("[]"))
	_ = sess.Store().Set(ctx, kv.ChatKey(1, "Martin"), []byte("[]"))
	_ = m.Global().Set(ctx, kv.KeyUsers, []byte(`[]`))

	if err := svc.Logout(ctx, sess); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, ok := svc.CurrentUser(sess); ok {
		t.Fatalf("expected logged out")
	}
	keys, _ := sess.Store().Keys(ctx, "")
	if len(keys) != 0 {
		t.Fatalf("expected empty session, got %v", keys)
	}
	if _, err := m.Global().Get(ctx, kv.KeyUsers); err != nil {
		t.Fatalf("users must survive logout: %v", err)
	}
}

func TestSetWalkerRole_UpdatesUsersEntry(t *testing.T) {
	ctx := context.Background()
	svc, m, sess := newTestService(t, &fakeAPI{resp: okResponse("")})

	if err := svc.SetWalkerRole(ctx, sess); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	_ = m.Global().Set(ctx, kv.KeyUsers, []byte(`[{"username":"ana","email":"ana@mail.com","role":"customer","extra":1},{"email":"bob@mail.com"}]`))
	if _, err := svc.Login(ctx, sess, LoginInput{Email: "ana@mail.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.SetWalkerRole(ctx, sess); err != nil {
		t.Fatalf("set walker: %v", err)
	}
	if !svc.IsWalker(sess) {
		t.Fatalf("expected walker")
	}

	var users []map[string]any
	if _, err := kv.ReadJSON(ctx, m.Global(), kv.KeyUsers, &users); err != nil {
		t.Fatalf("read users: %v", err)
	}
	if users[0]["role"] != "walker" || users[0]["extra"] != float64(1) {
		t.Fatalf("unexpected users[0]: %v", users[0])
	}
	if _, has := users[1]["role"]; has {
		t.Fatalf("other users must be untouched: %v", users[1])
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{resp: okResponse("")}
	svc, _, sess := newTestService(t, api)

	if _, err := svc.Login(ctx, sess, LoginInput{Email: "ana@mail.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	api.current = auth.User{Username: "ana", Email: "ana@mail.com", Role: "walker"}
	u, err := svc.Refresh(ctx, sess)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !u.IsWalker() || api.gotCreds.Password != "secret" {
		t.Fatalf("unexpected refresh: user=%+v creds=%+v", u, api.gotCreds)
	}

	api.currentErr = auth.ErrUnavailable
	u, err = svc.Refresh(ctx, sess)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !u.IsWalker() || !svc.IsWalker(sess) {
		t.Fatalf("cached user must survive a failed refresh")
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, sess := newTestService(t, &fakeAPI{resp: okResponse("")})
	if _, err := svc.Login(ctx, sess, LoginInput{Email: "ana@mail.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, sess, "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	u, err := svc.UpdateProfile(ctx, sess, "  Anita  ")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Username != "Anita" {
		t.Fatalf("unexpected username %q", u.Username)
	}
}
