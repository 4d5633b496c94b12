package walkers

import (
	"context"
	"errors"
	"testing"

	"petfy/internal/adapters/storage/memory"
	"petfy/internal/domain/session"
	"petfy/internal/ports/auth"
	"petfy/internal/ports/events"
)

type fakeAPI struct {
	resp  auth.Response
	err   error
	got   auth.WalkerApplication
	creds auth.Credentials
	calls int
}

func (f *fakeAPI) Register(context.Context, auth.RegisterRequest) (auth.Response, error) {
	return auth.Response{}, nil
}
func (f *fakeAPI) Login(context.Context, auth.LoginRequest) (auth.Response, error) {
	return auth.Response{}, nil
}
func (f *fakeAPI) CurrentUser(context.Context) (auth.User, error) { return auth.User{}, nil }
func (f *fakeAPI) ApplyWalker(ctx context.Context, app auth.WalkerApplication) (auth.Response, error) {
	f.calls++
	f.got = app
	f.creds, _ = auth.CredentialsFrom(ctx)
	return f.resp, f.err
}

type fakeAccounts struct {
	setErr      error
	refreshRole auth.Role
	refreshErr  error
	setCalls    int
}

func (f *fakeAccounts) SetWalkerRole(ctx context.Context, sess *session.Session) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	u, _ := sess.CurrentUser()
	u.Role = auth.RoleWalker
	return sess.SetUser(ctx, &u)
}

func (f *fakeAccounts) Refresh(ctx context.Context, sess *session.Session) (session.User, error) {
	u, _ := sess.CurrentUser()
	if f.refreshErr != nil {
		return u, f.refreshErr
	}
	u.Role = f.refreshRole
	return u, sess.SetUser(ctx, &u)
}

type recordingPublisher struct{ events []events.Event }

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func loggedIn(t *testing.T) *session.Session {
	t.Helper()
	m := session.NewManager(memory.NewStore(), nil)
	s, err := m.Open(context.Background(), session.NewID())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	u := session.User{Username: "ana", Email: "ana@mail.com", Password: "secret", Role: auth.RoleCustomer}
	if err := s.SetUser(context.Background(), &u); err != nil {
		t.Fatalf("set user: %v", err)
	}
	return s
}

func validApp() Application {
	return Application{
		Phone:        "1155554444",
		Description:  "Amo a los perros",
		DocumentName: "dni.png",
		DocumentType: "image/png",
		Document:     []byte{0x89, 'P', 'N', 'G'},
	}
}

func TestApply_ValidationOrder(t *testing.T) {
	sess := loggedIn(t)
	acc := &fakeAccounts{}
	svc := NewService(&fakeAPI{}, acc, ModeLocal, nil, nil)

	cases := []struct {
		name  string
		edit  func(*Application)
		field string
		msg   string
	}{
		{"no document", func(a *Application) { a.Document = nil }, "documentImage", MsgDocumentRequired},
		{"blank phone", func(a *Application) { a.Phone = "  " }, "phone", MsgPhoneRequired},
		{"blank description", func(a *Application) { a.Description = "" }, "description", MsgDescriptionRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := validApp()
			tc.edit(&app)

			_, err := svc.Apply(context.Background(), sess, app)
			var e *Error
			if !errors.As(err, &e) || !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if e.Field != tc.field || e.Message != tc.msg {
				t.Fatalf("unexpected error %+v", e)
			}
		})
	}
	if acc.setCalls != 0 {
		t.Fatalf("role must not change on invalid input")
	}
}

func TestApply_LocalElevatesRole(t *testing.T) {
	sess := loggedIn(t)
	api := &fakeAPI{}
	pub := &recordingPublisher{}
	svc := NewService(api, &fakeAccounts{}, ModeLocal, pub, nil)

	res, err := svc.Apply(context.Background(), sess, validApp())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.Approved || res.Message != MsgWelcome {
		t.Fatalf("unexpected result %+v", res)
	}
	if u, _ := sess.CurrentUser(); !u.IsWalker() {
		t.Fatalf("expected walker role")
	}
	if api.calls != 0 {
		t.Fatalf("local mode must not call the backend")
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.WalkerApplied {
		t.Fatalf("expected walker.applied event, got %+v", pub.events)
	}
}

func TestApply_LocalRoleFailure(t *testing.T) {
	sess := loggedIn(t)
	svc := NewService(&fakeAPI{}, &fakeAccounts{setErr: errors.New("boom")}, ModeLocal, nil, nil)

	_, err := svc.Apply(context.Background(), sess, validApp())
	if !errors.Is(err, ErrRejected) || err.Error() != MsgRoleError {
		t.Fatalf("expected role error, got %v", err)
	}
}

func TestApply_ServerApprovedWithCredentials(t *testing.T) {
	sess := loggedIn(t)
	api := &fakeAPI{resp: auth.Response{Success: true, Message: "Solicitud aprobada"}}
	svc := NewService(api, &fakeAccounts{refreshRole: auth.RoleWalker}, ModeServer, nil, nil)

	app := validApp()
	app.ValidationCode = " cascuino "
	res, err := svc.Apply(context.Background(), sess, app)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.Approved {
		t.Fatalf("expected approval, got %+v", res)
	}
	if api.got.ValidationCode != "cascuino" || api.got.DocumentName != "dni.png" {
		t.Fatalf("unexpected application sent: %+v", api.got)
	}
	if api.creds.Email != "ana@mail.com" || api.creds.Password != "secret" {
		t.Fatalf("expected session credentials on the call, got %+v", api.creds)
	}
}

func TestApply_ServerPending(t *testing.T) {
	sess := loggedIn(t)
	api := &fakeAPI{resp: auth.Response{Success: true}}
	svc := NewService(api, &fakeAccounts{refreshRole: auth.RoleCustomer}, ModeServer, nil, nil)

	res, err := svc.Apply(context.Background(), sess, validApp())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Approved || res.Message != MsgPendingReview {
		t.Fatalf("expected pending review, got %+v", res)
	}
}

func TestApply_ServerErrors(t *testing.T) {
	sess := loggedIn(t)

	api := &fakeAPI{err: &auth.RejectedError{StatusCode: 400, Message: "Ya eres un paseador registrado"}}
	svc := NewService(api, &fakeAccounts{}, ModeServer, nil, nil)
	_, err := svc.Apply(context.Background(), sess, validApp())
	if !errors.Is(err, ErrRejected) || err.Error() != "Ya eres un paseador registrado" {
		t.Fatalf("expected rejection with server message, got %v", err)
	}

	api.err = auth.ErrUnavailable
	_, err = svc.Apply(context.Background(), sess, validApp())
	if !errors.Is(err, ErrUnavailable) || err.Error() != MsgConnection {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestApply_RequiresLogin(t *testing.T) {
	m := session.NewManager(memory.NewStore(), nil)
	s, _ := m.Open(context.Background(), session.NewID())
	svc := NewService(&fakeAPI{}, &fakeAccounts{}, ModeLocal, nil, nil)

	if _, err := svc.Apply(context.Background(), s, validApp()); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}
