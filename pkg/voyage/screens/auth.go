package screens

import (
	"context"
	"strings"

	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

type Onboarding struct {
	base
}

func newOnboarding(deps Deps, scope *lifecycle.Scope) *Onboarding {
	return &Onboarding{base: newBase(screen.KindOnboarding, deps, scope)}
}

func (o *Onboarding) GetStarted()    { o.navigate(screen.Login{}) }
func (o *Onboarding) CreateAccount() { o.navigate(screen.Signup{}) }

func (o *Onboarding) Items() []Item {
	return []Item{
		{Label: o.deps.Localizer.Title(screen.KindLogin), Select: o.GetStarted},
		{Label: o.deps.Localizer.Title(screen.KindSignup), Select: o.CreateAccount},
	}
}

// credentials is the shared email/password form of Login and Signup.
type credentials struct {
	base
	Email    *value.Value[string]
	Password *value.Value[string]
}

func newCredentials(kind screen.Kind, deps Deps, scope *lifecycle.Scope) credentials {
	return credentials{
		base:     newBase(kind, deps, scope),
		Email:    value.New(""),
		Password: value.New(""),
	}
}

func (c *credentials) Fields() []Field {
	return []Field{
		{Label: "Email", Value: c.Email},
		{Label: "Password", Value: c.Password, Secret: true},
	}
}

func (c *credentials) valid() bool {
	switch {
	case strings.TrimSpace(c.Email.Get()) == "":
		c.invalid("Email")
		return false
	case c.Password.Get() == "":
		c.invalid("Password")
		return false
	}
	return true
}

// signedIn records the user and leaves the sign-in flow.
func (c *credentials) signedIn(id model.UserID) {
	c.deps.Session.SetUser(id)
	c.navigate(screen.Home{})
}

func (c *credentials) federated() {
	load(&c.base, "federated_sign_in", c.deps.Backend.Federated.SignIn, c.signedIn)
}

type Login struct {
	credentials
}

func newLogin(deps Deps, scope *lifecycle.Scope) *Login {
	return &Login{credentials: newCredentials(screen.KindLogin, deps, scope)}
}

// Submit signs in with the entered email and password.
func (l *Login) Submit() {
	if !l.valid() {
		return
	}
	email, password := strings.TrimSpace(l.Email.Get()), l.Password.Get()
	load(&l.base, "sign_in", func(ctx context.Context) (model.UserID, error) {
		return l.deps.Backend.Auth.SignIn(ctx, email, password)
	}, l.signedIn)
}

func (l *Login) SignInWithProvider() { l.federated() }

// GoToSignup switches to the sign-up screen in place.
func (l *Login) GoToSignup() { l.navigate(screen.Signup{}) }

func (l *Login) Items() []Item {
	return []Item{
		{Label: "Sign in", Select: l.Submit},
		{Label: "Continue with Google", Select: l.SignInWithProvider},
		{Label: "Create an account", Select: l.GoToSignup},
	}
}

type Signup struct {
	credentials
}

func newSignup(deps Deps, scope *lifecycle.Scope) *Signup {
	return &Signup{credentials: newCredentials(screen.KindSignup, deps, scope)}
}

// Submit creates an account with the entered email and password.
func (s *Signup) Submit() {
	if !s.valid() {
		return
	}
	email, password := strings.TrimSpace(s.Email.Get()), s.Password.Get()
	load(&s.base, "sign_up", func(ctx context.Context) (model.UserID, error) {
		return s.deps.Backend.Auth.SignUp(ctx, email, password)
	}, s.signedIn)
}

func (s *Signup) SignUpWithProvider() { s.federated() }

// GoToLogin switches to the sign-in screen in place.
func (s *Signup) GoToLogin() { s.navigate(screen.Login{}) }

func (s *Signup) Items() []Item {
	return []Item{
		{Label: "Create account", Select: s.Submit},
		{Label: "Continue with Google", Select: s.SignUpWithProvider},
		{Label: "I already have an account", Select: s.GoToLogin},
	}
}

type Profile struct {
	base
	User model.UserID
}

func newProfile(deps Deps, scope *lifecycle.Scope) *Profile {
	return &Profile{base: newBase(screen.KindProfile, deps, scope), User: deps.Session.User()}
}

func (p *Profile) OpenMyTrips() { p.navigate(screen.MyTrips{UserID: p.User}) }

// SignOut ends the federated session, forgets the user and returns to the
// sign-in screen.
func (p *Profile) SignOut() {
	load(&p.base, "sign_out", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.deps.Backend.Federated.SignOut(ctx)
	}, func(struct{}) {
		p.deps.Session.SetUser("")
		p.navigate(screen.Login{})
	})
}

func (p *Profile) Items() []Item {
	return []Item{
		{Label: p.deps.Localizer.Title(screen.KindMyTrips), Select: p.OpenMyTrips},
		{Label: "Sign out", Detail: string(p.User), Select: p.SignOut},
	}
}
