package namer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"simple", "fix-auth", 0, "fix-auth"},
		{"uppercase", "Fix Auth Bug", 0, "fix-auth-bug"},
		{"slash", "feature/dark-mode", 0, "feature-dark-mode"},
		{"leading junk", "-_ fix auth", 0, "fix-auth"},
		{"symbol runs collapse", "fix!!!auth???bug", 0, "fix-auth-bug"},
		{"trailing symbols", "fix auth...", 0, "fix-auth"},
		{"control characters", "fix\tauth\nbug", 0, "fix-auth-bug"},
		{"unicode letters kept", "café-menü", 0, "café-menü"},
		{"empty", "", 0, ""},
		{"only symbols", "!!!---___", 0, ""},
		{"bounded", "a-very-long-branch-name", 10, "a-very-lon"},
		{"bound lands on dash", "fix-authentication", 4, "fix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input, tt.max); got != tt.want {
				t.Errorf("Sanitize(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
			// Stability: sanitizing twice changes nothing.
			if got := Sanitize(tt.want, tt.max); got != tt.want {
				t.Errorf("Sanitize is not stable for %q: got %q", tt.want, got)
			}
		})
	}
}

type fakeService struct {
	name  string
	err   error
	calls int
}

func (f *fakeService) NameFor(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.name, f.err
}

type fakeSessions struct{ taken map[string]bool }

func (f *fakeSessions) HasSession(name string) bool { return f.taken[name] }

type fakeBranches struct{ taken map[string]bool }

func (f *fakeBranches) BranchExists(branch string) bool { return f.taken[branch] }

func newTestResolver(service NameService, sessions SessionChecker, branches BranchChecker) *Resolver {
	return NewResolver(service, sessions, branches, "vibe", 40, 5, logging.NopLogger())
}

func TestResolve_ExplicitNameSkipsService(t *testing.T) {
	service := &fakeService{name: "should-not-be-used"}
	r := newTestResolver(service, &fakeSessions{}, &fakeBranches{})

	id, err := r.Resolve(context.Background(), "Fix Login!", "some task text")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id.Name != "fix-login" {
		t.Errorf("Name = %q, want fix-login", id.Name)
	}
	if id.Session != "vibe-fix-login" {
		t.Errorf("Session = %q, want vibe-fix-login", id.Session)
	}
	if id.Generated {
		t.Error("explicit name must not be marked generated")
	}
	if service.calls != 0 {
		t.Errorf("naming service was called %d times for an explicit name", service.calls)
	}
}

func TestResolve_ExplicitNameNoDisambiguation(t *testing.T) {
	// An explicit name matching an existing session is the resume path, so
	// the resolver must not suffix it.
	sessions := &fakeSessions{taken: map[string]bool{"vibe-fix-auth": true}}
	r := newTestResolver(nil, sessions, &fakeBranches{})

	id, err := r.Resolve(context.Background(), "fix-auth", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id.Name != "fix-auth" {
		t.Errorf("Name = %q, want fix-auth unchanged", id.Name)
	}
}

func TestResolve_ExplicitNameEmptyAfterSanitize(t *testing.T) {
	r := newTestResolver(nil, &fakeSessions{}, &fakeBranches{})

	_, err := r.Resolve(context.Background(), "!!!", "")
	if !errors.Is(err, errors.ErrEmptyName) {
		t.Errorf("error = %v, want ErrEmptyName", err)
	}
}

func TestResolve_GeneratedName(t *testing.T) {
	service := &fakeService{name: "Dark Mode Toggle"}
	r := newTestResolver(service, &fakeSessions{}, &fakeBranches{})

	id, err := r.Resolve(context.Background(), "", "add dark mode toggle")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id.Name != "dark-mode-toggle" {
		t.Errorf("Name = %q, want dark-mode-toggle", id.Name)
	}
	if !id.Generated {
		t.Error("service-derived name must be marked generated")
	}
}

func TestResolve_FallbackOnServiceFailure(t *testing.T) {
	for _, cause := range []error{
		errors.NewIdentityError("timed out", errors.ErrNamingTimeout),
		errors.NewIdentityError("boom", errors.ErrNamingService),
	} {
		service := &fakeService{err: cause}
		r := newTestResolver(service, &fakeSessions{}, &fakeBranches{})

		id, err := r.Resolve(context.Background(), "", "fix login bug")
		if err != nil {
			t.Fatalf("Resolve failed despite fallback: %v", err)
		}
		if !strings.HasPrefix(id.Name, "task-") || len(id.Name) != len("task-")+8 {
			t.Errorf("fallback name = %q, want task-<8 chars>", id.Name)
		}
		if Sanitize(id.Name, 0) != id.Name {
			t.Errorf("fallback name %q is not already sanitized", id.Name)
		}
	}
}

func TestResolve_FallbackOnUnusableServiceName(t *testing.T) {
	service := &fakeService{name: "???"}
	r := newTestResolver(service, &fakeSessions{}, &fakeBranches{})

	id, err := r.Resolve(context.Background(), "", "fix login bug")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !strings.HasPrefix(id.Name, "task-") {
		t.Errorf("expected fallback name, got %q", id.Name)
	}
}

func TestResolve_CollisionDisambiguation(t *testing.T) {
	service := &fakeService{name: "fix-auth"}
	sessions := &fakeSessions{taken: map[string]bool{"vibe-fix-auth": true}}
	branches := &fakeBranches{taken: map[string]bool{"fix-auth-2": true}}
	r := newTestResolver(service, sessions, branches)

	id, err := r.Resolve(context.Background(), "", "fix the auth bug")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// fix-auth taken by a session, fix-auth-2 by a branch, fix-auth-3 free.
	if id.Name != "fix-auth-3" {
		t.Errorf("Name = %q, want fix-auth-3", id.Name)
	}
	if id.Session != "vibe-fix-auth-3" {
		t.Errorf("Session = %q, want vibe-fix-auth-3", id.Session)
	}
}

func TestResolve_Exhaustion(t *testing.T) {
	taken := map[string]bool{"fix-auth": true}
	for i := 2; i <= 10; i++ {
		taken[fmt.Sprintf("fix-auth-%d", i)] = true
	}
	service := &fakeService{name: "fix-auth"}
	r := newTestResolver(service, &fakeSessions{}, &fakeBranches{taken: taken})

	_, err := r.Resolve(context.Background(), "", "fix the auth bug")
	if !errors.Is(err, errors.ErrNameExhausted) {
		t.Errorf("error = %v, want ErrNameExhausted", err)
	}
	var identityErr *errors.IdentityError
	if !errors.As(err, &identityErr) {
		t.Fatal("expected an IdentityError")
	}
	if identityErr.Candidate != "fix-auth" {
		t.Errorf("Candidate = %q, want fix-auth", identityErr.Candidate)
	}
}
