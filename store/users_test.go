package store

import (
	"context"
	"errors"
	"testing"
)

func TestSignupThenLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "secret1", false)
	if err != nil {
		t.Fatalf("expected signup to succeed, got %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected new user to have an id")
	}

	got, err := s.Authenticate(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected login to return the signed-up user")
	}

	if _, err := s.CreateUser(ctx, "alice", "other2", false); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername on second signup, got %v", err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "bob", false)

	if _, err := s.Authenticate(ctx, "bob", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestDeleteUserSelfGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustCreateUser(t, s, "root", true)

	if err := s.DeleteUser(ctx, admin.ID, admin.ID); !errors.Is(err, ErrCannotDeleteSelf) {
		t.Fatalf("expected ErrCannotDeleteSelf, got %v", err)
	}
	if _, err := s.GetUser(ctx, admin.ID); err != nil {
		t.Fatalf("expected admin row to survive, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustCreateUser(t, s, "root", true)
	victim := mustCreateUser(t, s, "mallory", false)

	conv, _, err := s.AppendMessage(ctx, 0, victim.ID, "hello", "hi there", "", false)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.DeleteUser(ctx, victim.ID, admin.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := s.GetUser(ctx, victim.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}
	if _, err := s.GetConversation(ctx, conv.ID, admin.ID, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected user's conversation to be gone, got %v", err)
	}
}

func TestListUsersFilterAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "a1", true)
	mustCreateUser(t, s, "u1", false)
	mustCreateUser(t, s, "u2", false)
	mustCreateUser(t, s, "u3", false)

	adminsOnly := true
	users, total, err := s.ListUsers(ctx, 1, 10, &adminsOnly)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].Username != "a1" {
		t.Fatalf("expected only the admin, got total=%d users=%v", total, users)
	}

	users, total, err = s.ListUsers(ctx, 2, 2, nil)
	if err != nil {
		t.Fatalf("list users page 2: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users on page 2, got %d", len(users))
	}
}
