package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewSessionIsUnauthenticated(t *testing.T) {
	st := NewStore(time.Hour)
	s := st.Create()
	if s.Authenticated() {
		t.Fatal("new session must start unauthenticated")
	}
	got, err := st.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get(%s) = %v, %v", s.ID, got, err)
	}
}

func TestLogoutResetsRegardlessOfPriorState(t *testing.T) {
	for _, prior := range []bool{true, false} {
		s := NewStore(time.Hour).Create()
		s.SetAuthenticated(prior)
		s.SetResult("review", "text")
		s.SetDraft("review", "draft")
		s.SetAuthenticated(false)
		if s.Authenticated() {
			t.Errorf("prior=%v: expected unauthenticated after logout", prior)
		}
		if _, ok := s.Result("review"); ok {
			t.Errorf("prior=%v: results should be cleared on logout", prior)
		}
		if s.Draft("review") != "" {
			t.Errorf("prior=%v: drafts should be cleared on logout", prior)
		}
		s.SetAuthenticated(true)
		if !s.Authenticated() {
			t.Errorf("prior=%v: logging back in should restore access", prior)
		}
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	st := NewStore(time.Hour)
	a, b := st.Create(), st.Create()
	a.SetAuthenticated(true)
	if b.Authenticated() {
		t.Fatal("authentication leaked between sessions")
	}
	if a.ID == b.ID {
		t.Fatal("session ids must be unique")
	}
}

func TestTryBeginAllowsOneOutstandingRequest(t *testing.T) {
	s := NewStore(time.Hour).Create()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBegin() == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if granted != 1 {
		t.Fatalf("expected exactly one request to begin, got %d", granted)
	}
	if err := s.TryBegin(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	s.End()
	if err := s.TryBegin(); err != nil {
		t.Errorf("expected begin after End, got %v", err)
	}
}

func TestLogoutKeepsOutstandingRequestBusy(t *testing.T) {
	s := NewStore(time.Hour).Create()
	s.SetAuthenticated(true)
	if err := s.TryBegin(); err != nil {
		t.Fatal(err)
	}

	s.SetAuthenticated(false)
	s.SetAuthenticated(true)
	if err := s.TryBegin(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy after logout and login, got %v", err)
	}

	s.End()
	if err := s.TryBegin(); err != nil {
		t.Errorf("expected begin once the first request ended, got %v", err)
	}
}

func TestSetResultInDropsRepliesAcrossLogout(t *testing.T) {
	s := NewStore(time.Hour).Create()
	s.SetAuthenticated(true)
	epoch := s.Epoch()
	if !s.SetResultIn(epoch, "review", "first") {
		t.Fatal("result should be stored in the current epoch")
	}

	s.SetAuthenticated(false)
	if s.SetResultIn(epoch, "review", "late") {
		t.Error("result must not be stored while logged out")
	}
	s.SetAuthenticated(true)
	if s.SetResultIn(epoch, "review", "late") {
		t.Error("result from before the logout must not be stored after a new login")
	}
	if _, ok := s.Result("review"); ok {
		t.Error("no result expected after logout")
	}
	if !s.SetResultIn(s.Epoch(), "review", "fresh") {
		t.Error("result in the new epoch should be stored")
	}
}

func TestFlashIsOneShot(t *testing.T) {
	s := NewStore(time.Hour).Create()
	s.SetFlash("내용을 입력해주세요.")
	if got := s.TakeFlash(); got != "내용을 입력해주세요." {
		t.Errorf("unexpected flash %q", got)
	}
	if got := s.TakeFlash(); got != "" {
		t.Errorf("flash should be cleared, got %q", got)
	}
}

func TestIdleSessionsExpire(t *testing.T) {
	st := NewStore(time.Minute)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	idle := st.Create()
	active := st.Create()

	now = now.Add(45 * time.Second)
	if _, err := st.Get(active.ID); err != nil {
		t.Fatalf("Get active: %v", err)
	}

	now = now.Add(30 * time.Second)
	if removed := st.Sweep(); removed != 1 {
		t.Errorf("expected 1 session swept, got %d", removed)
	}
	if _, err := st.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle session should be gone, got %v", err)
	}
	if _, err := st.Get(active.ID); err != nil {
		t.Errorf("active session should survive, got %v", err)
	}
}

func TestGetExpiresLazily(t *testing.T) {
	st := NewStore(time.Minute)
	now := time.Now()
	st.now = func() time.Time { return now }
	s := st.Create()

	now = now.Add(2 * time.Minute)
	if _, err := st.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if st.Len() != 0 {
		t.Errorf("expired session should be removed")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	st := NewStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
