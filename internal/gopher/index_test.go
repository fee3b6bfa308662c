package gopher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"testing"
)

func TestFileIndex(t *testing.T) {
	t.Parallel()

	t.Run("new index is empty", func(t *testing.T) {
		t.Parallel()

		x := NewFileIndex()
		if x.Len() != 0 {
			t.Errorf("expected 0 entries, got %d", x.Len())
		}
		if x.Known("example.org") {
			t.Error("expected host to be unknown")
		}
	})

	t.Run("Touch creates an empty host entry", func(t *testing.T) {
		t.Parallel()

		x := NewFileIndex()
		x.Touch("example.org")
		if !x.Known("example.org") {
			t.Error("expected host to be known")
		}
		if x.Len() != 0 {
			t.Errorf("expected 0 entries, got %d", x.Len())
		}
	})

	t.Run("Add is per host and deduplicated", func(t *testing.T) {
		t.Parallel()

		x := NewFileIndex()
		x.Add("a.example", "/z")
		x.Add("a.example", "/y")
		x.Add("a.example", "/z")
		x.Add("b.example", "/z")

		if x.Len() != 3 {
			t.Errorf("expected 3 entries, got %d", x.Len())
		}
		if !x.Contains("a.example", "/y") {
			t.Error("expected /y on a.example")
		}
		if x.Contains("b.example", "/y") {
			t.Error("did not expect /y on b.example")
		}

		got := x.Selectors("a.example")
		if len(got) != 2 || got[0] != "/y" || got[1] != "/z" {
			t.Errorf("expected sorted [/y /z], got %v", got)
		}
	})

	t.Run("Touch keeps existing selectors", func(t *testing.T) {
		t.Parallel()

		x := NewFileIndex()
		x.Add("example.org", "/f")
		x.Touch("example.org")
		if !x.Contains("example.org", "/f") {
			t.Error("expected /f to survive Touch")
		}
	})

	t.Run("concurrent use is safe", func(t *testing.T) {
		t.Parallel()

		x := NewFileIndex()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					sel := fmt.Sprintf("/%d/%d", n, j)
					x.Add("example.org", sel)
					_ = x.Contains("example.org", sel)
				}
			}(i)
		}
		wg.Wait()

		if x.Len() != 800 {
			t.Errorf("expected 800 entries, got %d", x.Len())
		}
	})
}

func TestClassifyNetworkError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want NetworkErrorKind
	}{
		{
			name: "dns failure",
			err:  &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true},
			want: KindDNS,
		},
		{
			name: "dns timeout",
			err:  &net.DNSError{Err: "i/o timeout", Name: "slow.example", IsTimeout: true},
			want: KindTimeout,
		},
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			want: KindRefused,
		},
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("dial: %w", context.DeadlineExceeded),
			want: KindTimeout,
		},
		{
			name: "anything else",
			err:  errors.New("connection reset"),
			want: KindIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifyNetworkError(tt.err); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := newNetworkError("read", "example.org:70", inner)

	if !errors.Is(err, ErrNetwork) {
		t.Error("expected errors.Is(err, ErrNetwork)")
	}
	if !errors.Is(err, inner) {
		t.Error("expected the inner error to be unwrappable")
	}
	if want := "read example.org:70: io: boom"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestNetworkErrorKindString(t *testing.T) {
	t.Parallel()

	kinds := map[NetworkErrorKind]string{
		KindIO:      "io",
		KindDNS:     "dns",
		KindRefused: "refused",
		KindTimeout: "timeout",
	}
	for kind, want := range kinds {
		if kind.String() != want {
			t.Errorf("expected %q, got %q", want, kind.String())
		}
	}
}
