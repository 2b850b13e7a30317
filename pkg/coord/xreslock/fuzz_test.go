package xreslock

import (
	"context"
	"errors"
	"testing"
)

func FuzzAcquireRelease(f *testing.F) {
	f.Add("deploy/t1/nginx")
	f.Add("")
	f.Add("key with spaces")
	f.Add("中文资源")
	f.Add("\x00")

	f.Fuzz(func(t *testing.T, resource string) {
		tbl := newForTest(t)

		h, err := tbl.Acquire(context.Background(), resource, 0)
		if resource == "" {
			if !errors.Is(err, ErrInvalidResource) {
				t.Fatalf("empty resource: want ErrInvalidResource, got %v", err)
			}
			return
		}
		if err != nil || h == nil {
			t.Fatalf("acquire %q: h=%v err=%v", resource, h, err)
		}
		if h.Resource() != resource {
			t.Fatalf("resource mismatch: got %q, want %q", h.Resource(), resource)
		}
		if again, _ := tbl.TryAcquire(resource); again != nil {
			t.Fatalf("resource %q granted twice", resource)
		}
		if err := h.Release(); err != nil {
			t.Fatalf("release %q: %v", resource, err)
		}
		if tbl.Len() != 0 {
			t.Fatalf("state for %q not reclaimed", resource)
		}
	})
}
