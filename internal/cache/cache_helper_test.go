package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, prefix), mr
}

type cachedValue struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t, "assessment:")
	ctx := context.Background()

	want := cachedValue{ID: 1, Name: "Quiz 1"}
	if err := helper.Set(ctx, "id:1", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedValue
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("got = %+v, want %+v", got, want)
	}

	t.Run("miss returns ErrCacheNotFound", func(t *testing.T) {
		var miss cachedValue
		if err := helper.Get(ctx, "id:404", &miss); !errors.Is(err, ErrCacheNotFound) {
			t.Errorf("err = %v, want ErrCacheNotFound", err)
		}
	})

	t.Run("keys carry the prefix", func(t *testing.T) {
		if key := helper.GetCacheKey("id:1"); key != "assessment:id:1" {
			t.Errorf("key = %q", key)
		}
	})
}

func TestCacheHelper_Expiry(t *testing.T) {
	helper, mr := newTestHelper(t, "assessment:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", cachedValue{ID: 1}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var got cachedValue
	if err := helper.Get(ctx, "id:1", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("err after expiry = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t, "question:")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := helper.Set(ctx, fmt.Sprintf("id:%d", i), cachedValue{ID: uint(i)}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var got cachedValue
	if err := helper.Get(ctx, "id:1", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("id:1 survived delete")
	}
	if err := helper.Get(ctx, "id:3", &got); err != nil {
		t.Errorf("id:3 should survive: %v", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t, "question:")
	ctx := context.Background()

	keys := []string{"assessment:1", "assessment:1:extra", "assessment:2"}
	for _, key := range keys {
		if err := helper.Set(ctx, key, cachedValue{}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "assessment:1*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var got cachedValue
	if err := helper.Get(ctx, "assessment:1", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Error("assessment:1 survived invalidation")
	}
	if err := helper.Get(ctx, "assessment:1:extra", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Error("assessment:1:extra survived invalidation")
	}
	if err := helper.Get(ctx, "assessment:2", &got); err != nil {
		t.Errorf("assessment:2 should survive: %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t, "assessment:")
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedValue{ID: 7, Name: "fetched"}, nil
	}

	var first cachedValue
	if err := helper.CacheOrExecute(ctx, "id:7", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if first.Name != "fetched" || calls != 1 {
		t.Errorf("first = %+v, calls = %d", first, calls)
	}

	// The write-back is asynchronous; poll until it lands.
	deadline := time.Now().Add(time.Second)
	for {
		var cached cachedValue
		if err := helper.Get(ctx, "id:7", &cached); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache write-back never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var second cachedValue
	if err := helper.CacheOrExecute(ctx, "id:7", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}

	t.Run("fetch error propagates", func(t *testing.T) {
		var dest cachedValue
		err := helper.CacheOrExecute(ctx, "id:8", &dest, time.Minute, func() (interface{}, error) {
			return nil, errors.New("db down")
		})
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestCacheManager_NilClientDegradesGracefully(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	if err := cm.Assessment.Set(ctx, "id:1", cachedValue{}, time.Minute); err != nil {
		t.Errorf("Set on nil client = %v, want nil", err)
	}

	var got cachedValue
	if err := cm.Assessment.Get(ctx, "id:1", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get on nil client = %v, want ErrCacheNotAvailable", err)
	}

	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("HealthCheck = %v, want ErrCacheNotAvailable", err)
	}

	if err := cm.InvalidateLeaderboard(ctx); err != nil {
		t.Errorf("InvalidateLeaderboard = %v, want nil", err)
	}
}
