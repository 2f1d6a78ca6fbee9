package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "separate.py"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIsolationCache(t *testing.T) {
	scriptsDir := t.TempDir()
	writeScript(t, scriptsDir, "# v1")

	cache, err := OpenIsolationCache(t.TempDir(), scriptsDir)
	if err != nil {
		t.Fatalf("OpenIsolationCache: %v", err)
	}

	stem := filepath.Join(t.TempDir(), "melodic.wav")
	if err := os.WriteFile(stem, []byte("RIFFdata"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("MissBeforePut", func(t *testing.T) {
		if _, ok := cache.Get("nope_auto"); ok {
			t.Error("hit on an empty cache")
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		cached, err := cache.Put("abc123_auto", stem)
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, ok := cache.Get("abc123_auto")
		if !ok || got != cached {
			t.Fatalf("Get = %q, %v; want %q", got, ok, cached)
		}
		data, err := os.ReadFile(got)
		if err != nil || string(data) != "RIFFdata" {
			t.Errorf("cached stem content = %q, %v", data, err)
		}
	})

	t.Run("ScriptChangeInvalidates", func(t *testing.T) {
		writeScript(t, scriptsDir, "# v2, different separation")
		reopened, err := OpenIsolationCache(cache.dir, scriptsDir)
		if err != nil {
			t.Fatalf("OpenIsolationCache: %v", err)
		}
		if _, ok := reopened.Get("abc123_auto"); ok {
			t.Error("stale entry survived a script change")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if err := cache.Clear(); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if _, ok := cache.Get("abc123_auto"); ok {
			t.Error("entry survived Clear")
		}
	})
}

func TestCacheKey(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	os.WriteFile(a, []byte("same bytes"), 0644)
	os.WriteFile(b, []byte("same bytes"), 0644)

	keyA, err := CacheKey(a, IsolateAuto)
	if err != nil {
		t.Fatalf("CacheKey: %v", err)
	}
	keyB, _ := CacheKey(b, IsolateAuto)
	if keyA != keyB {
		t.Error("identical content under different names should share a key")
	}

	keyDemucs, _ := CacheKey(a, IsolateDemucs)
	if keyDemucs == keyA {
		t.Error("isolation mode must be part of the key")
	}

	os.WriteFile(b, []byte("other bytes"), 0644)
	keyChanged, _ := CacheKey(b, IsolateAuto)
	if keyChanged == keyB {
		t.Error("content change must change the key")
	}

	if _, err := CacheKey(filepath.Join(dir, "missing.wav"), IsolateAuto); err == nil {
		t.Error("expected error for missing input")
	}
}
