package lib

import (
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-slugged", "already-slugged"},
		{"Symbols!@#$%are^&*()collapsed", "symbols-are-collapsed"},
		{"MiXeD CaSe 123", "mixed-case-123"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueSlugSuffix(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	got := UniqueSlug("My Article", now)
	if got != "my-article-1700000000000" {
		t.Errorf("UniqueSlug = %q", got)
	}

	later := now.Add(time.Millisecond)
	if UniqueSlug("My Article", now) == UniqueSlug("My Article", later) {
		t.Error("same title at different instants produced the same slug")
	}
}

func testConfig() Config {
	return Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()

	access, refresh, err := GenerateTokens(cfg, "user-1", "a@b.com")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	got, err := VerifyAccessToken(cfg, access)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if got.ID != "user-1" || got.Email != "a@b.com" {
		t.Errorf("access identity = %+v", got)
	}

	got, err = VerifyRefreshToken(cfg, refresh)
	if err != nil {
		t.Fatalf("VerifyRefreshToken: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("refresh identity = %+v", got)
	}
}

func TestTokenSecretsAreSeparate(t *testing.T) {
	cfg := testConfig()

	access, refresh, err := GenerateTokens(cfg, "user-1", "a@b.com")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := VerifyAccessToken(cfg, refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := VerifyRefreshToken(cfg, access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	cfg := testConfig()

	access, _, err := GenerateTokens(cfg, "user-1", "a@b.com")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	tampered := access[:len(access)-2] + "xx"
	if _, err := VerifyAccessToken(cfg, tampered); err == nil {
		t.Error("tampered token verified")
	}

	if _, err := VerifyAccessToken(cfg, strings.Repeat("a", 40)); err == nil {
		t.Error("garbage token verified")
	}
}
