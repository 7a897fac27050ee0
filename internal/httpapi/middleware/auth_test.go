package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(h http.Handler, header, value string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAdmin_AllowsAdminKey_BlocksPublicKey(t *testing.T) {
	keys := Keys{
		Public: []string{"pub_key"},
		Admin:  []string{"adm_key"},
	}
	h := RequireAdmin(keys)(okHandler())

	if c := serve(h, "X-API-Key", "adm_key"); c != http.StatusOK {
		t.Fatalf("admin key should pass; got %d", c)
	}
	if c := serve(h, "Authorization", "Bearer adm_key"); c != http.StatusOK {
		t.Fatalf("admin bearer should pass; got %d", c)
	}
	if c := serve(h, "X-API-Key", "pub_key"); c != http.StatusForbidden {
		t.Fatalf("public key should be forbidden; got %d", c)
	}
	if c := serve(h, "", ""); c != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401; got %d", c)
	}
}

func TestRequireAny(t *testing.T) {
	keys := Keys{Public: []string{"pub_key"}, Admin: []string{"adm_key"}}
	h := RequireAny(keys)(okHandler())

	if c := serve(h, "X-API-Key", "pub_key"); c != http.StatusOK {
		t.Fatalf("public key: %d", c)
	}
	if c := serve(h, "authorization", "bearer adm_key"); c != http.StatusOK {
		t.Fatalf("admin key: %d", c)
	}
	if c := serve(h, "X-API-Key", "nope"); c != http.StatusUnauthorized {
		t.Fatalf("unknown key: %d", c)
	}
}

func TestNoKeysConfiguredAllowsAll(t *testing.T) {
	if c := serve(RequireAny(Keys{})(okHandler()), "", ""); c != http.StatusOK {
		t.Fatalf("RequireAny: %d", c)
	}
	if c := serve(RequireAdmin(Keys{Public: []string{"p"}})(okHandler()), "", ""); c != http.StatusOK {
		t.Fatalf("RequireAdmin without admin keys: %d", c)
	}
}
