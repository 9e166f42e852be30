package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thefrankalbert/attabl/pkg/tenant"
)

func TestSubdomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{"example.com", ""},
		{"example.com:3000", ""},
		{"radisson.example.com", "radisson"},
		{"radisson.example.com:443", "radisson"},
		{"radisson.localhost:3000", "radisson"},
		{"radisson.localhost", "radisson"},
		{"localhost:3000", ""},
		{"localhost", ""},
		{"www.example.com", "www"}, // the router treats www as no tenant
		{"", ""},
		{"com", ""},
		{"a.b.example.com", "a"},
		{"UPPER.example.com", "upper"},
		{"bad_slug.example.com", ""},
		{"!!!.example.com", ""},
		{"-leading.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tenant.Subdomain(tt.host))
		})
	}
}

func TestSubdomainIsDeterministic(t *testing.T) {
	t.Parallel()

	for _, host := range []string{"radisson.example.com", "example.com", "garbage::::", "localhost"} {
		first := tenant.Subdomain(host)
		for range 3 {
			assert.Equal(t, first, tenant.Subdomain(host))
		}
	}
}

func TestNewPathResolver(t *testing.T) {
	t.Parallel()

	resolve := tenant.NewPathResolver("/sites")

	t.Run("extracts slug from sites path", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "http://example.com/sites/radisson/admin", nil)
		assert.Equal(t, "radisson", resolve(r))
	})

	t.Run("ignores other paths", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "http://example.com/pricing", nil)
		assert.Empty(t, resolve(r))
	})

	t.Run("rejects invalid slug segment", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "http://example.com/sites/bad_slug/admin", nil)
		assert.Empty(t, resolve(r))
	})
}

func TestNewCompositeResolver(t *testing.T) {
	t.Parallel()

	resolve := tenant.NewCompositeResolver(
		tenant.NewSubdomainResolver(),
		tenant.NewPathResolver("/sites"),
	)

	r := httptest.NewRequest(http.MethodGet, "http://example.com/sites/radisson/menu", nil)
	r.Host = "example.com"
	assert.Equal(t, "radisson", resolve(r))

	r = httptest.NewRequest(http.MethodGet, "http://hilton.example.com/menu", nil)
	r.Host = "hilton.example.com"
	assert.Equal(t, "hilton", resolve(r))
}
