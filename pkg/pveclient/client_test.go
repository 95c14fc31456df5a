package pveclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtstack-io/pve-client/pkg/pve"
	"github.com/virtstack-io/pve-client/pkg/pveclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := pveclient.New(context.Background(), nil)
		assert.ErrorIs(t, err, pve.ErrConfigRequired)
	})

	t.Run("missing base URL", func(t *testing.T) {
		t.Parallel()

		_, err := pveclient.New(context.Background(), &pve.Config{})
		require.Error(t, err)

		configErr := &pve.ConfigurationError{}
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("host-less base URL", func(t *testing.T) {
		t.Parallel()

		_, err := pveclient.New(context.Background(), &pve.Config{BaseURL: "https://"})
		require.Error(t, err)

		configErr := &pve.ConfigurationError{}
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("valid config yields an unauthenticated client", func(t *testing.T) {
		t.Parallel()

		client, err := pveclient.New(context.Background(), &pve.Config{
			BaseURL:  "pve.example.com:8006",
			Username: "root@pam",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.False(t, client.IsAuthenticated())
	})

	t.Run("unsupported cache type is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := pveclient.New(context.Background(), &pve.Config{
			BaseURL: "pve.example.com",
			Cache:   &pve.CacheConfig{Type: pve.CacheType("redis")},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, pve.ErrUnsupportedCacheType)
	})
}

func TestNewWithCredentials(t *testing.T) {
	t.Parallel()

	t.Run("logs in immediately", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api2/json/access/ticket", request.URL.Path)

			err := request.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "root@pam", request.PostForm.Get("username"))
			assert.Equal(t, "secret", request.PostForm.Get("password"))

			_, _ = writer.Write([]byte(`{"data":{"username":"root@pam","ticket":"ABC123","CSRFPreventionToken":"XYZ"}}`))
		}))
		defer server.Close()

		client, err := pveclient.NewWithCredentials(context.Background(), server.URL, "root@pam", "secret")
		require.NoError(t, err)
		assert.True(t, client.IsAuthenticated())
	})

	t.Run("rejected credentials surface as authentication failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := pveclient.NewWithCredentials(context.Background(), server.URL, "root@pam", "wrong")
		require.Error(t, err)
		assert.True(t, pve.IsAuthenticationFailed(err))
	})
}

// A transient 500 on the ticket endpoint is retried when a retry budget
// is configured; without one a single failure is final.
func TestNew_RetryBudget(t *testing.T) {
	t.Parallel()

	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		attempts++
		if attempts == 1 {
			writer.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = writer.Write([]byte(`{"data":{"username":"root@pam","ticket":"ABC123","CSRFPreventionToken":"XYZ"}}`))
	}))
	defer server.Close()

	client, err := pveclient.New(context.Background(), &pve.Config{
		BaseURL:  server.URL,
		Username: "root@pam",
		Password: "secret",
		Retries:  2,
	})
	require.NoError(t, err)

	_, err = client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.True(t, client.IsAuthenticated())
}
