package onec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("RejectsMissingParams", func(t *testing.T) {
		_, err := NewClient(Config{URL: "http://1c.local/odata"})
		require.Error(t, err)
	})

	t.Run("AcceptsFullConfig", func(t *testing.T) {
		client, err := NewClient(Config{
			URL:      "http://1c.local/odata/",
			Username: "svc",
			Password: "secret",
		})
		require.NoError(t, err)
		require.Equal(t, "http://1c.local/odata", client.baseURL)
	})
}

func TestClientGet(t *testing.T) {
	ctx := context.Background()

	newTestClient := func(t *testing.T, handler http.HandlerFunc) *Client {
		t.Helper()
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)

		client, err := NewClient(Config{
			URL:      server.URL,
			Username: "svc",
			Password: "secret",
			Timeout:  time.Second,
		})
		require.NoError(t, err)
		return client
	}

	t.Run("UnwrapsValueEnvelopeWithBOM", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			// 1C prefixes its JSON with a UTF-8 BOM.
			w.Write([]byte("\xef\xbb\xbf"))
			w.Write([]byte(`{"value": [{"Ref_Key": "A", "Description": "Товар"}]}`))
		})

		records, err := client.Get(ctx, "Catalog_Номенклатура", nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, "A", records[0]["Ref_Key"])
		require.Equal(t, "Товар", records[0]["Description"])
	})

	t.Run("PassesQueryOptionsThrough", func(t *testing.T) {
		var query map[string][]string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			w.Write([]byte(`{"value": []}`))
		})

		_, err := client.Get(ctx, "Catalog_Номенклатура", &GetOptions{
			Filter: "IsFolder eq false",
			Top:    50,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"json"}, query["$format"])
		require.Equal(t, []string{"IsFolder eq false"}, query["$filter"])
		require.Equal(t, []string{"50"}, query["$top"])
	})

	t.Run("SendsBasicAuth", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "svc", username)
			require.Equal(t, "secret", password)
			w.Write([]byte(`{"value": []}`))
		})

		_, err := client.Get(ctx, "Catalog_ВидыЦен", nil)
		require.NoError(t, err)
	})

	t.Run("UnauthorizedMapsToBadCredentials", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.Get(ctx, "Catalog_Номенклатура", nil)
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("ServerErrorIncludesBody", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("register is locked"))
		})

		_, err := client.Get(ctx, "InformationRegister_Штрихкоды", nil)
		require.ErrorContains(t, err, "status 500")
		require.ErrorContains(t, err, "register is locked")
	})
}
