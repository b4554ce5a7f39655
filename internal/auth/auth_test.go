package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		if r.Header.Get("Authorization") != "token good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"login":"me"}`))
	}))
	defer srv.Close()

	c := &Client{APIURL: srv.URL, HTTP: srv.Client()}

	assert.NoError(t, c.Validate(context.Background(), "good"))
	assert.ErrorIs(t, c.Validate(context.Background(), "bad"), ErrUnauthorized)
	assert.ErrorIs(t, c.Validate(context.Background(), "  "), ErrUnauthorized)
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		assert.Equal(t, "shh", r.PostForm.Get("client_secret"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		switch r.PostForm.Get("code") {
		case "good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
		case "form":
			w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
			_, _ = w.Write([]byte(`error=bad_verification_code&error_description=expired`))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`))
		}
	}))
	defer srv.Close()

	c := &Client{OAuthURL: srv.URL, ClientID: "id", ClientSecret: "shh", HTTP: srv.Client()}

	t.Run("success", func(t *testing.T) {
		tok, err := c.Exchange(context.Background(), "good")
		require.NoError(t, err)
		assert.Equal(t, "tok", tok)
	})

	t.Run("rejected code", func(t *testing.T) {
		_, err := c.Exchange(context.Background(), "stale")

		var xe *ExchangeError
		require.ErrorAs(t, err, &xe)
		assert.Equal(t, "bad_verification_code", xe.Code)
		assert.JSONEq(t, `{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`, string(xe.Raw))
	})

	t.Run("form encoded rejection", func(t *testing.T) {
		_, err := c.Exchange(context.Background(), "form")

		var xe *ExchangeError
		require.ErrorAs(t, err, &xe)
		assert.Equal(t, "expired", xe.Description)
		assert.JSONEq(t, `{"error":"bad_verification_code","error_description":"expired"}`, string(xe.Raw))
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := c.Exchange(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingCode)
	})
}

func TestOAuthConfigDefaults(t *testing.T) {
	cfg := (&Client{ClientID: "id"}).oauthConfig()

	assert.Equal(t, DefaultOAuthURL, cfg.Endpoint.TokenURL)
	assert.Equal(t, "id", cfg.ClientID)
}
