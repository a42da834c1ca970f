package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	scs "github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/coinpulse/views"
)

func TestSessionTab(t *testing.T) {
	sess := scs.New()

	var seen []views.Tab
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, TabFrom(r.Context()))
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		sess.Put(r.Context(), SessionTabKey, r.URL.Query().Get("tab"))
	})
	mux.Handle("/", SessionTab(sess)(final))
	srv := httptest.NewServer(sess.LoadAndSave(mux))
	defer srv.Close()

	get := func(path string, cookies []*http.Cookie) []*http.Cookie {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.Cookies()
	}

	get("/", nil)
	cookies := get("/set?tab=losers", nil)
	get("/", cookies)
	cookies = get("/set?tab=sideways", cookies)
	get("/", cookies)

	assert.Equal(t, []views.Tab{views.TabGainers, views.TabLosers, views.TabGainers}, seen)
}

func TestTabFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, views.TabGainers, TabFrom(req.Context()))
}
