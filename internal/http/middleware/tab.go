package middleware

import (
	"context"
	"net/http"

	scs "github.com/alexedwards/scs/v2"

	"github.com/briangreenhill/coinpulse/views"
)

type contextKey string

const (
	TabKey contextKey = "movers_tab"

	// SessionTabKey is where the selected movers tab lives in the session
	SessionTabKey = "movers_tab"
)

// SessionTab loads the visitor's movers tab into the request context.
// Missing or unknown values fall back to gainers.
func SessionTab(sess *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tab, err := views.ParseTab(sess.GetString(r.Context(), SessionTabKey))
			if err != nil {
				tab = views.TabGainers
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), TabKey, tab)))
		})
	}
}

// TabFrom returns the tab stored by SessionTab
func TabFrom(ctx context.Context) views.Tab {
	if tab, ok := ctx.Value(TabKey).(views.Tab); ok {
		return tab
	}
	return views.TabGainers
}
