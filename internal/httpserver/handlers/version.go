package handlers

import (
	"fmt"
	"html"
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/version"
)

const indexTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
%s
<title>reel</title>
</head>
<body>
<p>reel %s: %d entries. The API lives under <code>/api</code>.</p>
</body>
</html>
`

// Index serves the entry document. Other instances poll its version tag.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Session.View()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = fmt.Fprintf(w, indexTemplate,
			version.MetaTag(d.Session.CatalogVersion()),
			html.EscapeString(d.Version),
			len(st.Entries))
	}
}

// CheckVersion wakes the version checker outside its schedule.
func CheckVersion(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.VersionTrigger == nil {
			writeError(w, http.StatusServiceUnavailable, "version checker is disabled")
			return
		}

		select {
		case d.VersionTrigger <- struct{}{}:
			d.Logger.Info("manual version check triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]bool{"triggered": true})
		default:
			writeError(w, http.StatusTooManyRequests, "version check already pending")
		}
	}
}
