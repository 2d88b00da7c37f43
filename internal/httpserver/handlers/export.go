package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/store"
)

// Export downloads the library as an archive document.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.Now()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="reel-%s.json"`, now.UTC().Format("20060102-150405")))

		if err := store.WriteArchive(w, store.FromState(d.Session.View()), now); err != nil {
			d.Logger.Debug("failed to write archive", logger.Error(err))
		}
	}
}
