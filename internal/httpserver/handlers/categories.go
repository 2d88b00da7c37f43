package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/library"
)

// ListCategories returns the registered categories with their colors.
func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, categoryViews(d.Session.View()))
	}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AddCategory registers a category; without a color it borrows Other's.
func AddCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" || name == library.FilterAll || name == library.FilterVault {
			writeError(w, http.StatusUnprocessableEntity, "invalid category name")
			return
		}

		var before int
		st, ok := apply(w, r, d, func(st library.State) library.State {
			before = len(st.Categories)
			return st.AddCategory(name, req.Color)
		})
		if !ok {
			return
		}
		if len(st.Categories) == before {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
		writeJSON(w, http.StatusCreated, categoryViews(st))
	}
}

// DeleteCategory unregisters a category. Entries keep the dangling name.
func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := param(r, "name")

		var before int
		st, ok := apply(w, r, d, func(st library.State) library.State {
			before = len(st.Categories)
			return st.RemoveCategory(name)
		})
		if !ok {
			return
		}
		if len(st.Categories) == before {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateCategoryColor recolors a category.
func UpdateCategoryColor(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Color) == "" {
			writeError(w, http.StatusUnprocessableEntity, "color is required")
			return
		}

		name := param(r, "name")
		var found bool
		st, ok := apply(w, r, d, func(st library.State) library.State {
			for _, c := range st.Categories {
				if c == name {
					found = true
				}
			}
			return st.UpdateCategoryColor(name, req.Color)
		})
		if !ok {
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeJSON(w, http.StatusOK, categoryViews(st))
	}
}
