package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/didierrc/KusiBot/kusibot/config"
	"github.com/didierrc/KusiBot/kusibot/controllers"
	"github.com/didierrc/KusiBot/kusibot/middlewares"
	"github.com/didierrc/KusiBot/kusibot/services"
)

func DashboardRoutes(ctrl *controllers.DashboardController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		gr.Use(middlewares.ProfessionalOnly)
		gr.Get("/users", func(w http.ResponseWriter, r *http.Request) {
			users, err := ctrl.ChatUsers(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(users)
		})
		gr.Get("/users/{user_id}/conversations", func(w http.ResponseWriter, r *http.Request) {
			userID, err := parseUintParam(r, "user_id")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			convs, err := ctrl.Conversations(r.Context(), userID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(convs)
		})
		gr.Get("/users/{user_id}/assessments", func(w http.ResponseWriter, r *http.Request) {
			userID, err := parseUintParam(r, "user_id")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			assessments, err := ctrl.Assessments(r.Context(), userID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(assessments)
		})
		gr.Get("/conversations/{conversation_id}/messages", func(w http.ResponseWriter, r *http.Request) {
			convID, err := parseUintParam(r, "conversation_id")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			msgs, err := ctrl.Messages(r.Context(), convID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(msgs)
		})
		gr.Post("/conversations/{conversation_id}/export", func(w http.ResponseWriter, r *http.Request) {
			convID, err := parseUintParam(r, "conversation_id")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			object, err := ctrl.ExportConversation(r.Context(), convID)
			if err != nil {
				if errors.Is(err, services.ErrConversationNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"object": object})
		})
	})
	return r
}

func parseUintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
