package routes

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/didierrc/KusiBot/kusibot/config"
	"github.com/didierrc/KusiBot/kusibot/controllers"
	"github.com/didierrc/KusiBot/kusibot/middlewares"
	"github.com/didierrc/KusiBot/kusibot/types"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

func ChatbotRoutes(ctrl *controllers.ChatbotController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		// GET /chatbot/ : active conversation transcript, created on first call
		gr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			userID := r.Context().Value(middlewares.UserIDKey).(uint)
			msgs, err := ctrl.Bootstrap(r.Context(), userID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(msgs)
		})
		// POST /chatbot/ : one chat turn
		gr.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req types.ChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			userID := r.Context().Value(middlewares.UserIDKey).(uint)
			resp, err := ctrl.Chat(r.Context(), userID, req.Message)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(types.ChatResponse{Response: resp})
		})
		// DELETE /chatbot/ : end active conversation
		gr.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			userID := r.Context().Value(middlewares.UserIDKey).(uint)
			ended, err := ctrl.End(r.Context(), userID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]bool{"ended": ended})
		})
	})
	// websocket authenticates with the token carried in each frame
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			logging.ErrorLogger.Error("websocket accept error", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if typ != websocket.MessageText {
				conn.Close(websocket.StatusUnsupportedData, "unsupported data")
				return
			}
			var input struct {
				Token   string `json:"token"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(data, &input); err != nil {
				conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid json"}`))
				continue
			}

			token, err := jwt.Parse(input.Token, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid token"}`))
				conn.Close(websocket.StatusPolicyViolation, "invalid token")
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "invalid claims")
				return
			}
			userIDf, ok := claims["user_id"].(float64)
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "invalid user_id")
				return
			}

			resp, err := ctrl.Chat(ctx, uint(userIDf), input.Message)
			if err != nil {
				conn.Write(ctx, websocket.MessageText, []byte(`{"error":"`+err.Error()+`"}`))
				continue
			}
			out, _ := json.Marshal(types.ChatResponse{Response: resp})
			if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
				return
			}
		}
	})
	return r
}
