package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/utils"
)

// InitAuditHandlers starts the websocket hub. Call once during startup.
func InitAuditHandlers() {
	go hub.Run()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type BroadcastMessage struct {
	OrgID   string
	Message []byte
}

// Hub fans audit events out to connected clients, partitioned by
// organization so tenants never see each other's stream.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan BroadcastMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.Mutex
}

type Client struct {
	orgID    string
	userID   string
	userRole string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

var hub = &Hub{
	clients:    make(map[string]map[*Client]bool),
	broadcast:  make(chan BroadcastMessage),
	register:   make(chan *Client),
	unregister: make(chan *Client),
}

func (h *Hub) Run() {
	log.Println("websocket hub started")
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if _, ok := h.clients[client.orgID]; !ok {
				h.clients[client.orgID] = make(map[*Client]bool)
			}
			h.clients[client.orgID][client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if clients, ok := h.clients[client.orgID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.orgID)
					}
				}
			}
			h.mutex.Unlock()

		case bm := <-h.broadcast:
			h.mutex.Lock()
			if clients, ok := h.clients[bm.OrgID]; ok {
				for client := range clients {
					select {
					case client.send <- bm.Message:
					default:
						close(client.send)
						delete(clients, client)
					}
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastAudit pushes a freshly written audit entry to every client
// of the same organization.
func BroadcastAudit(audit *models.AuditLog) {
	data, err := json.Marshal(audit)
	if err != nil {
		log.Printf("failed to marshal audit for websocket: %v", err)
		return
	}
	hub.broadcast <- BroadcastMessage{OrgID: audit.OrganizationID.Hex(), Message: data}
}

// HandleWebSocket upgrades the connection and subscribes the caller to the
// organization's audit stream. Browsers cannot set headers on websocket
// requests, so the token is also accepted as a query parameter.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")

	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		http.Error(w, "authentication token required", http.StatusUnauthorized)
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	if claims.OrganizationID == "" || claims.UserID == "" {
		http.Error(w, "invalid token claims", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	client := &Client{
		orgID:    claims.OrganizationID,
		userID:   claims.UserID,
		userRole: claims.Role,
		conn:     conn,
		send:     make(chan []byte, 256),
		hub:      hub,
	}

	client.hub.register <- client

	// Write pump.
	go func() {
		defer func() {
			client.hub.unregister <- client
			conn.Close()
		}()
		for message := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	// Read pump, keeps the connection alive with ping/pong.
	go func() {
		defer func() {
			client.hub.unregister <- client
			conn.Close()
		}()

		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		go func() {
			for range ticker.C {
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	welcome := map[string]interface{}{
		"type":      "welcome",
		"message":   "Connected to audit log stream",
		"orgID":     claims.OrganizationID,
		"userID":    claims.UserID,
		"role":      claims.Role,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	welcomeBytes, _ := json.Marshal(welcome)
	conn.WriteMessage(websocket.TextMessage, welcomeBytes)
}

// ListAuditLogs returns paginated audit logs for the organization,
// newest first.
func ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed >= 1 && parsed <= 100 {
			limit = parsed
		}
	}

	skip := 0
	if skipStr := r.URL.Query().Get("skip"); skipStr != "" {
		if parsed, err := strconv.Atoi(skipStr); err == nil && parsed >= 0 {
			skip = parsed
		}
	}

	filter := bson.M{"organizationId": orgID}

	if entityType := r.URL.Query().Get("entityType"); entityType != "" && entityType != "all" {
		filter["entityType"] = entityType
	}

	if action := r.URL.Query().Get("action"); action != "" && action != "all" {
		filter["action"] = bson.M{"$regex": action, "$options": "i"}
	}

	if userIDStr := r.URL.Query().Get("userId"); userIDStr != "" && userIDStr != "all" {
		if userID, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
			filter["userId"] = userID
		}
	}

	if timeRange := r.URL.Query().Get("timeRange"); timeRange != "" {
		startDate := calculateStartDate(timeRange)
		if !startDate.IsZero() {
			filter["createdAt"] = bson.M{"$gte": startDate}
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := auditLogCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("audit find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch audit logs")
		return
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode audit logs")
		return
	}

	if logs == nil {
		logs = []models.AuditLog{}
	}

	utils.RespondWithJSON(w, http.StatusOK, logs)
}

func calculateStartDate(timeRange string) time.Time {
	now := time.Now()
	switch timeRange {
	case "24h", "1d":
		return now.Add(-24 * time.Hour)
	case "7d":
		return now.Add(-7 * 24 * time.Hour)
	case "30d":
		return now.Add(-30 * 24 * time.Hour)
	case "90d":
		return now.Add(-90 * 24 * time.Hour)
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}
