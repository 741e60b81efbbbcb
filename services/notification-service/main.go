package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"ethics-reporting-system/pkg/middleware"
	"ethics-reporting-system/pkg/queue"
	"ethics-reporting-system/services/report-service/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reportEventsQueue = "report_events"

// Client is one connected admin dashboard. Every event goes to every
// connected admin; reporters are anonymous and never subscribe here.
type Client struct {
	AdminID string
	Role    string
	Send    chan models.ReportEvent
}

var (
	clients    = make(map[*Client]bool)
	broadcast  = make(chan models.ReportEvent, 100)
	register   = make(chan *Client)
	unregister = make(chan *Client)
	mu         sync.RWMutex
)

func main() {
	rabbitMQURL := os.Getenv("RABBITMQ_URL")
	if rabbitMQURL == "" {
		host := os.Getenv("RABBITMQ_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("RABBITMQ_PORT")
		if port == "" {
			port = "5672"
		}
		user := os.Getenv("RABBITMQ_USER")
		if user == "" {
			user = "guest"
		}
		pass := os.Getenv("RABBITMQ_PASS")
		if pass == "" {
			pass = "guest"
		}
		rabbitMQURL = fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)
	}

	conn, ch, err := queue.ConnectRabbitMQ(rabbitMQURL)
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()
	defer ch.Close()
	log.Println("[OK] Connected to RabbitMQ")

	middleware.RegisterMetrics()

	go consumeEvents(ch)
	go handleClients()

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/health", healthHandler)
	apiMux.Handle("/metrics", middleware.GetMetricsHandler())

	apiHandler := middleware.TraceMiddleware(
		middleware.MetricsMiddleware(
			middleware.LoggerMiddleware(apiMux),
		),
	)

	rootMux := http.NewServeMux()
	rootMux.Handle("/notifications/subscribe", middleware.TraceMiddleware(http.HandlerFunc(subscribeHandler)))
	rootMux.Handle("/", apiHandler)

	port := os.Getenv("NOTIFICATION_PORT")
	if port == "" {
		port = "8084"
	}

	log.Printf("[INFO] Notification Service running on port :%s", port)
	if err := http.ListenAndServe(":"+port, rootMux); err != nil {
		log.Fatalf("[ERROR] Server failed: %v", err)
	}
}

func consumeEvents(ch *amqp.Channel) {
	msgs, err := queue.ConsumeMessages(ch, reportEventsQueue)
	if err != nil {
		log.Fatalf("[ERROR] Failed to register consumer: %v", err)
	}

	for d := range msgs {
		var event models.ReportEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			log.Printf("[WARN] Failed to parse report event: %v", err)
			continue
		}

		log.Printf("[OK] Report event received - Type: %s, Report: %s", event.Type, event.ReportID)
		broadcast <- event
	}
}

func handleClients() {
	for {
		select {
		case client := <-register:
			mu.Lock()
			clients[client] = true
			mu.Unlock()
			log.Printf("[INFO] Admin subscribed - ID: %s (Total clients: %d)", client.AdminID, len(clients))

		case client := <-unregister:
			mu.Lock()
			if _, ok := clients[client]; ok {
				delete(clients, client)
				close(client.Send)
			}
			mu.Unlock()
			log.Printf("[INFO] Admin unsubscribed - ID: %s (Total clients: %d)", client.AdminID, len(clients))

		case event := <-broadcast:
			mu.RLock()
			for client := range clients {
				select {
				case client.Send <- event:
				default:
					// Client's send channel is full, skip
				}
			}
			mu.RUnlock()
		}
	}
}

// subscribeHandler streams report lifecycle events over SSE. The token can
// come from a query parameter because EventSource cannot set headers.
func subscribeHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ParseAdminToken(tokenString)
	if err != nil {
		log.Printf("[WARN] Invalid token attempt: %v", err)
		http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return
	}

	if claims.Role != middleware.RoleAdmin && claims.Role != middleware.RoleSuperAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := &Client{
		AdminID: claims.AdminID,
		Role:    claims.Role,
		Send:    make(chan models.ReportEvent, 10),
	}

	register <- client
	defer func() {
		unregister <- client
	}()

	fmt.Fprintf(w, "data: %s\n\n", `{"type":"connected","message":"Connection established"}`)
	w.(http.Flusher).Flush()

	for event := range client.Send {
		data, _ := json.Marshal(event)
		fmt.Fprintf(w, "data: %s\n\n", string(data))
		w.(http.Flusher).Flush()
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	mu.RLock()
	connectedClients := len(clients)
	mu.RUnlock()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":            "UP",
		"service":           "notification-service",
		"connected_clients": connectedClients,
	})
}
