package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rmacdonaldsmith/georelay-go/internal/admission"
	"github.com/rmacdonaldsmith/georelay-go/internal/relaynode"
	"github.com/rmacdonaldsmith/georelay-go/internal/resolver"
	"github.com/rmacdonaldsmith/georelay-go/pkg/relay"
)

// Handlers contains the HTTP request handlers
type Handlers struct {
	node     *relaynode.Node
	jwtAuth  *JWTAuth
	resolver *resolver.HostResolver
	conns    *connTracker
}

// NewHandlers creates a new handlers instance
func NewHandlers(node *relaynode.Node, jwtAuth *JWTAuth, hostResolver *resolver.HostResolver) *Handlers {
	return &Handlers{
		node:     node,
		jwtAuth:  jwtAuth,
		resolver: hostResolver,
		conns:    newConnTracker(),
	}
}

// conn resolves the request's bound scope from the Host header and returns
// the matching connection state.
func (h *Handlers) conn(r *http.Request) *admission.ConnState {
	bound := h.resolver.Resolve(r.Host)
	return h.conns.get(bound, clientID(r), r.RemoteAddr)
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ClientID == "" {
		h.writeError(w, "clientId is required", http.StatusBadRequest)
		return
	}

	token, expiresAt, err := h.jwtAuth.GenerateToken(req.ClientID)
	if err != nil {
		h.writeError(w, "Failed to generate token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		ClientID:  req.ClientID,
		ExpiresAt: expiresAt,
	})
}

// Publish handles POST /api/v1/messages
func (h *Handlers) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		h.writeError(w, "content is required", http.StatusBadRequest)
		return
	}

	author := clientID(r)
	if author == "" {
		author = "anonymous"
	}

	conn := h.conn(r)
	msg := relay.NewMessage(author, []byte(req.Content), req.Tags)

	outcome, err := h.node.Publish(r.Context(), conn, msg)
	if err != nil {
		h.writeError(w, "Failed to publish message: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !outcome.Accepted() {
		h.writeRejection(w, outcome.Rejection)
		return
	}

	h.writeJSON(w, http.StatusCreated, PublishResponse{
		MessageID: msg.ID,
		Scope:     conn.Scope().String(),
		Timestamp: msg.CreatedAt,
	})
}

// Query handles GET /api/v1/messages
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "Invalid query parameters: "+err.Error(), http.StatusBadRequest)
		return
	}

	conn := h.conn(r)
	messages, err := h.node.Query(r.Context(), conn, filter)
	if err != nil {
		if rejection, ok := err.(*relay.Rejection); ok {
			h.writeRejection(w, rejection)
			return
		}
		h.writeError(w, "Failed to query messages: "+err.Error(), http.StatusInternalServerError)
		return
	}

	results := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		results = append(results, toMessageResponse(msg))
	}
	h.writeJSON(w, http.StatusOK, QueryResponse{
		Scope:    conn.Scope().String(),
		Messages: results,
	})
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Scope:  h.resolver.Resolve(r.Host).String(),
	})
}

// parseFilter builds a message filter from query string parameters.
func parseFilter(r *http.Request) (relay.Filter, error) {
	var filter relay.Filter
	query := r.URL.Query()

	if authors := query.Get("authors"); authors != "" {
		for _, author := range strings.Split(authors, ",") {
			if author = strings.TrimSpace(author); author != "" {
				filter.Authors = append(filter.Authors, author)
			}
		}
	}
	if since := query.Get("since"); since != "" {
		seconds, err := strconv.ParseInt(since, 10, 64)
		if err != nil {
			return relay.Filter{}, err
		}
		filter.Since = time.Unix(seconds, 0).UTC()
	}
	if until := query.Get("until"); until != "" {
		seconds, err := strconv.ParseInt(until, 10, 64)
		if err != nil {
			return relay.Filter{}, err
		}
		filter.Until = time.Unix(seconds, 0).UTC()
	}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return relay.Filter{}, err
		}
		filter.Limit = n
	}
	return filter, nil
}

func toMessageResponse(msg *relay.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		Author:    msg.Author,
		Content:   string(msg.Content),
		Tags:      msg.Tags,
		CreatedAt: msg.CreatedAt,
	}
}

// rejectionStatus maps an admission rejection to its HTTP status code.
func rejectionStatus(kind relay.RejectKind) int {
	switch kind {
	case relay.AuthRequired:
		return http.StatusUnauthorized
	case relay.TenantNotAllowed, relay.InvalidTenantScope:
		return http.StatusForbidden
	case relay.RateLimited:
		return http.StatusTooManyRequests
	case relay.WrongScope:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (h *Handlers) writeRejection(w http.ResponseWriter, rejection *relay.Rejection) {
	h.writeJSON(w, rejectionStatus(rejection.Kind), RejectionResponse{
		Kind:   string(rejection.Kind),
		Reason: rejection.Reason,
		Hint:   rejection.Hint,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}
