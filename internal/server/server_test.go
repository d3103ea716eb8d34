package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/gravitas-games/buildplanner/internal/config"
	"github.com/gravitas-games/buildplanner/internal/network"
	"github.com/gravitas-games/buildplanner/internal/store"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.MaxConnections = 4
	cfg.Planner = config.PlannerConfig{MainWidth: 10, MainHeight: 10, CharmWidth: 10, CharmHeight: 3}
	cfg.Classes = []config.ClassConfig{{Name: "Paladin", Weapons: []string{"Sword"}}}
	return cfg
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(testConfig(), testCatalog(t), store.NewMemory(), opts...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
	})
	return srv, ts
}

type rawMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readMessage(t *testing.T, ws *websocket.Conn) rawMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg rawMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Status string `json:"status"`
		Items  int    `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Items != 3 {
		t.Fatalf("unexpected health %+v", body)
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	welcome := readMessage(t, ws)
	if welcome.Type != network.MsgTypeWelcome {
		t.Fatalf("expected welcome, got %s", welcome.Type)
	}
	var w network.WelcomePayload
	if err := json.Unmarshal(welcome.Payload, &w); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if w.PlayerID != "anonymous" || len(w.Classes) != 1 || len(w.Runewords) != 1 {
		t.Fatalf("unexpected welcome %+v", w)
	}

	if err := ws.WriteJSON(map[string]interface{}{
		"type":    network.MsgTypeAdd,
		"payload": network.AddPayload{Inventory: "main", Item: "Crystal Sword"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, ws); msg.Type != network.MsgTypeResult {
		t.Fatalf("expected result, got %s", msg.Type)
	}
	state := readMessage(t, ws)
	var st network.StatePayload
	if err := json.Unmarshal(state.Payload, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(st.Build.Inventories["main"].Slots) != 1 {
		t.Fatalf("state push must include the new item")
	}

	ws.WriteMessage(websocket.TextMessage, []byte("not json"))
	if msg := readMessage(t, ws); msg.Type != network.MsgTypeError {
		t.Fatalf("expected error, got %s", msg.Type)
	}
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func signToken(t *testing.T, key *ecdsa.PrivateKey, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims(userID int64) Claims {
	return Claims{
		UserID:    userID,
		Username:  "hero",
		Activated: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "login",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

type fakeBlacklist map[string]bool

func (f fakeBlacklist) IsBlacklisted(_ context.Context, id string) (bool, error) {
	if id == "500" {
		return false, errors.New("redis down")
	}
	return f[id], nil
}

func TestValidateToken(t *testing.T) {
	key := newKey(t)
	v := NewJWTValidatorWithKey("login", &key.PublicKey, fakeBlacklist{"13": true})
	ctx := context.Background()

	player, err := v.ValidateToken(ctx, signToken(t, key, validClaims(42)))
	if err != nil || player.ID != "42" || player.Username != "hero" {
		t.Fatalf("valid token rejected: %v %+v", err, player)
	}
	if _, err := v.ValidateToken(ctx, signToken(t, key, validClaims(500))); err != nil {
		t.Fatalf("blacklist outage must not block login: %v", err)
	}

	tests := []struct {
		name   string
		claims func() Claims
		key    *ecdsa.PrivateKey
	}{
		{"blacklisted", func() Claims { return validClaims(13) }, key},
		{"wrong issuer", func() Claims { c := validClaims(1); c.Issuer = "other"; return c }, key},
		{"expired", func() Claims {
			c := validClaims(1)
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return c
		}, key},
		{"not activated", func() Claims { c := validClaims(1); c.Activated = 0; return c }, key},
		{"banned", func() Claims { c := validClaims(1); c.Activated = -1; return c }, key},
		{"foreign key", func() Claims { return validClaims(1) }, newKey(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.ValidateToken(ctx, signToken(t, tt.key, tt.claims())); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestRefreshPublicKey(t *testing.T) {
	key := newKey(t)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	keySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pemBytes)
	}))
	defer keySrv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := NewJWTValidator(ctx, config.JWTConfig{Issuer: "login", PublicKeyURL: keySrv.URL, PublicKeyRefreshHrs: 24}, nil)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	if _, err := v.ValidateToken(ctx, signToken(t, key, validClaims(9))); err != nil {
		t.Fatalf("token signed with the fetched key rejected: %v", err)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	key := newKey(t)
	_, ts := newTestServer(t, WithValidator(NewJWTValidatorWithKey("login", &key.PublicKey, nil)))

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %v", err)
	}

	header := http.Header{"Authorization": []string{"Bearer " + signToken(t, key, validClaims(42))}}
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	defer ws.Close()
	var w network.WelcomePayload
	json.Unmarshal(readMessage(t, ws).Payload, &w)
	if w.PlayerID != "42" {
		t.Fatalf("session must belong to the token owner, got %q", w.PlayerID)
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	if got := extractTokenFromHeader(r); got != "q" {
		t.Fatalf("query token: %q", got)
	}
	r.Header.Set("Authorization", "Bearer b")
	if got := extractTokenFromHeader(r); got != "b" {
		t.Fatalf("bearer token: %q", got)
	}
	r.Header.Set("Sec-WebSocket-Protocol", "access_token, p")
	if got := extractTokenFromHeader(r); got != "p" {
		t.Fatalf("protocol token: %q", got)
	}
}
