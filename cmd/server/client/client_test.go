package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type captured struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
}

type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server

	mu       sync.Mutex
	requests []captured
	handler  http.HandlerFunc
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.requests = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.requests = append(s.requests, captured{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			body:   body,
		})
		handler := s.handler
		s.mu.Unlock()

		handler(w, r)
	}))
}

func (s *ClientTestSuite) only() captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().Len(s.requests, 1)
	return s.requests[0]
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) reply(status int, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}
}

func (s *ClientTestSuite) execute(args ...string) (string, error) {
	var out bytes.Buffer
	ClientCmd.SetOut(&out)
	ClientCmd.SetErr(&out)
	ClientCmd.SetArgs(append(args, "--server", s.server.URL))
	err := ClientCmd.Execute()
	return out.String(), err
}

func (s *ClientTestSuite) TestRollDice() {
	s.reply(http.StatusOK, `{"success":true,"data":{
		"roll":{"rollId":"roll_1","notation":"1d20+5","dice":[14],"modifier":5,"total":19,"breakdown":"[14] + 5"},
		"session":{"entityId":"char_1","context":"attack","rolls":[{"rollId":"roll_1","total":19}]}}}`)

	out, err := s.execute("roll-dice", "1d20+5", "char_1", "attack")
	s.Require().NoError(err)

	req := s.only()
	s.Equal(http.MethodPost, req.method)
	s.Equal("/api/dice/roll", req.path)
	s.Equal("1d20+5", req.body["notation"])
	s.Equal("char_1", req.body["entityId"])
	s.Equal("attack", req.body["context"])

	s.Contains(out, "Total: 19")
	s.Contains(out, "Total rolls in session: 1")
}

func (s *ClientTestSuite) TestGetRollSession() {
	s.reply(http.StatusOK, `{"success":true,"data":{"entityId":"char_1","context":"ability_scores",
		"rolls":[{"rollId":"roll_1","notation":"4d6","dice":[6,5,4],"total":15}]}}`)

	out, err := s.execute("get-roll-session", "char_1", "ability_scores")
	s.Require().NoError(err)

	req := s.only()
	s.Equal("/api/dice/sessions/char_1", req.path)
	s.Equal("ability_scores", req.query.Get("context"))
	s.Contains(out, "Notation: 4d6")
}

func (s *ClientTestSuite) TestChatReportsServerError() {
	s.reply(http.StatusServiceUnavailable,
		`{"success":false,"error":{"message":"AI service not available","code":"UNAVAILABLE"}}`)

	_, err := s.execute("chat", "char_1", "Hello there", "--mood", "battle")
	s.Require().Error(err)
	s.Contains(err.Error(), "AI service not available")
	s.Contains(err.Error(), "HTTP 503")

	req := s.only()
	s.Equal("/api/characters/char_1/chat", req.path)
	s.Equal("battle", req.body["mood"])
}

func (s *ClientTestSuite) TestListItems() {
	s.reply(http.StatusOK, `{"success":true,"data":{"items":[
		{"guid":"g-1","name":"Longsword","category":"weapon","rarity":"common","rarityColor":"#9d9d9d"}],
		"total":1,"limit":5,"skip":0}}`)

	out, err := s.execute("list-items", "--category", "weapon", "--limit", "5")
	s.Require().NoError(err)

	query := s.only().query
	s.Equal("weapon", query.Get("category"))
	s.Equal("5", query.Get("limit"))
	s.Contains(out, "Longsword")
	s.Contains(out, "Found 1 items")
}

func (s *ClientTestSuite) TestUnexpectedResponse() {
	s.reply(http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := s.execute("list-characters")
	s.Require().Error(err)
	s.Contains(err.Error(), "unexpected response (HTTP 502)")
}
