package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/config"
	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
)

type AppTestSuite struct {
	suite.Suite
	mr  *miniredis.Miniredis
	cfg *config.Config
	app *app
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func (s *AppTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *AppTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())

	var err error
	s.cfg, err = config.Parse(map[string]string{
		"REDIS_ADDRS":   s.mr.Addr(),
		"ITEMS_DB_PATH": items.MemoryPath,
	})
	s.Require().NoError(err)

	s.app, err = newApp(s.cfg)
	s.Require().NoError(err)
}

func (s *AppTestSuite) TearDownTest() {
	s.app.Close()
}

func (s *AppTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.app.router.ServeHTTP(rec, req)
	return rec
}

func (s *AppTestSuite) data(rec *httptest.ResponseRecorder, out any) {
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	s.Require().True(env.Success, rec.Body.String())
	s.Require().NoError(json.Unmarshal(env.Data, out))
}

func (s *AppTestSuite) TestHealthReportsServices() {
	rec := s.do(http.MethodGet, "/api/health", "")
	s.Equal(http.StatusOK, rec.Code)

	var body struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("ok", body.Status)
	s.Equal(map[string]string{
		"redis":           "connected",
		"llm":             "not configured",
		"imageGeneration": "not configured",
		"cdn":             "not configured",
	}, body.Services)

	s.mr.Close()
	rec = s.do(http.MethodGet, "/api/health", "")
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("disconnected", body.Services["redis"])
}

func (s *AppTestSuite) TestCharacterRoundTrip() {
	rec := s.do(http.MethodPost, "/api/characters",
		`{"name":"Thorin","race":"Dwarf","class":"Fighter","level":5,"stats":{"str":16,"con":14}}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Computed struct {
			ProficiencyBonus int `json:"proficiencyBonus"`
		} `json:"computed"`
	}
	s.data(rec, &created)
	s.True(strings.HasPrefix(created.ID, "char_"))
	s.Equal(3, created.Computed.ProficiencyBonus)

	rec = s.do(http.MethodGet, "/api/characters/"+created.ID, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var fetched struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	}
	s.data(rec, &fetched)
	s.Equal("Thorin", fetched.Name)
	s.Equal(5, fetched.Level)

	rec = s.do(http.MethodPost, "/api/characters/"+created.ID+"/chat", `{"message":"Hello there"}`)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *AppTestSuite) TestDiceRollIsStored() {
	rec := s.do(http.MethodPost, "/api/dice/roll", `{"entityId":"char_1","context":"attack","notation":"2d6+3"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var rolled struct {
		Roll struct {
			Total int `json:"total"`
		} `json:"roll"`
	}
	s.data(rec, &rolled)
	s.GreaterOrEqual(rolled.Roll.Total, 5)
	s.LessOrEqual(rolled.Roll.Total, 15)

	rec = s.do(http.MethodGet, "/api/dice/sessions/char_1?context=attack", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var session struct {
		Rolls []json.RawMessage `json:"rolls"`
	}
	s.data(rec, &session)
	s.Len(session.Rolls, 1)
}

func (s *AppTestSuite) TestSeededLibrary() {
	seeded, err := s.app.library.SeedCatalog(context.Background(), &library.SeedCatalogInput{})
	s.Require().NoError(err)
	s.Positive(seeded.Created)

	rec := s.do(http.MethodGet, "/api/library/items?template=true&limit=5", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Items []struct {
			Name        string `json:"name"`
			RarityColor string `json:"rarityColor"`
		} `json:"items"`
		Total int `json:"total"`
	}
	s.data(rec, &out)
	s.Equal(seeded.Created, out.Total)
	s.NotEmpty(out.Items)
	s.NotEmpty(out.Items[0].RarityColor)
}

func (s *AppTestSuite) TestServerOverrides() {
	redisAddr = "redis-a:6379,redis-b:6379"
	logLevel = "debug"
	s.T().Cleanup(func() {
		redisAddr = ""
		logLevel = ""
	})

	cfg := *s.cfg
	serverOverrides(&cfg)
	s.Equal([]string{"redis-a:6379", "redis-b:6379"}, cfg.RedisAddrs)
	s.Equal("debug", cfg.LogLevel)
	s.NoError(cfg.Validate())
}
