package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/redis"
)

type ClientTestSuite struct {
	suite.Suite
	mr *miniredis.Miniredis
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
}

func (s *ClientTestSuite) TearDownTest() {
	s.mr.Close()
}

func (s *ClientTestSuite) TestNew() {
	testCases := []struct {
		name      string
		endpoints []string
		wantErr   string
	}{
		{name: "single endpoint", endpoints: []string{"localhost:6379"}},
		{name: "cluster endpoints", endpoints: []string{"a:6379", "b:6379"}},
		{name: "no endpoints", endpoints: nil, wantErr: "endpoint is required"},
		{name: "empty endpoint", endpoints: []string{""}, wantErr: "endpoint is required"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			client, err := redis.New(tc.endpoints, &redis.Options{PoolSize: 2})
			if tc.wantErr != "" {
				s.Require().Error(err)
				s.Contains(err.Error(), tc.wantErr)
				return
			}
			s.Require().NoError(err)
			s.NotNil(client)
			s.Require().NoError(client.Close())
		})
	}
}

func (s *ClientTestSuite) TestPing() {
	client, err := redis.NewClient(s.mr.Addr(), nil)
	s.Require().NoError(err)
	defer client.Close()

	s.NoError(redis.Ping(context.Background(), client, time.Second))

	s.mr.Close()
	s.Error(redis.Ping(context.Background(), client, 200*time.Millisecond))
}
