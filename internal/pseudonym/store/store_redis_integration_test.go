//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"selfid/internal/pseudonym/models"
	"selfid/internal/pseudonym/service"
	"selfid/internal/pseudonym/store"
	dErrors "selfid/pkg/domain-errors"
	"selfid/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	storeSuite
	redis      *containers.RedisContainer
	redisStore *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.redisStore = store.NewRedis(s.redis.Client.Client, store.WithKeyPrefix("test:"))
	s.store = s.redisStore
}

func (s *RedisStoreSuite) TestClientHealth() {
	s.NoError(s.redis.Client.Health(context.Background()))
}

func (s *RedisStoreSuite) TestTxAppliesWritesOnlyOnSuccess() {
	ctx := context.Background()
	tx := s.redisStore.Tx()

	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(s.redisStore.AddVerifier(ctx, vera))
		return errors.New("emit failed")
	})
	s.Require().Error(err)
	ok, err := s.redisStore.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.False(ok, "writes of a failed call are discarded")

	s.Require().NoError(tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.redisStore.AddVerifier(ctx, vera)
	}))
	ok, err = s.redisStore.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStoreSuite) TestTxWaitsForLock() {
	ctx := context.Background()
	held := store.NewRedis(s.redis.Client.Client, store.WithKeyPrefix("test:")).Tx()

	release := make(chan struct{})
	locked := make(chan struct{})
	go func() {
		_ = held.RunInTx(ctx, func(context.Context) error {
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := s.redisStore.Tx().RunInTx(short, func(context.Context) error { return nil })
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	close(release)
	s.Eventually(func() bool {
		return s.redisStore.Tx().RunInTx(ctx, func(context.Context) error { return nil }) == nil
	}, time.Second, 20*time.Millisecond)
}

// Two registries sharing one keyspace stand in for two server replicas.
func (s *RedisStoreSuite) TestReplicasCannotClaimTheSameIdentifier() {
	ctx := context.Background()
	var replicas []*service.Service
	for i := 0; i < 2; i++ {
		rs := store.NewRedis(s.redis.Client.Client, store.WithKeyPrefix("test:"))
		svc, err := service.New(rs, service.WithTx(rs.Tx()))
		s.Require().NoError(err)
		replicas = append(replicas, svc)
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i, account := range []byte{0x21, 0x22, 0x23, 0x24, 0x25, 0x26} {
		wg.Add(1)
		go func(replica *service.Service, account byte) {
			defer wg.Done()
			err := replica.Claim(ctx, accountOf(account), "contested")
			if err == nil {
				mu.Lock()
				won++
				mu.Unlock()
				return
			}
			s.ErrorIs(err, models.ErrTakenPseudonym)
		}(replicas[i%2], account)
	}
	wg.Wait()
	s.Equal(1, won)

	info, err := s.redisStore.FindInfo(ctx, models.MustParseIdentifier("contested"))
	s.Require().NoError(err)
	owned, err := s.redisStore.FindPseudonym(ctx, info.Owner)
	s.Require().NoError(err)
	s.Equal("contested", owned.String())
	for _, account := range []byte{0x21, 0x22, 0x23, 0x24, 0x25, 0x26} {
		if accountOf(account) == info.Owner {
			continue
		}
		_, err := s.redisStore.FindPseudonym(ctx, accountOf(account))
		s.Error(err, "losers hold no binding")
	}
}
