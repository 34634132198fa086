package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
	"selfid/pkg/platform/sentinel"
	txcontext "selfid/pkg/platform/tx"
)

const defaultRedisPrefix = "selfid:"

// RedisStore keeps the registry in four Redis keys: the authority string, a
// set of verifiers, and two hashes for the account and pseudonym mappings.
// Multi-key writes go through MULTI/EXEC.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces every key. Defaults to "selfid:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedis constructs a Redis-backed registry store.
func NewRedis(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) authorityKey() string  { return s.prefix + "authority" }
func (s *RedisStore) verifiersKey() string  { return s.prefix + "verifiers" }
func (s *RedisStore) accountsKey() string   { return s.prefix + "accounts" }
func (s *RedisStore) pseudonymsKey() string { return s.prefix + "pseudonyms" }
func (s *RedisStore) lockKey() string       { return s.prefix + "lock" }

type pipelineKey struct{}

// write queues cmds on the transaction pipeline in ctx, or runs them at once
// in their own MULTI/EXEC.
func (s *RedisStore) write(ctx context.Context, cmds func(pipe redis.Pipeliner)) error {
	if pipe, ok := ctx.Value(pipelineKey{}).(redis.Pipeliner); ok {
		cmds(pipe)
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		cmds(pipe)
		return nil
	})
	return err
}

func (s *RedisStore) Authority(ctx context.Context) (domain.AccountID, error) {
	raw, err := s.client.Get(ctx, s.authorityKey()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.AccountID{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.AccountID{}, fmt.Errorf("get authority: %w", err)
	}
	return domain.ParseAccountID(raw)
}

func (s *RedisStore) SetAuthority(ctx context.Context, authority domain.AccountID) error {
	err := s.write(ctx, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, s.authorityKey(), authority.String(), 0)
	})
	if err != nil {
		return fmt.Errorf("set authority: %w", err)
	}
	return nil
}

func (s *RedisStore) IsVerifier(ctx context.Context, account domain.AccountID) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.verifiersKey(), account.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check verifier: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) AddVerifier(ctx context.Context, account domain.AccountID) error {
	err := s.write(ctx, func(pipe redis.Pipeliner) {
		pipe.SAdd(ctx, s.verifiersKey(), account.String())
	})
	if err != nil {
		return fmt.Errorf("add verifier: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveVerifier(ctx context.Context, account domain.AccountID) error {
	err := s.write(ctx, func(pipe redis.Pipeliner) {
		pipe.SRem(ctx, s.verifiersKey(), account.String())
	})
	if err != nil {
		return fmt.Errorf("remove verifier: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearVerifiers(ctx context.Context) error {
	err := s.write(ctx, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, s.verifiersKey())
	})
	if err != nil {
		return fmt.Errorf("clear verifiers: %w", err)
	}
	return nil
}

func (s *RedisStore) FindPseudonym(ctx context.Context, account domain.AccountID) (models.Identifier, error) {
	raw, err := s.client.HGet(ctx, s.accountsKey(), account.String()).Result()
	if errors.Is(err, redis.Nil) {
		return models.Identifier{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Identifier{}, fmt.Errorf("get pseudonym: %w", err)
	}
	return decodeIdentifier(raw)
}

func (s *RedisStore) FindInfo(ctx context.Context, id models.Identifier) (*models.Info, error) {
	raw, err := s.client.HGet(ctx, s.pseudonymsKey(), id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pseudonym info: %w", err)
	}
	var info models.Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode pseudonym info: %w", err)
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *RedisStore) Claim(ctx context.Context, account domain.AccountID, previous *models.Identifier, id models.Identifier, info *models.Info) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode pseudonym info: %w", err)
	}
	err = s.write(ctx, func(pipe redis.Pipeliner) {
		if previous != nil {
			pipe.HDel(ctx, s.pseudonymsKey(), previous.String())
			pipe.HDel(ctx, s.accountsKey(), account.String())
		}
		pipe.HSet(ctx, s.accountsKey(), account.String(), id.String())
		pipe.HSet(ctx, s.pseudonymsKey(), id.String(), payload)
	})
	if err != nil {
		return fmt.Errorf("claim pseudonym: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveInfo(ctx context.Context, id models.Identifier, info *models.Info) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode pseudonym info: %w", err)
	}
	exists, err := s.client.HExists(ctx, s.pseudonymsKey(), id.String()).Result()
	if err != nil {
		return fmt.Errorf("check pseudonym: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	err = s.write(ctx, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, s.pseudonymsKey(), id.String(), payload)
	})
	if err != nil {
		return fmt.Errorf("save pseudonym info: %w", err)
	}
	return nil
}

func (s *RedisStore) Purge(ctx context.Context) error {
	err := s.write(ctx, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, s.verifiersKey(), s.accountsKey(), s.pseudonymsKey())
	})
	if err != nil {
		return fmt.Errorf("purge registry: %w", err)
	}
	return nil
}

// unlockScript deletes the lock only while it still holds the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisTx serializes registry calls across every process sharing the Redis
// keyspace. It holds a token lock (SET NX PX) for the whole call and queues
// the call's writes into one MULTI/EXEC that runs only when the call
// succeeds. Reads inside a call see the state before its writes.
type RedisTx struct {
	store     *RedisStore
	lockTTL   time.Duration
	retryWait time.Duration
	timeout   time.Duration
}

// Tx returns the transaction boundary for s. The lock outlives the call
// timeout so it cannot expire under a running call.
func (s *RedisStore) Tx() *RedisTx {
	return &RedisTx{
		store:     s,
		lockTTL:   10 * time.Second,
		retryWait: 10 * time.Millisecond,
		timeout:   5 * time.Second,
	}
}

func (t *RedisTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	token := uuid.NewString()
	if err := t.lock(ctx, token); err != nil {
		return err
	}
	defer t.unlock(context.WithoutCancel(ctx), token)

	ctx, flush := txcontext.Deferred(ctx)
	pipe := t.store.client.TxPipeline()
	if err := fn(context.WithValue(ctx, pipelineKey{}, pipe)); err != nil {
		pipe.Discard()
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit registry writes")
	}
	flush()
	return nil
}

func (t *RedisTx) lock(ctx context.Context, token string) error {
	for {
		ok, err := t.store.client.SetNX(ctx, t.store.lockKey(), token, t.lockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: registry is locked")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock registry")
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: registry is locked")
		case <-time.After(t.retryWait):
		}
	}
}

func (t *RedisTx) unlock(ctx context.Context, token string) {
	_ = unlockScript.Run(ctx, t.store.client, []string{t.store.lockKey()}, token).Err()
}
