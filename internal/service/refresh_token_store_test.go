package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeKVClient struct {
	setKey    string
	setVal    interface{}
	setTTL    time.Duration
	existsKey []string
	delKey    []string

	setErr    error
	existsErr error
	delErr    error
	existsN   int64
}

func (f *fakeKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.setKey = key
	f.setVal = value
	f.setTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if f.setErr != nil {
		cmd.SetErr(f.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeKVClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	f.existsKey = keys
	cmd := redis.NewIntCmd(ctx)
	if f.existsErr != nil {
		cmd.SetErr(f.existsErr)
		return cmd
	}
	cmd.SetVal(f.existsN)
	return cmd
}

func (f *fakeKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.delKey = keys
	cmd := redis.NewIntCmd(ctx)
	if f.delErr != nil {
		cmd.SetErr(f.delErr)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

var _ redisKVClient = (*fakeKVClient)(nil)

func TestMemoryRefreshTokenStoreLifecycle(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	ok, err := store.Exists("no-such-jti")
	if err != nil || ok {
		t.Fatalf("jti inexistente: esperaba false,nil; got %v,%v", ok, err)
	}

	if err := store.Store("jti-a", "user-1", 40*time.Millisecond); err != nil {
		t.Fatalf("store fallo: %v", err)
	}
	ok, err = store.Exists("jti-a")
	if err != nil || !ok {
		t.Fatalf("esperaba jti vigente, got %v,%v", ok, err)
	}

	time.Sleep(60 * time.Millisecond)
	ok, err = store.Exists("jti-a")
	if err != nil || ok {
		t.Fatalf("esperaba jti vencido, got %v,%v", ok, err)
	}

	if err := store.Store("", "user-1", time.Minute); err != nil {
		t.Fatalf("jti vacio debe ser no-op, got %v", err)
	}
	if err := store.Store("jti-b", "user-1", time.Minute); err != nil {
		t.Fatalf("store fallo: %v", err)
	}
	if err := store.Revoke("jti-b"); err != nil {
		t.Fatalf("revoke fallo: %v", err)
	}
	ok, err = store.Exists("jti-b")
	if err != nil || ok {
		t.Fatalf("esperaba jti revocado ausente, got %v,%v", ok, err)
	}
}

func TestMemoryRefreshTokenStoreSweepsExpired(t *testing.T) {
	store := NewMemoryRefreshTokenStore().(*memoryRefreshTokenStore)

	for i := 0; i < memoryStoreSweepThreshold; i++ {
		if err := store.Store(fmt.Sprintf("stale-%d", i), "user-1", -time.Second); err != nil {
			t.Fatalf("store fallo: %v", err)
		}
	}
	if err := store.Store("fresh", "user-1", time.Minute); err != nil {
		t.Fatalf("store fallo: %v", err)
	}

	store.mu.Lock()
	size := len(store.items)
	store.mu.Unlock()
	if size != 1 {
		t.Fatalf("esperaba barrido de entradas vencidas, quedan %d", size)
	}

	ok, err := store.Exists("fresh")
	if err != nil || !ok {
		t.Fatalf("el jti vigente debe sobrevivir al barrido, got %v,%v", ok, err)
	}
}

func TestRedisRefreshTokenStoreKeysAndTTL(t *testing.T) {
	fake := &fakeKVClient{existsN: 1}
	store := &redisRefreshTokenStore{
		client: fake,
		prefix: "auth:refresh:",
	}

	if err := store.Store(" jti-x ", "user-1", 0); err != nil {
		t.Fatalf("store fallo: %v", err)
	}
	if fake.setKey != "auth:refresh:jti-x" {
		t.Fatalf("clave inesperada: %q", fake.setKey)
	}
	if fake.setTTL <= 0 {
		t.Fatalf("esperaba TTL positivo por defecto, got %v", fake.setTTL)
	}

	ok, err := store.Exists(" jti-x ")
	if err != nil || !ok {
		t.Fatalf("esperaba exists true,nil; got %v,%v", ok, err)
	}
	if len(fake.existsKey) != 1 || fake.existsKey[0] != "auth:refresh:jti-x" {
		t.Fatalf("clave exists inesperada: %+v", fake.existsKey)
	}

	if err := store.Revoke(" jti-x "); err != nil {
		t.Fatalf("revoke fallo: %v", err)
	}
	if len(fake.delKey) != 1 || fake.delKey[0] != "auth:refresh:jti-x" {
		t.Fatalf("clave del inesperada: %+v", fake.delKey)
	}
}

func TestRedisRefreshTokenStoreErrors(t *testing.T) {
	fake := &fakeKVClient{
		setErr:    errors.New("set roto"),
		existsErr: errors.New("exists roto"),
		delErr:    errors.New("del roto"),
	}
	store := &redisRefreshTokenStore{
		client: fake,
		prefix: "auth:refresh:",
	}

	if err := store.Store("", "user-1", time.Minute); err != nil {
		t.Fatalf("jti vacio debe ser no-op, got %v", err)
	}
	ok, err := store.Exists("")
	if err != nil || ok {
		t.Fatalf("jti vacio: esperaba false,nil; got %v,%v", ok, err)
	}
	if err := store.Revoke(""); err != nil {
		t.Fatalf("jti vacio revoke debe ser no-op, got %v", err)
	}

	if err := store.Store("jti-y", "user-1", time.Minute); err == nil {
		t.Fatalf("esperaba error de store")
	}
	if _, err := store.Exists("jti-y"); err == nil {
		t.Fatalf("esperaba error de exists")
	}
	if err := store.Revoke("jti-y"); err == nil {
		t.Fatalf("esperaba error de revoke")
	}
}
