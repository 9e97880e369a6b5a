// Package locator remembers which room the client was in, so a restarted session or a
// shared link lands back in the same room.
package locator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DoyleJ11/durak-client/internal/protocol"
)

var (
	ErrNoRoom       = errors.New("no room in link")
	ErrBadRoomID    = errors.New("bad room id")
	ErrUnknownStore = errors.New("unknown locator kind")
)

const fragmentKey = "roomId"

// Store persists the last joined room. Load returns an unset Opt when nothing is stored.
type Store interface {
	Save(ctx context.Context, id protocol.RoomID) error
	Load(ctx context.Context) (protocol.Opt[protocol.RoomID], error)
}

// Fragment renders id the way it appears after '#' in a shared link.
func Fragment(id protocol.RoomID) string {
	return fragmentKey + "=" + strconv.FormatUint(uint64(id), 10)
}

// ParseFragment reads "roomId=12" (a leading '#' is allowed).
func ParseFragment(fragment string) (protocol.RoomID, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(fragment), "#"))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadRoomID, err)
	}
	raw := values.Get(fragmentKey)
	if raw == "" {
		return 0, ErrNoRoom
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadRoomID, raw)
	}
	return protocol.RoomID(n), nil
}

// FromLink extracts the room id from a shared link such as http://host/#roomId=12.
func FromLink(link string) (protocol.RoomID, error) {
	u, err := url.Parse(link)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadRoomID, err)
	}
	return ParseFragment(u.Fragment)
}

// Hint picks the room to rejoin: a shared link wins over the stored room.
func Hint(ctx context.Context, link string, store Store) (protocol.Opt[protocol.RoomID], error) {
	if link != "" {
		id, err := FromLink(link)
		if err != nil {
			return protocol.Opt[protocol.RoomID]{}, err
		}
		return protocol.Some(id), nil
	}
	if store == nil {
		return protocol.Opt[protocol.RoomID]{}, nil
	}
	return store.Load(ctx)
}

// ---------- memory ----------

type Memory struct {
	mu sync.Mutex
	id protocol.Opt[protocol.RoomID]
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(_ context.Context, id protocol.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = protocol.Some(id)
	return nil
}

func (m *Memory) Load(context.Context) (protocol.Opt[protocol.RoomID], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, nil
}

// ---------- file ----------

// File keeps the room as a link fragment ("roomId=12") in a small text file.
type File struct {
	Path string
}

func NewFile(path string) *File { return &File{Path: path} }

func (f *File) Save(_ context.Context, id protocol.RoomID) error {
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(Fragment(id)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write room file: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("write room file: %w", err)
	}
	return nil
}

func (f *File) Load(context.Context) (protocol.Opt[protocol.RoomID], error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return protocol.Opt[protocol.RoomID]{}, nil
	}
	if err != nil {
		return protocol.Opt[protocol.RoomID]{}, fmt.Errorf("read room file: %w", err)
	}
	id, err := ParseFragment(string(data))
	if errors.Is(err, ErrNoRoom) {
		return protocol.Opt[protocol.RoomID]{}, nil
	}
	if err != nil {
		return protocol.Opt[protocol.RoomID]{}, err
	}
	return protocol.Some(id), nil
}

// ---------- redis ----------

const (
	DefaultRedisKey = "durak:room"
	DefaultRedisTTL = 24 * time.Hour
)

// Redis shares the remembered room between clients on different machines for one nickname.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis connects with a redis:// URL. key is usually scoped by nickname.
func NewRedis(rawURL, key string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: redis.NewClient(opts), key: key, ttl: DefaultRedisTTL}, nil
}

func (r *Redis) Save(ctx context.Context, id protocol.RoomID) error {
	if err := r.client.Set(ctx, r.key, uint64(id), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context) (protocol.Opt[protocol.RoomID], error) {
	n, err := r.client.Get(ctx, r.key).Uint64()
	if errors.Is(err, redis.Nil) {
		return protocol.Opt[protocol.RoomID]{}, nil
	}
	if err != nil {
		return protocol.Opt[protocol.RoomID]{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return protocol.Some(protocol.RoomID(n)), nil
}

func (r *Redis) Close() error { return r.client.Close() }

// Open builds the store named by kind: "memory", "file" or "redis".
func Open(kind, path, redisURL, redisKey string) (Store, error) {
	switch kind {
	case "memory":
		return NewMemory(), nil
	case "file", "":
		return NewFile(path), nil
	case "redis":
		return NewRedis(redisURL, redisKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
	}
}
