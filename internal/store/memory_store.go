package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"neoftp/internal/core/model"
)

type hostKey struct {
	host string
	port int
}

type credKey struct {
	username string
	password string
}

type relKey struct {
	credentialID uint64
	hostID       uint64
}

// MemoryStore 进程内存储，不落盘 (driver=memory)
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint64
	hosts  map[hostKey]*model.HostRecord
	creds  map[credKey]*model.CredentialRecord
	rels   map[relKey]*model.LoginRelation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hosts: make(map[hostKey]*model.HostRecord),
		creds: make(map[credKey]*model.CredentialRecord),
		rels:  make(map[relKey]*model.LoginRelation),
	}
}

func (m *MemoryStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) AddHost(ctx context.Context, host string, port int, banner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addHost(host, port, banner)
	return nil
}

func (m *MemoryStore) addHost(host string, port int, banner string) {
	k := hostKey{host, port}
	if h, ok := m.hosts[k]; ok {
		h.Banner = banner
		h.UpdatedAt = time.Now()
		return
	}
	m.hosts[k] = &model.HostRecord{ID: m.id(), Host: host, Port: port, Banner: banner, UpdatedAt: time.Now()}
}

func (m *MemoryStore) AddCredential(ctx context.Context, username, password string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCredential(username, password), nil
}

func (m *MemoryStore) addCredential(username, password string) uint64 {
	k := credKey{username, password}
	if c, ok := m.creds[k]; ok {
		return c.ID
	}
	c := &model.CredentialRecord{ID: m.id(), Username: username, Password: password}
	m.creds[k] = c
	return c.ID
}

func (m *MemoryStore) GetHostID(ctx context.Context, host string, port int) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getHostID(host, port)
}

func (m *MemoryStore) getHostID(host string, port int) (uint64, error) {
	if h, ok := m.hosts[hostKey{host, port}]; ok {
		return h.ID, nil
	}
	return 0, ErrHostNotFound
}

func (m *MemoryStore) AddLoginRelation(ctx context.Context, credentialID, hostID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLoginRelation(credentialID, hostID)
	return nil
}

func (m *MemoryStore) addLoginRelation(credentialID, hostID uint64) {
	k := relKey{credentialID, hostID}
	if _, ok := m.rels[k]; ok {
		return
	}
	m.rels[k] = &model.LoginRelation{ID: m.id(), CredentialID: credentialID, HostID: hostID}
}

// WithTx 在锁内执行 fn，fn 失败时丢弃其间的所有写入
func (m *MemoryStore) WithTx(ctx context.Context, fn func(Sink) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.clone()
	if err := fn(memoryTx{m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *MemoryStore) clone() *MemoryStore {
	c := NewMemoryStore()
	c.nextID = m.nextID
	for k, v := range m.hosts {
		h := *v
		c.hosts[k] = &h
	}
	for k, v := range m.creds {
		cr := *v
		c.creds[k] = &cr
	}
	for k, v := range m.rels {
		r := *v
		c.rels[k] = &r
	}
	return c
}

func (m *MemoryStore) restore(s *MemoryStore) {
	m.nextID = s.nextID
	m.hosts = s.hosts
	m.creds = s.creds
	m.rels = s.rels
}

func (m *MemoryStore) ListHosts(ctx context.Context) ([]model.HostRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.HostRecord, 0, len(m.hosts))
	for _, h := range m.hosts {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListCredentials(ctx context.Context) ([]model.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	logins := make(map[uint64]int)
	for k := range m.rels {
		logins[k.credentialID]++
	}
	out := make([]model.CredentialRecord, 0, len(m.creds))
	for _, c := range m.creds {
		rec := *c
		rec.Logins = logins[c.ID]
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListLoginRelations(ctx context.Context) ([]model.LoginRelation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.LoginRelation, 0, len(m.rels))
	for _, r := range m.rels {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

// memoryTx 事务内视图，调用方已持有锁
type memoryTx struct{ m *MemoryStore }

func (t memoryTx) AddHost(ctx context.Context, host string, port int, banner string) error {
	t.m.addHost(host, port, banner)
	return nil
}

func (t memoryTx) AddCredential(ctx context.Context, username, password string) (uint64, error) {
	return t.m.addCredential(username, password), nil
}

func (t memoryTx) GetHostID(ctx context.Context, host string, port int) (uint64, error) {
	return t.m.getHostID(host, port)
}

func (t memoryTx) AddLoginRelation(ctx context.Context, credentialID, hostID uint64) error {
	t.m.addLoginRelation(credentialID, hostID)
	return nil
}
