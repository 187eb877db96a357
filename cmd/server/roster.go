package main

import (
	"fmt"
	"sync"

	"housecraft/internal/sim/house"
	"housecraft/internal/sim/tuning"
)

// roster is the development account registry. It mints a mobile the first
// time an account connects and plays the Banker and World roles the design
// engine expects from the surrounding entity framework.
type roster struct {
	tun tuning.Tuning

	mu      sync.Mutex
	mobiles map[string]*devMobile
	serial  uint32
}

func newRoster(tun tuning.Tuning) *roster {
	return &roster{
		tun:     tun,
		mobiles: make(map[string]*devMobile),
		serial:  0x00010000,
	}
}

// Resolve satisfies ws.Resolver: it binds the connection's net state to the
// account's mobile, creating the mobile on first contact.
func (r *roster) Resolve(account string, ns house.NetState) (house.Mobile, error) {
	if account == "" {
		return nil, fmt.Errorf("empty account")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mobiles[account]
	if !ok {
		r.serial++
		m = &devMobile{
			id:      account,
			serial:  r.serial,
			alive:   true,
			balance: r.tun.StartingBalance,
		}
		r.mobiles[account] = m
	}
	m.mu.Lock()
	m.ns = ns
	m.mu.Unlock()
	return m, nil
}

// Lookup returns the mobile for account, or nil.
func (r *roster) Lookup(account string) house.Mobile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.mobiles[account]; ok {
		return m
	}
	return nil
}

func (r *roster) Balance(m house.Mobile) int {
	if dm, ok := m.(*devMobile); ok {
		dm.mu.Lock()
		defer dm.mu.Unlock()
		return dm.balance
	}
	return 0
}

func (r *roster) Withdraw(m house.Mobile, amount int) bool {
	dm, ok := m.(*devMobile)
	if !ok {
		return false
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.balance < amount {
		return false
	}
	dm.balance -= amount
	return true
}

func (r *roster) Deposit(m house.Mobile, amount int) bool {
	dm, ok := m.(*devMobile)
	if !ok {
		return false
	}
	dm.mu.Lock()
	dm.balance += amount
	dm.mu.Unlock()
	return true
}

// The dev world has no free-standing items and only tracks mobiles it
// minted itself, so footprint scans return mobiles standing inside.
func (r *roster) ItemsIn(house.Rect2D) []house.Entity { return nil }

func (r *roster) MobilesIn(rect house.Rect2D) []house.Mobile {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []house.Mobile
	for _, m := range r.mobiles {
		if rect.Contains(m.Location()) {
			out = append(out, m)
		}
	}
	return out
}

// devMobile is the in-memory player used by the development roster.
type devMobile struct {
	id     string
	serial uint32

	mu      sync.Mutex
	loc     house.Point3D
	alive   bool
	hidden  bool
	balance int
	access  house.AccessLevel
	ns      house.NetState
}

func (m *devMobile) ID() string     { return m.id }
func (m *devMobile) Serial() uint32 { return m.serial }

func (m *devMobile) Location() house.Point3D {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loc
}

func (m *devMobile) SetLocation(p house.Point3D) {
	m.mu.Lock()
	m.loc = p
	m.mu.Unlock()
}

func (m *devMobile) Alive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alive
}

func (m *devMobile) InCombat() bool { return false }

func (m *devMobile) Access() house.AccessLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *devMobile) SetHidden(hidden bool) {
	m.mu.Lock()
	m.hidden = hidden
	m.mu.Unlock()
}

func (m *devMobile) NetState() house.NetState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ns
}

func (m *devMobile) SendLocalizedMessage(number int) {
	// Dev clients have no cliloc table; nothing to render server side.
	_ = number
}

func (m *devMobile) SendMessage(format string, args ...any) {
	_ = fmt.Sprintf(format, args...)
}
