// Package testutil provides in-memory repository implementations for testing
// the application layer.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"talao/internal/domain/allocation"
	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/payment"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/db"
	"talao/internal/shared/logger"
)

// NewTxManager returns a transaction manager backed by an in-memory database.
// The repositories under test are in-memory mocks, so the transaction itself
// only provides the commit/rollback plumbing the use cases expect.
func NewTxManager() (*db.TransactionManager, error) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return db.NewTransactionManager(gormDB), nil
}

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() logger.Interface { return &NopLogger{} }

func (l *NopLogger) Debug(msg string, args ...any)                   {}
func (l *NopLogger) Info(msg string, args ...any)                    {}
func (l *NopLogger) Warn(msg string, args ...any)                    {}
func (l *NopLogger) Error(msg string, args ...any)                   {}
func (l *NopLogger) With(args ...any) logger.Interface               { return l }
func (l *NopLogger) Named(name string) logger.Interface              { return l }
func (l *NopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *NopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *NopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *NopLogger) Errorw(msg string, keysAndValues ...interface{}) {}

// MockEventRepository stores events by ID.
type MockEventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*event.Event
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{events: make(map[uuid.UUID]*event.Event)}
}

func (m *MockEventRepository) AddEvent(ev *event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID()] = ev
}

func (m *MockEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ev, ok := m.events[id]; ok {
		return ev, nil
	}
	return nil, fmt.Errorf("event not found")
}

// MockTicketRangeRepository stores ranges in memory.
type MockTicketRangeRepository struct {
	mu     sync.RWMutex
	ranges map[uuid.UUID]*ticketrange.TicketRange

	SaveErr error
}

func NewMockTicketRangeRepository() *MockTicketRangeRepository {
	return &MockTicketRangeRepository{ranges: make(map[uuid.UUID]*ticketrange.TicketRange)}
}

func (m *MockTicketRangeRepository) AddRange(rng *ticketrange.TicketRange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranges[rng.ID()] = rng
}

func (m *MockTicketRangeRepository) Save(ctx context.Context, rng *ticketrange.TicketRange) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.AddRange(rng)
	return nil
}

func (m *MockTicketRangeRepository) GetByID(ctx context.Context, id uuid.UUID) (*ticketrange.TicketRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rng, ok := m.ranges[id]; ok {
		return rng, nil
	}
	return nil, fmt.Errorf("ticket range not found")
}

func (m *MockTicketRangeRepository) ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*ticketrange.TicketRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*ticketrange.TicketRange
	for _, rng := range m.ranges {
		if rng.EventID() == eventID && !rng.IsDeleted() {
			result = append(result, rng)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start() < result[j].Start() })
	return result, nil
}

func (m *MockTicketRangeRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*ticketrange.TicketRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*ticketrange.TicketRange
	for _, rng := range m.ranges {
		if rng.EventID() == eventID {
			result = append(result, rng)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start() < result[j].Start() })
	return result, nil
}

func (m *MockTicketRangeRepository) FindOverlapping(ctx context.Context, eventID uuid.UUID, start, end int, excludeID *uuid.UUID) (*ticketrange.TicketRange, error) {
	candidates, _ := m.ListActiveByEvent(ctx, eventID)
	for _, rng := range candidates {
		if excludeID != nil && rng.ID() == *excludeID {
			continue
		}
		if rng.Overlaps(start, end) {
			return rng, nil
		}
	}
	return nil, nil
}

func (m *MockTicketRangeRepository) UpdateBounds(ctx context.Context, id uuid.UUID, start, end int) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.ranges[id]; !ok {
		return fmt.Errorf("ticket range not found")
	}
	return nil
}

func (m *MockTicketRangeRepository) SetGeneratedAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rng, ok := m.ranges[id]
	if !ok {
		return fmt.Errorf("ticket range not found")
	}
	rng.MarkGenerated(at)
	return nil
}

// MockMemberRepository stores members in memory.
type MockMemberRepository struct {
	mu      sync.RWMutex
	members map[uuid.UUID]*member.Member
}

func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{members: make(map[uuid.UUID]*member.Member)}
}

func (m *MockMemberRepository) AddMember(mb *member.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[mb.ID()] = mb
}

func (m *MockMemberRepository) Save(ctx context.Context, mb *member.Member) error {
	m.AddMember(mb)
	return nil
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mb, ok := m.members[id]; ok {
		return mb, nil
	}
	return nil, fmt.Errorf("member not found")
}

func (m *MockMemberRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*member.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*member.Member
	for _, mb := range m.members {
		if mb.EventID() == eventID {
			result = append(result, mb)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		oi, oj := result[i].Order(), result[j].Order()
		switch {
		case oi == nil && oj == nil:
			return result[i].CreatedAt().Before(result[j].CreatedAt())
		case oi == nil:
			return false
		case oj == nil:
			return true
		case *oi != *oj:
			return *oi < *oj
		default:
			return result[i].CreatedAt().Before(result[j].CreatedAt())
		}
	})
	return result, nil
}

func (m *MockMemberRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	members, _ := m.ListByEvent(ctx, eventID)
	return int64(len(members)), nil
}

func (m *MockMemberRepository) UpdateConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.members[id]; !ok {
		return fmt.Errorf("member not found")
	}
	return nil
}

// MockTicketRepository stores tickets in memory. RangeTypes maps range IDs to
// their type label for the per-type counting queries.
type MockTicketRepository struct {
	mu         sync.RWMutex
	tickets    map[uuid.UUID]*ticket.Ticket
	RangeTypes map[uuid.UUID]string

	AssignBatchErr error
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{
		tickets:    make(map[uuid.UUID]*ticket.Ticket),
		RangeTypes: make(map[uuid.UUID]string),
	}
}

func (m *MockTicketRepository) AddTicket(t *ticket.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.ID()] = t
}

func (m *MockTicketRepository) All() []*ticket.Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*ticket.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		result = append(result, t)
	}
	return result
}

func (m *MockTicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tickets {
		if existing.EventID() == t.EventID() && existing.Number() == t.Number() && existing.ID() != t.ID() {
			return fmt.Errorf("UNIQUE constraint failed: tickets.event_id, tickets.number")
		}
	}
	m.tickets[t.ID()] = t
	return nil
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*ticket.Ticket) error {
	for _, t := range tickets {
		if err := m.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tickets[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("ticket not found")
}

func (m *MockTicketRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*ticket.Ticket
	for _, id := range ids {
		if t, ok := m.tickets[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTicketRepository) GetByNumber(ctx context.Context, eventID uuid.UUID, number int) (*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tickets {
		if t.EventID() == eventID && t.Number() == number {
			return t, nil
		}
	}
	return nil, fmt.Errorf("ticket not found")
}

func (m *MockTicketRepository) ExistingNumbers(ctx context.Context, eventID uuid.UUID, numbers []int) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		wanted[n] = struct{}{}
	}
	var existing []int
	for _, t := range m.tickets {
		if t.EventID() != eventID {
			continue
		}
		if _, ok := wanted[t.Number()]; ok {
			existing = append(existing, t.Number())
		}
	}
	sort.Ints(existing)
	return existing, nil
}

func (m *MockTicketRepository) ListUnassignedByEvent(ctx context.Context, eventID uuid.UUID) ([]*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*ticket.Ticket
	for _, t := range m.tickets {
		if t.EventID() == eventID && !t.IsAssigned() {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number() < result[j].Number() })
	return result, nil
}

func (m *MockTicketRepository) AssignBatch(ctx context.Context, ids []uuid.UUID, memberID uuid.UUID, allocationID *uuid.UUID) error {
	if m.AssignBatchErr != nil {
		return m.AssignBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		t, ok := m.tickets[id]
		if !ok {
			return fmt.Errorf("ticket not found")
		}
		if err := t.AssignTo(memberID, allocationID); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockTicketRepository) Unassign(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return fmt.Errorf("ticket not found")
	}
	if t.IsAssigned() {
		if _, err := t.Detach(); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockTicketRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return false, fmt.Errorf("ticket not found")
	}
	if t.IsDelivered() {
		return false, nil
	}
	if err := t.MarkDelivered(at); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MockTicketRepository) SetReturned(ctx context.Context, id uuid.UUID, returned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return fmt.Errorf("ticket not found")
	}
	if t.Returned() != returned {
		t.ToggleReturned()
	}
	return nil
}

func (m *MockTicketRepository) matches(t *ticket.Ticket, filter ticket.CountFilter) bool {
	if filter.LinkedOnly && !t.IsAssigned() {
		return false
	}
	if filter.Returned != nil && t.Returned() != *filter.Returned {
		return false
	}
	if filter.Delivered != nil && t.IsDelivered() != *filter.Delivered {
		return false
	}
	if filter.Created != nil && t.Created() != *filter.Created {
		return false
	}
	return true
}

func (m *MockTicketRepository) CountByEvent(ctx context.Context, eventID uuid.UUID, filter ticket.CountFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, t := range m.tickets {
		if t.EventID() == eventID && m.matches(t, filter) {
			count++
		}
	}
	return count, nil
}

func (m *MockTicketRepository) CountPerType(ctx context.Context, eventID uuid.UUID, filter ticket.CountFilter) ([]ticket.TypeCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	perType := make(map[string]int64)
	for _, t := range m.tickets {
		if t.EventID() != eventID || !m.matches(t, filter) {
			continue
		}
		rangeType := "UNSPECIFIED"
		if t.RangeID() != nil {
			if rt, ok := m.RangeTypes[*t.RangeID()]; ok {
				rangeType = rt
			}
		}
		perType[rangeType]++
	}
	result := make([]ticket.TypeCount, 0, len(perType))
	for rangeType, count := range perType {
		result = append(result, ticket.TypeCount{Type: rangeType, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result, nil
}

func (m *MockTicketRepository) ListBindings(ctx context.Context, eventID uuid.UUID) ([]ticket.Binding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []ticket.Binding
	for _, t := range m.tickets {
		if t.EventID() != eventID {
			continue
		}
		result = append(result, ticket.Binding{
			TicketID: t.ID(),
			MemberID: t.MemberID(),
			RangeID:  t.RangeID(),
			Returned: t.Returned(),
		})
	}
	return result, nil
}

func (m *MockTicketRepository) ListUnreturnedByMember(ctx context.Context, memberID uuid.UUID) ([]ticket.Binding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []ticket.Binding
	for _, t := range m.tickets {
		if t.MemberID() == nil || *t.MemberID() != memberID || t.Returned() {
			continue
		}
		result = append(result, ticket.Binding{
			TicketID: t.ID(),
			MemberID: t.MemberID(),
			RangeID:  t.RangeID(),
			Returned: t.Returned(),
		})
	}
	return result, nil
}

func (m *MockTicketRepository) CountPerMemberRange(ctx context.Context, eventID uuid.UUID) ([]ticket.MemberRangeCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type key struct {
		memberID uuid.UUID
		rangeID  uuid.UUID
	}
	counts := make(map[key]int)
	for _, t := range m.tickets {
		if t.EventID() != eventID || t.MemberID() == nil || t.RangeID() == nil {
			continue
		}
		counts[key{*t.MemberID(), *t.RangeID()}]++
	}
	result := make([]ticket.MemberRangeCount, 0, len(counts))
	for k, count := range counts {
		result = append(result, ticket.MemberRangeCount{MemberID: k.memberID, RangeID: k.rangeID, Count: count})
	}
	return result, nil
}

// MockTicketFlowRepository records appended flows.
type MockTicketFlowRepository struct {
	mu    sync.RWMutex
	flows []*ticket.Flow
}

func NewMockTicketFlowRepository() *MockTicketFlowRepository {
	return &MockTicketFlowRepository{}
}

func (m *MockTicketFlowRepository) Append(ctx context.Context, f *ticket.Flow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = append(m.flows, f)
	return nil
}

func (m *MockTicketFlowRepository) AppendBatch(ctx context.Context, flows []*ticket.Flow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = append(m.flows, flows...)
	return nil
}

func (m *MockTicketFlowRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*ticket.Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*ticket.Flow
	for _, f := range m.flows {
		if f.TicketID() == ticketID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *MockTicketFlowRepository) CountByTicket(ctx context.Context, ticketID uuid.UUID) (int64, error) {
	flows, _ := m.ListByTicket(ctx, ticketID)
	return int64(len(flows)), nil
}

func (m *MockTicketFlowRepository) Flows() []*ticket.Flow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*ticket.Flow, len(m.flows))
	copy(result, m.flows)
	return result
}

// MockAllocationRepository stores allocations keyed by (member, range).
// Deficits, when set, is returned as-is by ListDeficitsByEvent.
type MockAllocationRepository struct {
	mu          sync.RWMutex
	allocations map[uuid.UUID]*allocation.Allocation
	Deficits    []allocation.Deficit
}

func NewMockAllocationRepository() *MockAllocationRepository {
	return &MockAllocationRepository{allocations: make(map[uuid.UUID]*allocation.Allocation)}
}

func (m *MockAllocationRepository) AddAllocation(a *allocation.Allocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations[a.ID()] = a
}

func (m *MockAllocationRepository) Upsert(ctx context.Context, a *allocation.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.allocations {
		if existing.MemberID() == a.MemberID() && existing.RangeID() == a.RangeID() {
			delete(m.allocations, id)
		}
	}
	m.allocations[a.ID()] = a
	return nil
}

func (m *MockAllocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.allocations[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("allocation not found")
}

func (m *MockAllocationRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*allocation.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*allocation.Allocation
	for _, a := range m.allocations {
		if a.MemberID() == memberID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *MockAllocationRepository) ListDeficitsByEvent(ctx context.Context, eventID uuid.UUID) ([]allocation.Deficit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Deficits, nil
}

func (m *MockAllocationRepository) All() []*allocation.Allocation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*allocation.Allocation, 0, len(m.allocations))
	for _, a := range m.allocations {
		result = append(result, a)
	}
	return result
}

// MockPaymentRepository stores payments in memory.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*payment.Payment
	// memberEvents maps members to their event for the event-scoped sums.
	memberEvents map[uuid.UUID]uuid.UUID
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments:     make(map[uuid.UUID]*payment.Payment),
		memberEvents: make(map[uuid.UUID]uuid.UUID),
	}
}

// LinkMember binds a member to an event so event-level sums can resolve it.
func (m *MockPaymentRepository) LinkMember(memberID, eventID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberEvents[memberID] = eventID
}

func (m *MockPaymentRepository) AddPayment(p *payment.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID()] = p
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	m.AddPayment(p)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("payment not found")
}

func (m *MockPaymentRepository) SumActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, p := range m.payments {
		if p.MemberID() == memberID && !p.IsDeleted() {
			total += p.Amount()
		}
	}
	return total, nil
}

func (m *MockPaymentRepository) SumActiveByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, p := range m.payments {
		if m.memberEvents[p.MemberID()] == eventID && !p.IsDeleted() {
			total += p.Amount()
		}
	}
	return total, nil
}

func (m *MockPaymentRepository) SumActiveByEventBetween(ctx context.Context, eventID uuid.UUID, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, p := range m.payments {
		if m.memberEvents[p.MemberID()] != eventID || p.IsDeleted() {
			continue
		}
		if p.PayedAt().Before(from) || p.PayedAt().After(to) {
			continue
		}
		total += p.Amount()
	}
	return total, nil
}

func (m *MockPaymentRepository) SumActivePerMember(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[uuid.UUID]int)
	for _, p := range m.payments {
		if m.memberEvents[p.MemberID()] == eventID && !p.IsDeleted() {
			result[p.MemberID()] += p.Amount()
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return fmt.Errorf("payment not found")
	}
	deleted, err := payment.ReconstructPayment(
		p.ID(), p.MemberID(), p.Amount(), p.Type(), p.VisionID(), p.PayedAt(), &at, p.CreatedAt(),
	)
	if err != nil {
		return err
	}
	m.payments[id] = deleted
	return nil
}
