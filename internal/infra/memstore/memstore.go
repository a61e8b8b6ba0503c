// Package memstore is an in-memory domain.Store.
//
// Journeys live in an arena: a growable slice indexed by JourneyID plus a
// secondary index from creator to ordered ids. Writes made inside Update are
// staged on the transaction and applied to the arena only when the callback
// returns nil, so a failed operation leaves no trace.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/showup-club/showup/internal/domain"
)

var (
	errClosed     = errors.New("memstore: store is closed")
	errReadOnly   = errors.New("memstore: write in read-only transaction")
	errNonDenseID = errors.New("memstore: journey id is not the next dense id")
)

// Store is the arena-backed store.
type Store struct {
	mu sync.RWMutex

	journeys  []domain.Journey
	byCreator map[domain.Identity][]domain.JourneyID
	balances  map[domain.Identity]domain.Amount
	entries   []domain.LedgerEntry
	events    []domain.Event
	feeOwner  domain.Identity
	hasOwner  bool
	closed    bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byCreator: make(map[domain.Identity][]domain.JourneyID),
		balances:  make(map[domain.Identity]domain.Amount),
	}
}

// Update runs fn against a staged transaction and commits it on success.
func (s *Store) Update(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	tx := newTx(s, true)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// View runs fn against a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return fn(newTx(s, false))
}

// Close marks the store unusable.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// ─── Transaction ────────────────────────────────────────────────────────────

type tx struct {
	s        *Store
	writable bool

	inserted []domain.Journey
	updated  map[domain.JourneyID]domain.Journey
	balances map[domain.Identity]domain.Amount
	entries  []domain.LedgerEntry
	events   []domain.Event
	feeOwner *domain.Identity
}

func newTx(s *Store, writable bool) *tx {
	return &tx{
		s:        s,
		writable: writable,
		updated:  make(map[domain.JourneyID]domain.Journey),
		balances: make(map[domain.Identity]domain.Amount),
	}
}

func (t *tx) Journeys() domain.JourneyStore { return journeyView{t} }
func (t *tx) Ledger() domain.LedgerStore    { return ledgerView{t} }
func (t *tx) Access() domain.AccessStore    { return accessView{t} }
func (t *tx) Events() domain.EventLog       { return eventView{t} }

func (t *tx) commit() {
	s := t.s
	for _, j := range t.inserted {
		s.journeys = append(s.journeys, j)
		s.byCreator[j.Creator] = append(s.byCreator[j.Creator], j.ID)
	}
	for id, j := range t.updated {
		s.journeys[id] = j
	}
	for who, bal := range t.balances {
		s.balances[who] = bal
	}
	s.entries = append(s.entries, t.entries...)
	s.events = append(s.events, t.events...)
	if t.feeOwner != nil {
		s.feeOwner = *t.feeOwner
		s.hasOwner = true
	}
}

func (t *tx) checkWritable() error {
	if !t.writable {
		return errReadOnly
	}
	return nil
}

// journey returns the staged or committed record for id.
func (t *tx) journey(id domain.JourneyID) (domain.Journey, bool) {
	if j, ok := t.updated[id]; ok {
		return j, true
	}
	n := domain.JourneyID(len(t.s.journeys))
	if id >= 0 && id < n {
		return t.s.journeys[id], true
	}
	if i := id - n; i >= 0 && int(i) < len(t.inserted) {
		return t.inserted[i], true
	}
	return domain.Journey{}, false
}

func (t *tx) balance(who domain.Identity) domain.Amount {
	if b, ok := t.balances[who]; ok {
		return b
	}
	return t.s.balances[who]
}

// ─── Journeys ───────────────────────────────────────────────────────────────

type journeyView struct{ t *tx }

func (v journeyView) NextJourneyID(_ context.Context) (domain.JourneyID, error) {
	return domain.JourneyID(len(v.t.s.journeys) + len(v.t.inserted)), nil
}

func (v journeyView) InsertJourney(ctx context.Context, j domain.Journey) error {
	if err := v.t.checkWritable(); err != nil {
		return err
	}
	next, _ := v.NextJourneyID(ctx)
	if j.ID != next {
		return errNonDenseID
	}
	v.t.inserted = append(v.t.inserted, j)
	return nil
}

func (v journeyView) GetJourney(_ context.Context, id domain.JourneyID) (*domain.Journey, error) {
	j, ok := v.t.journey(id)
	if !ok {
		return nil, domain.ErrJourneyNotFound
	}
	return &j, nil
}

func (v journeyView) UpdateProgress(_ context.Context, j domain.Journey) error {
	if err := v.t.checkWritable(); err != nil {
		return err
	}
	cur, ok := v.t.journey(j.ID)
	if !ok {
		return domain.ErrJourneyNotFound
	}
	cur.CurrentValue = j.CurrentValue
	cur.Completed = j.Completed

	n := domain.JourneyID(len(v.t.s.journeys))
	if j.ID >= n {
		v.t.inserted[j.ID-n] = cur
		return nil
	}
	v.t.updated[j.ID] = cur
	return nil
}

func (v journeyView) JourneyIDsByCreator(_ context.Context, creator domain.Identity) ([]domain.JourneyID, error) {
	ids := append([]domain.JourneyID{}, v.t.s.byCreator[creator]...)
	for _, j := range v.t.inserted {
		if j.Creator == creator {
			ids = append(ids, j.ID)
		}
	}
	return ids, nil
}

func (v journeyView) AllJourneyIDs(_ context.Context) ([]domain.JourneyID, error) {
	total := len(v.t.s.journeys) + len(v.t.inserted)
	ids := make([]domain.JourneyID, total)
	for i := range ids {
		ids[i] = domain.JourneyID(i)
	}
	return ids, nil
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

type ledgerView struct{ t *tx }

func (v ledgerView) Credit(_ context.Context, p domain.Posting) (domain.LedgerEntry, error) {
	if err := v.t.checkWritable(); err != nil {
		return domain.LedgerEntry{}, err
	}
	if p.Amount < 0 {
		return domain.LedgerEntry{}, domain.Invalid("amount")
	}
	bal := v.t.balance(p.Account)
	if bal > domain.MaxAmount-p.Amount {
		return domain.LedgerEntry{}, domain.ErrOverflow
	}
	return v.post(p, domain.EntryCredit, bal+p.Amount), nil
}

func (v ledgerView) Debit(_ context.Context, p domain.Posting) (domain.LedgerEntry, error) {
	if err := v.t.checkWritable(); err != nil {
		return domain.LedgerEntry{}, err
	}
	if p.Amount < 0 {
		return domain.LedgerEntry{}, domain.Invalid("amount")
	}
	bal := v.t.balance(p.Account)
	if p.Amount > bal {
		return domain.LedgerEntry{}, domain.ErrInsufficientBalance
	}
	return v.post(p, domain.EntryDebit, bal-p.Amount), nil
}

func (v ledgerView) post(p domain.Posting, side domain.EntryType, balance domain.Amount) domain.LedgerEntry {
	v.t.balances[p.Account] = balance
	e := domain.LedgerEntry{
		ID:          int64(len(v.t.s.entries)+len(v.t.entries)) + 1,
		Timestamp:   p.At,
		Type:        p.Type,
		EntryType:   side,
		Account:     p.Account,
		Amount:      p.Amount,
		JourneyID:   p.JourneyID,
		Description: p.Description,
		Balance:     balance,
	}
	v.t.entries = append(v.t.entries, e)
	return e
}

func (v ledgerView) BalanceOf(_ context.Context, who domain.Identity) (domain.Amount, error) {
	return v.t.balance(who), nil
}

func (v ledgerView) TotalBalance(_ context.Context) (domain.Amount, error) {
	var total domain.Amount
	for who, bal := range v.t.s.balances {
		if _, staged := v.t.balances[who]; !staged {
			total += bal
		}
	}
	for _, bal := range v.t.balances {
		total += bal
	}
	return total, nil
}

func (v ledgerView) Statement(_ context.Context, who domain.Identity) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, list := range [][]domain.LedgerEntry{v.t.s.entries, v.t.entries} {
		for _, e := range list {
			if e.Account == who {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// ─── Access ─────────────────────────────────────────────────────────────────

type accessView struct{ t *tx }

func (v accessView) FeeBeneficiary(_ context.Context) (domain.Identity, error) {
	if v.t.feeOwner != nil {
		return *v.t.feeOwner, nil
	}
	if !v.t.s.hasOwner {
		return "", domain.ErrNoFeeBeneficiary
	}
	return v.t.s.feeOwner, nil
}

func (v accessView) SetFeeBeneficiary(_ context.Context, who domain.Identity) error {
	if err := v.t.checkWritable(); err != nil {
		return err
	}
	v.t.feeOwner = &who
	return nil
}

// ─── Events ─────────────────────────────────────────────────────────────────

type eventView struct{ t *tx }

func (v eventView) AppendEvent(_ context.Context, ev domain.Event) error {
	if err := v.t.checkWritable(); err != nil {
		return err
	}
	v.t.events = append(v.t.events, ev)
	return nil
}

func (v eventView) EventsForJourney(_ context.Context, id domain.JourneyID) ([]domain.Event, error) {
	var out []domain.Event
	for _, list := range [][]domain.Event{v.t.s.events, v.t.events} {
		for _, ev := range list {
			if ev.JourneyID == id {
				out = append(out, ev)
			}
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].At.Before(out[k].At) })
	return out, nil
}
