// Package view implements the filter/sort pipeline over the loaded invoice set.
package view

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

// Source delivers the whole invoice table in one call.
type Source interface {
	FetchAll(ctx context.Context) ([]domain.Invoice, error)
	Name() string
}

// Publisher receives every snapshot produced by a mutator.
type Publisher interface {
	Publish(s domain.Snapshot)
}

// Recorder collects operational metrics of the view.
type Recorder interface {
	ObserveLoad(d time.Duration, records int, err error)
	IncFilter()
	IncSort(field domain.SortField)
	SetViewSize(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(time.Duration, int, error) {}
func (nopRecorder) IncFilter()                            {}
func (nopRecorder) IncSort(domain.SortField)              {}
func (nopRecorder) SetViewSize(int)                       {}

type sortConfig struct {
	key       domain.SortField
	set       bool
	direction domain.Direction
}

// View holds the full invoice set, the filter text and the sort configuration,
// and derives the displayed sequence from them. Load, SetFilter and SortBy are
// its only mutators; each is atomic with respect to the others.
type View struct {
	mu       sync.Mutex
	full     []domain.Invoice
	derived  []domain.Invoice
	filter   string
	sort     sortConfig
	loading  bool
	collator *collate.Collator
	lang     language.Tag

	sortOnFilter bool
	publisher    Publisher
	recorder     Recorder
	logger       *zap.Logger
	now          func() time.Time
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger used to report load failures.
func WithLogger(l *zap.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithPublisher sets the snapshot publisher.
func WithPublisher(p Publisher) Option {
	return func(v *View) {
		v.publisher = p
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(v *View) {
		if r != nil {
			v.recorder = r
		}
	}
}

// WithLocale sets the locale used for text comparison and case folding.
func WithLocale(tag language.Tag) Option {
	return func(v *View) {
		v.lang = tag
	}
}

// WithSortOnFilter makes SetFilter re-apply the active sort to the filtered result.
// By default filtering keeps full-set order.
func WithSortOnFilter(enabled bool) Option {
	return func(v *View) {
		v.sortOnFilter = enabled
	}
}

// New creates an empty view in the loading state.
func New(opts ...Option) *View {
	v := &View{
		loading:  true,
		lang:     language.Russian,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.collator = collate.New(v.lang)

	return v
}

// Load fetches the full record set from src and re-applies the current filter.
// A fetch failure is logged and leaves the view empty; it is never returned.
// The loading flag is cleared after the first load completes either way.
func (v *View) Load(ctx context.Context, src Source) domain.Snapshot {
	started := time.Now()
	records, err := src.FetchAll(ctx)
	if err != nil {
		err = &domain.SourceFetchError{Source: src.Name(), Err: err}
		records = nil
	}
	elapsed := time.Since(started)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.logger.Error("failed to load invoices", zap.String("source", src.Name()), zap.Error(err))
	} else {
		v.logger.Info("invoices loaded", zap.String("source", src.Name()), zap.Int("count", len(records)))
	}

	v.full = domain.CloneInvoices(records)
	v.derived = v.applyFilter()
	if v.sortOnFilter {
		v.applySort()
	}
	v.loading = false

	v.recorder.ObserveLoad(elapsed, len(records), err)

	return v.publishLocked()
}

// SetFilter sets the user name filter and recomputes the derived view from the
// full record set.
func (v *View) SetFilter(text string) domain.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter = text
	v.derived = v.applyFilter()
	if v.sortOnFilter {
		v.applySort()
	}

	v.recorder.IncFilter()

	return v.publishLocked()
}

// SortBy orders the current derived view by field. Requesting the active
// field while ascending switches to descending; anything else sorts ascending.
func (v *View) SortBy(field domain.SortField) domain.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	direction := domain.Ascending
	if v.sort.set && v.sort.key == field && v.sort.direction == domain.Ascending {
		direction = domain.Descending
	}
	v.sort = sortConfig{key: field, set: true, direction: direction}
	v.applySort()

	v.recorder.IncSort(field)

	return v.publishLocked()
}

// Snapshot returns the current state without changing it.
func (v *View) Snapshot() domain.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.snapshotLocked()
}

func (v *View) applyFilter() []domain.Invoice {
	if v.filter == "" {
		return slices.Clone(v.full)
	}

	lower := cases.Lower(v.lang)
	needle := lower.String(v.filter)

	filtered := make([]domain.Invoice, 0, len(v.full))
	for _, inv := range v.full {
		if inv.UserName == nil {
			continue
		}
		if strings.Contains(lower.String(*inv.UserName), needle) {
			filtered = append(filtered, inv)
		}
	}

	return filtered
}

// applySort stable-sorts the derived view in place. Null values go last in
// both directions.
func (v *View) applySort() {
	if !v.sort.set {
		return
	}
	field, direction := v.sort.key, v.sort.direction

	slices.SortStableFunc(v.derived, func(a, b domain.Invoice) int {
		av, bv := field.Value(a), field.Value(b)
		switch {
		case av.IsNull() && bv.IsNull():
			return 0
		case av.IsNull():
			return 1
		case bv.IsNull():
			return -1
		}

		c := domain.Compare(av, bv, v.collator)
		if direction == domain.Descending {
			return -c
		}
		return c
	})
}

func (v *View) snapshotLocked() domain.Snapshot {
	s := domain.Snapshot{
		Records:     domain.CloneInvoices(v.derived),
		Loading:     v.loading,
		Filter:      v.filter,
		Total:       len(v.full),
		GeneratedAt: v.now(),
	}
	if s.Records == nil {
		s.Records = []domain.Invoice{}
	}
	s.Sort.Direction = v.sort.direction
	if v.sort.set {
		key := v.sort.key
		s.Sort.Key = &key
	}

	return s
}

func (v *View) publishLocked() domain.Snapshot {
	s := v.snapshotLocked()
	v.recorder.SetViewSize(len(s.Records))
	if v.publisher != nil {
		v.publisher.Publish(s)
	}

	return s
}
