package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appoutbox "drively/internal/app/outbox"
	"drively/internal/app/policies"
	domainbooking "drively/internal/domain/booking"
	domaincars "drively/internal/domain/cars"
	domaincheckout "drively/internal/domain/checkout"
	"drively/internal/domain/shared/money"
)

var testToday = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func testClock() Clock { return func() time.Time { return testToday } }

func testCar() *domaincars.Car {
	return &domaincars.Car{
		ID:        "car-compact-01",
		Brand:     "Toyota",
		Model:     "Corolla",
		Year:      2022,
		DailyRate: money.Must(50, "USD"),
		Available: true,
	}
}

// fakeSessionRepo is an in-memory checkout repository.
type fakeSessionRepo struct {
	mu    sync.Mutex
	items map[domaincheckout.SessionID]*domaincheckout.Session
	saves int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{items: map[domaincheckout.SessionID]*domaincheckout.Session{}}
}

func (r *fakeSessionRepo) ByID(_ context.Context, id domaincheckout.SessionID) (*domaincheckout.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.items[id]
	if !ok {
		return nil, domaincheckout.ErrSessionNotFound
	}
	return sess, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, sess *domaincheckout.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.items[sess.ID] = sess
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id domaincheckout.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type fakeCarRepo struct {
	cars map[domaincars.CarID]*domaincars.Car
}

func newFakeCarRepo(items ...*domaincars.Car) *fakeCarRepo {
	repo := &fakeCarRepo{cars: map[domaincars.CarID]*domaincars.Car{}}
	for _, c := range items {
		repo.cars[c.ID] = c
	}
	return repo
}

func (r *fakeCarRepo) ByID(_ context.Context, id domaincars.CarID) (*domaincars.Car, error) {
	c, ok := r.cars[id]
	if !ok {
		return nil, domaincars.ErrCarNotFound
	}
	return c, nil
}

func (r *fakeCarRepo) List(context.Context) ([]*domaincars.Car, error) {
	out := make([]*domaincars.Car, 0, len(r.cars))
	for _, c := range r.cars {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCarRepo) Save(_ context.Context, c *domaincars.Car) error {
	r.cars[c.ID] = c
	return nil
}

// fakePaymentGateway implements both payment ports with scriptable behavior.
type fakePaymentGateway struct {
	ready         bool
	session       policies.PaymentSession
	createErr     error
	createCalls   int
	redirectURL   string
	redirectErr   error
	redirectCalls int
	onRedirect    func()
}

func (f *fakePaymentGateway) Ready() bool { return f.ready }

func (f *fakePaymentGateway) CreateSession(_ context.Context, _ domaincheckout.Draft, _ domaincars.Summary) (policies.PaymentSession, error) {
	f.createCalls++
	if f.createErr != nil {
		return policies.PaymentSession{}, f.createErr
	}
	return f.session, nil
}

func (f *fakePaymentGateway) RedirectToCheckout(_ context.Context, _ string) (string, error) {
	f.redirectCalls++
	if f.onRedirect != nil {
		f.onRedirect()
	}
	if f.redirectErr != nil {
		return "", f.redirectErr
	}
	return f.redirectURL, nil
}

type notice struct {
	level   string
	guestID string
	message string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (f *fakeNotifier) Success(_ context.Context, guestID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice{level: "success", guestID: guestID, message: message})
	return nil
}

func (f *fakeNotifier) Error(_ context.Context, guestID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice{level: "error", guestID: guestID, message: message})
	return nil
}

func (f *fakeNotifier) last() (notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notices) == 0 {
		return notice{}, false
	}
	return f.notices[len(f.notices)-1], true
}

type fakeOutbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func (f *fakeOutbox) Add(_ context.Context, rec appoutbox.EventRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeOutbox) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec.Name)
	}
	return out
}

type fakeBookingCreator struct {
	err     error
	calls   int
	created *domainbooking.Booking
}

func (f *fakeBookingCreator) Create(_ context.Context, guestID string, draft domaincheckout.Draft, car domaincars.Summary) (*domainbooking.Booking, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	b := &domainbooking.Booking{
		ID:      "bk-1",
		CarID:   car.ID,
		GuestID: guestID,
		Total:   draft.Total,
		State:   domainbooking.StateConfirmed,
	}
	f.created = b
	return b, nil
}

// interceptorFactory hands every session the same recording interceptor.
type recordingInterceptor struct {
	mu       sync.Mutex
	installs int
	removes  int
}

func (r *recordingInterceptor) Install(string) (func(), error) {
	r.mu.Lock()
	r.installs++
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.removes++
		r.mu.Unlock()
	}, nil
}

type interceptorFactory struct {
	interceptor *recordingInterceptor
}

func (f interceptorFactory) ForSession(domaincheckout.SessionID) domaincheckout.Interceptor {
	return f.interceptor
}

// seedSession puts a selection-stage session with valid dates into the repo.
func seedSession(t *testing.T, repo *fakeSessionRepo, interceptor domaincheckout.Interceptor) *domaincheckout.Session {
	t.Helper()
	sess := domaincheckout.NewSession("sess-1", "guest-1", testCar().Summary(), interceptor, testToday)
	sess.ClearEvents()
	require.NoError(t, sess.SetDates(
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		testToday,
	))
	require.NoError(t, repo.Save(context.Background(), sess))
	return sess
}
