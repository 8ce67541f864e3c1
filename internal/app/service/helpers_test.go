package service

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/internal/db"
	"github.com/carauction/carauction-backend/pkg/mailer"
	"github.com/carauction/carauction-backend/pkg/util"
	"github.com/stretchr/testify/require"
)

const testHMACSecret = "test-hmac-secret"

var codePattern = regexp.MustCompile(`>(\d{6})<`)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) reject(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// lastCode extracts the plaintext code from the most recent message.
func (m *fakeMailer) lastCode(t *testing.T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no email was sent")
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].HTML)
	require.Len(t, match, 2, "email does not contain a code")
	return match[1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type codeTestEnv struct {
	customerRepo repository.CustomerRepository
	hasher       *util.CodeHasher
	mailer       *fakeMailer
	clock        *fakeClock
}

func setupCodeTest(t *testing.T) *codeTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	hasher, err := util.NewCodeHasher(testHMACSecret)
	require.NoError(t, err)

	return &codeTestEnv{
		customerRepo: repository.NewCustomerRepository(testDB),
		hasher:       hasher,
		mailer:       &fakeMailer{},
		clock:        newFakeClock(),
	}
}

func (e *codeTestEnv) options(policy DispatchPolicy) CodeOptions {
	return CodeOptions{
		Hasher: e.hasher,
		Mailer: e.mailer,
		Policy: policy,
		Clock:  e.clock.Now,
	}
}

func (e *codeTestEnv) createCustomer(t *testing.T, email, password string, verified bool) *model.Customer {
	hash, err := util.HashPassword(password)
	require.NoError(t, err)

	customer := &model.Customer{
		Email:        email,
		Name:         "Test Customer",
		PasswordHash: hash,
	}
	require.NoError(t, e.customerRepo.Create(customer))
	if verified {
		require.NoError(t, e.customerRepo.MarkVerified(customer.ID))
		customer.Verified = true
	}
	return customer
}

func (e *codeTestEnv) reload(t *testing.T, id uint) *model.Customer {
	customer, err := e.customerRepo.FindByID(id)
	require.NoError(t, err)
	return customer
}

var errSMTPRejected = errors.New("550 5.1.1 recipient rejected")
