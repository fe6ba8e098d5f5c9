//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/suenos-shipping/console/internal/domain"
)

// emailMessage is the payload the app posts to the email API.
type emailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// emailRecorder is a stub transactional email API. It records every
// delivered message and can be told to fail the next n requests.
type emailRecorder struct {
	mu             sync.Mutex
	messages       []emailMessage
	failNext       int
	failRecipients map[string]bool
}

func newEmailStub() (*emailRecorder, *httptest.Server) {
	rec := &emailRecorder{failRecipients: make(map[string]bool)}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var msg emailMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		rec.mu.Lock()
		defer rec.mu.Unlock()

		if rec.failNext > 0 {
			rec.failNext--
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		for _, to := range msg.To {
			if rec.failRecipients[to] {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
		}

		rec.messages = append(rec.messages, msg)
		w.WriteHeader(http.StatusAccepted)
	}))

	return rec, server
}

// Messages returns a copy of all recorded messages.
func (r *emailRecorder) Messages() []emailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emailMessage(nil), r.messages...)
}

// FailNext makes the stub reject the next n sends with a 502.
func (r *emailRecorder) FailNext(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = n
}

// FailRecipient makes every send to the address fail with a 502.
func (r *emailRecorder) FailRecipient(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failRecipients[email] = true
}

// Reset clears recorded messages and pending failures.
func (r *emailRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.failNext = 0
	r.failRecipients = make(map[string]bool)
}

// signToken issues an HS256 token for userID with the shared secret.
func signToken(t *testing.T, userID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

// createProfile inserts a profile directly and returns it. Used to seed
// callers and notification targets without going through the API.
func createProfile(t *testing.T, email, fullName string, role domain.Role) *domain.Profile {
	t.Helper()

	p := &domain.Profile{
		ID:       uuid.NewString(),
		Email:    email,
		FullName: fullName,
		Role:     role,
	}
	err := testDB.QueryRow(context.Background(),
		`INSERT INTO profiles (id, email, full_name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING customer_no`,
		p.ID, p.Email, p.FullName, p.Role,
	).Scan(&p.CustomerNo)
	require.NoError(t, err)
	return p
}

// staffToken creates a staff profile and returns a bearer token for it.
func staffToken(t *testing.T) string {
	t.Helper()
	staff := createProfile(t, uuid.NewString()+"@staff.example", "Staff Member", domain.RoleStaff)
	return signToken(t, staff.ID)
}

// enqueueNotification inserts a pending queue row directly.
func enqueueNotification(t *testing.T, userID, tracking, template string, payload map[string]any, createdAt time.Time) string {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	id := uuid.NewString()
	_, err = testDB.Exec(context.Background(),
		`INSERT INTO notification_queue (id, user_id, tracking, template, payload, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, 'pending', $6)`,
		id, userID, tracking, template, raw, createdAt,
	)
	require.NoError(t, err)
	return id
}

// queueRow is a status snapshot of one notification_queue row.
type queueRow struct {
	Status    string
	Attempts  int
	LastError *string
	SentAt    *time.Time
}

func getQueueRow(t *testing.T, id string) queueRow {
	t.Helper()

	var row queueRow
	err := testDB.QueryRow(context.Background(),
		`SELECT status, attempts, last_error, sent_at FROM notification_queue WHERE id = $1`,
		id,
	).Scan(&row.Status, &row.Attempts, &row.LastError, &row.SentAt)
	require.NoError(t, err)
	return row
}

// clearQueue removes every notification_queue row between tests.
func clearQueue(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), `DELETE FROM notification_queue`)
	require.NoError(t, err)
}
