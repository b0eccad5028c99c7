package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/example/mystore/internal/config"
	"github.com/example/mystore/internal/handlers"
	"github.com/example/mystore/internal/models"
	"github.com/example/mystore/internal/ratelimit"
	"github.com/example/mystore/internal/repository"
	"github.com/example/mystore/internal/routes"
	"github.com/example/mystore/internal/utils"
)

// In-memory doubles for the mongo repositories.

type fakeUserRepo struct {
	byEmail map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return errors.New("duplicate email")
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeCartRepo struct {
	byUser map[primitive.ObjectID]*models.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{byUser: make(map[primitive.ObjectID]*models.Cart)}
}

func (r *fakeCartRepo) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, ok := r.byUser[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	clone := *cart
	clone.Items = append([]models.CartItem(nil), cart.Items...)
	return &clone, nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *models.Cart) error {
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	clone := *cart
	clone.Items = append([]models.CartItem(nil), cart.Items...)
	r.byUser[cart.UserID] = &clone
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, userID primitive.ObjectID) (bool, error) {
	if _, ok := r.byUser[userID]; !ok {
		return false, nil
	}
	delete(r.byUser, userID)
	return true, nil
}

type fakeOrderRepo struct {
	orders []models.Order
	clock  time.Time
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeOrderRepo) Insert(_ context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	r.clock = r.clock.Add(time.Minute)
	order.CreatedAt = r.clock
	order.UpdatedAt = r.clock
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID primitive.ObjectID, limit, offset int) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 {
		if offset >= len(out) {
			return []models.Order{}, nil
		}
		end := offset + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, nil
}

func (r *fakeOrderRepo) CountByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeOTPRepo struct {
	records map[primitive.ObjectID]*models.OTP
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{records: make(map[primitive.ObjectID]*models.OTP)}
}

func (r *fakeOTPRepo) Replace(_ context.Context, otp *models.OTP) error {
	for id, rec := range r.records {
		if rec.Email == otp.Email {
			delete(r.records, id)
		}
	}
	otp.ID = primitive.NewObjectID()
	otp.CreatedAt = time.Now()
	r.records[otp.ID] = otp
	return nil
}

func (r *fakeOTPRepo) Find(_ context.Context, email string, userID primitive.ObjectID) (*models.OTP, error) {
	for _, rec := range r.records {
		if rec.Email == email && rec.UserID == userID {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, repository.ErrOTPNotFound
}

func (r *fakeOTPRepo) IncrementAttempts(_ context.Context, id primitive.ObjectID) (int, error) {
	rec, ok := r.records[id]
	if !ok {
		return 0, repository.ErrOTPNotFound
	}
	rec.Attempts++
	return rec.Attempts, nil
}

func (r *fakeOTPRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.records, id)
	return nil
}

// live returns the single live record for an email, if any.
func (r *fakeOTPRepo) live(email string) *models.OTP {
	for _, rec := range r.records {
		if rec.Email == email {
			return rec
		}
	}
	return nil
}

type fakeSMS struct {
	err   error
	calls int
	phone string
	code  string
}

func (s *fakeSMS) SendOTP(_ context.Context, phone, code string) error {
	s.calls++
	s.phone = phone
	s.code = code
	return s.err
}

type fakeMailer struct {
	err   error
	calls int
	to    string
}

func (m *fakeMailer) SendWelcome(toEmail, _ string) error {
	m.calls++
	m.to = toEmail
	return m.err
}

// fixture wires the real handlers, routes, and auth middleware over the
// in-memory doubles.
type fixture struct {
	app     *fiber.App
	cfg     *config.Config
	users   *fakeUserRepo
	carts   *fakeCartRepo
	orders  *fakeOrderRepo
	otps    *fakeOTPRepo
	sms     *fakeSMS
	mailer  *fakeMailer
	limiter *ratelimit.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		cfg: &config.Config{
			JWTSecret:    "test-secret",
			TokenExpires: time.Hour,
			OTPExpires:   5 * time.Minute,
		},
		users:   newFakeUserRepo(),
		carts:   newFakeCartRepo(),
		orders:  newFakeOrderRepo(),
		otps:    newFakeOTPRepo(),
		sms:     &fakeSMS{},
		mailer:  &fakeMailer{},
		limiter: ratelimit.NewMemoryStore(),
	}

	zlog := zap.NewNop().Sugar()

	f.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Register(f.app, f.cfg,
		handlers.NewAuthHandler(f.users, f.mailer, f.cfg),
		handlers.NewOTPHandler(f.users, f.otps, f.limiter, f.sms, f.cfg, zlog),
		handlers.NewCartHandler(f.carts),
		handlers.NewOrderHandler(f.carts, f.orders, zlog),
	)

	return f
}

// addUser seeds a registered user and returns it.
func (f *fixture) addUser(t *testing.T, email, phone, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func (f *fixture) token(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(f.cfg.JWTSecret, u.ID.Hex(), u.Email, f.cfg.TokenExpires)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// do performs a request against the fiber app and decodes the JSON body.
func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func wantStatus(t *testing.T, got int, want int, body map[string]any) {
	t.Helper()
	if got != want {
		t.Fatalf("status = %d, want %d (body: %v)", got, want, body)
	}
}
