package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/middleware"
	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

var testNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type fakeItems struct {
	items      map[uuid.UUID]*models.Item
	err        error
	lastSkip   int
	lastLimit  int
	lastUpdate models.ItemUpdate
}

func (f *fakeItems) List(ctx context.Context, actor service.Actor, skip, limit int) (*models.ItemsPublic, error) {
	f.lastSkip, f.lastLimit = skip, limit
	out := &models.ItemsPublic{Data: []models.Item{}}
	for _, item := range f.items {
		out.Data = append(out.Data, *item)
	}
	out.Count = int64(len(out.Data))
	return out, f.err
}

func (f *fakeItems) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, service.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeItems) Create(ctx context.Context, actor service.Actor, in models.ItemCreate) (*models.Item, error) {
	item := in.NewItem(actor.ID, testNow)
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItems) Update(ctx context.Context, actor service.Actor, id uuid.UUID, in models.ItemUpdate) (*models.Item, error) {
	f.lastUpdate = in
	item, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.SellerID != actor.ID && !actor.IsSuperuser {
		return nil, service.ErrPermissionDenied
	}
	in.Apply(item)
	return item, nil
}

func (f *fakeItems) Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItems) MarkSold(ctx context.Context, actor service.Actor, id uuid.UUID, sale models.ItemSale) (*models.Item, error) {
	item, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.SoldAt != nil {
		return nil, service.ErrItemAlreadySold
	}
	item.SoldAt = &testNow
	item.FinalPrice = sale.FinalPrice
	return item, nil
}

type fakeEvents struct {
	recorded []models.EventCreate
}

func (f *fakeEvents) Record(ctx context.Context, in models.EventCreate) (*models.Event, error) {
	f.recorded = append(f.recorded, in)
	return &models.Event{ID: uuid.New(), EventType: in.EventType, ItemID: in.ItemID, Timestamp: testNow}, nil
}

func (f *fakeEvents) Popularity(ctx context.Context, userID *uuid.UUID) ([]models.ItemPopularity, error) {
	return []models.ItemPopularity{{ItemID: uuid.New(), EventCount: 3}}, nil
}

type fakeRecommender struct {
	items      []models.Item
	lastLimit  int
	lastOffset int
	lastUser   *uuid.UUID
	lastQuery  models.ItemQuery
}

func (f *fakeRecommender) FindSimilarQuery(ctx context.Context, q models.ItemQuery, limit, offset int, userID *uuid.UUID) ([]models.Item, error) {
	f.lastQuery, f.lastLimit, f.lastOffset, f.lastUser = q, limit, offset, userID
	return f.items, nil
}

func (f *fakeRecommender) FindSimilarItems(ctx context.Context, id uuid.UUID, limit, offset int, userID *uuid.UUID) ([]models.Item, error) {
	f.lastLimit, f.lastOffset, f.lastUser = limit, offset, userID
	return nil, nil
}

func (f *fakeRecommender) FindMostPopularItems(ctx context.Context, limit, offset int, userID *uuid.UUID) ([]models.Item, error) {
	f.lastLimit, f.lastOffset, f.lastUser = limit, offset, userID
	return f.items, nil
}

type fakeImporter struct {
	err      error
	seenPath string
	existed  bool
}

func (f *fakeImporter) Import(ctx context.Context, path string, sellerID uuid.UUID) (int, error) {
	f.seenPath = path
	_, statErr := os.Stat(path)
	f.existed = statErr == nil
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

type fakeUsers struct {
	user *models.User
	err  error
}

func (f *fakeUsers) Register(ctx context.Context, in models.UserRegister) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: uuid.New(), Email: in.Email, IsActive: true}, nil
}

func (f *fakeUsers) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, service.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeUsers) Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	if actor.ID == id {
		return service.ErrPermissionDenied
	}
	return f.err
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID uuid.UUID) (string, error) { return "token-" + userID.String(), nil }

type fakeDB struct{ err error }

func (f fakeDB) PingContext(ctx context.Context) error { return f.err }

type testEnv struct {
	h       *Handlers
	items   *fakeItems
	events  *fakeEvents
	rec     *fakeRecommender
	imp     *fakeImporter
	users   *fakeUsers
	router  *gin.Engine
	actorID uuid.UUID
}

// newTestEnv wires handlers behind a stub auth middleware that trusts the
// X-Test-User header.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		items:   &fakeItems{items: map[uuid.UUID]*models.Item{}},
		events:  &fakeEvents{},
		rec:     &fakeRecommender{},
		imp:     &fakeImporter{},
		users:   &fakeUsers{},
		actorID: uuid.New(),
	}
	env.h = &Handlers{
		Items:       env.items,
		Events:      env.events,
		Users:       env.users,
		Recommender: env.rec,
		Importer:    env.imp,
		Tokens:      fakeTokens{},
		DB:          fakeDB{},
		Logger:      zap.NewNop(),
		UploadDir:   t.TempDir(),
	}

	stubAuth := func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			c.Set(middleware.UserIDKey, uuid.MustParse(raw))
			c.Set(middleware.IsSuperuserKey, c.GetHeader("X-Test-Superuser") == "true")
		}
		c.Next()
	}

	r := gin.New()
	r.Use(stubAuth)
	r.GET("/healthz", env.h.Health)
	r.POST("/users/signup", env.h.Signup)
	r.POST("/login/access-token", env.h.Login)
	r.GET("/users/me", env.h.Me)
	r.DELETE("/users/:id", env.h.DeleteUser)
	r.GET("/items", env.h.ListItems)
	r.POST("/items", env.h.CreateItem)
	r.POST("/items/uploadcsv", env.h.UploadCSV)
	r.GET("/items/:id", env.h.GetItem)
	r.PUT("/items/:id", env.h.UpdateItem)
	r.DELETE("/items/:id", env.h.DeleteItem)
	r.POST("/items/:id/sell", env.h.SellItem)
	r.POST("/events", env.h.CreateEvent)
	r.GET("/events/popularity", env.h.GetPopularity)
	r.GET("/items/recommend/most_popular", env.h.MostPopular)
	r.GET("/items/recommend/:id/similar", env.h.SimilarItems)
	r.POST("/items/recommend/similar_query", env.h.SimilarQuery)
	env.router = r
	return env
}

func (e *testEnv) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("X-Test-User", e.actorID.String())
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(seller uuid.UUID) *models.Item {
	item := &models.Item{ID: uuid.New(), Name: "Tata Nexon", SellerID: seller}
	e.items.items[item.ID] = item
	return item
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not an error body: %s", w.Body.String())
	}
	return body.Error
}
