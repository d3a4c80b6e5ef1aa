package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/josanv1n/DIZA-FOOD/internal/cache"
	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/ledger"
	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

var (
	testSecret = []byte("handler-secret")
	saleTime   = time.Date(2024, 5, 17, 13, 45, 0, 0, time.UTC)
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))

	mr := miniredis.RunT(t)
	menuStore := cache.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "diza")
	t.Cleanup(func() { _ = menuStore.Close() })

	menuRepo := database.NewMenuRepository(db)
	store := database.NewTransactionStore(db)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Register(app, Deps{
		Users:     database.NewUserRepository(db),
		Menu:      menuRepo,
		MenuCache: cache.NewMenuCache(menuRepo, menuStore, time.Minute),
		Promo:     database.NewPromoRepository(db),
		Committer: ledger.NewCommitter(store, ledger.WithClock(func() time.Time { return saleTime })),
		Reader:    ledger.NewReader(store, ledger.WithWindow(1)),
		JWTSecret: testSecret,
		JWTTTL:    time.Hour,
		Location:  time.UTC,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App, username, pin string) string {
	t.Helper()
	status, body := call(t, app, "POST", "/api/v1/login", "", fiber.Map{"username": username, "pin": pin})
	require.Equal(t, fiber.StatusOK, status, string(body))
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func sale(cash any) fiber.Map {
	return fiber.Map{
		"discount":      "5000",
		"paymentMethod": "CASH",
		"cashReceived":  cash,
		"lineItems": []fiber.Map{
			{"menuId": "6", "quantity": 2},
			{"menuId": "3", "quantity": 1},
		},
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := call(t, app, "GET", "/api/v1/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Running")
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	token := login(t, app, "KASIR", "1234")
	status, body := call(t, app, "GET", "/api/v1/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var profile struct {
		User         models.User       `json:"user"`
		RecentLogins []models.LoginLog `json:"recentLogins"`
	}
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, "u1", profile.User.ID)
	assert.Len(t, profile.RecentLogins, 1)
	assert.NotContains(t, string(body), `"pin"`)

	status, _ = call(t, app, "POST", "/api/v1/login", "", fiber.Map{"username": "kasir", "pin": "0000"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, "POST", "/api/v1/login", "", fiber.Map{"username": "kasir"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, app, "GET", "/api/v1/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestMenuAndPromo(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin", "admin")
	kasir := login(t, app, "kasir", "1234")

	var items []models.MenuItem
	status, body := call(t, app, "GET", "/api/v1/menu", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &items))
	assert.Len(t, items, 8)

	status, _ = call(t, app, "POST", "/api/v1/admin/menu", kasir, fiber.Map{"name": "Es Jeruk", "category": "DRINK", "price": 6000})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, "POST", "/api/v1/admin/menu", admin, fiber.Map{"name": "Es Jeruk", "category": "SNACK", "price": 6000})
	assert.Equal(t, fiber.StatusBadRequest, status)

	for _, price := range []int64{0, -6000, 100000001, 922337203685477} {
		status, _ = call(t, app, "POST", "/api/v1/admin/menu", admin, fiber.Map{"name": "Es Jeruk", "category": "DRINK", "price": price})
		assert.Equal(t, fiber.StatusBadRequest, status, "price %d", price)
	}

	status, body = call(t, app, "POST", "/api/v1/admin/menu", admin, fiber.Map{"name": "Es Jeruk", "category": "minuman", "price": 6000})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created models.MenuItem
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, models.CategoryDrink, created.Category)

	// the cached menu was invalidated
	_, body = call(t, app, "GET", "/api/v1/menu", "", nil)
	require.NoError(t, json.Unmarshal(body, &items))
	assert.Len(t, items, 9)

	status, _ = call(t, app, "DELETE", "/api/v1/admin/menu/"+created.ID, admin, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, "DELETE", "/api/v1/admin/menu/"+created.ID, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	_, body = call(t, app, "GET", "/api/v1/menu", "", nil)
	require.NoError(t, json.Unmarshal(body, &items))
	assert.Len(t, items, 8)

	status, _ = call(t, app, "PUT", "/api/v1/admin/promo", admin, fiber.Map{"content": "DISKON 10%"})
	assert.Equal(t, fiber.StatusOK, status)
	_, body = call(t, app, "GET", "/api/v1/promo", "", nil)
	var promo models.PromoText
	require.NoError(t, json.Unmarshal(body, &promo))
	assert.Equal(t, "DISKON 10%", promo.Content)
}

func TestCheckoutPreview(t *testing.T) {
	app := newTestApp(t)
	kasir := login(t, app, "kasir", "1234")

	status, body := call(t, app, "POST", "/api/v1/pos/checkout/preview", kasir, sale("10000"))
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp struct {
		Summary   map[string]any `json:"summary"`
		ItemCount int            `json:"itemCount"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 3, resp.ItemCount)
	assert.EqualValues(t, 25000, resp.Summary["subtotal"])
	assert.EqualValues(t, 20000, resp.Summary["finalTotal"])
	assert.Equal(t, false, resp.Summary["canCommit"])
}

func TestCreateTransactionAndReports(t *testing.T) {
	app := newTestApp(t)
	kasir := login(t, app, "kasir", "1234")
	manager := login(t, app, "manager", "boss")

	status, body := call(t, app, "POST", "/api/v1/pos/transactions", kasir, sale(50000))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created struct {
		ID          string `json:"id"`
		Success     bool   `json:"success"`
		FinalAmount int64  `json:"finalAmount"`
		Change      int64  `json:"change"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, created.Success)
	assert.Regexp(t, `^TX-\d{13}-[0-9a-f]{8}$`, created.ID)
	assert.Equal(t, int64(20000), created.FinalAmount)
	assert.Equal(t, int64(30000), created.Change)

	status, _ = call(t, app, "GET", "/api/v1/transactions", kasir, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = call(t, app, "GET", "/api/v1/transactions", manager, nil)
	require.Equal(t, fiber.StatusOK, status)
	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(body, &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "u1", txs[0].UserID)

	status, body = call(t, app, "GET", "/api/v1/transactions/"+created.ID, manager, nil)
	require.Equal(t, fiber.StatusOK, status)
	var tx models.Transaction
	require.NoError(t, json.Unmarshal(body, &tx))
	assert.Len(t, tx.Details, 2)
	assert.Equal(t, int64(25000), tx.TotalAmount)

	status, _ = call(t, app, "GET", "/api/v1/transactions/TX-missing", manager, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = call(t, app, "GET", "/api/v1/reports/daily?date=2024-05-17", manager, nil)
	require.Equal(t, fiber.StatusOK, status)
	var report ledger.DailyReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, int64(20000), report.Revenue)
	assert.Equal(t, 1, report.Orders)
	assert.Equal(t, int64(20000), report.CashTotal)
	require.Len(t, report.Hourly, 1)
	assert.Equal(t, 13, report.Hourly[0].Hour)

	_, body = call(t, app, "GET", "/api/v1/reports/daily?date=2024-05-18", manager, nil)
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Zero(t, report.Orders)

	status, _ = call(t, app, "GET", "/api/v1/reports/daily?date=17-05-2024", manager, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	req := httptest.NewRequest("GET", "/api/v1/reports/daily/export?date=2024-05-17", nil)
	req.Header.Set("Authorization", "Bearer "+manager)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "laporan-harian-2024-05-17.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	revenue, err := f.GetCellValue("Ringkasan", "B4")
	require.NoError(t, err)
	assert.Equal(t, "20000", revenue)
}

func TestCreateTransactionRejects(t *testing.T) {
	app := newTestApp(t)
	kasir := login(t, app, "kasir", "1234")
	manager := login(t, app, "manager", "boss")

	cases := []struct {
		name   string
		body   fiber.Map
		status int
	}{
		{"insufficient cash", sale("10000"), fiber.StatusUnprocessableEntity},
		{"cash missing", sale(nil), fiber.StatusBadRequest},
		{"empty cart", fiber.Map{"paymentMethod": "QRIS", "lineItems": []fiber.Map{}}, fiber.StatusBadRequest},
		{"unknown menu", fiber.Map{"paymentMethod": "QRIS", "lineItems": []fiber.Map{{"menuId": "99", "quantity": 1}}}, fiber.StatusNotFound},
		{"zero quantity", fiber.Map{"paymentMethod": "QRIS", "lineItems": []fiber.Map{{"menuId": "1", "quantity": 0}}}, fiber.StatusBadRequest},
		{"runaway quantity", fiber.Map{"paymentMethod": "CASH", "cashReceived": 0, "lineItems": []fiber.Map{{"menuId": "6", "quantity": 922337203685477}}}, fiber.StatusBadRequest},
		{"quantity above cap", fiber.Map{"paymentMethod": "QRIS", "lineItems": []fiber.Map{{"menuId": "6", "quantity": 1000}}}, fiber.StatusBadRequest},
		{"bad method", fiber.Map{"paymentMethod": "BITCOIN", "lineItems": []fiber.Map{{"menuId": "1", "quantity": 1}}}, fiber.StatusBadRequest},
		{"stale total", fiber.Map{"paymentMethod": "QRIS", "totalAmount": 4000, "lineItems": []fiber.Map{{"menuId": "1", "quantity": 1}}}, fiber.StatusConflict},
		{"stale final", fiber.Map{"paymentMethod": "QRIS", "finalAmount": 4000, "lineItems": []fiber.Map{{"menuId": "1", "quantity": 1}}}, fiber.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(t, app, "POST", "/api/v1/pos/transactions", kasir, tc.body)
			assert.Equal(t, tc.status, status, string(body))
		})
	}

	status, _ := call(t, app, "POST", "/api/v1/pos/transactions", manager, sale(50000))
	assert.Equal(t, fiber.StatusForbidden, status)

	_, body := call(t, app, "GET", "/api/v1/transactions", manager, nil)
	assert.JSONEq(t, "[]", string(body))
}

func TestQRISUsesLegacyDetailsKey(t *testing.T) {
	app := newTestApp(t)
	kasir := login(t, app, "kasir", "1234")

	status, body := call(t, app, "POST", "/api/v1/pos/transactions", kasir, fiber.Map{
		"paymentMethod": "qris",
		"remark":        "ref 8812",
		"totalAmount":   10000,
		"finalAmount":   10000,
		"details":       []fiber.Map{{"menuId": "4", "menuName": "Batagor", "price": 1, "quantity": 1, "subtotal": 1}},
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	assert.Contains(t, string(body), `"change":0`)
	assert.Contains(t, string(body), `"paymentMethod":"QRIS"`)
}

func TestAdminUsers(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin", "admin")
	kasir := login(t, app, "kasir", "1234")

	status, _ := call(t, app, "GET", "/api/v1/admin/users", kasir, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := call(t, app, "GET", "/api/v1/admin/users", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	var users []UserResponse
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 3)
	assert.Equal(t, "admin", users[0].Username)
	assert.NotNil(t, users[0].LastLogin)
	assert.Equal(t, "manager", users[2].Username)
	assert.Nil(t, users[2].LastLogin)
	assert.NotContains(t, string(body), "boss")
}

func TestCreateTransactionAtQuantityCap(t *testing.T) {
	app := newTestApp(t)
	kasir := login(t, app, "kasir", "1234")

	status, body := call(t, app, "POST", "/api/v1/pos/transactions", kasir, fiber.Map{
		"paymentMethod": "CASH",
		"cashReceived":  0,
		"lineItems":     []fiber.Map{{"menuId": "6", "quantity": 999}},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, string(body))

	status, body = call(t, app, "POST", "/api/v1/pos/transactions", kasir, fiber.Map{
		"paymentMethod": "CASH",
		"cashReceived":  9990000,
		"lineItems":     []fiber.Map{{"menuId": "6", "quantity": 999}},
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	assert.Contains(t, string(body), `"finalAmount":9990000`)
}

func TestDailyReportReadsPastTheWindow(t *testing.T) {
	app := newTestApp(t)
	kasir := login(t, app, "kasir", "1234")
	manager := login(t, app, "manager", "boss")

	for i := 0; i < 2; i++ {
		status, body := call(t, app, "POST", "/api/v1/pos/transactions", kasir, sale(50000))
		require.Equal(t, fiber.StatusCreated, status, string(body))
	}

	var txs []models.Transaction
	_, body := call(t, app, "GET", "/api/v1/transactions", manager, nil)
	require.NoError(t, json.Unmarshal(body, &txs))
	assert.Len(t, txs, 1)

	status, body := call(t, app, "GET", "/api/v1/reports/daily?date=2024-05-17", manager, nil)
	require.Equal(t, fiber.StatusOK, status)
	var report ledger.DailyReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 2, report.Orders)
	assert.Equal(t, int64(40000), report.Revenue)
}
