package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tienda/internal/handlers"
	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/services"
)

// stubGenerator is a canned-reply Generator so chat handler tests never touch
// a real provider.
type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) GenerateResponse(ctx context.Context, userMessage string, products []models.Product, contextText string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("%s (%d productos)", g.reply, len(products)), nil
}

// setupApp builds a Fiber app for testing with in-memory SQLite and all
// handlers/services wired against a stub generator.
func setupApp(t *testing.T, name string, generator services.Generator) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ChatMessage{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	chatRepo := repositories.NewGORMChatRepository(db)

	productService := services.NewProductService(productRepo, nil)
	chatService := services.NewChatService(productRepo, chatRepo, generator, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1)
	handlers.NewChatHandler(chatService).RegisterRoutes(apiV1)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, target, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestProductEndpoints_CRUD(t *testing.T) {
	app := setupApp(t, "handlers_products", &stubGenerator{reply: "[AI]"})

	// Create
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/", services.ProductDTO{
		Name: "Pegasus 40", Brand: "Nike", Category: "Running", Size: "42", Color: "Negro", Price: 120.0, Stock: 8,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)

	// Read
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decodeBody(t, resp, &fetched)
	assert.Equal(t, "Pegasus 40", fetched.Name)

	// Update (whole-record replacement)
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID), services.ProductDTO{
		Name: "Pegasus 41", Brand: "Nike", Category: "Running", Size: "42", Color: "Negro", Price: 130.0, Stock: 6,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Pegasus 41", updated.Name)
	assert.Equal(t, 130.0, updated.Price)

	// Delete
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductEndpoints_Validation(t *testing.T) {
	app := setupApp(t, "handlers_validation", &stubGenerator{reply: "[AI]"})

	// Non-positive price is rejected at the DTO boundary, before the service.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/", map[string]interface{}{
		"name": "Broken", "price": -10.0, "stock": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products/", map[string]interface{}{
		"price": 10.0, "stock": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductEndpoints_SearchAndAvailability(t *testing.T) {
	app := setupApp(t, "handlers_search", &stubGenerator{reply: "[AI]"})

	seed := []services.ProductDTO{
		{Name: "Pegasus 40", Brand: "Nike", Category: "Running", Size: "42", Color: "Negro", Price: 120.0, Stock: 5},
		{Name: "Air Force 1", Brand: "Nike", Category: "Casual", Size: "42", Color: "Blanco", Price: 110.0, Stock: 4},
		{Name: "Ultraboost Light", Brand: "Adidas", Category: "Running", Size: "42", Color: "Blanco", Price: 150.0, Stock: 0},
	}
	for _, dto := range seed {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/products/", dto)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	var products []models.Product

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/?brand=Nike&category=Running", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &products)
	assert.Len(t, products, 1)
	assert.Equal(t, "Pegasus 40", products[0].Name)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/?max_price=115", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &products)
	assert.Len(t, products, 1)
	assert.Equal(t, "Air Force 1", products[0].Name)

	// Only products with stock left.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/available", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &products)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.Greater(t, p.Stock, 0)
	}
}

func TestChatEndpoints_Turn(t *testing.T) {
	app := setupApp(t, "handlers_chat", &stubGenerator{reply: "[AI] hola"})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/", services.ProductDTO{
		Name: "Pegasus 40", Brand: "Nike", Category: "Running", Size: "42", Color: "Negro", Price: 120.0, Stock: 5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/chat/", services.ChatRequest{SessionID: "s1", Message: "hola"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var chatResp services.ChatResponse
	decodeBody(t, resp, &chatResp)
	assert.Equal(t, "s1", chatResp.SessionID)
	assert.Equal(t, "hola", chatResp.UserMessage)
	assert.Equal(t, "[AI] hola (1 productos)", chatResp.AssistantMessage)

	// Both sides of the turn are in the history, user first.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/chat/history/s1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var history []services.ChatHistoryEntry
	decodeBody(t, resp, &history)
	assert.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)

	// Clearing reports the number of deleted messages.
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/chat/history/s1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared map[string]int64
	decodeBody(t, resp, &cleared)
	assert.Equal(t, int64(2), cleared["deleted"])

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/chat/history/s1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cleared)
	assert.Equal(t, int64(0), cleared["deleted"])
}

func TestChatEndpoints_Validation(t *testing.T) {
	app := setupApp(t, "handlers_chat_validation", &stubGenerator{reply: "[AI]"})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/chat/", map[string]string{"session_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/chat/", map[string]string{"message": "hola"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Whitespace-only fields are rejected at the boundary too.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/chat/", map[string]string{"session_id": "  ", "message": "hola"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpoints_GeneratorFailure(t *testing.T) {
	app := setupApp(t, "handlers_chat_failure", &stubGenerator{err: fmt.Errorf("provider unavailable")})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/chat/", services.ChatRequest{SessionID: "s1", Message: "hola"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()

	// The failed turn must not leave partial history behind.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/chat/history/s1", nil)
	var history []services.ChatHistoryEntry
	decodeBody(t, resp, &history)
	assert.Len(t, history, 0)
}

func TestChatEndpoints_NewSession(t *testing.T) {
	app := setupApp(t, "handlers_chat_session", &stubGenerator{reply: "[AI]"})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/chat/session", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var payload map[string]string
	decodeBody(t, resp, &payload)
	assert.NotEmpty(t, payload["session_id"])

	other := doJSON(t, app, http.MethodPost, "/api/v1/chat/session", nil)
	var second map[string]string
	decodeBody(t, other, &second)
	assert.NotEqual(t, payload["session_id"], second["session_id"])
}
