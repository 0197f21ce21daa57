package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeactivateUser(t *testing.T) {
	s, app, db := setupTestServer(t)

	alice, aliceToken := createTestUser(t, s, db, "alice@example.com")
	bob, _ := createTestUser(t, s, db, "bob@example.com")

	t.Run("Deactivating another account is forbidden", func(t *testing.T) {
		req := httptest.NewRequest("PUT", fmt.Sprintf("/api/users/%d/deactivate", bob.ID), nil)
		req.Header.Set("Authorization", "Bearer "+aliceToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		var stored models.User
		require.NoError(t, db.First(&stored, bob.ID).Error)
		assert.Equal(t, models.UserStatusActive, stored.Status)
	})

	t.Run("Deactivating own account succeeds", func(t *testing.T) {
		req := httptest.NewRequest("PUT", fmt.Sprintf("/api/users/%d/deactivate", alice.ID), nil)
		req.Header.Set("Authorization", "Bearer "+aliceToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var response map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, models.UserStatusDeactivated, response["status"])

		// Row survives as a status flip, never a delete
		var stored models.User
		require.NoError(t, db.First(&stored, alice.ID).Error)
		assert.Equal(t, models.UserStatusDeactivated, stored.Status)
	})

	t.Run("Deactivated accounts drop out of listings", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/users/", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var users []models.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
		require.Len(t, users, 1)
		assert.Equal(t, bob.ID, users[0].ID)
	})

	t.Run("Unknown account is not found", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/users/9999/deactivate", nil)
		req.Header.Set("Authorization", "Bearer "+aliceToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestGetMyProfile(t *testing.T) {
	s, app, db := setupTestServer(t)
	user, token := createTestUser(t, s, db, "me@example.com")

	req := httptest.NewRequest("GET", "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, float64(user.ID), response["id"])
	assert.Equal(t, "me@example.com", response["email"])
	_, hasPassword := response["password"]
	assert.False(t, hasPassword)
}

func TestUpdateMyProfile(t *testing.T) {
	s, app, db := setupTestServer(t)
	user, token := createTestUser(t, s, db, "rename@example.com")

	body, _ := json.Marshal(map[string]string{
		"first_name": "Renamed",
	})
	req := httptest.NewRequest("PUT", "/api/users/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Renamed", stored.FirstName)
	assert.Equal(t, "User", stored.LastName, "omitted fields keep their value")
}

func TestUpdateMyEmail(t *testing.T) {
	s, app, db := setupTestServer(t)
	user, token := createTestUser(t, s, db, "old@example.com")
	createTestUser(t, s, db, "taken@example.com")

	update := func(body map[string]string) int {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest("PUT", "/api/users/me/email", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusBadRequest, update(map[string]string{
		"new_email":     "new@example.com",
		"confirm_email": "different@example.com",
		"password":      "password123",
	}))

	assert.Equal(t, fiber.StatusUnauthorized, update(map[string]string{
		"new_email":     "new@example.com",
		"confirm_email": "new@example.com",
		"password":      "wrongpass",
	}))

	assert.Equal(t, fiber.StatusConflict, update(map[string]string{
		"new_email":     "taken@example.com",
		"confirm_email": "taken@example.com",
		"password":      "password123",
	}))

	assert.Equal(t, fiber.StatusOK, update(map[string]string{
		"new_email":     "new@example.com",
		"confirm_email": "new@example.com",
		"password":      "password123",
	}))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "new@example.com", stored.Email)
}

func TestUpdateMyPassword(t *testing.T) {
	s, app, db := setupTestServer(t)
	_, token := createTestUser(t, s, db, "pw@example.com")

	update := func(body map[string]string) int {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest("PUT", "/api/users/me/password", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusBadRequest, update(map[string]string{
		"current_password": "password123",
		"new_password":     "next-secret",
		"confirm_password": "other-secret",
	}))

	assert.Equal(t, fiber.StatusUnauthorized, update(map[string]string{
		"current_password": "wrongpass",
		"new_password":     "next-secret",
		"confirm_password": "next-secret",
	}))

	assert.Equal(t, fiber.StatusNoContent, update(map[string]string{
		"current_password": "password123",
		"new_password":     "next-secret",
		"confirm_password": "next-secret",
	}))

	// Old credential no longer works, new one does
	login := func(password string) int {
		raw, _ := json.Marshal(map[string]string{
			"email":    "pw@example.com",
			"password": password,
		})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, login("password123"))
	assert.Equal(t, fiber.StatusOK, login("next-secret"))
}

func TestGetUserProfile(t *testing.T) {
	s, app, db := setupTestServer(t)
	user, _ := createTestUser(t, s, db, "profile@example.com")

	t.Run("Existing user", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/users/%d", user.ID), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Unknown user", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/users/9999", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestGetUserProfile_DatabaseFailure(t *testing.T) {
	_, app, db := setupTestServer(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	req := httptest.NewRequest("GET", "/api/users/1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
}

// withServerRedis points the cache package at a throwaway miniredis so
// handler tests exercise real cache hits.
func withServerRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := cache.GetClient()
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(prev) })
}

func TestUpdateMyProfile_CachedReadKeepsCredential(t *testing.T) {
	withServerRedis(t)
	s, app, db := setupTestServer(t)
	user, token := createTestUser(t, s, db, "alice@example.com")

	primeCache := func() {
		req := httptest.NewRequest("GET", "/api/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	login := func(password string) int {
		raw, _ := json.Marshal(map[string]string{
			"email":    "alice@example.com",
			"password": password,
		})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	t.Run("Profile update through a cache hit preserves the hash", func(t *testing.T) {
		primeCache()

		raw, _ := json.Marshal(map[string]string{"first_name": "Alicia"})
		req := httptest.NewRequest("PUT", "/api/users/me", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var stored models.User
		require.NoError(t, db.First(&stored, user.ID).Error)
		assert.Equal(t, "Alicia", stored.FirstName)
		assert.True(t, strings.HasPrefix(stored.Password, "$2"), "stored hash must survive the update")

		assert.Equal(t, fiber.StatusOK, login("password123"))
	})

	t.Run("Password change verifies against a cached read", func(t *testing.T) {
		primeCache()

		raw, _ := json.Marshal(map[string]string{
			"current_password": "password123",
			"new_password":     "password456",
			"confirm_password": "password456",
		})
		req := httptest.NewRequest("PUT", "/api/users/me/password", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		assert.Equal(t, fiber.StatusUnauthorized, login("password123"))
		assert.Equal(t, fiber.StatusOK, login("password456"))
	})
}
