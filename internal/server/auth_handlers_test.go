package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	_, app, _ := setupTestServer(t)

	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
		expectedError  bool
	}{
		{
			name: "Valid registration",
			requestBody: map[string]string{
				"first_name": "Alice",
				"last_name":  "Nguyen",
				"email":      "alice@x.com",
				"password":   "secret1",
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "Missing first name",
			requestBody: map[string]string{
				"last_name": "Nguyen",
				"email":     "bob@x.com",
				"password":  "secret1",
			},
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  true,
		},
		{
			name: "Whitespace-only last name",
			requestBody: map[string]string{
				"first_name": "Bob",
				"last_name":  "   ",
				"email":      "bob@x.com",
				"password":   "secret1",
			},
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  true,
		},
		{
			name: "Malformed email",
			requestBody: map[string]string{
				"first_name": "Bob",
				"last_name":  "Smith",
				"email":      "not-an-email",
				"password":   "secret1",
			},
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  true,
		},
		{
			name: "Missing password",
			requestBody: map[string]string{
				"first_name": "Bob",
				"last_name":  "Smith",
				"email":      "bob@x.com",
			},
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  true,
		},
		{
			name: "Duplicate email",
			requestBody: map[string]string{
				"first_name": "Alice",
				"last_name":  "Again",
				"email":      "alice@x.com",
				"password":   "secret2",
			},
			expectedStatus: fiber.StatusConflict,
			expectedError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var response map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))

			if tt.expectedError {
				assert.NotNil(t, response["error"])
			} else {
				assert.Equal(t, float64(1), response["id"])
				assert.Equal(t, "alice@x.com", response["email"])
				_, hasPassword := response["password"]
				assert.False(t, hasPassword, "hash must never be serialized")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	_, app, _ := setupTestServer(t)

	registerBody, _ := json.Marshal(map[string]string{
		"first_name": "Alice",
		"last_name":  "Nguyen",
		"email":      "alice@x.com",
		"password":   "secret1",
	})
	registerReq := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(registerBody))
	registerReq.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(registerReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	t.Run("Valid login issues token", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"email":    "alice@x.com",
			"password": "secret1",
		})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var response map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		tokenString, ok := response["token"].(string)
		require.True(t, ok)

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)

		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, "1", claims["sub"])
		assert.Equal(t, "Alice Nguyen", claims["name"])
		assert.Equal(t, "alice@x.com", claims["email"])
		assert.Equal(t, tokenIssuer, claims["iss"])
		assert.Equal(t, tokenAudience, claims["aud"])
		assert.NotEmpty(t, claims["jti"])

		iat := int64(claims["iat"].(float64))
		exp := int64(claims["exp"].(float64))
		assert.Equal(t, int64(time.Hour/time.Second), exp-iat)
	})

	t.Run("Missing fields are rejected before lookup", func(t *testing.T) {
		for _, payload := range []map[string]string{
			{"password": "secret1"},
			{"email": "alice@x.com"},
			{"email": "   ", "password": "secret1"},
			{},
		} {
			body, _ := json.Marshal(payload)
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var response map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
			assert.Equal(t, "VALIDATION_ERROR", response["code"])
		}
	})

	t.Run("Wrong password and unknown email are indistinguishable", func(t *testing.T) {
		readBody := func(payload map[string]string) (int, string) {
			body, _ := json.Marshal(payload)
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			return resp.StatusCode, string(raw)
		}

		wrongStatus, wrongBody := readBody(map[string]string{
			"email":    "alice@x.com",
			"password": "wrong",
		})
		unknownStatus, unknownBody := readBody(map[string]string{
			"email":    "nobody@x.com",
			"password": "secret1",
		})

		assert.Equal(t, fiber.StatusUnauthorized, wrongStatus)
		assert.Equal(t, fiber.StatusUnauthorized, unknownStatus)
		assert.Equal(t, wrongBody, unknownBody)
	})
}

func TestLogin_LegacyHashUpgrade(t *testing.T) {
	_, app, db := setupTestServer(t)

	// Pre-migration rows store base64(sha256(password)) with no salt
	digest := sha256.Sum256([]byte("oldpass"))
	legacy := base64.StdEncoding.EncodeToString(digest[:])

	user := &models.User{
		FirstName: "Greta",
		LastName:  "Olsen",
		Email:     "greta@x.com",
		Password:  legacy,
		Status:    models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)

	login := func(password string) int {
		body, _ := json.Marshal(map[string]string{
			"email":    "greta@x.com",
			"password": password,
		})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, login("wrongpass"))
	assert.Equal(t, fiber.StatusOK, login("oldpass"))

	// Stored credential is now bcrypt and still verifies
	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.True(t, strings.HasPrefix(updated.Password, "$2"))
	assert.NotEqual(t, legacy, updated.Password)

	assert.Equal(t, fiber.StatusOK, login("oldpass"))
}
