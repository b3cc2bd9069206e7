package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func TestBindErrorListsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		var body loginBody
		if err := c.ShouldBindJSON(&body); err != nil {
			BindError(c, err)
			return
		}
		OK(c, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"nope","password":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string       `json:"code"`
			Details []FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != "validation_error" {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
	if len(payload.Error.Details) != 2 {
		t.Fatalf("expected two field errors, got %+v", payload.Error.Details)
	}
	if payload.Error.Details[0].Field != "email" || payload.Error.Details[0].Rule != "email" {
		t.Fatalf("unexpected first detail %+v", payload.Error.Details[0])
	}
	if payload.Error.Details[1].Message != "password must be at least 6" {
		t.Fatalf("unexpected message %q", payload.Error.Details[1].Message)
	}
}

func TestBindErrorMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	BindError(c, errors.New("unexpected EOF"))

	if c.Writer.Status() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", c.Writer.Status())
	}
	if !c.IsAborted() {
		t.Fatal("expected request to be aborted")
	}
}
