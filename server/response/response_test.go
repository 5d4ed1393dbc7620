package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/earnly/errors"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  interface{} `json:"errors"`
}

func record(t *testing.T, fn func(c *gin.Context)) (int, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w.Code, body
}

func TestJSON(t *testing.T) {
	code, body := record(t, func(c *gin.Context) {
		JSON(c, "ok", http.StatusOK, gin.H{"coins": 10}, nil)
	})
	if code != http.StatusOK || !body.Success || body.Message != "ok" || body.Errors != nil {
		t.Errorf("got %d %+v", code, body)
	}

	code, body = record(t, func(c *gin.Context) {
		JSON(c, "", http.StatusBadRequest, nil, fmt.Errorf("bad input"))
	})
	if code != http.StatusBadRequest || body.Success || body.Message != "bad input" || body.Errors != "bad input" {
		t.Errorf("got %d %+v", code, body)
	}
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"api error", errs.ErrInsufficientCoins, http.StatusUnprocessableEntity},
		{"wrapped api error", fmt.Errorf("withdraw: %w", errs.ErrInvalidTransition), http.StatusConflict},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := record(t, func(c *gin.Context) { HandleErrors(c, tt.err) })
			if code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
			if body.Success {
				t.Error("success = true for an error")
			}
		})
	}
}
