package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestGetUniqueContraintError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "Email",
			err:        fmt.Errorf("email already in use"),
			wantStatus: http.StatusConflict,
			wantMsg:    "email already in use",
		},
		{
			name:       "Phone",
			err:        fmt.Errorf("phone number already in use"),
			wantStatus: http.StatusConflict,
			wantMsg:    "phone number already in use",
		},
		{
			name:       "Duplicate key",
			err:        fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_users_referral_code"`),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "Other",
			err:        fmt.Errorf("something odd"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetUniqueContraintError(tt.err)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if tt.wantMsg != "" && got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}

	if GetUniqueContraintError(nil) != nil {
		t.Error("GetUniqueContraintError(nil) should be nil")
	}
}
