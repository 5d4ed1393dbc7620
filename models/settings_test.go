package models

import (
	"reflect"
	"testing"
)

func TestWithdrawalSettings_Allows(t *testing.T) {
	settings := &WithdrawalSettings{MinimumWithdrawalAmount: 50, WithdrawalAmounts: Amounts{50, 100, 200}}
	open := &WithdrawalSettings{MinimumWithdrawalAmount: 50}

	tests := []struct {
		name     string
		settings *WithdrawalSettings
		amount   int64
		wantErr  error
	}{
		{name: "Offered amount", settings: settings, amount: 100, wantErr: nil},
		{name: "Below minimum", settings: settings, amount: 20, wantErr: ErrBelowMinimum},
		{name: "Not offered", settings: settings, amount: 150, wantErr: ErrAmountNotOffered},
		{name: "Any amount above minimum", settings: open, amount: 73, wantErr: nil},
		{name: "Open below minimum", settings: open, amount: 49, wantErr: ErrBelowMinimum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.settings.Allows(tt.amount); err != tt.wantErr {
				t.Errorf("Allows(%d) error = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeAmounts(t *testing.T) {
	got, err := NormalizeAmounts([]int64{500, 100, 100, 50})
	if err != nil {
		t.Fatalf("NormalizeAmounts() error = %v", err)
	}
	if want := (Amounts{50, 100, 500}); !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeAmounts() = %v, want %v", got, want)
	}

	if _, err := NormalizeAmounts([]int64{10, 0}); err != ErrNonPositive {
		t.Errorf("NormalizeAmounts() error = %v, want %v", err, ErrNonPositive)
	}
}

func TestAmounts_ScanValue(t *testing.T) {
	var a Amounts
	if err := a.Scan([]byte("[10,20]")); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !reflect.DeepEqual(a, Amounts{10, 20}) {
		t.Errorf("Scan() = %v", a)
	}
	v, err := Amounts(nil).Value()
	if err != nil || v != "[]" {
		t.Errorf("Value() = %v, %v, want [] nil", v, err)
	}
}
