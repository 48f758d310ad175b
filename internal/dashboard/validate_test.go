package dashboard_test

import (
	"testing"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/dashboard"
	"github.com/stretchr/testify/assert"
)

var limits = &contract.Limits{MinInvestment: "5", MaxInvestment: "10000", MinWithdraw: "4", WithdrawFeePercent: 5}

func TestValidateStake(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		balance string
		limits  *contract.Limits
		want    error
	}{
		{"ok", "100", "500", limits, nil},
		{"exact balance", "500", "500", limits, nil},
		{"zero", "0", "500", limits, dashboard.ErrInvalidAmount},
		{"negative", "-1", "500", limits, dashboard.ErrInvalidAmount},
		{"garbage", "ten", "500", limits, dashboard.ErrInvalidAmount},
		{"empty", "", "500", limits, dashboard.ErrInvalidAmount},
		{"over balance", "600", "500", limits, dashboard.ErrInsufficientBalance},
		{"below min", "1", "500", limits, dashboard.ErrBelowMinimum},
		{"above max", "20000", "50000", limits, dashboard.ErrAboveMaximum},
		{"no limits", "1", "500", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dashboard.ValidateStake(tt.amount, tt.balance, tt.limits)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateWithdraw(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		staked string
		want   error
	}{
		{"ok", "100", "1000", nil},
		{"all", "1000", "1000", nil},
		{"too much", "1000.01", "1000", dashboard.ErrInsufficientStake},
		{"below min", "3", "1000", dashboard.ErrBelowMinimum},
		{"zero", "0", "1000", dashboard.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dashboard.ValidateWithdraw(tt.amount, tt.staked, limits)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNeedsApproval(t *testing.T) {
	assert.True(t, dashboard.NeedsApproval("100", "50"))
	assert.False(t, dashboard.NeedsApproval("50", "50"))
	assert.False(t, dashboard.NeedsApproval("10", "1000.0"))
	assert.True(t, dashboard.NeedsApproval("1", ""))
	assert.False(t, dashboard.NeedsApproval("abc", "0"))
}

func TestWithdrawFee(t *testing.T) {
	fee, net := dashboard.WithdrawFee("100", *limits)
	assert.Equal(t, "5.00", fee)
	assert.Equal(t, "95.00", net)

	fee, net = dashboard.WithdrawFee("100", contract.Limits{})
	assert.Equal(t, "0.00", fee)
	assert.Equal(t, "100.00", net)
}
