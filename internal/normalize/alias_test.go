package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfspulse/pkg/contracts/domain"
)

func TestResolveHeader(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantOK   bool
		wantKind RoleKind
		wantCat  domain.Category
	}{
		{name: "month column", raw: "Month", wantOK: true, wantKind: RoleDate},
		{name: "period column", raw: "  Period  ", wantOK: true, wantKind: RoleDate},
		{name: "wide cash in", raw: "Cash In", wantOK: true, wantKind: RoleCategory, wantCat: domain.CategoryCashIn},
		{name: "unit suffix stripped", raw: "Cash In (Crore Taka)", wantOK: true, wantKind: RoleCategory, wantCat: domain.CategoryCashIn},
		{name: "flow code stripped", raw: "P2P (P2P)", wantOK: true, wantKind: RoleCategory, wantCat: domain.CategoryP2P},
		{name: "hyphenated spelling", raw: "Cash-Out", wantOK: true, wantKind: RoleCategory, wantCat: domain.CategoryCashOut},
		{name: "long category column", raw: "Particulars", wantOK: true, wantKind: RoleCategoryColumn},
		{name: "long amount column", raw: "Amount (in Crore BDT)", wantOK: true, wantKind: RoleAmount},
		{name: "salary alias", raw: "Salary Disbursement (B2P)", wantOK: true, wantKind: RoleCategory, wantCat: domain.CategorySalaryDisbursement},
		{name: "blank header", raw: "   ", wantOK: false},
		{name: "placeholder header", raw: "Unnamed: 3", wantOK: false},
		{name: "unknown header", raw: "Grand Total", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := ResolveHeader(tt.raw)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantKind, role.Kind)
			if tt.wantKind == RoleCategory {
				assert.Equal(t, tt.wantCat, role.Category)
			}
		})
	}
}

func TestResolveCategory(t *testing.T) {
	cat, ok := ResolveCategory("Person to Person")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryP2P, cat)

	cat, ok = ResolveCategory("UTILITY BILL PAYMENT (P2B)")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryUtilityBillPayment, cat)

	// Role columns are not categories.
	_, ok = ResolveCategory("Month")
	assert.False(t, ok)

	_, ok = ResolveCategory("no such thing")
	assert.False(t, ok)
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "cashin", canonicalKey("  Cash  In (in Crore BDT) "))
	assert.Equal(t, "merchantpayment", canonicalKey("Merchant-Payment"))
	assert.Equal(t, "", canonicalKey("()"))
	// Unclosed parenthesis drops the tail rather than keeping it.
	assert.Equal(t, "cashout", canonicalKey("Cash Out (Crore"))
}
