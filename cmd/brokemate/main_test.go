package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/model"
	"github.com/Veraticus/brokemate/internal/testutil"
	"github.com/Veraticus/brokemate/internal/tui"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "user@example.com"
	testPassword = "password123"
)

type harness struct {
	backend *testutil.Backend
	config  string
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.AddUser(testUser, testPassword)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`api:
  base_url: %s
  timeout: 5s
session:
  store: file
  path: %s
logging:
  level: error
`, backend.URL(), filepath.Join(dir, "session.json"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	return &harness{backend: backend, config: cfgPath, dir: dir}
}

// run executes one brokemate invocation with stdin as input and returns its stdout.
func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append(args, "--config", h.config))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.run(t, testPassword+"\n", "login", "--username", testUser)
	require.NoError(t, err)
}

func TestLoginStatusLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "anonymous")

	out, err = h.run(t, testUser+"\n"+testPassword+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as "+testUser)
	assert.FileExists(t, filepath.Join(h.dir, "session.json"))

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "authenticated")
	assert.Contains(t, out, "session.json")

	out, err = h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "anonymous")
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "wrong\n", "login", "-u", testUser)
	require.Error(t, err)
	assert.False(t, common.IsCredentialInvalid(err), "a failed login is not an expired session")

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "anonymous")
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "secret-pass\n", "register", "-u", "new@example.com", "--login")
	require.NoError(t, err)
	assert.Contains(t, out, "created and logged in")

	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "authenticated")
}

func TestAddListAndFilter(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, err := h.run(t, "", "add", "-a", "250", "-c", "food", "-m", "chai", "--date", "2025-09-27")
	require.NoError(t, err)
	assert.Contains(t, out, "Added ₹250.00 for Food on 2025-09-27")

	_, err = h.run(t, "40\ntransport\n", "add", "--date", "2025-09-20")
	require.NoError(t, err)

	out, err = h.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "chai")
	assert.Contains(t, out, "₹40.00")
	assert.Less(t, strings.Index(out, "chai"), strings.Index(out, "₹40.00"), "newest first")

	out, err = h.run(t, "", "list", "--category", "transport")
	require.NoError(t, err)
	assert.NotContains(t, out, "chai")
	assert.Contains(t, out, "Showing 1 of 2 expenses (₹40.00)")
}

func TestAddValidation(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.run(t, "", "add", "--amount=-5", "-c", "food")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, h.backend.Hits("/add-expense"))
}

func TestEditExpense(t *testing.T) {
	h := newHarness(t)
	h.backend.Seed(testUser, model.Expense{
		Date:        model.NewDate(2025, time.September, 27),
		Amount:      decimal.RequireFromString("100"),
		Category:    model.CategoryFood,
		Description: "groceries",
	})
	h.login(t)

	_, err := h.run(t, "", "edit", "1")
	require.ErrorIs(t, err, common.ErrValidation)

	out, err := h.run(t, "", "edit", "1", "--amount", "120.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense 1 updated")

	stored := h.backend.Expenses(testUser)
	require.Len(t, stored, 1)
	assert.Equal(t, "120.5", stored[0].Amount.String())
	assert.Equal(t, "groceries", stored[0].Description)

	_, err = h.run(t, "", "edit", "9", "--amount", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expense 9 not found")
}

func TestDeleteConfirmation(t *testing.T) {
	h := newHarness(t)
	h.backend.Seed(testUser, model.Expense{
		Date:     model.NewDate(2025, time.September, 27),
		Amount:   decimal.RequireFromString("100"),
		Category: model.CategoryFood,
	})
	h.login(t)

	out, err := h.run(t, "n\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Operation canceled.")
	assert.Len(t, h.backend.Expenses(testUser), 1)

	out, err = h.run(t, "y\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense 1 deleted")
	assert.Empty(t, h.backend.Expenses(testUser))

	_, err = h.run(t, "", "delete", "1", "--yes")
	require.Error(t, err)
	assert.Equal(t, "Expense not found", describeError(err))
}

func TestFlagExpense(t *testing.T) {
	h := newHarness(t)
	h.backend.Seed(testUser, model.Expense{
		Date:     model.NewDate(2025, time.September, 27),
		Amount:   decimal.RequireFromString("100"),
		Category: model.CategoryShopping,
	})
	h.login(t)

	out, err := h.run(t, "", "flag", "1", "red")
	require.NoError(t, err)
	assert.Contains(t, out, "flagged negative")
	assert.Equal(t, model.FlagNegative, h.backend.Expenses(testUser)[0].Flag)

	_, err = h.run(t, "", "flag", "1", "unset")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, h.backend.Hits("/flag-expense")-1)
}

func TestSessionExpired(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.RevokeTokens()

	_, err := h.run(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, describeError(err), "session has expired")

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "anonymous", "rejected credential is forgotten")
}

func TestNotLoggedIn(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "list")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Zero(t, h.backend.Hits("/expenses"))

	_, err = h.run(t, "", "tui")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestTUIUnknownView(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.run(t, "", "tui", "--view", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown view "bogus"`)
	assert.Zero(t, h.backend.Hits("/expenses"))
}

func TestBackendUnreachable(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.Close()

	_, err := h.run(t, "", "list")
	require.Error(t, err)
	assert.True(t, common.IsConnection(err))
	assert.Equal(t, "Could not reach the Brokemate backend. Is the server running?", describeError(err))
}

func TestSummaryAndChart(t *testing.T) {
	h := newHarness(t)
	h.backend.Seed(testUser,
		model.Expense{Date: model.NewDate(2025, time.September, 27), Amount: decimal.RequireFromString("300"), Category: model.CategoryFood},
		model.Expense{Date: model.NewDate(2025, time.September, 20), Amount: decimal.RequireFromString("100"), Category: model.CategoryTransport, Flag: model.FlagPositive},
	)
	h.login(t)

	chart := filepath.Join(h.dir, "spending.png")
	out, err := h.run(t, "", "summary", "--chart", chart)
	require.NoError(t, err)
	assert.Contains(t, out, "₹400.00")
	assert.Contains(t, out, "₹200.00")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "Chart written to")

	data, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestAnalyzeChatAndReport(t *testing.T) {
	h := newHarness(t)
	h.backend.Seed(testUser, model.Expense{
		Date:     model.NewDate(2025, time.September, 27),
		Amount:   decimal.RequireFromString("300"),
		Category: model.CategoryFood,
	})
	h.backend.SetAnalysis("Food is your biggest expense.")
	h.login(t)

	out, err := h.run(t, "", "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Food is your biggest expense.")

	out, err = h.run(t, "", "chat", "how", "much", "on", "food?")
	require.NoError(t, err)
	assert.Contains(t, out, "You asked: how much on food?")

	out, err = h.run(t, "first question\nexit\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "You asked: first question")

	out, err = h.run(t, "", "report")
	require.NoError(t, err)
	assert.Contains(t, out, "₹300.00")
	assert.Contains(t, out, "Food is your biggest expense.")
}

const statementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>INR
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20250201120000[0:GMT]
<DTEND>20250228120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250203120000[0:GMT]
<TRNAMT>-1499.00
<FITID>CC2025020301
<NAME>NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>SRVCHG
<DTPOSTED>20250228120000[0:GMT]
<TRNAMT>-35.40
<FITID>CC2025022801
<NAME>LATE PAYMENT CHARGE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250210120000[0:GMT]
<TRNAMT>2000.00
<FITID>CC2025021001
<NAME>PAYMENT RECEIVED
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-1534.40
<DTASOF>20250228120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestImportStatement(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	path := filepath.Join(h.dir, "card.qfx")
	require.NoError(t, os.WriteFile(path, []byte(statementOFX), 0o600))

	out, err := h.run(t, "", "import", "--dry-run", "--category", "entertainment", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Would import 2 expenses")
	assert.Contains(t, out, "1 credits skipped")
	assert.Zero(t, h.backend.Hits("/add-expense"))

	// The same file twice imports each transaction once.
	out, err = h.run(t, "", "import", "--category", "entertainment", path, filepath.Join(h.dir, "*.qfx"))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 expenses")

	categories := map[model.Category]string{}
	for _, e := range h.backend.Expenses(testUser) {
		categories[e.Category] = e.Amount.StringFixed(2)
	}
	assert.Equal(t, map[model.Category]string{
		model.CategoryEntertainment: "1499.00",
		model.CategoryUtilities:     "35.40",
	}, categories)
}

func TestImportStopsOnFirstFailure(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.FailNext("/add-expense", testutil.Failure{Status: 500, Detail: "database unavailable"})

	path := filepath.Join(h.dir, "card.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statementOFX), 0o600))

	_, err := h.run(t, "", "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import stopped after 0 of 2 expenses")
	assert.Equal(t, 1, h.backend.Hits("/add-expense"))
}

func TestImportMissingFiles(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.run(t, "", "import", filepath.Join(h.dir, "*.ofx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files found")
}

func TestExportSheetsRequiresAuth(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	for _, key := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(key, "")
	}

	_, err := h.run(t, "", "export", "sheets")
	require.Error(t, err)
	assert.Zero(t, h.backend.Hits("/expenses"), "configuration is checked before loading")
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "status", "--api-url", "ftp://example.com")
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		expected string
	}{
		{
			name:     "not logged in",
			err:      fmt.Errorf("list: %w", common.ErrNotAuthenticated),
			expected: "You are not logged in. Run `brokemate login` first.",
		},
		{
			name:     "rejected credential",
			err:      &common.APIError{Status: 401, Detail: "Could not validate credentials", Authenticated: true},
			expected: "Your session has expired. Run `brokemate login` to sign in again.",
		},
		{
			name:     "tui forced logout",
			err:      tui.ErrSessionExpired,
			expected: "Your session has expired. Run `brokemate login` to sign in again.",
		},
		{
			name:     "connection",
			err:      &common.ConnectionError{Err: errors.New("dial tcp: connection refused")},
			expected: "Could not reach the Brokemate backend. Is the server running?",
		},
		{
			name:     "server detail",
			err:      fmt.Errorf("failed to delete expense 3: %w", common.NewAPIError(404, "Expense not found")),
			expected: "Expense not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describeError(tt.err))
		})
	}
}

func TestFilterExpenses(t *testing.T) {
	expenses := []model.Expense{
		{ID: 3, Date: model.NewDate(2025, time.September, 27), Category: model.CategoryFood, Flag: model.FlagNegative},
		{ID: 2, Date: model.NewDate(2025, time.September, 15), Category: model.CategoryTransport},
		{ID: 1, Date: model.NewDate(2025, time.August, 30), Category: model.CategoryFood, Flag: model.FlagPositive},
	}

	tests := []struct {
		name   string
		filter expenseFilter
		want   []model.ExpenseID
	}{
		{name: "no filter", filter: expenseFilter{anyFlag: true}, want: []model.ExpenseID{3, 2, 1}},
		{name: "category", filter: expenseFilter{anyFlag: true, category: model.CategoryFood}, want: []model.ExpenseID{3, 1}},
		{name: "unset flag", filter: expenseFilter{flag: model.FlagUnset}, want: []model.ExpenseID{2}},
		{name: "negative flag", filter: expenseFilter{flag: model.FlagNegative}, want: []model.ExpenseID{3}},
		{
			name:   "date range inclusive",
			filter: expenseFilter{anyFlag: true, from: model.NewDate(2025, time.September, 1), to: model.NewDate(2025, time.September, 27)},
			want:   []model.ExpenseID{3, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []model.ExpenseID
			for _, e := range filterExpenses(expenses, tt.filter) {
				got = append(got, e.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
