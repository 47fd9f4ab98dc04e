// Package ofx turns OFX/QFX bank and card statements into expense drafts.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

const maxDescription = 500

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement debit ready to submit.
type Entry struct {
	FitID   string
	Type    string
	Account string
	Draft   model.Draft
}

// Result is the outcome of parsing one statement file.
type Result struct {
	Entries  []Entry
	Accounts []string
	Skipped  int
}

// Parser converts statement debits to drafts.
type Parser struct {
	logger   *slog.Logger
	category model.Category
}

// NewParser creates a parser that files debits under category, except bank
// fees and service charges which go to Utilities.
func NewParser(category model.Category, logger *slog.Logger) (*Parser, error) {
	if !category.Valid() {
		return nil, common.NewValidationError("category", fmt.Sprintf("%q is not a known category", category))
	}
	return &Parser{category: category, logger: common.OrDefault(logger)}, nil
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads a statement and returns its debits. Credits are counted in Skipped.
func (p *Parser) Parse(reader io.Reader) (Result, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var result Result
	accounts := make(map[string]bool)

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			account := string(stmt.BankAcctFrom.AcctID)
			accounts[account] = true
			p.collect(&result, stmt.BankTranList, account)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			account := string(stmt.CCAcctFrom.AcctID)
			accounts[account] = true
			p.collect(&result, stmt.BankTranList, account)
		}
	}

	for acct := range accounts {
		if acct != "" {
			result.Accounts = append(result.Accounts, acct)
		}
	}
	sort.Strings(result.Accounts)

	p.logger.Info("parsed statement",
		"debits", len(result.Entries),
		"skipped", result.Skipped,
		"accounts", len(result.Accounts))

	return result, nil
}

func (p *Parser) collect(result *Result, list *ofxgo.TransactionList, account string) {
	if list == nil {
		return
	}
	for _, tx := range list.Transactions {
		entry, ok := p.convert(tx, account)
		if !ok {
			result.Skipped++
			continue
		}
		result.Entries = append(result.Entries, entry)
	}
}

// convert maps a debit to an Entry. Credits and zero amounts are rejected.
func (p *Parser) convert(tx ofxgo.Transaction, account string) (Entry, bool) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil || !amount.IsNegative() {
		return Entry{}, false
	}

	trnType := fmt.Sprintf("%v", tx.TrnType)
	category := p.category
	switch trnType {
	case "FEE", "SRVCHG":
		category = model.CategoryUtilities
	}

	description := extractMerchantName(tx)
	if r := []rune(description); len(r) > maxDescription {
		description = string(r[:maxDescription])
	}

	return Entry{
		FitID:   string(tx.FiTID),
		Type:    trnType,
		Account: account,
		Draft: model.Draft{
			Date:        model.DateOf(tx.DtPosted.Time),
			Amount:      amount.Neg(),
			Category:    category,
			Description: description,
		},
	}, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"UPI ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
