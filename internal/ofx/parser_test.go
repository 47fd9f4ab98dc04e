package ofx

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `
OFXHEADER:100
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
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>INR
<BANKACCTFROM>
<BANKID>HDFC0001234
<ACCTID>50100012345678
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250101120000[0:GMT]
<DTEND>20250131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250115120000[0:GMT]
<TRNAMT>-250.50
<FITID>2025011501
<NAME>POS PURCHASE CHAI POINT
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250120120000[0:GMT]
<TRNAMT>50000.00
<FITID>2025012001
<NAME>SALARY
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20250125120000[0:GMT]
<TRNAMT>-118.00
<FITID>2025012501
<NAME>DEBIT
<MEMO>SMS ALERT CHARGES
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
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
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-1534.40
<DTASOF>20250228120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func newParser(t *testing.T, category model.Category) *Parser {
	t.Helper()
	p, err := NewParser(category, nil)
	require.NoError(t, err)
	return p
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		ofxData      string
		wantAccounts []string
		wantEntries  int
		wantSkipped  int
		wantErr      bool
	}{
		{
			name:         "bank statement",
			ofxData:      sampleBankOFX,
			wantEntries:  2,
			wantSkipped:  1,
			wantAccounts: []string{"50100012345678"},
		},
		{
			name:         "credit card statement",
			ofxData:      sampleCreditCardOFX,
			wantEntries:  2,
			wantAccounts: []string{"4111111111111111"},
		},
		{name: "invalid data", ofxData: "not valid OFX", wantErr: true},
		{name: "empty", ofxData: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newParser(t, model.CategoryOther).Parse(strings.NewReader(tt.ofxData))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.Entries, tt.wantEntries)
			assert.Equal(t, tt.wantSkipped, res.Skipped)
			assert.Equal(t, tt.wantAccounts, res.Accounts)
			for _, e := range res.Entries {
				assert.NoError(t, e.Draft.Validate())
			}
		})
	}
}

func TestParseBankDrafts(t *testing.T) {
	res, err := newParser(t, model.CategoryFood).Parse(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	first := res.Entries[0]
	assert.Equal(t, "2025011501", first.FitID)
	assert.Equal(t, "DEBIT", first.Type)
	assert.Equal(t, "50100012345678", first.Account)
	assert.Equal(t, model.NewDate(2025, time.January, 15), first.Draft.Date)
	assert.Equal(t, "250.5", first.Draft.Amount.String())
	assert.Equal(t, model.CategoryFood, first.Draft.Category)
	assert.Equal(t, "CHAI POINT", first.Draft.Description)

	fee := res.Entries[1]
	assert.Equal(t, model.CategoryUtilities, fee.Draft.Category, "fees go to utilities")
	assert.Equal(t, "118", fee.Draft.Amount.String())
	assert.Equal(t, "SMS ALERT CHARGES", fee.Draft.Description, "generic name falls back to memo")
}

func TestParseServiceCharge(t *testing.T) {
	res, err := newParser(t, model.CategoryEntertainment).Parse(strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	assert.Equal(t, model.CategoryEntertainment, res.Entries[0].Draft.Category)
	assert.Equal(t, "1499", res.Entries[0].Draft.Amount.String())
	assert.Equal(t, model.CategoryUtilities, res.Entries[1].Draft.Category)
	assert.Equal(t, "35.4", res.Entries[1].Draft.Amount.String())
}

func TestNewParserRejectsUnknownCategory(t *testing.T) {
	_, err := NewParser(model.Category("Rent"), nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestExtractMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove UPI prefix",
			tx:       ofxgo.Transaction{Name: "UPI SWIGGY"},
			expected: "SWIGGY",
		},
		{
			name:     "strip leading date",
			tx:       ofxgo.Transaction{Name: "03/14 BIG BAZAAR"},
			expected: "BIG BAZAAR",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.IN  "},
			expected: "AMAZON.IN",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "PAYMENT", Payee: &ofxgo.Payee{Name: "Tata Power"}},
			expected: "Tata Power",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractMerchantName(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n<OFX>\n<SEVERITY>Info</SEVERITY>\n<STMTTRN\n"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "<OFX>"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<STMTTRN>")
}
