// Package ofx parses OFX/QFX bank statements into import records.
package ofx

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/importer"
	"github.com/mny-engine/mny/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting issues in real-world OFX files:
// leading whitespace, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")
	return content
}

// Parse reads an OFX/QFX statement and returns its transactions as import
// records. Both bank and credit card statements are handled; statement
// transactions are posted, so records come back with cleared status.
func Parse(r io.Reader) ([]importer.Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var records []importer.Record
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				records = append(records, convert(ofxTx))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				records = append(records, convert(ofxTx))
			}
		}
	}

	common.LogInfo("Parsed OFX file", common.Fields{
		"total_transactions": len(records),
		"bank_statements":    bankStmts,
		"cc_statements":      ccStmts,
	})

	return records, nil
}

// convert maps one OFX transaction to an import record. OFX amounts are
// signed the way the importer expects: negative for debits.
func convert(ofxTx ofxgo.Transaction) importer.Record {
	amountFloat, _ := ofxTx.TrnAmt.Float64()

	return importer.Record{
		Date:     ofxTx.DtPosted.Time,
		Amount:   int64(math.Round(amountFloat * 100)),
		Endpoint: payeeName(ofxTx),
		Number:   string(ofxTx.CheckNum),
		Status:   model.StatusCleared,
	}
}

// payeeName gets the cleanest available counterparty name from OFX data.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if name == "" && tx.Memo != "" {
		name = strings.TrimSpace(string(tx.Memo))
	}
	return name
}
