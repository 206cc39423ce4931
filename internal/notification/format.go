package notification

import (
	"strconv"
	"strings"
	"time"

	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
)

// formatAmount renders 935000 as "935 000 GNF".
func formatAmount(amount int64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if currency != "" {
		b.WriteByte(' ')
		b.WriteString(currency)
	}
	return b.String()
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

var methodLabels = map[string]string{
	transactionDatamodel.MethodOrangeMoney:      "Orange Money",
	transactionDatamodel.MethodMTNMoney:         "MTN Mobile Money",
	transactionDatamodel.MethodBankTransfer:     "virement bancaire",
	transactionDatamodel.MethodCash:             "espèces",
	transactionDatamodel.MethodCheck:            "chèque",
	transactionDatamodel.MethodPayrollDeduction: "prélèvement sur salaire",
	transactionDatamodel.MethodAdvanceOffset:    "compensation d'avance",
}

func methodLabel(method string) string {
	if label, ok := methodLabels[method]; ok {
		return label
	}
	return method
}
