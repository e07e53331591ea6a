package vault

import (
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/nbutton23/zxcvbn-go"
)

// checkStrength rejects empty passwords always and, when minScore > 0,
// passwords whose zxcvbn score (0..4) is below it.
func checkStrength(password string, minScore int) error {
	if password == "" {
		return common.ErrWeakPassword
	}
	if minScore <= 0 {
		return nil
	}
	if zxcvbn.PasswordStrength(password, nil).Score < minScore {
		return common.ErrWeakPassword
	}
	return nil
}
