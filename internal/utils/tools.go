package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func EncryptPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func VerifyPassword(hashedPassword, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return false, err
	}
	return true, nil
}

// AllowedEmail reports whether an address belongs to one of the
// institutional domains. A suffix beginning with "@" matches the exact
// domain; otherwise any subdomain ending matches, so ".buet.ac.bd"
// accepts student@cse.buet.ac.bd as well as staff@buet.ac.bd suffixes.
func AllowedEmail(email string, domains []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if strings.HasSuffix(email, d) {
			return true
		}
		// ".buet.ac.bd" also admits the bare domain itself.
		if strings.HasPrefix(d, ".") && strings.HasSuffix(email, "@"+d[1:]) {
			return true
		}
	}
	return false
}
