package auth

import (
	"fmt"
	"net/smtp"
	"os"

	"agency-hub/config"
)

// SendVerificationEmail delivers the verification link over SMTP. Without an
// SMTP host configured it logs the link instead, which is enough for local
// development.
func SendVerificationEmail(to string, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", config.APP_URL, token)

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		fmt.Printf("📬 Verification link for %s: %s\n", to, link)
		return nil
	}

	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	port := os.Getenv("SMTP_PORT")

	auth := smtp.PlainAuth("", from, password, host)

	subject := "Confirme sua conta"
	body := fmt.Sprintf("Clique no link abaixo para confirmar sua conta:\n\n%s", link)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	err := smtp.SendMail(host+":"+port, auth, from, []string{to}, message)
	if err != nil {
		fmt.Println("❌ SMTP error:", err)
	}
	return err
}
