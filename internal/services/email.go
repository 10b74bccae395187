package services

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/rs/zerolog/log"
)

// EmailService handles email operations
type EmailService struct {
	// SMTP configuration
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string

	// AWS SES configuration
	sesClient *ses.SES
	useSES    bool
}

// NewEmailService creates a new email service
func NewEmailService() (*EmailService, error) {
	emailService := &EmailService{}

	// Check for AWS SES configuration first
	awsRegion := os.Getenv("AWS_REGION")
	awsAccessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	awsSecretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	sesFromEmail := os.Getenv("SES_FROM_EMAIL")

	if awsRegion != "" && awsAccessKey != "" && awsSecretKey != "" && sesFromEmail != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(awsRegion),
			Credentials: credentials.NewStaticCredentials(awsAccessKey, awsSecretKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}

		emailService.sesClient = ses.New(sess)
		emailService.fromEmail = sesFromEmail
		emailService.useSES = true

		log.Info().Str("region", awsRegion).Str("from", sesFromEmail).Msg("AWS SES configured")
		return emailService, nil
	}

	// Fallback to SMTP configuration
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPassword := os.Getenv("SMTP_PASSWORD")
	fromEmail := os.Getenv("FROM_EMAIL")

	if smtpHost == "" || smtpPort == "" || smtpUser == "" || smtpPassword == "" || fromEmail == "" {
		return nil, fmt.Errorf("email service not configured. Set either AWS SES credentials (AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, SES_FROM_EMAIL) or SMTP credentials (SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, FROM_EMAIL)")
	}

	emailService.smtpHost = smtpHost
	emailService.smtpPort = smtpPort
	emailService.smtpUser = smtpUser
	emailService.smtpPassword = smtpPassword
	emailService.fromEmail = fromEmail
	emailService.useSES = false

	return emailService, nil
}

// SendEmail sends an email using SES or SMTP
func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if s.useSES {
		return s.sendEmailWithSES(to, subject, body)
	}
	return s.sendEmailWithSMTP(to, subject, body)
}

// sendEmailWithSES sends email using Amazon SES
func (s *EmailService) sendEmailWithSES(to []string, subject, body string) error {
	if s.sesClient == nil {
		return fmt.Errorf("SES client not configured")
	}

	var toAddresses []*string
	for _, addr := range to {
		toAddresses = append(toAddresses, aws.String(addr))
	}

	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: toAddresses,
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
		},
		Source: aws.String(s.fromEmail),
	}

	_, err := s.sesClient.SendEmail(input)
	if err != nil {
		log.Error().Err(err).Str("from", s.fromEmail).Strs("to", to).Msg("SES send failed")
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	return nil
}

// sendEmailWithSMTP sends email using SMTP
func (s *EmailService) sendEmailWithSMTP(to []string, subject, body string) error {
	if s.smtpHost == "" {
		return fmt.Errorf("SMTP service not configured")
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.fromEmail, to[0], subject, body)

	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	err := smtp.SendMail(s.smtpHost+":"+s.smtpPort, auth, s.fromEmail, to, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	return nil
}

// SendPasswordResetEmail sends a password reset email with the reset link
func (s *EmailService) SendPasswordResetEmail(email, userName, resetToken string) error {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, resetToken)

	subject := "Password Reset - TireFinder"
	body := s.renderPasswordResetTemplate(userName, resetURL)

	return s.SendEmail([]string{email}, subject, body)
}

// renderPasswordResetTemplate renders the password reset email template
func (s *EmailService) renderPasswordResetTemplate(userName, resetURL string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Password Reset</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #1565C0; color: white; text-align: center; padding: 20px; border-radius: 8px 8px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #1565C0; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Password Reset</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <p>We received a request to reset the password for your TireFinder account.</p>
            <p>To choose a new password, click the button below:</p>
            <a href="%s" class="button">Reset Password</a>
            <p><strong>This link expires in 1 hour.</strong></p>
            <p>If you did not request this reset you can safely ignore this email. Your current password will remain unchanged.</p>
            <p>If the button does not work, copy and paste the following link into your browser:</p>
            <p style="word-break: break-all; color: #666;">%s</p>
        </div>
        <div class="footer">
            <p>This is an automated email. Please do not reply.</p>
            <p>&copy; 2026 TireFinder. All rights reserved.</p>
        </div>
    </div>
</body>
</html>
`, userName, resetURL, resetURL)
}

// SendReviewSubmittedEmail notifies the moderation inbox that a new review is pending
func (s *EmailService) SendReviewSubmittedEmail(shopName, authorName string, rating int) error {
	moderationEmail := os.Getenv("MODERATION_EMAIL")
	if moderationEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New review pending for %s", shopName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Review Pending</title></head>
<body>
    <p>A new review is waiting for moderation.</p>
    <ul>
        <li><strong>Shop:</strong> %s</li>
        <li><strong>Author:</strong> %s</li>
        <li><strong>Rating:</strong> %d/5</li>
    </ul>
    <p>Sign in to the admin panel to approve or reject it.</p>
</body>
</html>
`, shopName, authorName, rating)

	return s.SendEmail([]string{moderationEmail}, subject, body)
}
