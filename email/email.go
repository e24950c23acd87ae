package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

func send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	if host == "" || port == "" || user == "" || pass == "" || from == "" {
		return fmt.Errorf("SMTP environment variables missing")
	}
	addr := fmt.Sprintf("%s:%s", host, port)
	auth := smtp.PlainAuth("", user, pass, host)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

func SendWelcome(to string) error {
	subject := "Welcome to inRooms"
	body := "Thanks for signing up. Your 14-day trial has started. Join your first Room today."
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] welcome sent to %s", to)
	return nil
}

// SendVerification sends the email-verification link.
func SendVerification(to, link string) error {
	subject := "Verify your email"
	body := fmt.Sprintf(`Hi,

Please confirm your email address by clicking the link below:
%s

If you did not create an inRooms account, you can ignore this message.

The inRooms team`, link)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] verification sent to %s", to)
	return nil
}

func SendPasswordChanged(to string) error {
	subject := "Password updated"
	body := "Your password was changed. If this wasn't you, contact support immediately."
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] password change notification sent to %s", to)
	return nil
}

// SendSubscriptionActivated confirms a completed checkout.
func SendSubscriptionActivated(to, planName string) error {
	subject := "Your subscription is active"
	body := fmt.Sprintf("Your %s plan is now active. Your event and course quotas have been refreshed.", planName)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] subscription activation sent to %s", to)
	return nil
}

// SendQuoteAck acknowledges an enterprise quote request.
func SendQuoteAck(to, company string) error {
	subject := "We received your enterprise inquiry"
	body := fmt.Sprintf(`Hi,

Thanks for telling us about %s. A member of our sales team will reach out
within one business day to put together your quote.

The inRooms team`, company)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] quote acknowledgment sent to %s", to)
	return nil
}

// SendTrialEnding nudges trial users toward a paid plan.
func SendTrialEnding(to string, daysLeft int) error {
	subject := "Your inRooms trial is ending soon"
	body := fmt.Sprintf("Your trial ends in %d days. Pick a plan to keep your Rooms and course progress.", daysLeft)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] trial ending notice sent to %s", to)
	return nil
}

// SendCourseCompleted congratulates a member on finishing a course.
func SendCourseCompleted(to, courseTitle, badge string) error {
	subject := "Course completed!"
	body := fmt.Sprintf("Congratulations, you finished %s and earned the %s badge. It now shows on your profile.", courseTitle, badge)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] course completion sent to %s", to)
	return nil
}
