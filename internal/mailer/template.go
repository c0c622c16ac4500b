package mailer

import "fmt"

// RenderHTML builds the HTML email body: greeting, message, optional deep
// link, sign-off.
func RenderHTML(displayName, message, link string) string {
	linkBlock := ""
	if link != "" {
		linkBlock = fmt.Sprintf(`<p><a href="%s">View it in the app</a></p>`, link)
	}
	return fmt.Sprintf(`
		<html>
		<body>
			<p>Hi %s,</p>
			<p>%s</p>
			%s
			<br>
			<p>Best regards,<br>The Taskboard Team</p>
		</body>
		</html>
		`, displayName, message, linkBlock)
}

// RenderText builds the plain-text alternative of the same email.
func RenderText(displayName, message, link string) string {
	body := fmt.Sprintf("Hi %s,\n\n%s\n", displayName, message)
	if link != "" {
		body += fmt.Sprintf("\nView it in the app: %s\n", link)
	}
	body += "\nBest regards,\nThe Taskboard Team\n"
	return body
}
