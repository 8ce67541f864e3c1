package mailer

import (
	"bytes"
	"html/template"
)

const (
	VerificationSubject = "Your Car Auction verification code"
	ResetSubject        = "Your Car Auction password reset code"
)

var codeTemplate = template.Must(template.New("code").Parse(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #333; margin-bottom: 20px;">{{.Title}}</h1>
		<p style="color: #666; line-height: 1.6;">Hello {{.Name}},</p>
		<p style="color: #666; line-height: 1.6; margin-bottom: 30px;">{{.Intro}}</p>
		<div style="background-color: #f8f9fa; padding: 30px; border-radius: 8px; text-align: center; margin-bottom: 30px;">
			<h2 style="color: #333; margin: 0; font-size: 36px; letter-spacing: 4px;">{{.Code}}</h2>
		</div>
		<p style="color: #999; font-size: 14px;">This code is valid for 10 minutes.</p>
		<p style="color: #999; font-size: 14px;">If you did not request it, you can ignore this email.</p>
	</div>
</body>
</html>
`))

type codeEmail struct {
	Title string
	Name  string
	Intro string
	Code  string
}

func render(data codeEmail) string {
	var buf bytes.Buffer
	_ = codeTemplate.Execute(&buf, data)
	return buf.String()
}

// VerificationCodeEmail builds the account verification message.
func VerificationCodeEmail(to, name, code string) Message {
	return Message{
		To:      to,
		Subject: VerificationSubject,
		HTML: render(codeEmail{
			Title: "Verify your email",
			Name:  name,
			Intro: "Enter the code below to verify your Car Auction account.",
			Code:  code,
		}),
	}
}

// ResetCodeEmail builds the forgot-password message.
func ResetCodeEmail(to, name, code string) Message {
	return Message{
		To:      to,
		Subject: ResetSubject,
		HTML: render(codeEmail{
			Title: "Reset your password",
			Name:  name,
			Intro: "Enter the code below to choose a new password.",
			Code:  code,
		}),
	}
}
