package app

import (
	"bytes"
	"html/template"
)

const verificationSubject = "Verify Your Qrate Account"

var verificationTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Verify Your Qrate Account</title>
</head>
<body style="margin:0;padding:0;font-family:Arial,Helvetica,sans-serif;background-color:#f4f4f4;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" border="0" style="padding:20px;">
    <tr><td align="center">
      <table role="presentation" width="600" cellspacing="0" cellpadding="0" border="0" style="background-color:#ffffff;border-radius:8px;">
        <tr><td style="background-color:#1a73e8;padding:20px;text-align:center;">
          <h1 style="color:#ffffff;margin:0;font-size:24px;">Welcome to Qrate!</h1>
        </td></tr>
        <tr><td style="padding:40px 30px;color:#333333;">
          <h2 style="font-size:20px;margin:0 0 20px;">Verify Your Email Address</h2>
          <p style="font-size:16px;line-height:1.5;">Thank you for signing up with Qrate. To complete your registration, please verify your email address:</p>
          <p style="text-align:center;margin:20px auto;">
            <a href="{{.Link}}" style="display:inline-block;padding:12px 24px;background-color:#1a73e8;color:#ffffff;text-decoration:none;border-radius:4px;font-weight:bold;">Verify Email</a>
          </p>
          <p style="font-size:16px;line-height:1.5;">If the button doesn't work, copy and paste this link into your browser:</p>
          <p style="font-size:14px;word-break:break-all;"><a href="{{.Link}}" style="color:#1a73e8;">{{.Link}}</a></p>
          <p style="font-size:16px;line-height:1.5;">This link will expire in 1 hour. If you didn't create a Qrate account, please ignore this email.</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>
`))

func renderVerificationEmail(link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, struct{ Link string }{link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
