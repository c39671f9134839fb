package mailer

import (
	"bytes"
	"html/template"
	"time"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Password Reset</title></head>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;background-color:#f4f4f4;">
<table role="presentation" style="width:100%;border-collapse:collapse;"><tr><td align="center" style="padding:40px 0;">
<table role="presentation" style="width:600px;border-collapse:collapse;background-color:#ffffff;border-radius:8px;">
<tr><td style="padding:40px 40px 20px 40px;text-align:center;border-bottom:1px solid #eeeeee;">
<h1 style="margin:0;color:#1a8f5a;font-size:28px;">Creatora</h1></td></tr>
<tr><td style="padding:40px;">
<h2 style="color:#333333;font-size:22px;margin-top:0;">Password Reset Request</h2>
<p style="color:#666666;font-size:16px;">Hello,</p>
<p style="color:#666666;font-size:16px;">We received a request to reset the password for your Creatora account. Enter the verification code below:</p>
<div style="margin:30px 0;text-align:center;"><span style="font-size:36px;font-weight:bold;color:#1a8f5a;letter-spacing:8px;">{{.OTP}}</span></div>
<p style="color:#666666;font-size:14px;"><strong>Security Note:</strong> This code is valid for <strong>{{.ValidMinutes}} minutes</strong>. If you did not request this reset, ignore this email.</p>
</td></tr>
<tr><td style="background-color:#333333;padding:20px;text-align:center;">
<p style="color:#aaaaaa;font-size:12px;margin:0;">&copy; {{.Year}} Creatora. All rights reserved.</p>
</td></tr>
</table></td></tr></table>
</body>
</html>`))

var deletionTemplate = template.Must(template.New("deletion").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Account Deleted</title></head>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;background-color:#f4f4f4;">
<table role="presentation" style="width:100%;border-collapse:collapse;"><tr><td align="center" style="padding:40px 0;">
<table role="presentation" style="width:600px;border-collapse:collapse;background-color:#ffffff;border-radius:8px;">
<tr><td style="padding:40px 40px 20px 40px;text-align:center;border-bottom:1px solid #eeeeee;">
<h1 style="margin:0;color:#e53e3e;font-size:28px;">Creatora</h1></td></tr>
<tr><td style="padding:40px;">
<h2 style="color:#333333;font-size:22px;margin-top:0;">Account Deletion Confirmation</h2>
<p style="color:#666666;font-size:16px;">Dear {{.Name}},</p>
<p style="color:#666666;font-size:16px;">Your <strong>Creatora</strong> account has been permanently deleted as per your request.</p>
<div style="background-color:#fff5f5;border-left:4px solid #e53e3e;padding:15px;margin:20px 0;">
<p style="color:#c53030;font-size:14px;margin:0;"><strong>Status:</strong> All your personal data and content have been removed from our servers.</p></div>
<p style="color:#666666;font-size:16px;">We are sorry to see you go. You are always welcome to create a new account.</p>
</td></tr>
<tr><td style="background-color:#333333;padding:20px;text-align:center;">
<p style="color:#aaaaaa;font-size:12px;margin:0;">&copy; {{.Year}} Creatora. All rights reserved.</p>
</td></tr>
</table></td></tr></table>
</body>
</html>`))

func renderOTP(otp string, validFor time.Duration) (string, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, map[string]any{
		"OTP":          otp,
		"ValidMinutes": int(validFor.Minutes()),
		"Year":         time.Now().Year(),
	})
	return buf.String(), err
}

func renderDeletion(name string) (string, error) {
	if name == "" {
		name = "User"
	}
	var buf bytes.Buffer
	err := deletionTemplate.Execute(&buf, map[string]any{"Name": name, "Year": time.Now().Year()})
	return buf.String(), err
}
