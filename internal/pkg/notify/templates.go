package notify

import (
	"fmt"
	"time"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// OTPMail 签发链接后发给文件所有者本人的验证码邮件
func OTPMail(to, otp string, expiresAt time.Time) Mail {
	return Mail{
		To:        to,
		Subject:   "Your SecurePrint OTP",
		Body:      fmt.Sprintf("Your OTP is: %s\nExpires: %s", otp, expiresAt.Format(timeLayout)),
		ExpiresAt: expiresAt,
	}
}

// LinkMail 转发给打印店的链接邮件, 不包含验证码
func LinkMail(to, url string, expiresAt time.Time) Mail {
	return Mail{
		To:      to,
		Subject: "SecurePrint - Document Link",
		HTML:    true,
		Body: fmt.Sprintf(`<h2>SecurePrint</h2>
<p>You have been sent a document for printing.</p>
<p><strong>Open Link:</strong> <a href="%[1]s">%[1]s</a></p>
<p><i>This link will expire at: %[2]s</i></p>`, url, expiresAt.Format(timeLayout)),
		ExpiresAt: expiresAt,
	}
}
